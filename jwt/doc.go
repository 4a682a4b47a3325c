// Package jwt extracts raw permission payloads from signed tokens.
//
// Identity providers in this lineage deliver the permission blob inside a
// token claim (historically "perms", configurable). The [Manager] verifies
// the signature (ed25519 or HS256) and hands the claim back untouched for
// the normalizer; it performs no permission decisions itself.
//
// # What this package must NOT do
//
//   - Normalize or evaluate permissions (permission/ owns that).
//   - Accept unsigned or alg-confused tokens: verification is strict and
//     a failed parse yields no payload at all.
//   - Import goPerm or store.
package jwt
