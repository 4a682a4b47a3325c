// Package permission provides the canonical permission set, the raw payload
// normalizer, and the pure decision functions used by goPerm authorization
// checks.
//
// # Raw payload shapes
//
// Upstream identity providers have emitted the same semantic grant in several
// historical shapes: an array of {resource, actions} records, a flat
// resource→actions object (string, list, or action→bool map values), and bare
// global markers ("*", "Global", "global", pages/actions pair). [Normalize]
// accepts all of them and folds them into a single [Set]. Anything it does not
// recognize becomes the empty set: every ambiguous input resolves to denial.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. A [Set] is
// never mutated after construction; a refreshed payload produces a brand-new
// Set, and callers holding the old one keep evaluating against a consistent
// snapshot.
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import goPerm, jwt, or store.
//   - Mutate a Set in place after [Normalize] returns it.
package permission
