package permission

import (
	"sort"
	"strings"
)

// Wildcard is the canonical token stored in a [Set] entry when a resource
// grants every action. Raw payloads may spell it "*" or "all"; the
// normalizer folds both spellings into this one token.
const Wildcard = "*"

func isWildcardToken(s string) bool {
	return s == "*" || s == "all"
}

// Actions is the set of granted action tokens for a single resource.
// Action tokens are case-sensitive. A set containing [Wildcard] implies
// every action on the resource.
type Actions map[string]struct{}

// Contains reports whether the exact action token is granted.
func (a Actions) Contains(action string) bool {
	_, ok := a[action]
	return ok
}

// IsWildcard reports whether the set carries the wildcard token.
func (a Actions) IsWildcard() bool {
	_, ok := a[Wildcard]
	return ok
}

// List returns the granted tokens as a sorted copy.
func (a Actions) List() []string {
	out := make([]string, 0, len(a))
	for token := range a {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

func (a Actions) clone() Actions {
	out := make(Actions, len(a))
	for token := range a {
		out[token] = struct{}{}
	}
	return out
}

// Record is the array-shape element of a raw permission payload, and the
// form [Set.Records] re-expresses a canonical set in. When parsing, the
// actions field of a raw record may instead be a bare string or an
// action→bool map; those shapes are handled by [Normalize].
type Record struct {
	Resource string   `json:"resource"`
	Actions  []string `json:"actions"`
}

// Set is the canonical permission set: a mapping from lower-cased resource
// name to granted action tokens, plus the derived global-wildcard flag.
//
// A Set is never nil-valued by the normalizer and is immutable once
// returned; absence of a resource key means "no explicit grant", which
// resolves to denial unless the subject is super-admin.
//
//	Docs: docs/canonical.md
type Set struct {
	grants map[string]Actions
	global bool
}

func newSet() *Set {
	return &Set{grants: make(map[string]Actions)}
}

// Global reports whether the raw payload declared access over every
// resource (any of the historical global-marker spellings).
func (s *Set) Global() bool {
	return s != nil && s.global
}

// Actions returns the action set granted for the resource. The lookup is
// case-insensitive: the resource is lower-cased before comparison.
func (s *Set) Actions(resource string) (Actions, bool) {
	if s == nil {
		return nil, false
	}
	acts, ok := s.grants[strings.ToLower(resource)]
	return acts, ok
}

// Resources returns the lower-cased resource names with explicit grants,
// sorted.
func (s *Set) Resources() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.grants))
	for resource := range s.grants {
		out = append(out, resource)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of resources with explicit grants. The global
// flag does not count toward Len.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.grants)
}

// IsEmpty reports whether the set carries no grants at all.
func (s *Set) IsEmpty() bool {
	return s == nil || (!s.global && len(s.grants) == 0)
}

// Clone returns a deep copy. Updates never mutate an existing Set; a
// changed payload is normalized into a brand-new one.
func (s *Set) Clone() *Set {
	out := newSet()
	if s == nil {
		return out
	}
	out.global = s.global
	for resource, acts := range s.grants {
		out.grants[resource] = acts.clone()
	}
	return out
}

// Records re-expresses the set in array-of-records form. The output is a
// fixpoint of [Normalize]: normalizing it reproduces an equal Set. The
// global flag is represented as a leading {"*", ["*"]} record.
func (s *Set) Records() []Record {
	if s == nil {
		return nil
	}
	out := make([]Record, 0, len(s.grants)+1)
	if s.global {
		out = append(out, Record{Resource: "*", Actions: []string{Wildcard}})
	}
	for _, resource := range s.Resources() {
		out = append(out, Record{Resource: resource, Actions: s.grants[resource].List()})
	}
	return out
}

// Equal reports whether two sets grant exactly the same permissions.
func (s *Set) Equal(other *Set) bool {
	if s.Global() != other.Global() || s.Len() != other.Len() {
		return false
	}
	if s == nil || other == nil {
		return true
	}
	for resource, acts := range s.grants {
		otherActs, ok := other.grants[resource]
		if !ok || len(acts) != len(otherActs) {
			return false
		}
		for token := range acts {
			if !otherActs.Contains(token) {
				return false
			}
		}
	}
	return true
}

func (s *Set) grant(resource, action string) {
	resource = strings.ToLower(resource)
	acts, ok := s.grants[resource]
	if !ok {
		acts = make(Actions)
		s.grants[resource] = acts
	}
	// A wildcard entry already implies every action; keep it collapsed so
	// round-tripping through Records stays a fixpoint.
	if acts.IsWildcard() {
		return
	}
	acts[action] = struct{}{}
}

// grantWildcard collapses the resource entry to the wildcard token alone.
func (s *Set) grantWildcard(resource string) {
	s.grants[strings.ToLower(resource)] = Actions{Wildcard: {}}
}
