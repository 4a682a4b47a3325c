package permission

import "strings"

// DefaultMajorModules is the reference list of modules whose full
// wildcard coverage is treated as a super-admin signal when no explicit
// global marker is present. The list is configuration, not policy:
// deployments with a different module census override it via
// [NewRuleset].
var DefaultMajorModules = []string{"Feeds", "Leads", "Tasks", "Tickets", "Settings"}

// DefaultViewAliases are the action tokens that satisfy a "view" check.
// Several older payload generations spelled "may see records" differently;
// the alias set unifies them. Configuration, not a hard constant.
var DefaultViewAliases = []string{"own", "view_other", "all", "junior", "show"}

// ViewAction is the legacy read-check action the alias set applies to.
const ViewAction = "view"

// Ruleset carries the compatibility configuration the decision functions
// evaluate against: the major-module list and the view alias set.
//
// Ruleset instances are intended to be configured during initialization
// and then treated as immutable.
type Ruleset struct {
	majorModules []string
	viewAliases  map[string]struct{}
}

// NewRuleset builds a [Ruleset]. A nil majorModules or viewAliases slice
// selects the package default; an explicitly empty slice disables the
// corresponding compatibility rule.
func NewRuleset(majorModules, viewAliases []string) *Ruleset {
	if majorModules == nil {
		majorModules = DefaultMajorModules
	}
	if viewAliases == nil {
		viewAliases = DefaultViewAliases
	}

	r := &Ruleset{
		majorModules: make([]string, 0, len(majorModules)),
		viewAliases:  make(map[string]struct{}, len(viewAliases)),
	}
	for _, module := range majorModules {
		module = strings.ToLower(strings.TrimSpace(module))
		if module != "" {
			r.majorModules = append(r.majorModules, module)
		}
	}
	for _, alias := range viewAliases {
		if alias != "" {
			r.viewAliases[alias] = struct{}{}
		}
	}
	return r
}

// MajorModules returns the lower-cased module list in effect.
func (r *Ruleset) MajorModules() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.majorModules))
	copy(out, r.majorModules)
	return out
}

/*
====================================
SUPER ADMIN DETECTION
====================================
*/

// IsSuperAdmin reports whether the subject holds unrestricted access.
// True when the payload carried a global marker, when every major module
// is covered by a wildcard grant (the list must be non-empty and fully
// covered — an empty set never qualifies), or when an array-shape raw
// payload contains a {"*", wildcard} record. Never fails: malformed input
// is simply not super-admin.
func (r *Ruleset) IsSuperAdmin(raw any, set *Set) bool {
	if set.Global() {
		return true
	}

	if r != nil && len(r.majorModules) > 0 && set.Len() > 0 {
		covered := true
		for _, module := range r.majorModules {
			acts, ok := set.Actions(module)
			if !ok || !acts.IsWildcard() {
				covered = false
				break
			}
		}
		if covered {
			return true
		}
	}

	// Array-shape payloads may carry the global record even when the
	// canonical set was produced elsewhere.
	if items, ok := asList(raw); ok {
		for _, item := range items {
			resource, spec, ok := recordFields(item)
			if ok && isGlobalResourceName(resource) && isGlobalMarkerSpec(spec) {
				return true
			}
		}
	}

	return false
}

/*
====================================
PERMISSION CONTEXT
====================================
*/

// Context binds a canonical [Set] to its once-computed super-admin flag.
// Normalization and super-admin detection run once per payload change;
// the per-call decision functions are pure lookups over the result.
type Context struct {
	set        *Set
	superAdmin bool
}

// NewContext normalizes raw and detects super-admin in one pass. The
// returned Context is immutable and safe for concurrent evaluation.
func (r *Ruleset) NewContext(raw any) *Context {
	set := Normalize(raw)
	return &Context{set: set, superAdmin: r.IsSuperAdmin(raw, set)}
}

// ContextFor wraps an already-canonical set, re-running only the
// super-admin detection.
func (r *Ruleset) ContextFor(set *Set) *Context {
	return &Context{set: set, superAdmin: r.IsSuperAdmin(nil, set)}
}

// Set returns the canonical set the context evaluates against.
func (c *Context) Set() *Set {
	if c == nil {
		return nil
	}
	return c.set
}

// SuperAdmin reports the flag computed at context construction.
func (c *Context) SuperAdmin() bool {
	return c != nil && c.superAdmin
}

/*
====================================
RESOURCE-ACTION DECISION
====================================
*/

// Match identifies the rule that produced a grant decision. It is
// reported to the optional decision-trace hook and is never required for
// correctness.
type Match uint8

const (
	// MatchNone means the request was denied.
	MatchNone Match = iota
	// MatchSuperAdmin means the context's super-admin flag granted.
	MatchSuperAdmin
	// MatchWildcard means the resource entry carries the wildcard token.
	MatchWildcard
	// MatchExact means the action token is granted literally.
	MatchExact
	// MatchViewAlias means a "view" check was satisfied by an alias token.
	MatchViewAlias
)

// String returns a stable name for traces.
func (m Match) String() string {
	switch m {
	case MatchSuperAdmin:
		return "super_admin"
	case MatchWildcard:
		return "wildcard"
	case MatchExact:
		return "exact"
	case MatchViewAlias:
		return "view_alias"
	default:
		return "none"
	}
}

// Has reports whether the context grants action on resource.
func (r *Ruleset) Has(c *Context, resource, action string) bool {
	granted, _ := r.HasMatch(c, resource, action)
	return granted
}

// HasMatch is [Ruleset.Has] plus the matched rule. Deterministic, total,
// side-effect-free; unknown resources and actions always deny, never fail.
func (r *Ruleset) HasMatch(c *Context, resource, action string) (bool, Match) {
	if c == nil {
		return false, MatchNone
	}
	if c.superAdmin {
		return true, MatchSuperAdmin
	}

	acts, ok := c.set.Actions(resource)
	if !ok {
		return false, MatchNone
	}
	if acts.IsWildcard() {
		return true, MatchWildcard
	}
	if acts.Contains(action) {
		return true, MatchExact
	}

	if r != nil && action == ViewAction {
		for alias := range r.viewAliases {
			if acts.Contains(alias) {
				return true, MatchViewAlias
			}
		}
	}

	return false, MatchNone
}
