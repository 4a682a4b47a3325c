package permission

// Level is the tri-level visibility classification used by modules with
// hierarchical record visibility (attendance, leaves, ...). Levels are
// totally ordered: Own < Junior < All.
type Level uint8

const (
	// LevelOwn restricts the subject to records they own. It is the
	// fail-closed default for any module without an explicit level token:
	// read-your-own-records is the minimum baseline the surrounding
	// system assumes for an authenticated subject.
	LevelOwn Level = iota
	// LevelJunior extends visibility to records of the subject's
	// subordinates.
	LevelJunior
	// LevelAll grants visibility over every record in the module.
	LevelAll
)

// String returns a stable name for traces and logs.
func (l Level) String() string {
	switch l {
	case LevelAll:
		return "all"
	case LevelJunior:
		return "junior"
	default:
		return "own"
	}
}

const (
	tokenAll    = "all"
	tokenJunior = "junior"
	tokenOwn    = "own"
)

// Level resolves the module's visibility level. Super-admin contexts
// resolve to [LevelAll]; the highest token present wins; an absent module
// or token-less entry defaults to [LevelOwn].
func (r *Ruleset) Level(c *Context, module string) Level {
	if c == nil {
		return LevelOwn
	}
	if c.superAdmin {
		return LevelAll
	}

	acts, ok := c.set.Actions(module)
	if !ok {
		return LevelOwn
	}

	switch {
	case acts.IsWildcard() || acts.Contains(tokenAll):
		return LevelAll
	case acts.Contains(tokenJunior):
		return LevelJunior
	default:
		return LevelOwn
	}
}

// CanViewAll reports whether the level exposes every record.
func (l Level) CanViewAll() bool {
	return l == LevelAll
}

// CanViewJunior reports whether the level exposes subordinate records.
// Inclusive of [LevelAll].
func (l Level) CanViewJunior() bool {
	return l >= LevelJunior
}

// CanViewOwn reports whether the level is exactly [LevelOwn]. Exclusive:
// it selects the narrowest UI mode, not a capability superset.
func (l Level) CanViewOwn() bool {
	return l == LevelOwn
}

// CanCreate reports whether the level permits creating new records.
// Own-level subjects cannot create; creation requires at least
// managerial scope.
func (l Level) CanCreate() bool {
	return l >= LevelJunior
}
