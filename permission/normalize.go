package permission

import "encoding/json"

// Normalize converts a raw permission payload in any of its historical
// shapes into a canonical [Set]. It never fails: structurally
// unrecognized input produces the empty set, so a malformed payload can
// only ever narrow access.
//
// Raw may be decoded JSON (map[string]any / []any trees) or typed Go
// values ([]Record, map[string]bool, []string action lists).
//
//	Docs: docs/canonical.md
func Normalize(raw any) *Set {
	set := newSet()

	switch DetectFormat(raw) {
	case FormatArrayOfRecords:
		items, _ := asList(raw)
		normalizeRecords(items, set)
	case FormatFlatObject:
		obj, _ := asObject(raw)
		normalizeFlatObject(obj, set)
	case FormatGlobalMarker:
		set.global = true
	}

	return set
}

// NormalizeJSON decodes data and normalizes the result. Invalid JSON
// yields the empty set.
func NormalizeJSON(data []byte) *Set {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return newSet()
	}
	return Normalize(raw)
}

/*
====================================
ARRAY OF RECORDS
====================================
*/

func normalizeRecords(items []any, set *Set) {
	for _, item := range items {
		resource, spec, ok := recordFields(item)
		if !ok || resource == "" {
			continue
		}

		if isGlobalResourceName(resource) && isGlobalMarkerSpec(spec) {
			set.global = true
			continue
		}

		applyActionSpec(set, resource, spec)
	}
}

// recordFields extracts (resource, actions) from one array element.
// Historical payloads mix lower-cased and capitalized field names.
func recordFields(item any) (string, any, bool) {
	if rec, ok := item.(Record); ok {
		return rec.Resource, rec.Actions, true
	}

	obj, ok := asObject(item)
	if !ok {
		return "", nil, false
	}

	value, ok := obj["resource"]
	if !ok {
		value, ok = obj["Resource"]
	}
	if !ok {
		return "", nil, false
	}
	resource, ok := asString(value)
	if !ok {
		return "", nil, false
	}

	spec, ok := obj["actions"]
	if !ok {
		spec = obj["Actions"]
	}
	return resource, spec, true
}

/*
====================================
FLAT OBJECT
====================================
*/

func normalizeFlatObject(obj map[string]any, set *Set) {
	pair := pagesActionsPair(obj)
	if pair {
		set.global = true
	}

	for key, value := range obj {
		if pair && (key == "pages" || key == "actions") {
			continue
		}
		if isGlobalResourceName(key) && isGlobalMarkerSpec(value) {
			set.global = true
			continue
		}
		applyActionSpec(set, key, value)
	}
}

/*
====================================
ACTION SPEC EXPANSION
====================================
*/

// applyActionSpec expands one polymorphic action spec into grants for the
// resource. Unrecognized spec shapes grant nothing.
func applyActionSpec(set *Set, resource string, spec any) {
	if resource == "" {
		return
	}

	if s, ok := asString(spec); ok {
		if isWildcardToken(s) {
			set.grantWildcard(resource)
		} else if s != "" {
			set.grant(resource, s)
		}
		return
	}

	if items, ok := asList(spec); ok {
		if listContainsWildcard(items) {
			set.grantWildcard(resource)
			return
		}
		for _, item := range items {
			if action, ok := asString(item); ok && action != "" {
				set.grant(resource, action)
			}
		}
		return
	}

	if actionMap, ok := asObject(spec); ok {
		for action, value := range actionMap {
			granted, ok := value.(bool)
			if !ok || !granted {
				continue
			}
			if isWildcardToken(action) {
				set.grantWildcard(resource)
				return
			}
			if action != "" {
				set.grant(resource, action)
			}
		}
		return
	}
}

func specIsWildcard(spec any) bool {
	if s, ok := asString(spec); ok {
		return isWildcardToken(s)
	}
	if items, ok := asList(spec); ok {
		return listContainsWildcard(items)
	}
	if actionMap, ok := asObject(spec); ok {
		for action, value := range actionMap {
			if granted, ok := value.(bool); ok && granted && isWildcardToken(action) {
				return true
			}
		}
	}
	return false
}

func listContainsWildcard(items []any) bool {
	for _, item := range items {
		if s, ok := asString(item); ok && isWildcardToken(s) {
			return true
		}
	}
	return false
}

/*
====================================
COERCIONS
====================================
*/

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	case []Record:
		out := make([]any, len(list))
		for i, rec := range list {
			out[i] = rec
		}
		return out, true
	}
	return nil, false
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case map[string]bool:
		out := make(map[string]any, len(obj))
		for key, value := range obj {
			out[key] = value
		}
		return out, true
	case map[string]string:
		out := make(map[string]any, len(obj))
		for key, value := range obj {
			out[key] = value
		}
		return out, true
	}
	return nil, false
}
