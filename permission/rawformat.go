package permission

import "strings"

// RawFormat classifies the historical shape of a raw permission payload.
// Detection is a closed dispatch: each format has exactly one conversion
// path inside [Normalize], replacing the ad hoc runtime probing the legacy
// payload consumers did.
type RawFormat uint8

const (
	// FormatEmpty covers nil, non-object/non-array values, and empty
	// objects or arrays. Normalizes to the empty set.
	FormatEmpty RawFormat = iota
	// FormatArrayOfRecords is a sequence of {resource, actions} records.
	FormatArrayOfRecords
	// FormatFlatObject maps resource names to an action spec: a wildcard
	// string, an action list, or a nested action→bool map.
	FormatFlatObject
	// FormatGlobalMarker is an object consisting solely of legacy global
	// markers ("*", "Global", "global", "any", or the pages/actions pair).
	FormatGlobalMarker
)

// String returns a stable name for logging and traces.
func (f RawFormat) String() string {
	switch f {
	case FormatArrayOfRecords:
		return "array_of_records"
	case FormatFlatObject:
		return "flat_object"
	case FormatGlobalMarker:
		return "global_marker"
	default:
		return "empty"
	}
}

// DetectFormat classifies raw without converting it. Unrecognized input
// is reported as [FormatEmpty]; detection never fails.
func DetectFormat(raw any) RawFormat {
	if raw == nil {
		return FormatEmpty
	}

	if items, ok := asList(raw); ok {
		if len(items) == 0 {
			return FormatEmpty
		}
		return FormatArrayOfRecords
	}

	obj, ok := asObject(raw)
	if !ok || len(obj) == 0 {
		return FormatEmpty
	}

	pair := pagesActionsPair(obj)
	markersOnly := true
	for key, value := range obj {
		if isGlobalResourceName(key) && isGlobalMarkerSpec(value) {
			continue
		}
		if pair && (key == "pages" || key == "actions") {
			continue
		}
		markersOnly = false
		break
	}
	if markersOnly && hasGlobalMarker(obj) {
		return FormatGlobalMarker
	}
	return FormatFlatObject
}

// Resource names that address every resource. The same rule applies in
// both the array shape (record resource) and the flat shape (object key);
// historical payloads used them interchangeably.
func isGlobalResourceName(name string) bool {
	switch strings.ToLower(name) {
	case "*", "any", "global":
		return true
	}
	return false
}

// A spec marks global access when it is wildcard in any of its shapes,
// or the bare true seen in the oldest payloads ({"*": true}).
func isGlobalMarkerSpec(spec any) bool {
	if b, ok := spec.(bool); ok {
		return b
	}
	return specIsWildcard(spec)
}

func pagesActionsPair(obj map[string]any) bool {
	pages, ok := asString(obj["pages"])
	if !ok || pages != "*" {
		return false
	}
	actions, ok := asString(obj["actions"])
	return ok && actions == "*"
}

func hasGlobalMarker(obj map[string]any) bool {
	for key, value := range obj {
		if isGlobalResourceName(key) && isGlobalMarkerSpec(value) {
			return true
		}
	}
	return pagesActionsPair(obj)
}
