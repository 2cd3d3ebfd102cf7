// Package normalize implements the value normalization rules applied to every
// field of a source record: dates are rewritten to YYYY-MM-DD and missing
// values are replaced with an explicit "no data" sentinel.
//
// Both functions are total. Malformed input never produces an error; it
// degrades to the sentinel.
package normalize

// NoData is the sentinel substituted for null, empty and unparseable values.
// It is distinguishable from legitimate false and zero values.
const NoData = "N/A"

// IsNoData reports whether v is the sentinel.
func IsNoData(v any) bool {
	s, ok := v.(string)
	return ok && s == NoData
}

// StandardizeValue maps nil and the empty string to NoData and returns every
// other value unchanged, including false and 0.
func StandardizeValue(v any) any {
	return StandardizeValueOr(v, NoData)
}

// StandardizeValueOr is StandardizeValue with a caller supplied default.
func StandardizeValueOr(v, def any) any {
	switch x := v.(type) {
	case nil:
		return def
	case string:
		if x == "" {
			return def
		}
	}
	return v
}
