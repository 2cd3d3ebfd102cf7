// Package regions maps two-letter region codes to display names.
package regions

import (
	"maps"
	"slices"
	"strings"
)

// Table maps a region code to its display name.
type Table map[string]string

// Name returns the display name for code. Lookup ignores case and
// surrounding space; an unknown code is returned unchanged.
func (t Table) Name(code string) string {
	if name, ok := t[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}

// Codes returns the table's codes in sorted order.
func (t Table) Codes() []string {
	return slices.Sorted(maps.Keys(t))
}

// Default returns a fresh copy of the built-in region table.
// Extending it is a code change, not configuration.
func Default() Table {
	return maps.Clone(india)
}

var india = Table{
	"AP": "Andhra Pradesh",
	"AR": "Arunachal Pradesh",
	"AS": "Assam",
	"BR": "Bihar",
	"CG": "Chhattisgarh",
	"DL": "Delhi",
	"GA": "Goa",
	"GJ": "Gujarat",
	"HP": "Himachal Pradesh",
	"HR": "Haryana",
	"JH": "Jharkhand",
	"KA": "Karnataka",
	"KL": "Kerala",
	"MH": "Maharashtra",
	"ML": "Meghalaya",
	"MN": "Manipur",
	"MP": "Madhya Pradesh",
	"MZ": "Mizoram",
	"NL": "Nagaland",
	"OD": "Odisha",
	"PB": "Punjab",
	"RJ": "Rajasthan",
	"SK": "Sikkim",
	"TN": "Tamil Nadu",
	"TR": "Tripura",
	"TS": "Telangana",
	"UK": "Uttarakhand",
	"UP": "Uttar Pradesh",
	"WB": "West Bengal",
}
