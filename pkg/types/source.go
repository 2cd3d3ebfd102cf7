//nolint:revive // Package types provides common type definitions
package types

import (
	"slices"
	"strings"
)

// SourceID identifies one of the upstream registries a property record can come from.
type SourceID string

// String returns the string representation of a source ID.
func (id SourceID) String() string {
	return string(id)
}

// Registries consulted during verification.
const (
	// DORIS is the registration department dataset (deeds, owners, SRO).
	DORIS SourceID = "doris"

	// DLR is the land records dataset (khasra, khata, mutation).
	DLR SourceID = "dlr"

	// CERSAI is the central registry of securitisation and security interests (mortgages, charges).
	CERSAI SourceID = "cersai"

	// MCA21 is the company registry, consulted when the owner is a company.
	MCA21 SourceID = "mca21"
)

// SourceIDs returns every source in precedence order: doris, dlr, cersai, mca21.
// The order is used when picking the property id of a unified record.
func SourceIDs() []SourceID {
	return []SourceID{
		DORIS,
		DLR,
		CERSAI,
		MCA21,
	}
}

// IsValid returns true if the SourceID is one of the defined constants.
func (id SourceID) IsValid() bool {
	return slices.Contains(SourceIDs(), id)
}

// ParseSourceID converts a user supplied name ("DORIS", "mca21") into a SourceID.
// The second return value is false when the name is not a known source.
func ParseSourceID(name string) (SourceID, bool) {
	id := SourceID(strings.ToLower(strings.TrimSpace(name)))
	return id, id.IsValid()
}
