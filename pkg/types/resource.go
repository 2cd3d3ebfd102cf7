package types

// ResourceType identifies the kind of resource being tracked by provenance.
type ResourceType string

const (
	// ResourceTypeProperty is the unified property record.
	ResourceTypeProperty ResourceType = "property"
)

// String returns the string representation of a resource type.
func (rt ResourceType) String() string {
	return string(rt)
}
