// Package types provides shared type definitions used across the propverify packages.
//
// It holds identifiers such as SourceID and ResourceType that are referenced by
// the mapper, adapter, unifier and provenance packages, keeping those packages
// free of import cycles.
//
//nolint:revive // Package name 'types' is appropriate for common type definitions
package types
