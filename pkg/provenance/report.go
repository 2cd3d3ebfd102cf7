package provenance

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/propverify/pkg/constants"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/normalize"
	"github.com/agentstation/propverify/pkg/types"
)

// Report generates a human-readable provenance report.
type Report struct {
	Resources map[string]ResourceProvenance `json:"resources" yaml:"resources"` // key is "resourceType:resourceID"
}

// ResourceProvenance contains provenance for a single resource.
type ResourceProvenance struct {
	Type   types.ResourceType `json:"type" yaml:"type"`
	ID     string             `json:"id" yaml:"id"`
	Fields map[string]Field   `json:"fields" yaml:"fields"`
}

// Field contains provenance history for a single field.
type Field struct {
	Current   Provenance     `json:"current" yaml:"current"`                         // Current value and its source
	History   []Provenance   `json:"history,omitempty" yaml:"history,omitempty"`     // Historical values, newest first
	Conflicts []ConflictInfo `json:"conflicts,omitempty" yaml:"conflicts,omitempty"` // Disagreements that were resolved
}

// ConflictInfo describes a conflict that was resolved.
type ConflictInfo struct {
	Sources        []types.SourceID `json:"sources" yaml:"sources"`                 // Sources that had conflicting values
	Values         []any            `json:"values" yaml:"values"`                   // The conflicting values
	Resolution     string           `json:"resolution" yaml:"resolution"`           // How the conflict was resolved
	SelectedSource types.SourceID   `json:"selected_source" yaml:"selected_source"` // Which source was selected
}

// GenerateReport creates a provenance report from a Map.
func GenerateReport(provenance Map) *Report {
	report := &Report{
		Resources: make(map[string]ResourceProvenance),
	}

	// Group by resource
	for key, infos := range provenance {
		resourceType, resourceID, field, ok := SplitKey(key)
		if !ok {
			continue
		}

		resourceKey := fmt.Sprintf("%s:%s", resourceType, resourceID)

		// Get or create resource provenance
		resource, exists := report.Resources[resourceKey]
		if !exists {
			resource = ResourceProvenance{
				Type:   resourceType,
				ID:     resourceID,
				Fields: make(map[string]Field),
			}
		}

		// Sort a copy by timestamp (newest first)
		history := append([]Provenance(nil), infos...)
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].Timestamp.After(history[j].Timestamp)
		})

		fieldProv := Field{History: history}
		if len(history) > 0 {
			fieldProv.Current = history[0]
			fieldProv.Conflicts = detectConflicts(history[0])
		}

		resource.Fields[field] = fieldProv
		report.Resources[resourceKey] = resource
	}

	return report
}

// detectConflicts reports when the sources offering a real value for a field disagree.
func detectConflicts(current Provenance) []ConflictInfo {
	var offered []Candidate
	for _, c := range current.Candidates {
		if !normalize.IsNoData(c.Value) {
			offered = append(offered, c)
		}
	}
	if len(offered) < 2 {
		return nil
	}

	disagree := false
	for _, c := range offered[1:] {
		if !reflect.DeepEqual(c.Value, offered[0].Value) {
			disagree = true
			break
		}
	}
	if !disagree {
		return nil
	}

	conflict := ConflictInfo{
		Resolution:     current.Reason,
		SelectedSource: current.Source,
	}
	for _, c := range offered {
		conflict.Sources = append(conflict.Sources, c.Source)
		conflict.Values = append(conflict.Values, c.Value)
	}
	return []ConflictInfo{conflict}
}

// String generates a string representation of the provenance report.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n\n")

	// Sort resources for consistent output
	resourceKeys := make([]string, 0, len(r.Resources))
	for key := range r.Resources {
		resourceKeys = append(resourceKeys, key)
	}
	sort.Strings(resourceKeys)

	for _, key := range resourceKeys {
		resource := r.Resources[key]
		sb.WriteString(fmt.Sprintf("%s: %s\n", resource.Type, resource.ID))
		sb.WriteString(strings.Repeat("-", 40))
		sb.WriteString("\n")

		// Sort fields for consistent output
		fieldKeys := make([]string, 0, len(resource.Fields))
		for field := range resource.Fields {
			fieldKeys = append(fieldKeys, field)
		}
		sort.Strings(fieldKeys)

		for _, field := range fieldKeys {
			fieldProv := resource.Fields[field]
			sb.WriteString(fmt.Sprintf("  %s:\n", field))
			source := string(fieldProv.Current.Source)
			if source == "" {
				source = "none"
			}
			sb.WriteString(fmt.Sprintf("    Current: %v (from %s, %s)\n",
				fieldProv.Current.Value, source, fieldProv.Current.Reason))

			if len(fieldProv.Conflicts) > 0 {
				sb.WriteString("    Conflicts:\n")
				for _, conflict := range fieldProv.Conflicts {
					sb.WriteString(fmt.Sprintf("      - Sources: %v\n", conflict.Sources))
					sb.WriteString(fmt.Sprintf("        Values: %v\n", conflict.Values))
					sb.WriteString(fmt.Sprintf("        Selected: %s\n", conflict.SelectedSource))
				}
			}

			if len(fieldProv.History) > 1 {
				sb.WriteString("    History:\n")
				for i, info := range fieldProv.History {
					if i > 3 { // Limit history display
						sb.WriteString(fmt.Sprintf("      ... and %d more\n", len(fieldProv.History)-i))
						break
					}
					sb.WriteString(fmt.Sprintf("      - %v from %s at %s\n",
						info.Value, info.Source, info.Timestamp.Format("2006-01-02 15:04:05")))
				}
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// ProvenanceFile represents a provenance file stored on disk.
//
//nolint:revive // Name is intentionally descriptive for external clarity
type ProvenanceFile struct {
	Provenance Map `yaml:"provenance"`
}

// Load reads provenance data from a YAML file.
// Returns nil, nil if the file doesn't exist (not an error).
func Load(path string) (*ProvenanceFile, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	// Path is from service configuration, not user input
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var pf ProvenanceFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	return &pf, nil
}

// Save writes m to path as YAML, creating parent directories as needed.
func Save(path string, m Map) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	data, err := yaml.MarshalWithOptions(ProvenanceFile{Provenance: m}, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}

	// Write through a temporary file and rename into place
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
