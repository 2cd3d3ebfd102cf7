package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/agentstation/propverify/pkg/property"
	"github.com/agentstation/propverify/pkg/provenance"
	"github.com/agentstation/propverify/pkg/regions"
)

// PropertyToTableData flattens a unified property into one row per leaf,
// keyed by its dotted field path.
func PropertyToTableData(p *property.Property) (Data, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return Data{}, err
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return Data{}, err
	}

	var rows [][]string
	flatten("", tree, &rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	return Data{
		Headers:         []string{"Field", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	}, nil
}

func flatten(prefix string, v any, rows *[][]string) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 && prefix != "" {
			*rows = append(*rows, []string{prefix, "-"})
			return
		}
		for k, child := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, rows)
		}
	case nil:
		*rows = append(*rows, []string{prefix, "-"})
	default:
		*rows = append(*rows, []string{prefix, fmt.Sprintf("%v", t)})
	}
}

// RegionsToTableData lists the region table in code order.
func RegionsToTableData(table regions.Table) Data {
	codes := table.Codes()
	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, []string{code, table.Name(code)})
	}
	return Data{
		Headers:         []string{"Code", "Name"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	}
}

// ProvenanceToTableData lists the current source of every field of one
// property and how many registries disagreed on it.
func ProvenanceToTableData(rp provenance.ResourceProvenance) Data {
	fields := make([]string, 0, len(rp.Fields))
	for field := range rp.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	rows := make([][]string, 0, len(fields))
	for _, field := range fields {
		f := rp.Fields[field]
		source := string(f.Current.Source)
		if source == "" {
			source = "-"
		}
		conflicts := "-"
		if len(f.Conflicts) > 0 {
			conflicts = strconv.Itoa(len(f.Conflicts[0].Sources))
		}
		rows = append(rows, []string{
			field,
			fmt.Sprintf("%v", f.Current.Value),
			source,
			f.Current.Reason,
			conflicts,
		})
	}

	return Data{
		Headers:         []string{"Field", "Value", "Source", "Reason", "Conflicting Sources"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}
}
