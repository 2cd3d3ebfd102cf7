// Package file serves registry records from YAML fixture files, one file per
// registry named <dir>/<source>.yaml:
//
//	records:
//	  - propertyId: PROP-1A2B3C4D
//	    registrationNo: MH/PUN/2021/00042
//	    regDate: 13-05-2021
package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/propverify/pkg/constants"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/record"
	"github.com/agentstation/propverify/pkg/types"
)

// Document is the on-disk layout of a registry file.
type Document struct {
	Records []record.Record `yaml:"records"`
}

// Source reads one registry file. The file is loaded on first lookup and
// can be re-read with Load.
type Source struct {
	id   types.SourceID
	path string

	mu      sync.RWMutex
	loaded  bool
	records map[string]record.Record
}

// New creates a source for id reading <dir>/<id>.yaml.
func New(dir string, id types.SourceID) *Source {
	return &Source{
		id:   id,
		path: Path(dir, id),
	}
}

// NewAll creates a source for every known registry under dir.
func NewAll(dir string) []*Source {
	ids := types.SourceIDs()
	out := make([]*Source, 0, len(ids))
	for _, id := range ids {
		out = append(out, New(dir, id))
	}
	return out
}

// Path returns the file that holds the records of id.
func Path(dir string, id types.SourceID) string {
	return filepath.Join(dir, id.String()+".yaml")
}

// ID returns the registry this source serves.
func (s *Source) ID() types.SourceID {
	return s.id
}

// Load (re)reads the registry file. A missing file is an empty registry.
func (s *Source) Load() error {
	records, err := readFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.loaded = true
	return nil
}

// Lookup returns a copy of the record for propertyID.
func (s *Source) Lookup(ctx context.Context, propertyID string) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		if err := s.Load(); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[propertyID]
	if !ok {
		return nil, errors.NewNotFoundError(string(s.id)+" record", propertyID)
	}
	return rec.Clone(), nil
}

// Close is a no-op.
func (s *Source) Close() error {
	return nil
}

func readFile(path string) (map[string]record.Record, error) {
	// Path is from service configuration, not user input
	data, err := os.ReadFile(path) //nolint:gosec
	if os.IsNotExist(err) {
		return map[string]record.Record{}, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	records := make(map[string]record.Record, len(doc.Records))
	for _, rec := range doc.Records {
		if id := rec.PropertyID(); id != "" {
			records[id] = rec
		}
	}
	return records, nil
}

// Write stores records as the registry file of id under dir.
func Write(dir string, id types.SourceID, records ...record.Record) error {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	data, err := yaml.MarshalWithOptions(Document{Records: records}, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return errors.WrapParse("yaml", Path(dir, id), err)
	}

	path := Path(dir, id)
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
