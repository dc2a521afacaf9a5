package localstate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nbarbarousis/fieldsync/synctypes"
)

// exportDoc is the shape of the export tracking sidecar.
type exportDoc struct {
	Exports map[string]synctypes.ExportInfo `json:"exports"`
}

// readExports loads the sidecar. An absent sidecar means no exports,
// not an error; a corrupt one is a real error since it records produced
// artifacts.
func (s *Scanner) readExports() (map[string]synctypes.ExportInfo, error) {
	path := s.builder.ExportTrackingPath()
	exists, err := s.fsys.Exists(path)
	if err != nil || !exists {
		return map[string]synctypes.ExportInfo{}, nil
	}

	data, err := s.fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export tracking %s: %w", path, err)
	}

	var doc exportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse export tracking %s: %w", path, err)
	}
	if doc.Exports == nil {
		return map[string]synctypes.ExportInfo{}, nil
	}
	return doc.Exports, nil
}

// ExportIDs returns the sorted identifiers of all recorded exports.
func (s *Scanner) ExportIDs() ([]string, error) {
	exports, err := s.readExports()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(exports))
	for id := range exports {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ExportInfo returns one export's metadata and whether it exists.
func (s *Scanner) ExportInfo(id string) (synctypes.ExportInfo, bool, error) {
	exports, err := s.readExports()
	if err != nil {
		return synctypes.ExportInfo{}, false, err
	}
	info, ok := exports[id]
	if ok {
		info.ID = id
	}
	return info, ok, nil
}
