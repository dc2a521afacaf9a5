// Package localstate walks the local filesystem and produces
// per-coordinate status for the same hierarchy the cloud cache mirrors.
// It is always live: local state is cheap to enumerate and must reflect
// the true current disk contents, so nothing here is cached.
package localstate

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/nbarbarousis/fieldsync/paths"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

// Scanner answers "what exists on disk" for single coordinates and in
// bulk.
type Scanner struct {
	fsys    fs.Filesystem
	builder *paths.Builder
	logger  *log.Logger
}

// NewScanner creates a Scanner over the given filesystem and path
// builder. A nil logger falls back to the default logger.
func NewScanner(fsys fs.Filesystem, builder *paths.Builder, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{
		fsys:    fsys,
		builder: builder,
		logger:  logger.With("component", "localstate"),
	}
}

// RawStatus lists the bag files in a coordinate's raw directory. A
// missing directory yields a zero-valued status, never an error.
func (s *Scanner) RawStatus(coord synctypes.Coordinate) synctypes.LocalRawStatus {
	dir := s.builder.LocalRawDir(coord)
	entries, err := s.fsys.ReadDir(dir)
	if err != nil {
		return synctypes.LocalRawStatus{}
	}

	var names []string
	sizes := make(map[string]int64)
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), paths.BagSuffix) {
			continue
		}
		names = append(names, entry.Name())
		sizes[entry.Name()] = entry.Size()
		total += entry.Size()
	}
	if len(names) == 0 {
		return synctypes.LocalRawStatus{}
	}
	sort.Strings(names)

	return synctypes.LocalRawStatus{
		Downloaded: true,
		BagCount:   len(names),
		BagNames:   names,
		BagSizes:   sizes,
		TotalSize:  total,
	}
}

// MLStatus walks a coordinate's ML directory, which holds one
// subdirectory per bag, each with frames/ and labels/ below it. A
// missing directory yields a zero-valued status, never an error.
func (s *Scanner) MLStatus(coord synctypes.Coordinate) synctypes.LocalMLStatus {
	dir := s.builder.LocalMLDir(coord)
	bagEntries, err := s.fsys.ReadDir(dir)
	if err != nil {
		return synctypes.LocalMLStatus{}
	}

	status := synctypes.LocalMLStatus{
		BagSamples: make(map[string]synctypes.BagSampleCounts),
		BagFiles:   make(map[string]synctypes.BagFiles),
	}
	for _, bagEntry := range bagEntries {
		if !bagEntry.IsDir() {
			continue
		}
		bag := bagEntry.Name()
		files := synctypes.BagFiles{}
		var counts synctypes.BagSampleCounts

		for _, ft := range synctypes.AllFileTypes {
			listing := s.listFiles(dir + "/" + bag + "/" + string(ft))
			files[ft] = listing
			switch ft {
			case synctypes.FileTypeFrames:
				counts.FrameCount = len(listing)
			case synctypes.FileTypeLabels:
				counts.LabelCount = len(listing)
			}
		}

		if counts.FrameCount == 0 && counts.LabelCount == 0 {
			continue
		}
		status.BagSamples[bag] = counts
		status.BagFiles[bag] = files
		status.TotalSamples += counts.LabelCount
	}

	if len(status.BagSamples) == 0 {
		return synctypes.LocalMLStatus{}
	}
	status.Downloaded = true
	return status
}

// AllRawStatuses walks the six-level raw hierarchy once and computes
// every coordinate's status. Unreadable coordinates are logged and
// skipped, never fatal to the walk.
func (s *Scanner) AllRawStatuses() map[synctypes.Coordinate]synctypes.LocalRawStatus {
	out := make(map[synctypes.Coordinate]synctypes.LocalRawStatus)
	for _, coord := range s.discoverCoordinates(s.builder.RawRoot()) {
		status := s.RawStatus(coord)
		if status.Downloaded {
			out[coord] = status
		}
	}
	return out
}

// AllMLStatuses is the ML counterpart of AllRawStatuses, rooted under
// the raw/ subdirectory of the ML root.
func (s *Scanner) AllMLStatuses() map[synctypes.Coordinate]synctypes.LocalMLStatus {
	root := s.builder.MLRoot() + "/" + paths.MLRawPrefix
	out := make(map[synctypes.Coordinate]synctypes.LocalMLStatus)
	for _, coord := range s.discoverCoordinates(root) {
		status := s.MLStatus(coord)
		if status.Downloaded {
			out[coord] = status
		}
	}
	return out
}

// listFiles returns name→size for the regular files in a directory, or
// an empty map when the directory is missing.
func (s *Scanner) listFiles(dir string) map[string]int64 {
	out := make(map[string]int64)
	entries, err := s.fsys.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		out[entry.Name()] = entry.Size()
	}
	return out
}

// discoverCoordinates reconstructs coordinates from directory names six
// levels below root. A failed listing at any level is logged and that
// subtree skipped.
func (s *Scanner) discoverCoordinates(root string) []synctypes.Coordinate {
	level := []string{root}
	for depth := 0; depth < 6; depth++ {
		var next []string
		for _, dir := range level {
			entries, err := s.fsys.ReadDir(dir)
			if err != nil {
				if dir != root {
					s.logger.Warn("skipping unreadable directory", "dir", dir, "error", err)
				}
				continue
			}
			for _, entry := range entries {
				if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
					continue
				}
				next = append(next, dir+"/"+entry.Name())
			}
		}
		level = next
	}

	coords := make([]synctypes.Coordinate, 0, len(level))
	for _, dir := range level {
		rel := strings.TrimPrefix(strings.TrimPrefix(dir, root), "/")
		coord, err := synctypes.ParseCoordinate(rel)
		if err != nil {
			s.logger.Warn("skipping malformed coordinate directory", "dir", dir, "error", err)
			continue
		}
		coords = append(coords, coord)
	}
	return coords
}
