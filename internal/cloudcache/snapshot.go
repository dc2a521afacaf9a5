package cloudcache

import (
	"sort"
	"strings"

	"github.com/nbarbarousis/fieldsync/synctypes"
)

// DataKind selects which side of the snapshot a hierarchy query walks.
type DataKind string

// Snapshot sides
const (
	KindRaw DataKind = "raw"
	KindML  DataKind = "ml"
)

// RawEntry is the snapshot leaf for one coordinate's raw recordings.
type RawEntry struct {
	// Bags maps cloud-convention bag name to size in bytes
	Bags map[string]int64 `json:"bags"`
}

// BagListing holds the per-file sizes of one bag's ML samples.
type BagListing struct {
	Frames map[string]int64 `json:"frames"`
	Labels map[string]int64 `json:"labels"`
}

// MLEntry is the snapshot leaf for one coordinate's ML samples.
type MLEntry struct {
	// Bags maps cloud-convention bag name to its file listing
	Bags map[string]*BagListing `json:"bags"`
}

// Snapshot is a point-in-time mirror of both cloud buckets, keyed by
// the /-joined coordinate path. A flat keying keeps lookups and
// serialization trivial; hierarchy queries derive levels by splitting
// keys.
type Snapshot struct {
	Raw map[string]*RawEntry `json:"raw"`
	ML  map[string]*MLEntry  `json:"ml"`
}

// NewSnapshot returns an empty snapshot with both sides allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Raw: make(map[string]*RawEntry),
		ML:  make(map[string]*MLEntry),
	}
}

// Coordinates returns the number of distinct coordinates across both
// sides.
func (s *Snapshot) Coordinates() int {
	seen := make(map[string]struct{}, len(s.Raw)+len(s.ML))
	for k := range s.Raw {
		seen[k] = struct{}{}
	}
	for k := range s.ML {
		seen[k] = struct{}{}
	}
	return len(seen)
}

// keys returns the coordinate keys for one side.
func (s *Snapshot) keys(kind DataKind) map[string]struct{} {
	out := make(map[string]struct{})
	switch kind {
	case KindRaw:
		for k := range s.Raw {
			out[k] = struct{}{}
		}
	case KindML:
		for k := range s.ML {
			out[k] = struct{}{}
		}
	}
	return out
}

// HierarchyLevel returns the sorted child keys one level below
// parentPath. An empty parentPath lists the top level. Absent parents
// yield an empty slice.
func (s *Snapshot) HierarchyLevel(kind DataKind, parentPath string) []string {
	prefix := strings.Trim(parentPath, "/")
	depth := 0
	if prefix != "" {
		depth = len(strings.Split(prefix, "/"))
	}

	children := make(map[string]struct{})
	for key := range s.keys(kind) {
		parts := strings.Split(key, "/")
		if depth >= len(parts) {
			continue
		}
		if prefix != "" && !strings.HasPrefix(key+"/", prefix+"/") {
			continue
		}
		children[parts[depth]] = struct{}{}
	}

	out := make([]string, 0, len(children))
	for c := range children {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// PathExists reports whether any coordinate on the given side falls
// under the path.
func (s *Snapshot) PathExists(kind DataKind, path string) bool {
	prefix := strings.Trim(path, "/")
	if prefix == "" {
		return len(s.keys(kind)) > 0
	}
	for key := range s.keys(kind) {
		if key == prefix || strings.HasPrefix(key, prefix+"/") {
			return true
		}
	}
	return false
}

// RawStatus projects one coordinate's raw leaf into a status. Absence
// yields a zero-valued status, never an error.
func (s *Snapshot) RawStatus(coord synctypes.Coordinate) synctypes.CloudRawStatus {
	entry, ok := s.Raw[coord.String()]
	if !ok || len(entry.Bags) == 0 {
		return synctypes.CloudRawStatus{}
	}

	names := make([]string, 0, len(entry.Bags))
	sizes := make(map[string]int64, len(entry.Bags))
	var total int64
	for name, size := range entry.Bags {
		names = append(names, name)
		sizes[name] = size
		total += size
	}
	sort.Strings(names)

	return synctypes.CloudRawStatus{
		Exists:    true,
		BagCount:  len(names),
		BagNames:  names,
		BagSizes:  sizes,
		TotalSize: total,
	}
}

// MLStatus projects one coordinate's ML leaf into a status. Absence
// yields a zero-valued status, never an error.
func (s *Snapshot) MLStatus(coord synctypes.Coordinate) synctypes.CloudMLStatus {
	entry, ok := s.ML[coord.String()]
	if !ok || len(entry.Bags) == 0 {
		return synctypes.CloudMLStatus{}
	}

	status := synctypes.CloudMLStatus{
		Exists:     true,
		BagSamples: make(map[string]synctypes.BagSampleCounts, len(entry.Bags)),
		BagFiles:   make(map[string]synctypes.BagFiles, len(entry.Bags)),
	}
	for bag, listing := range entry.Bags {
		status.BagSamples[bag] = synctypes.BagSampleCounts{
			FrameCount: len(listing.Frames),
			LabelCount: len(listing.Labels),
		}
		files := synctypes.BagFiles{
			synctypes.FileTypeFrames: copySizes(listing.Frames),
			synctypes.FileTypeLabels: copySizes(listing.Labels),
		}
		status.BagFiles[bag] = files
		status.TotalSamples += len(listing.Labels)
	}
	return status
}

// AllRawStatuses projects every raw leaf, keyed by coordinate.
func (s *Snapshot) AllRawStatuses() map[synctypes.Coordinate]synctypes.CloudRawStatus {
	out := make(map[synctypes.Coordinate]synctypes.CloudRawStatus, len(s.Raw))
	for key := range s.Raw {
		coord, err := synctypes.ParseCoordinate(key)
		if err != nil {
			continue
		}
		out[coord] = s.RawStatus(coord)
	}
	return out
}

// AllMLStatuses projects every ML leaf, keyed by coordinate.
func (s *Snapshot) AllMLStatuses() map[synctypes.Coordinate]synctypes.CloudMLStatus {
	out := make(map[synctypes.Coordinate]synctypes.CloudMLStatus, len(s.ML))
	for key := range s.ML {
		coord, err := synctypes.ParseCoordinate(key)
		if err != nil {
			continue
		}
		out[coord] = s.MLStatus(coord)
	}
	return out
}

// Timeline aggregates per-timestamp bag and sample counts across the
// subtree selected by the filter.
func (s *Snapshot) Timeline(filter synctypes.HierarchyFilter) synctypes.TimelineData {
	type agg struct {
		bags    int
		samples int
	}
	byTimestamp := make(map[string]*agg)

	point := func(ts string) *agg {
		if a, ok := byTimestamp[ts]; ok {
			return a
		}
		a := &agg{}
		byTimestamp[ts] = a
		return a
	}

	for key, entry := range s.Raw {
		coord, err := synctypes.ParseCoordinate(key)
		if err != nil || !filter.Matches(coord) {
			continue
		}
		point(coord.Timestamp).bags += len(entry.Bags)
	}
	for key, entry := range s.ML {
		coord, err := synctypes.ParseCoordinate(key)
		if err != nil || !filter.Matches(coord) {
			continue
		}
		a := point(coord.Timestamp)
		for _, listing := range entry.Bags {
			a.samples += len(listing.Labels)
		}
	}

	timestamps := make([]string, 0, len(byTimestamp))
	for ts := range byTimestamp {
		timestamps = append(timestamps, ts)
	}
	sort.Strings(timestamps)

	var data synctypes.TimelineData
	for _, ts := range timestamps {
		a := byTimestamp[ts]
		data.Points = append(data.Points, synctypes.TimelinePoint{
			Timestamp:   ts,
			BagCount:    a.bags,
			SampleCount: a.samples,
		})
	}
	return data
}

func copySizes(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
