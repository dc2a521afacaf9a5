package synctypes

import (
	"fmt"
	"strings"
)

// Coordinate is the 6-part hierarchical key addressing one recorded run.
// It is immutable once constructed and comparable, so it can be used
// directly as a map key by the cache, the scanner, and the reconciler.
type Coordinate struct {
	// ClientID identifies the customer owning the robot fleet
	ClientID string

	// RegionID identifies the geographic region
	RegionID string

	// FieldID identifies the field within the region
	FieldID string

	// TimeWindowID identifies the operational time window
	TimeWindowID string

	// BoxID identifies the laser box (recording device)
	BoxID string

	// Timestamp is the run timestamp directory name
	Timestamp string
}

// String returns the coordinate as a /-joined path fragment, in
// hierarchy order. The result is a valid relative key prefix in both
// the cloud and local layouts.
func (c Coordinate) String() string {
	return strings.Join([]string{c.ClientID, c.RegionID, c.FieldID, c.TimeWindowID, c.BoxID, c.Timestamp}, "/")
}

// Parts returns the six components in hierarchy order.
func (c Coordinate) Parts() []string {
	return []string{c.ClientID, c.RegionID, c.FieldID, c.TimeWindowID, c.BoxID, c.Timestamp}
}

// IsComplete reports whether every component is non-empty.
func (c Coordinate) IsComplete() bool {
	for _, p := range c.Parts() {
		if p == "" {
			return false
		}
	}
	return true
}

// ParseCoordinate parses a /-joined path fragment produced by
// Coordinate.String back into a Coordinate. It rejects inputs that do
// not contain exactly six non-empty segments.
func ParseCoordinate(path string) (Coordinate, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 6 {
		return Coordinate{}, fmt.Errorf("coordinate path %q: expected 6 segments, got %d", path, len(parts))
	}
	c := Coordinate{
		ClientID:     parts[0],
		RegionID:     parts[1],
		FieldID:      parts[2],
		TimeWindowID: parts[3],
		BoxID:        parts[4],
		Timestamp:    parts[5],
	}
	if !c.IsComplete() {
		return Coordinate{}, fmt.Errorf("coordinate path %q: empty segment", path)
	}
	return c, nil
}

// HierarchyLevels lists the level names in order, used by hierarchy
// queries and CLI filters.
var HierarchyLevels = []string{"client", "region", "field", "time_window", "box", "timestamp"}

// HierarchyFilter is a partial coordinate used to narrow hierarchy-wide
// queries. Empty fields match everything at that level; a field may only
// be set when all fields above it are set.
type HierarchyFilter struct {
	ClientID     string
	RegionID     string
	FieldID      string
	TimeWindowID string
	BoxID        string
}

// Prefix returns the filter as path segments, stopping at the first
// unset level.
func (f HierarchyFilter) Prefix() []string {
	all := []string{f.ClientID, f.RegionID, f.FieldID, f.TimeWindowID, f.BoxID}
	var prefix []string
	for _, p := range all {
		if p == "" {
			break
		}
		prefix = append(prefix, p)
	}
	return prefix
}

// Matches reports whether coord falls under the filter prefix.
func (f HierarchyFilter) Matches(coord Coordinate) bool {
	parts := coord.Parts()
	for i, want := range f.Prefix() {
		if parts[i] != want {
			return false
		}
	}
	return true
}
