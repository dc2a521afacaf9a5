// Package paths maps coordinates to storage locations in each backend
// and translates bag naming conventions between them. Everything here
// is pure: no I/O, no side effects beyond warn-level logs on malformed
// names.
package paths

import (
	"path"
	"strings"

	"github.com/nbarbarousis/fieldsync/synctypes"
)

// Storage layout literals shared by both backends.
const (
	// RosbagDir is the directory segment holding bag files in cloud keys
	RosbagDir = "rosbag"

	// MLRawPrefix is the leading segment of every ML object key and the
	// subdirectory under the local ML root
	MLRawPrefix = "raw"

	// BagSuffix is the raw recording file extension
	BagSuffix = ".bag"

	// ExportTrackingFile is the export sidecar filename under the local
	// ML raw subdirectory
	ExportTrackingFile = ".export_tracking.json"
)

// Builder derives storage paths for a fixed set of local roots.
// The zero value is unusable; construct with NewBuilder.
type Builder struct {
	rawRoot       string
	mlRoot        string
	processedRoot string
}

// NewBuilder creates a Builder over the three local root directories.
func NewBuilder(rawRoot, mlRoot, processedRoot string) *Builder {
	return &Builder{
		rawRoot:       rawRoot,
		mlRoot:        mlRoot,
		processedRoot: processedRoot,
	}
}

// CloudRawPrefix returns the object-key prefix under which a
// coordinate's raw bags live.
func (b *Builder) CloudRawPrefix(coord synctypes.Coordinate) string {
	return coord.String() + "/" + RosbagDir + "/"
}

// CloudRawKey returns the object key for one cloud-convention bag file.
func (b *Builder) CloudRawKey(coord synctypes.Coordinate, bagName string) string {
	return b.CloudRawPrefix(coord) + bagName
}

// CloudMLPrefix returns the object-key prefix under which a
// coordinate's ML samples live.
func (b *Builder) CloudMLPrefix(coord synctypes.Coordinate) string {
	return MLRawPrefix + "/" + coord.String() + "/" + RosbagDir + "/"
}

// CloudMLKey returns the object key for one ML sample file.
func (b *Builder) CloudMLKey(
	coord synctypes.Coordinate,
	bagName string,
	fileType synctypes.FileType,
	filename string,
) string {
	return b.CloudMLPrefix(coord) + bagName + "/" + string(fileType) + "/" + filename
}

// LocalRawDir returns the local directory holding a coordinate's bags.
func (b *Builder) LocalRawDir(coord synctypes.Coordinate) string {
	return path.Join(append([]string{b.rawRoot}, coord.Parts()...)...)
}

// LocalRawFile returns the local path of one local-convention bag file.
func (b *Builder) LocalRawFile(coord synctypes.Coordinate, bagFilename string) string {
	return path.Join(b.LocalRawDir(coord), bagFilename)
}

// LocalMLDir returns the local directory holding a coordinate's ML
// samples.
func (b *Builder) LocalMLDir(coord synctypes.Coordinate) string {
	return path.Join(append([]string{b.mlRoot, MLRawPrefix}, coord.Parts()...)...)
}

// LocalMLFile returns the local path of one ML sample file.
func (b *Builder) LocalMLFile(
	coord synctypes.Coordinate,
	bagName string,
	fileType synctypes.FileType,
	filename string,
) string {
	return path.Join(b.LocalMLDir(coord), bagName, string(fileType), filename)
}

// LocalProcessedDir returns the local directory holding a coordinate's
// processed outputs.
func (b *Builder) LocalProcessedDir(coord synctypes.Coordinate) string {
	return path.Join(append([]string{b.processedRoot}, coord.Parts()...)...)
}

// RawRoot returns the configured local raw root.
func (b *Builder) RawRoot() string { return b.rawRoot }

// MLRoot returns the configured local ML root.
func (b *Builder) MLRoot() string { return b.mlRoot }

// ProcessedRoot returns the configured local processed root.
func (b *Builder) ProcessedRoot() string { return b.processedRoot }

// ExportTrackingPath returns the export sidecar location under the ML
// root.
func (b *Builder) ExportTrackingPath() string {
	return path.Join(b.mlRoot, MLRawPrefix, ExportTrackingFile)
}

// RawKey is a parsed cloud raw object key.
type RawKey struct {
	Coordinate synctypes.Coordinate
	BagName    string
}

// ParseRawKey interprets an object key from the raw bucket. Keys that
// do not follow the <coordinate>/rosbag/<bag>.bag convention are
// reported as not ok, never as errors; buckets may hold unrelated
// objects.
func ParseRawKey(key string) (RawKey, bool) {
	parts := strings.Split(strings.Trim(key, "/"), "/")
	if len(parts) < 8 {
		return RawKey{}, false
	}
	if parts[len(parts)-2] != RosbagDir {
		return RawKey{}, false
	}
	bag := parts[len(parts)-1]
	if !strings.HasSuffix(bag, BagSuffix) {
		return RawKey{}, false
	}
	coord, err := synctypes.ParseCoordinate(strings.Join(parts[:6], "/"))
	if err != nil {
		return RawKey{}, false
	}
	return RawKey{Coordinate: coord, BagName: bag}, true
}

// MLKey is a parsed cloud ML object key.
type MLKey struct {
	Coordinate synctypes.Coordinate
	BagName    string
	FileType   synctypes.FileType
	Filename   string
}

// ParseMLKey interprets an object key from the ML bucket. Keys that do
// not follow the raw/<coordinate>/rosbag/<bag>/<type>/<file>
// convention are reported as not ok.
func ParseMLKey(key string) (MLKey, bool) {
	parts := strings.Split(strings.Trim(key, "/"), "/")
	if len(parts) < 11 {
		return MLKey{}, false
	}
	if parts[0] != MLRawPrefix || parts[7] != RosbagDir {
		return MLKey{}, false
	}
	ft := synctypes.FileType(parts[9])
	if ft != synctypes.FileTypeFrames && ft != synctypes.FileTypeLabels {
		return MLKey{}, false
	}
	coord, err := synctypes.ParseCoordinate(strings.Join(parts[1:7], "/"))
	if err != nil {
		return MLKey{}, false
	}
	return MLKey{
		Coordinate: coord,
		BagName:    parts[8],
		FileType:   ft,
		Filename:   strings.Join(parts[10:], "/"),
	}, true
}
