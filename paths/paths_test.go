package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbarbarousis/fieldsync/synctypes"
)

func testCoord() synctypes.Coordinate {
	return synctypes.Coordinate{
		ClientID:     "acme",
		RegionID:     "emea",
		FieldID:      "field-7",
		TimeWindowID: "2025-w33",
		BoxID:        "lb-042",
		Timestamp:    "2025-08-12-08-54-00",
	}
}

func TestBuilder_CloudKeys(t *testing.T) {
	b := NewBuilder("/data/raw", "/data/ml", "/data/processed")
	coord := testCoord()

	assert.Equal(t,
		"acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag/",
		b.CloudRawPrefix(coord))
	assert.Equal(t,
		"acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag/_2025-08-12-08-54-21_0.bag",
		b.CloudRawKey(coord, "_2025-08-12-08-54-21_0.bag"))
	assert.Equal(t,
		"raw/acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag/",
		b.CloudMLPrefix(coord))
	assert.Equal(t,
		"raw/acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag/_2025-08-12-08-54-21_0/labels/000123.json",
		b.CloudMLKey(coord, "_2025-08-12-08-54-21_0", synctypes.FileTypeLabels, "000123.json"))
}

func TestBuilder_LocalPaths(t *testing.T) {
	b := NewBuilder("/data/raw", "/data/ml", "/data/processed")
	coord := testCoord()

	assert.Equal(t,
		"/data/raw/acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00",
		b.LocalRawDir(coord))
	assert.Equal(t,
		"/data/raw/acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag_2025-08-12-08-54-21_0.bag",
		b.LocalRawFile(coord, "rosbag_2025-08-12-08-54-21_0.bag"))
	assert.Equal(t,
		"/data/ml/raw/acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00",
		b.LocalMLDir(coord))
	assert.Equal(t,
		"/data/ml/raw/acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag_2025-08-12-08-54-21_0/frames/000123.png",
		b.LocalMLFile(coord, "rosbag_2025-08-12-08-54-21_0", synctypes.FileTypeFrames, "000123.png"))
	assert.Equal(t,
		"/data/processed/acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00",
		b.LocalProcessedDir(coord))
	assert.Equal(t, "/data/ml/raw/.export_tracking.json", b.ExportTrackingPath())
}

func TestParseRawKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantOK  bool
		wantBag string
	}{
		{
			name:    "well-formed raw key",
			key:     "acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag/_2025-08-12-08-54-21_0.bag",
			wantOK:  true,
			wantBag: "_2025-08-12-08-54-21_0.bag",
		},
		{
			name:   "missing rosbag segment",
			key:    "acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/other/_x.bag",
			wantOK: false,
		},
		{
			name:   "wrong extension",
			key:    "acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag/_x.txt",
			wantOK: false,
		},
		{
			name:   "too shallow",
			key:    "acme/emea/rosbag/_x.bag",
			wantOK: false,
		},
		{
			name:   "empty key",
			key:    "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseRawKey(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantBag, parsed.BagName)
				assert.Equal(t, "acme", parsed.Coordinate.ClientID)
				assert.Equal(t, "2025-08-12-08-54-00", parsed.Coordinate.Timestamp)
			}
		})
	}
}

func TestParseMLKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		wantOK   bool
		wantBag  string
		wantType synctypes.FileType
		wantFile string
	}{
		{
			name:     "well-formed label key",
			key:      "raw/acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag/_2025-08-12-08-54-21_0/labels/000123.json",
			wantOK:   true,
			wantBag:  "_2025-08-12-08-54-21_0",
			wantType: synctypes.FileTypeLabels,
			wantFile: "000123.json",
		},
		{
			name:     "well-formed frame key",
			key:      "raw/acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag/_2025-08-12-08-54-21_0/frames/000123.png",
			wantOK:   true,
			wantBag:  "_2025-08-12-08-54-21_0",
			wantType: synctypes.FileTypeFrames,
			wantFile: "000123.png",
		},
		{
			name:   "missing raw prefix",
			key:    "acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag/_x/labels/a.json",
			wantOK: false,
		},
		{
			name:   "unknown file type",
			key:    "raw/acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00/rosbag/_x/masks/a.png",
			wantOK: false,
		},
		{
			name:   "too shallow",
			key:    "raw/acme/emea/field-7/rosbag/_x/labels/a.json",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseMLKey(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantBag, parsed.BagName)
				assert.Equal(t, tt.wantType, parsed.FileType)
				assert.Equal(t, tt.wantFile, parsed.Filename)
				assert.Equal(t, "acme", parsed.Coordinate.ClientID)
			}
		})
	}
}

func TestTranslator_RoundTrip(t *testing.T) {
	tr := NewTranslator(nil)

	names := []string{
		"_2025-08-12-08-54-21_0",
		"_2025-08-12-08-54-21_0.bag",
		"_2025-12-31-23-59-59_12.bag",
	}
	for _, cloud := range names {
		local := tr.CloudToLocal(cloud)
		assert.Equal(t, "rosbag"+cloud, local)
		assert.Equal(t, cloud, tr.LocalToCloud(local))
	}

	locals := []string{
		"rosbag_2025-08-12-08-54-21_0.bag",
		"rosbag_2025-08-12-08-05-00_1",
	}
	for _, local := range locals {
		cloud := tr.LocalToCloud(local)
		require.NotEqual(t, local, cloud)
		assert.Equal(t, local, tr.CloudToLocal(cloud))
	}
}

func TestTranslator_MalformedUnchanged(t *testing.T) {
	tr := NewTranslator(nil)

	// Cloud names must start with the underscore marker.
	assert.Equal(t, "2025-08-12.bag", tr.CloudToLocal("2025-08-12.bag"))
	// Local names must carry the rosbag_ prefix.
	assert.Equal(t, "bag_001.bag", tr.LocalToCloud("bag_001.bag"))
	assert.Equal(t, "rosbagx.bag", tr.LocalToCloud("rosbagx.bag"))
	assert.Equal(t, "", tr.CloudToLocal(""))
}
