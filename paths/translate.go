package paths

import (
	"strings"

	"github.com/charmbracelet/log"
)

// Naming-convention markers. Cloud bag names begin with an underscore
// before the capture timestamp; local names carry a literal "rosbag"
// prefix in front of the same string.
const (
	cloudBagMarker = "_"
	localBagPrefix = "rosbag"
)

// Translator converts bag names between the cloud and local naming
// conventions. Translation is total and invertible for well-formed
// names; malformed input is logged at warn level and returned
// unchanged, so callers must treat an unchanged name defensively.
type Translator struct {
	logger *log.Logger
}

// NewTranslator creates a Translator. A nil logger falls back to the
// default logger.
func NewTranslator(logger *log.Logger) *Translator {
	if logger == nil {
		logger = log.Default()
	}
	return &Translator{logger: logger.With("component", "paths")}
}

// CloudToLocal converts a cloud-convention bag name (e.g.
// "_2025-08-12-08-54-21_0") to the local convention
// ("rosbag_2025-08-12-08-54-21_0"). Any .bag suffix is preserved.
func (t *Translator) CloudToLocal(name string) string {
	if !strings.HasPrefix(name, cloudBagMarker) {
		t.logger.Warn("unexpected cloud bag name, returning unchanged", "name", name)
		return name
	}
	return localBagPrefix + name
}

// LocalToCloud converts a local-convention bag name back to the cloud
// convention by replacing the leading "rosbag_" with "_".
func (t *Translator) LocalToCloud(name string) string {
	if !strings.HasPrefix(name, localBagPrefix+cloudBagMarker) {
		t.logger.Warn("unexpected local bag name, returning unchanged", "name", name)
		return name
	}
	return strings.TrimPrefix(name, localBagPrefix)
}
