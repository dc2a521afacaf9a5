package transfer

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/nbarbarousis/fieldsync/internal/cloudcache"
	"github.com/nbarbarousis/fieldsync/internal/localstate"
	"github.com/nbarbarousis/fieldsync/paths"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

// rawDownload moves raw bags from the cloud raw bucket to the local raw
// tree. Each bag is a single file, so bags and files coincide.
type rawDownload struct {
	cache      *cloudcache.Cache
	scanner    *localstate.Scanner
	builder    *paths.Builder
	translator *paths.Translator
	backend    *Backend
	logger     *log.Logger
}

func (s *rawDownload) Operation() synctypes.OperationType {
	return synctypes.OpRawDownload
}

func (s *rawDownload) DiscoverSource(ctx context.Context, coord synctypes.Coordinate) (sourceState, error) {
	status, err := s.cache.RawStatus(ctx, coord)
	if err != nil {
		return sourceState{}, err
	}

	files := make(map[string][]fileEntry, len(status.BagSizes))
	for _, name := range status.BagNames {
		files[name] = []fileEntry{{name: name, bag: name, size: status.BagSizes[name]}}
	}
	return sourceState{bags: status.BagNames, files: files}, nil
}

func (s *rawDownload) DiscoverTarget(_ context.Context, coord synctypes.Coordinate) (targetIndex, error) {
	status := s.scanner.RawStatus(coord)
	idx := make(targetIndex, len(status.BagSizes))
	for name, size := range status.BagSizes {
		idx[name] = size
	}
	return idx, nil
}

func (s *rawDownload) SelectCandidates(state sourceState, criteria synctypes.SelectionCriteria) []fileEntry {
	var out []fileEntry
	for _, bag := range selectBags(state, criteria, true, s.logger) {
		out = append(out, state.files[bag]...)
	}
	return out
}

func (s *rawDownload) TranslateIdentity(entry fileEntry) string {
	return s.translator.CloudToLocal(entry.name)
}

func (s *rawDownload) TransferFile(
	ctx context.Context,
	coord synctypes.Coordinate,
	file synctypes.PlannedFile,
) (int64, error) {
	key := s.builder.CloudRawKey(coord, file.Name)
	localPath := s.builder.LocalRawFile(coord, file.TargetName)
	return s.backend.downloadObject(ctx, s.backend.RawBucket, key, localPath, file.Size)
}
