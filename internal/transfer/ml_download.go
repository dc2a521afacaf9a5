package transfer

import (
	"context"
	"path"

	"github.com/charmbracelet/log"

	"github.com/nbarbarousis/fieldsync/internal/cloudcache"
	"github.com/nbarbarousis/fieldsync/internal/localstate"
	"github.com/nbarbarousis/fieldsync/paths"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

// mlDownload moves ML sample files from the cloud ML bucket to the
// local ML tree. Identity is <bag>/<type>/<filename>; only the bag
// segment changes convention between sides.
type mlDownload struct {
	cache      *cloudcache.Cache
	scanner    *localstate.Scanner
	builder    *paths.Builder
	translator *paths.Translator
	backend    *Backend
	logger     *log.Logger
}

func (s *mlDownload) Operation() synctypes.OperationType {
	return synctypes.OpMLDownload
}

func (s *mlDownload) DiscoverSource(ctx context.Context, coord synctypes.Coordinate) (sourceState, error) {
	status, err := s.cache.MLStatus(ctx, coord)
	if err != nil {
		return sourceState{}, err
	}
	return sourceState{
		bags:  sortedBags(status.BagFiles),
		files: mlEntries(status.BagFiles),
	}, nil
}

func (s *mlDownload) DiscoverTarget(_ context.Context, coord synctypes.Coordinate) (targetIndex, error) {
	status := s.scanner.MLStatus(coord)
	idx := make(targetIndex)
	for bag, files := range status.BagFiles {
		for ft, listing := range files {
			for name, size := range listing {
				idx[bag+"/"+string(ft)+"/"+name] = size
			}
		}
	}
	return idx, nil
}

func (s *mlDownload) SelectCandidates(state sourceState, criteria synctypes.SelectionCriteria) []fileEntry {
	var out []fileEntry
	for _, bag := range selectBags(state, criteria, false, s.logger) {
		out = append(out, filterTypes(state.files[bag], criteria.FileTypes)...)
	}
	return out
}

func (s *mlDownload) TranslateIdentity(entry fileEntry) string {
	return s.translator.CloudToLocal(entry.bag) + "/" + string(entry.fileType) + "/" + entry.name
}

func (s *mlDownload) TransferFile(
	ctx context.Context,
	coord synctypes.Coordinate,
	file synctypes.PlannedFile,
) (int64, error) {
	key := s.builder.CloudMLKey(coord, file.Bag, file.FileType, file.Name)
	localPath := path.Join(s.builder.LocalMLDir(coord), file.TargetName)
	return s.backend.downloadObject(ctx, s.backend.MLBucket, key, localPath, file.Size)
}
