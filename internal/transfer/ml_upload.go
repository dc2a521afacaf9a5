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

// mlUpload moves locally produced ML sample files into the cloud ML
// bucket. The inverse of mlDownload: local state is the source and the
// cached cloud listing is the target.
type mlUpload struct {
	cache      *cloudcache.Cache
	scanner    *localstate.Scanner
	builder    *paths.Builder
	translator *paths.Translator
	backend    *Backend
	logger     *log.Logger
}

func (s *mlUpload) Operation() synctypes.OperationType {
	return synctypes.OpMLUpload
}

func (s *mlUpload) DiscoverSource(_ context.Context, coord synctypes.Coordinate) (sourceState, error) {
	status := s.scanner.MLStatus(coord)
	return sourceState{
		bags:  sortedBags(status.BagFiles),
		files: mlEntries(status.BagFiles),
	}, nil
}

func (s *mlUpload) DiscoverTarget(ctx context.Context, coord synctypes.Coordinate) (targetIndex, error) {
	status, err := s.cache.MLStatus(ctx, coord)
	if err != nil {
		return nil, err
	}
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

func (s *mlUpload) SelectCandidates(state sourceState, criteria synctypes.SelectionCriteria) []fileEntry {
	var out []fileEntry
	for _, bag := range selectBags(state, criteria, false, s.logger) {
		out = append(out, filterTypes(state.files[bag], criteria.FileTypes)...)
	}
	return out
}

func (s *mlUpload) TranslateIdentity(entry fileEntry) string {
	return s.translator.LocalToCloud(entry.bag) + "/" + string(entry.fileType) + "/" + entry.name
}

func (s *mlUpload) TransferFile(
	ctx context.Context,
	coord synctypes.Coordinate,
	file synctypes.PlannedFile,
) (int64, error) {
	localPath := s.builder.LocalMLFile(coord, file.Bag, file.FileType, file.Name)
	key := path.Join(s.builder.CloudMLPrefix(coord), file.TargetName)
	return s.backend.uploadObject(ctx, localPath, s.backend.MLBucket, key, file.Size)
}
