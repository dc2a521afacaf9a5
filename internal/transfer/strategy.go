package transfer

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/nbarbarousis/fieldsync/synctypes"
)

// fileEntry is one source-side file the planner can schedule.
type fileEntry struct {
	// name is the file's source-convention name
	name string

	// bag is the owning source-convention bag; for raw entries the bag
	// is the file itself
	bag string

	// fileType is set for ML entries only
	fileType synctypes.FileType

	// size is the source-side size in bytes
	size int64
}

// sourceState is a strategy's view of the source side for one
// coordinate.
type sourceState struct {
	// bags lists source-convention bag names in sorted order
	bags []string

	// files maps each bag to its entries
	files map[string][]fileEntry
}

// empty reports whether the source has nothing to offer.
func (s sourceState) empty() bool {
	for _, entries := range s.files {
		if len(entries) > 0 {
			return false
		}
	}
	return true
}

// targetIndex maps target-convention identity to target-side size.
type targetIndex map[string]int64

// Strategy specializes the transfer template for one operation kind.
type Strategy interface {
	// Operation names the kind this strategy implements.
	Operation() synctypes.OperationType

	// DiscoverSource returns the source-side listing for the coordinate.
	DiscoverSource(ctx context.Context, coord synctypes.Coordinate) (sourceState, error)

	// DiscoverTarget returns the target-side identity index for the
	// coordinate.
	DiscoverTarget(ctx context.Context, coord synctypes.Coordinate) (targetIndex, error)

	// SelectCandidates applies the job's selection criteria to the
	// source listing. An empty result is valid and yields an empty plan.
	SelectCandidates(state sourceState, criteria synctypes.SelectionCriteria) []fileEntry

	// TranslateIdentity converts a source entry to its target-convention
	// identity, used both for the target lookup and in the plan.
	TranslateIdentity(entry fileEntry) string

	// TransferFile moves one planned file and verifies its size on the
	// target side. It returns the bytes moved.
	TransferFile(ctx context.Context, coord synctypes.Coordinate, file synctypes.PlannedFile) (int64, error)
}

// selectBags resolves the criteria's bag selection against the sorted
// source bag list. Out-of-range indices are logged and skipped. No bag
// selection at all means an empty selection, not "all".
func selectBags(state sourceState, criteria synctypes.SelectionCriteria, allowIndices bool, logger *log.Logger) []string {
	switch {
	case criteria.All:
		return state.bags

	case len(criteria.BagNames) > 0:
		want := make(map[string]struct{}, len(criteria.BagNames))
		for _, name := range criteria.BagNames {
			want[name] = struct{}{}
		}
		var out []string
		for _, bag := range state.bags {
			if _, ok := want[bag]; ok {
				out = append(out, bag)
			}
		}
		return out

	case len(criteria.BagIndices) > 0:
		if !allowIndices {
			logger.Warn("bag index selection is not supported for this operation, ignoring")
			return nil
		}
		seen := make(map[int]struct{}, len(criteria.BagIndices))
		var indices []int
		for _, idx := range criteria.BagIndices {
			if idx < 0 || idx >= len(state.bags) {
				logger.Warn("bag index out of range, skipping", "index", idx, "bags", len(state.bags))
				continue
			}
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		out := make([]string, 0, len(indices))
		for _, idx := range indices {
			out = append(out, state.bags[idx])
		}
		return out
	}

	return nil
}

// filterTypes narrows ML entries to the requested file types; empty
// means both.
func filterTypes(entries []fileEntry, types []synctypes.FileType) []fileEntry {
	if len(types) == 0 {
		return entries
	}
	want := make(map[synctypes.FileType]struct{}, len(types))
	for _, ft := range types {
		want[ft] = struct{}{}
	}
	var out []fileEntry
	for _, entry := range entries {
		if _, ok := want[entry.fileType]; ok {
			out = append(out, entry)
		}
	}
	return out
}

// sortedBags returns the sorted keys of a bag-keyed map.
func sortedBags[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for bag := range m {
		out = append(out, bag)
	}
	sort.Strings(out)
	return out
}

// mlEntries flattens a status's per-bag file listings into entries,
// sorted by type then name within each bag.
func mlEntries(bagFiles map[string]synctypes.BagFiles) map[string][]fileEntry {
	out := make(map[string][]fileEntry, len(bagFiles))
	for bag, files := range bagFiles {
		var entries []fileEntry
		for _, ft := range synctypes.AllFileTypes {
			names := make([]string, 0, len(files[ft]))
			for name := range files[ft] {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				entries = append(entries, fileEntry{
					name:     name,
					bag:      bag,
					fileType: ft,
					size:     files[ft][name],
				})
			}
		}
		out[bag] = entries
	}
	return out
}
