package transfer

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nbarbarousis/fieldsync/synctypes"
)

const bytesPerMB = 1024 * 1024

// executePlan runs the plan's transfer list sequentially. A per-file
// failure is recorded and execution continues; a single bad file never
// aborts the batch. Cancellation is checked between files: once the
// context is done, the remaining files are recorded as failed without
// being attempted. The strategy's TransferFile is responsible for
// removing partially written local artifacts before reporting failure.
func executePlan(
	ctx context.Context,
	strategy Strategy,
	job *synctypes.TransferJob,
	plan *synctypes.TransferPlan,
	logger *log.Logger,
) ([]synctypes.FileResult, *synctypes.TransferSummary) {
	start := time.Now()
	results := make([]synctypes.FileResult, 0, len(plan.Files))
	summary := &synctypes.TransferSummary{TotalFiles: len(plan.Files)}

	for _, file := range plan.Files {
		if ctxErr := ctx.Err(); ctxErr != nil {
			results = append(results, synctypes.FileResult{File: file, Error: ctxErr.Error()})
			summary.Failed++
			logger.Warn("skipping remaining file, context done",
				"operation", job.Operation,
				"file", file.Name,
				"error", ctxErr)
			continue
		}

		fileStart := time.Now()
		moved, err := strategy.TransferFile(ctx, job.Coordinate, file)
		result := synctypes.FileResult{
			File:     file,
			Bytes:    moved,
			Duration: time.Since(fileStart),
		}

		if err != nil {
			result.Error = err.Error()
			summary.Failed++
			logger.Error("file transfer failed",
				"operation", job.Operation,
				"file", file.Name,
				"error", err)
		} else {
			result.Success = true
			summary.Successful++
			summary.TotalBytes += moved
			logger.Debug("file transferred",
				"operation", job.Operation,
				"file", file.Name,
				"bytes", moved)
		}
		results = append(results, result)
	}

	summary.Duration = time.Since(start)
	if seconds := summary.Duration.Seconds(); seconds > 0 {
		summary.AvgSpeedMBps = float64(summary.TotalBytes) / bytesPerMB / seconds
	}
	return results, summary
}
