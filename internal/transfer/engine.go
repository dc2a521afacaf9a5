package transfer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nbarbarousis/fieldsync/errors"
	"github.com/nbarbarousis/fieldsync/internal/cloudcache"
	"github.com/nbarbarousis/fieldsync/internal/localstate"
	"github.com/nbarbarousis/fieldsync/paths"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

// Engine evaluates transfer jobs: discover both sides, select, plan,
// and (outside dry runs) execute. The orchestration is identical for
// all operation kinds; the registered strategies supply the
// specialization.
type Engine struct {
	cache      *cloudcache.Cache
	strategies map[synctypes.OperationType]Strategy
	logger     *log.Logger
}

// NewEngine wires the three operation strategies over the shared cache,
// scanner, path builder, translator, and storage backend.
func NewEngine(
	cache *cloudcache.Cache,
	scanner *localstate.Scanner,
	builder *paths.Builder,
	translator *paths.Translator,
	backend *Backend,
	logger *log.Logger,
) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("component", "transfer")
	if backend.Logger == nil {
		backend.Logger = logger
	}

	strategies := map[synctypes.OperationType]Strategy{}
	for _, s := range []Strategy{
		&rawDownload{cache: cache, scanner: scanner, builder: builder, translator: translator, backend: backend, logger: logger},
		&mlDownload{cache: cache, scanner: scanner, builder: builder, translator: translator, backend: backend, logger: logger},
		&mlUpload{cache: cache, scanner: scanner, builder: builder, translator: translator, backend: backend, logger: logger},
	} {
		strategies[s.Operation()] = s
	}

	return &Engine{
		cache:      cache,
		strategies: strategies,
		logger:     logger,
	}
}

// Run evaluates one job and returns its result. Job-level failures
// before any file is attempted are reported critical; per-file failures
// are recorded individually and surface as a warning.
func (e *Engine) Run(ctx context.Context, job *synctypes.TransferJob) *synctypes.OperationResult {
	strategy, ok := e.strategies[job.Operation]
	if !ok {
		return &synctypes.OperationResult{
			Success: false,
			Error:   fmt.Sprintf("%v: %q", errors.ErrUnknownOperation, job.Operation),
		}
	}
	if !job.Coordinate.IsComplete() {
		return &synctypes.OperationResult{
			Success: false,
			Error:   fmt.Sprintf("%v: %q", errors.ErrInvalidCoordinate, job.Coordinate.String()),
		}
	}

	e.logger.Info("evaluating transfer job",
		"job", job.ID,
		"operation", job.Operation,
		"coordinate", job.Coordinate.String(),
		"policy", job.Policy,
		"dry_run", job.DryRun)

	source, err := strategy.DiscoverSource(ctx, job.Coordinate)
	if err != nil {
		return e.critical(job, "source discovery failed", err)
	}
	if source.empty() {
		return &synctypes.OperationResult{
			Success: false,
			Error:   errors.ErrNoSourceData.Error(),
		}
	}

	target, err := strategy.DiscoverTarget(ctx, job.Coordinate)
	if err != nil {
		return e.critical(job, "target discovery failed", err)
	}

	candidates := strategy.SelectCandidates(source, job.Criteria)
	plan := buildPlan(strategy, job.Policy, candidates, target)

	e.logger.Info("plan built",
		"job", job.ID,
		"transfer", plan.TotalFiles,
		"skip", len(plan.Skips),
		"conflicts", len(plan.Conflicts),
		"bytes", plan.TotalSize)

	if job.DryRun {
		return &synctypes.OperationResult{Success: true, Plan: plan}
	}

	if plan.TotalFiles == 0 {
		return &synctypes.OperationResult{
			Success: true,
			Message: "No files to transfer",
			Plan:    plan,
		}
	}

	files, summary := executePlan(ctx, strategy, job, plan, e.logger)

	result := &synctypes.OperationResult{
		Success: summary.Failed == 0,
		Plan:    plan,
		Files:   files,
		Summary: summary,
	}
	if summary.Failed > 0 {
		result.Warning = fmt.Sprintf("%d files failed", summary.Failed)
	}

	// Uploads change cloud state behind the cache's back.
	if job.Operation == synctypes.OpMLUpload && summary.Successful > 0 {
		e.cache.MarkStale("ml upload completed")
	}

	e.logger.Info("transfer finished",
		"job", job.ID,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"bytes", summary.TotalBytes,
		"duration", summary.Duration)
	return result
}

func (e *Engine) critical(job *synctypes.TransferJob, msg string, err error) *synctypes.OperationResult {
	e.logger.Error(msg, "job", job.ID, "operation", job.Operation, "error", err)
	return &synctypes.OperationResult{
		Success:  false,
		Error:    fmt.Sprintf("%s: %v", msg, err),
		Critical: true,
	}
}
