// Package pipeline runs the load, filter and commit stages for one boundary and
// feature document pair.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rendis/geofilter/internal/engine/geo"
	"github.com/rendis/geofilter/internal/engine/storage"
	"github.com/rendis/geofilter/internal/model"
)

// Recorder persists run records. *storage.Store implements it.
type Recorder interface {
	RecordRun(run *model.Run) error
}

// Options tunes how a pipeline commits and where runs are recorded.
type Options struct {
	Writer storage.Writer
	// Ledger, if set, receives one record per run, failed runs included.
	// Ledger errors are logged and never change the run outcome.
	Ledger Recorder
}

// Run executes one pipeline: load boundary, load features, filter, commit.
// The context is checked between stages only; once the commit starts it runs
// to completion.
func Run(ctx context.Context, spec model.PipelineSpec, opts *Options) (*model.Run, error) {
	if opts == nil {
		opts = &Options{}
	}

	backupPath := spec.Backup
	if backupPath == "" {
		backupPath = storage.BackupPath(spec.Features)
	}

	run := &model.Run{
		ID:        uuid.NewString(),
		Pipeline:  spec.Name,
		Predicate: spec.Predicate.String(),
		Boundary:  spec.Boundary,
		Features:  spec.Features,
		Backup:    backupPath,
		StartedAt: time.Now(),
	}
	logger := log.With().Str("pipeline", spec.Name).Logger()

	err := execute(ctx, spec, backupPath, opts, run, logger)

	run.Duration = time.Since(run.StartedAt)
	run.Status = model.RunOK
	if err != nil {
		run.Status = model.RunFailed
		run.Error = err.Error()
	}

	if opts.Ledger != nil {
		if lerr := opts.Ledger.RecordRun(run); lerr != nil {
			logger.Warn().Err(lerr).Str("run", run.ID).Msg("Failed to record run in ledger")
		}
	}

	return run, err
}

func execute(ctx context.Context, spec model.PipelineSpec, backupPath string, opts *Options, run *model.Run, logger zerolog.Logger) error {
	boundary, err := geo.LoadBoundary(spec.Boundary)
	if err != nil {
		return err
	}
	logger.Debug().
		Str("path", spec.Boundary).
		Int("ring_positions", len(boundary.Outer())).
		Msg("Boundary loaded")

	if err := ctx.Err(); err != nil {
		return err
	}

	features, err := geo.LoadFeatures(spec.Features)
	if err != nil {
		return err
	}
	logger.Debug().
		Str("path", spec.Features).
		Int("features", len(features.Features)).
		Msg("Features loaded")

	if err := ctx.Err(); err != nil {
		return err
	}

	res := geo.Filter(features, boundary, spec.Predicate)
	run.Total = res.Total
	run.Kept = res.Kept
	run.Skipped = len(res.Warnings)

	for _, w := range res.Warnings {
		logger.Warn().
			Int("index", w.Index).
			Str("reason", w.Reason).
			Interface("properties", w.Properties).
			AnErr("cause", w.Err).
			Msg("Skipping feature")
		run.Warnings = append(run.Warnings, w.String())
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := opts.Writer.Commit(spec.Features, backupPath, res.Collection); err != nil {
		return err
	}

	logger.Info().
		Str("predicate", spec.Predicate.String()).
		Str("backup", backupPath).
		Int("total", res.Total).
		Int("kept", res.Kept).
		Int("skipped", len(res.Warnings)).
		Msg("Features filtered")
	return nil
}

// RunAll runs the pipelines in order and stops at the first fatal error. The
// returned runs include the failed one.
func RunAll(ctx context.Context, specs []model.PipelineSpec, opts *Options) ([]*model.Run, error) {
	runs := make([]*model.Run, 0, len(specs))
	for _, spec := range specs {
		run, err := Run(ctx, spec, opts)
		runs = append(runs, run)
		if err != nil {
			return runs, err
		}
	}
	return runs, nil
}
