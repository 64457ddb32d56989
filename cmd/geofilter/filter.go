package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/rendis/geofilter/internal/engine/pipeline"
	"github.com/rendis/geofilter/internal/engine/storage"
	"github.com/rendis/geofilter/internal/logger"
	"github.com/rendis/geofilter/internal/model"
)

type filterOptions struct {
	Logger logger.Logger `group:"Logging"`
	Ledger ledgerOptions `group:"Ledger"`

	Boundary  string `short:"b" long:"boundary" required:"true" description:"Boundary GeoJSON file (first feature is used)"`
	Features  string `short:"f" long:"features" required:"true" description:"Feature GeoJSON file to filter in place"`
	Predicate string `short:"k" long:"predicate" default:"intersects" description:"Spatial predicate: intersects or contains-point (aliases: intersect, contains, point-in-polygon)"`
	Backup    string `long:"backup" description:"Backup path (default: <features>.backup<ext>)"`
	Name      string `short:"n" long:"name" default:"adhoc" description:"Name recorded in the run ledger"`
	InPlace   bool   `long:"in-place" env:"GEOFILTER_IN_PLACE" description:"Overwrite the feature file directly instead of via temp file and rename"`
}

func runFilter(args []string) error {
	var opts filterOptions
	if err := parseArgs(&opts, "filter", args); err != nil {
		return err
	}
	opts.Logger.Setup()

	kind, err := model.ParsePredicate(opts.Predicate)
	if err != nil {
		log.Error().Err(err).Msg("Invalid predicate")
		return errUsage
	}

	spec := model.PipelineSpec{
		Name:      opts.Name,
		Boundary:  opts.Boundary,
		Features:  opts.Features,
		Backup:    opts.Backup,
		Predicate: kind,
	}

	pipeOpts := &pipeline.Options{Writer: storage.Writer{InPlace: opts.InPlace}}
	if store := openLedger(opts.Ledger, ""); store != nil {
		defer store.Close()
		pipeOpts.Ledger = store
	}

	ctx, cancel := signalContext()
	defer cancel()

	run, err := pipeline.Run(ctx, spec, pipeOpts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("Filter cancelled, feature file left untouched")
		} else {
			log.Error().Err(err).Msg("Filter failed")
		}
		return err
	}

	printSummary(os.Stdout, []*model.Run{run})
	return nil
}
