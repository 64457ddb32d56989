package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/rendis/geofilter/internal/config"
	"github.com/rendis/geofilter/internal/engine/pipeline"
	"github.com/rendis/geofilter/internal/engine/storage"
	"github.com/rendis/geofilter/internal/logger"
)

const defaultConfigFile = "geofilter.yaml"

type runOptions struct {
	Logger logger.Logger `group:"Logging"`
	Ledger ledgerOptions `group:"Ledger"`

	ConfigFile string   `short:"c" long:"config" env:"GEOFILTER_CONFIG" default:"geofilter.yaml" description:"Pipeline configuration file"`
	Pipelines  []string `short:"p" long:"pipeline" description:"Run only the named pipeline (repeatable)"`
	InPlace    bool     `long:"in-place" env:"GEOFILTER_IN_PLACE" description:"Overwrite feature files directly instead of via temp file and rename"`
}

func runPipelines(args []string) error {
	var opts runOptions
	if err := parseArgs(&opts, "run", args); err != nil {
		return err
	}
	opts.Logger.Setup()

	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		log.Error().Err(err).Str("config", opts.ConfigFile).Msg("Failed to load configuration")
		return err
	}

	specs, err := cfg.Specs(opts.Pipelines...)
	if err != nil {
		log.Error().Err(err).Msg("Invalid pipeline selection")
		return errors.Join(errUsage, err)
	}

	pipeOpts := &pipeline.Options{
		Writer: storage.Writer{InPlace: opts.InPlace || cfg.InPlace},
	}
	if store := openLedger(opts.Ledger, cfg.Ledger); store != nil {
		defer store.Close()
		pipeOpts.Ledger = store
	}

	ctx, cancel := signalContext()
	defer cancel()

	runs, err := pipeline.RunAll(ctx, specs, pipeOpts)
	if err != nil {
		failed := runs[len(runs)-1]
		log.Error().Err(err).Str("pipeline", failed.Pipeline).Msg("Pipeline failed")
		return err
	}

	printSummary(os.Stdout, runs)
	return nil
}

// loadConfig reads the configuration file. When the default file is absent
// the built-in pipelines are used; an explicitly named file must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigFile && errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("config", path).Msg("No configuration file, using built-in pipelines")
		return config.Default(), nil
	}
	return nil, err
}
