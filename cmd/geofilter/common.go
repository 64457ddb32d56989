package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/rendis/geofilter/internal/engine/storage"
	"github.com/rendis/geofilter/internal/model"
	"github.com/rendis/geofilter/internal/tui/styles"
)

var (
	errHelp  = errors.New("help requested")
	errUsage = errors.New("invalid usage")
)

// ledgerOptions is shared by commands that touch the run ledger.
type ledgerOptions struct {
	Ledger   string `short:"l" long:"ledger"    env:"GEOFILTER_LEDGER" description:"Path to the run ledger database (default: user config dir)"`
	NoLedger bool   `long:"no-ledger" env:"GEOFILTER_NO_LEDGER" description:"Do not record runs"`
}

func parseArgs(opts any, name string, args []string) error {
	parser := flags.NewParser(opts, flags.Default)
	parser.Name = "geofilter " + name
	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return errHelp
		}
		return errUsage
	}
	if len(rest) > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument %q, see 'geofilter help'\n", rest[0])
		return errUsage
	}
	return nil
}

// openLedger opens the ledger named by the flag, then the config, then the
// default location. A ledger that cannot be opened is logged and skipped.
func openLedger(opts ledgerOptions, configured string) *storage.Store {
	if opts.NoLedger {
		return nil
	}
	path := opts.Ledger
	if path == "" {
		path = configured
	}
	if path == "" {
		path = storage.DefaultLedgerPath()
	}

	store, err := storage.NewStore(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Run ledger unavailable, runs will not be recorded")
		return nil
	}
	log.Debug().Str("path", path).Msg("Run ledger opened")
	return store
}

// signalContext is cancelled on SIGINT/SIGTERM. Pipelines only honour it
// between stages, so an interrupted run never leaves a half-written file.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Interrupted, stopping before the next stage")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// printSummary writes the per-pipeline retained counts to w.
func printSummary(w io.Writer, runs []*model.Run) {
	var b strings.Builder
	b.WriteString(styles.Title.Render("GeoFilter complete"))
	b.WriteString("\n")

	for _, r := range runs {
		if r.Status != model.RunOK {
			continue
		}
		b.WriteString(styles.Label.Render(r.Pipeline))
		b.WriteString(styles.Value.Render(fmt.Sprintf("%d of %d features remain", r.Kept, r.Total)))
		if r.Skipped > 0 {
			b.WriteString(styles.WarningText.Render(fmt.Sprintf(" (%d skipped)", r.Skipped)))
		}
		b.WriteString("\n")
		b.WriteString(styles.Label.Render(""))
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("backup: " + r.Backup))
		b.WriteString("\n")
	}

	fmt.Fprintln(w, styles.Border.Render(strings.TrimSuffix(b.String(), "\n")))
}
