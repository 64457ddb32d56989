package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog/log"

	"github.com/rendis/geofilter/internal/engine/storage"
	"github.com/rendis/geofilter/internal/logger"
	"github.com/rendis/geofilter/internal/model"
	"github.com/rendis/geofilter/internal/tui"
	"github.com/rendis/geofilter/internal/tui/styles"
)

type historyOptions struct {
	Logger logger.Logger `group:"Logging"`

	Ledger      string `short:"l" long:"ledger" env:"GEOFILTER_LEDGER" description:"Path to the run ledger database (default: user config dir)"`
	Limit       int    `short:"n" long:"limit" default:"20" description:"Number of runs to show"`
	Interactive bool   `short:"i" long:"interactive" description:"Browse runs in the terminal UI"`
}

func runHistory(args []string) error {
	var opts historyOptions
	if err := parseArgs(&opts, "history", args); err != nil {
		return err
	}
	opts.Logger.Setup()

	path := opts.Ledger
	if path == "" {
		path = storage.DefaultLedgerPath()
	}
	store, err := storage.NewStore(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to open run ledger")
		return err
	}
	defer store.Close()

	if opts.Interactive {
		return tui.RunHistory(store, opts.Limit)
	}

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read run ledger")
		return err
	}
	fmt.Fprintln(os.Stdout, historyTable(runs))
	return nil
}

func historyTable(runs []model.Run) string {
	if len(runs) == 0 {
		return lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).Render("No runs recorded")
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.StartedAt.Format(time.DateTime),
			r.Pipeline,
			r.Predicate,
			fmt.Sprintf("%d/%d", r.Kept, r.Total),
			fmt.Sprintf("%d", r.Skipped),
			r.Duration.Round(time.Millisecond).String(),
			r.Status,
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Muted)).
		Headers("STARTED", "PIPELINE", "PREDICATE", "KEPT", "SKIPPED", "DURATION", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			if col == 6 && row < len(runs) && runs[row].Status != model.RunOK {
				return styles.Cell.Foreground(styles.Error)
			}
			return styles.Cell
		})
	return t.Render()
}
