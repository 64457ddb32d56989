package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/geofilter/internal/model"
	"github.com/rendis/geofilter/internal/tui/styles"
)

// RunSource is the read side of the run ledger.
type RunSource interface {
	ListRuns(limit int) ([]model.Run, error)
	Warnings(runID string) ([]string, error)
}

// HistoryModel lists recorded runs with a detail panel for the selected one.
type HistoryModel struct {
	source     RunSource
	limit      int
	runs       []model.Run
	table      table.Model
	selected   int
	showDetail bool
	warnings   map[string][]string
	width      int
	height     int
	err        error
}

type runsLoadedMsg struct {
	Runs []model.Run
	Err  error
}

type warningsLoadedMsg struct {
	RunID    string
	Warnings []string
	Err      error
}

func NewHistoryModel(source RunSource, limit int) HistoryModel {
	return HistoryModel{
		source:   source,
		limit:    limit,
		selected: -1,
		warnings: make(map[string][]string),
	}
}

func (m HistoryModel) Init() tea.Cmd {
	return func() tea.Msg {
		runs, err := m.source.ListRuns(m.limit)
		return runsLoadedMsg{Runs: runs, Err: err}
	}
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.showDetail {
				m.showDetail = false
				return m, nil
			}
			return m, tea.Quit
		case "enter":
			if m.selected < 0 {
				return m, nil
			}
			m.showDetail = !m.showDetail
			if m.showDetail {
				return m, m.loadWarnings(m.runs[m.selected].ID)
			}
			return m, nil
		case "r":
			return m, m.Init()
		}

	case runsLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.runs = msg.Runs
		m.selected = -1
		if len(m.runs) > 0 {
			m.selected = 0
		}
		m.buildTable()
		return m, nil

	case warningsLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.warnings[msg.RunID] = msg.Warnings
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if cursor := m.table.Cursor(); cursor != m.selected && cursor < len(m.runs) {
		m.selected = cursor
		if m.showDetail {
			return m, tea.Batch(cmd, m.loadWarnings(m.runs[cursor].ID))
		}
	}
	return m, cmd
}

func (m HistoryModel) loadWarnings(runID string) tea.Cmd {
	if _, ok := m.warnings[runID]; ok {
		return nil
	}
	return func() tea.Msg {
		w, err := m.source.Warnings(runID)
		return warningsLoadedMsg{RunID: runID, Warnings: w, Err: err}
	}
}

func (m *HistoryModel) buildTable() {
	pipeW := 16
	if m.width > 100 {
		pipeW += (m.width - 100) / 3
	}

	columns := []table.Column{
		{Title: "Started", Width: 19},
		{Title: "Pipeline", Width: pipeW},
		{Title: "Predicate", Width: 14},
		{Title: "Kept", Width: 13},
		{Title: "Skipped", Width: 8},
		{Title: "Status", Width: 7},
	}

	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		rows[i] = table.Row{
			r.StartedAt.Format(time.DateTime),
			truncate(r.Pipeline, pipeW),
			r.Predicate,
			fmt.Sprintf("%d/%d", r.Kept, r.Total),
			fmt.Sprintf("%d", r.Skipped),
			r.Status,
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)
	t.SetStyles(tableStyles())
	if m.selected > 0 && m.selected < len(rows) {
		t.SetCursor(m.selected)
	}
	m.table = t
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Secondary)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Bold(true)
	return s
}

func (m HistoryModel) tableHeight() int {
	h := m.height/2 - 4
	if h < 5 {
		h = 5
	}
	return h
}

func (m *HistoryModel) updateLayout() {
	if m.width <= 0 {
		return
	}
	m.buildTable()
}

func (m HistoryModel) detailView() string {
	r := m.runs[m.selected]

	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(styles.Label.Render(label))
		b.WriteString(styles.Value.Render(value))
		b.WriteString("\n")
	}

	row("Run", r.ID)
	row("Boundary", r.Boundary)
	row("Features", r.Features)
	row("Backup", r.Backup)
	row("Duration", r.Duration.String())
	b.WriteString(styles.Label.Render("Status"))
	b.WriteString(styles.Status(r.Status))
	b.WriteString("\n")
	if r.Error != "" {
		b.WriteString(styles.ErrorText.Render(r.Error))
		b.WriteString("\n")
	}

	warnings, loaded := m.warnings[r.ID]
	switch {
	case !loaded:
		b.WriteString(styles.StatusBar.Render("loading warnings..."))
	case len(warnings) == 0:
		b.WriteString(styles.StatusBar.Render("no warnings"))
	default:
		b.WriteString("\n")
		shown := m.height/2 - 8
		if shown < 3 {
			shown = 3
		}
		for i, w := range warnings {
			if i == shown {
				b.WriteString(styles.StatusBar.Render(fmt.Sprintf("... %d more", len(warnings)-shown)))
				break
			}
			b.WriteString(styles.WarningText.Render(w))
			b.WriteString("\n")
		}
	}

	return styles.FocusedBorder.Render(b.String())
}

func (m HistoryModel) View() string {
	if m.err != nil {
		return styles.ErrorText.Render(fmt.Sprintf("Error reading ledger: %v", m.err))
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Run history: %d runs", len(m.runs))))
	b.WriteString("\n")

	if len(m.runs) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).Render("No runs recorded"))
		b.WriteString("\n")
		b.WriteString(styles.StatusBar.Render("q quit"))
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.showDetail && m.selected >= 0 {
		b.WriteString(m.detailView())
		b.WriteString("\n")
	}

	b.WriteString(styles.StatusBar.Render("↑/↓ select • enter details • r reload • q quit"))
	return b.String()
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 1 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}
