package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/geofilter/internal/tui/views"
)

// App is the root bubbletea model.
type App struct {
	width   int
	height  int
	history views.HistoryModel
}

func NewApp(source views.RunSource, limit int) App {
	return App{history: views.NewHistoryModel(source, limit)}
}

func (a App) Init() tea.Cmd {
	return a.history.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		a.width = msg.Width
		a.height = msg.Height
	}

	m, cmd := a.history.Update(msg)
	a.history = m.(views.HistoryModel)
	return a, cmd
}

func (a App) View() string {
	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Center, lipgloss.Top,
		a.history.View(),
	)
}

// RunHistory starts the run history browser.
func RunHistory(source views.RunSource, limit int) error {
	p := tea.NewProgram(NewApp(source, limit), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
