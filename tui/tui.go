// ABOUTME: Terminal run browser using the bubbletea framework
// ABOUTME: Lists stored seed runs and drills into their items, requests and performance
package tui

import (
	"database/sql"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/salesseed/events"
	"github.com/harperreed/salesseed/models"
	"github.com/harperreed/salesseed/report"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewRuns ViewMode = iota
	ViewDetail
)

// DetailTab selects what the detail view shows for a run
type DetailTab int

const (
	TabItems DetailTab = iota
	TabRequests
	TabPerformance
)

const runLimit = 100

// Model is the main bubbletea model
type Model struct {
	db       *sql.DB
	viewMode ViewMode
	tab      DetailTab

	runs        []*models.Run
	selectedRow int

	// Detail view state for the selected run
	items       []events.Event
	requests    []events.Event
	performance []report.PerformanceRow
	detailRow   int

	width  int
	height int
	err    error
}

// NewModel creates a browser over the run store and loads the run list.
func NewModel(db *sql.DB) Model {
	m := Model{
		db:       db,
		viewMode: ViewRuns,
		width:    100,
		height:   24,
	}
	m.loadRuns()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewRuns:
		return m.renderRunsView()
	case ViewDetail:
		return m.renderDetailView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewRuns:
		return m.handleRunsKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	}

	return m, nil
}

// tableHeight leaves room for title, tabs and help.
func (m Model) tableHeight() int {
	if h := m.height - 10; h > 3 {
		return h
	}
	return 3
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)
