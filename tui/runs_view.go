// ABOUTME: Run list view for the TUI
// ABOUTME: Shows stored runs newest first and opens the selected one
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/salesseed/db"
	"github.com/harperreed/salesseed/events"
)

func (m *Model) loadRuns() {
	runs, err := db.ListRuns(m.db, runLimit)
	m.runs, m.err = runs, err
	if m.selectedRow >= len(m.runs) {
		m.selectedRow = 0
	}
}

func (m Model) renderRunsView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("SALESSEED RUNS"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	}

	if len(m.runs) == 0 {
		s.WriteString("No runs recorded yet. Run `salesseed seed` first.\n")
	} else {
		s.WriteString(m.renderRunsTable())
	}
	s.WriteString("\n")

	help := []string{"↑/↓: Navigate", "Enter: Open run", "r: Reload", "q: Quit"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return s.String()
}

func (m Model) renderRunsTable() string {
	columns := []table.Column{
		{Title: "Run", Width: 28},
		{Title: "Started", Width: 20},
		{Title: "Status", Width: 10},
		{Title: "Requests", Width: 9},
		{Title: "Duration", Width: 10},
		{Title: "API", Width: 30},
	}

	var rows []table.Row
	for _, run := range m.runs {
		duration := "-"
		if run.FinishedAt != nil {
			duration = run.Duration().Round(time.Millisecond).String()
		}
		rows = append(rows, table.Row{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Status,
			fmt.Sprintf("%d", run.Requests),
			duration,
			run.BaseURL,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) handleRunsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.runs)-1 {
			m.selectedRow++
		}
	case "r":
		m.loadRuns()
	case "enter":
		if m.selectedRow < len(m.runs) {
			m.openRun(m.runs[m.selectedRow].ID)
		}
	}
	return m, nil
}

func (m *Model) openRun(runID string) {
	m.viewMode = ViewDetail
	m.tab = TabItems
	m.detailRow = 0
	m.items, m.requests, m.performance = nil, nil, nil

	all, err := db.ListEvents(m.db, runID)
	if err != nil {
		m.err = err
		return
	}
	for _, e := range all {
		switch e.Kind {
		case events.KindItem, events.KindWarn:
			m.items = append(m.items, e)
		case events.KindHTTP:
			m.requests = append(m.requests, e)
		}
	}

	m.performance, m.err = db.GetPerformance(m.db, runID)
}
