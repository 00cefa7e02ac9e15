// ABOUTME: Run detail view for the TUI
// ABOUTME: Tabs for seeded items, the HTTP access log and the performance table
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/salesseed/events"
	"github.com/harperreed/salesseed/report"
)

func (m Model) selectedRun() string {
	if m.selectedRow < len(m.runs) {
		return m.runs[m.selectedRow].ID
	}
	return ""
}

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("RUN " + m.selectedRun()))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	}

	switch m.tab {
	case TabItems:
		s.WriteString(m.renderItemsTable())
	case TabRequests:
		s.WriteString(m.renderRequestsTable())
	case TabPerformance:
		s.WriteString(report.RenderPerformance(m.performance))
	}
	s.WriteString("\n")

	help := []string{"↑/↓: Navigate", "Tab: Switch tabs", "Esc: Back", "q: Quit"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return s.String()
}

func (m Model) renderTabs() string {
	tabs := []string{
		fmt.Sprintf("Items (%d)", len(m.items)),
		fmt.Sprintf("Requests (%d)", len(m.requests)),
		"Performance",
	}
	var rendered []string

	for i, tab := range tabs {
		if DetailTab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderItemsTable() string {
	columns := []table.Column{
		{Title: "Phase", Width: 14},
		{Title: "Item", Width: 32},
		{Title: "Outcome", Width: 10},
		{Title: "Detail", Width: 50},
	}

	var rows []table.Row
	for _, e := range m.items {
		item := strings.TrimSpace(e.Entity + " " + e.Item)
		detail := e.Message
		if e.EntityID != "" {
			detail = strings.TrimSpace("id " + e.EntityID + " " + detail)
		}
		rows = append(rows, table.Row{e.Phase, item, string(e.Outcome), detail})
	}

	return m.detailTable(columns, rows)
}

func (m Model) renderRequestsTable() string {
	columns := []table.Column{
		{Title: "#", Width: 6},
		{Title: "Method", Width: 7},
		{Title: "Path", Width: 44},
		{Title: "Status", Width: 7},
		{Title: "Time", Width: 8},
	}

	var rows []table.Row
	for _, e := range m.requests {
		status := fmt.Sprintf("%d", e.Status)
		if e.Status == 0 {
			status = "ERR"
		} else if requestFailed(e) {
			status += " ✗"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%04d", e.Request),
			e.Method,
			e.Path,
			status,
			e.Duration.Round(time.Millisecond).String(),
		})
	}

	return m.detailTable(columns, rows)
}

func (m Model) detailTable(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)
	if m.detailRow < len(rows) {
		t.SetCursor(m.detailRow)
	}
	return t.View()
}

func (m Model) detailLen() int {
	switch m.tab {
	case TabItems:
		return len(m.items)
	case TabRequests:
		return len(m.requests)
	}
	return 0
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewMode = ViewRuns
		m.err = nil
	case "tab":
		m.tab = (m.tab + 1) % 3
		m.detailRow = 0
	case "shift+tab":
		m.tab = (m.tab + 2) % 3
		m.detailRow = 0
	case "up", "k":
		if m.detailRow > 0 {
			m.detailRow--
		}
	case "down", "j":
		if m.detailRow < m.detailLen()-1 {
			m.detailRow++
		}
	}
	return m, nil
}

// requestFailed reports whether a logged call should be highlighted.
func requestFailed(e events.Event) bool {
	return e.Outcome == events.OutcomeFailed
}
