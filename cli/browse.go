// ABOUTME: Browse CLI command
// ABOUTME: Opens the interactive run browser
package cli

import (
	"database/sql"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/salesseed/tui"
)

// BrowseCommand launches the full-screen run browser.
func BrowseCommand(database *sql.DB) error {
	p := tea.NewProgram(tui.NewModel(database), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}
