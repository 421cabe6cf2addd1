// ABOUTME: TUI initialization
// ABOUTME: Wraps the bubbletea program for the editor UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run creates the editor program for doc; the caller runs it
func Run(doc Document, title string) *tea.Program {
	return tea.NewProgram(NewModel(doc, title), tea.WithAltScreen())
}
