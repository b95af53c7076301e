// Package cliui provides terminal UI helpers (status marks, styled labels,
// markdown rendering) for the parley CLI commands.
package cliui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("●")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("●")
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	KeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	NameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

	UserPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	AssistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
)

// StatusMark returns a green dot for ok or a red one otherwise.
func StatusMark(ok bool) string {
	if ok {
		return SuccessMark
	}
	return FailMark
}

// RenderMarkdown renders markdown content for terminal display using
// glamour. On any rendering failure the raw content comes back unchanged.
func RenderMarkdown(content string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return rendered
}
