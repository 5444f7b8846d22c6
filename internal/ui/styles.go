package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	Input       lipgloss.Style
	Name        lipgloss.Style
	Highlight   lipgloss.Style
	Status      lipgloss.Style
	Searching   lipgloss.Style
	NotFound    lipgloss.Style
	StatusError lipgloss.Style
	Dim         lipgloss.Style
	Main        lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		Name:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Searching:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		NotFound:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Italic(true),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Dim:         lipgloss.NewStyle().Faint(true),
		Main:        lipgloss.NewStyle().Padding(1, 2),
	}
}

// highlightMatch renders name with the first case-insensitive occurrence of
// query emphasised. Names whose lower-case form changes byte length are
// rendered plain.
func (s *Styles) highlightMatch(name, query string) string {
	if strings.TrimSpace(query) == "" {
		return s.Name.Render(name)
	}
	lowerName := strings.ToLower(name)
	lowerQuery := strings.ToLower(query)
	if len(lowerName) != len(name) || len(lowerQuery) != len(query) {
		return s.Name.Render(name)
	}
	i := strings.Index(lowerName, lowerQuery)
	if i < 0 {
		return s.Name.Render(name)
	}
	j := i + len(query)
	return s.Name.Render(name[:i]) + s.Highlight.Render(name[i:j]) + s.Name.Render(name[j:])
}
