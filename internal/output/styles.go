package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the terminal styling definitions for chromactl output.
type Styles struct {
	Header lipgloss.Style // table header row
	Cell   lipgloss.Style // table body cells
	Border lipgloss.Style // table borders
	Panel  lipgloss.Style // bordered stat panels
	Title  lipgloss.Style // panel titles
	Label  lipgloss.Style // key column in stat panels
	Notice lipgloss.Style // informational notices ("no collections found")
	Muted  lipgloss.Style // footers and secondary text
}

// DefaultStyles creates the default style set using the default renderer.
func DefaultStyles() Styles {
	return NewStyles(lipgloss.DefaultRenderer())
}

// NewStyles creates the style set using the given renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213")).
			Padding(0, 1),
		Cell: r.NewStyle().
			Padding(0, 1),
		Border: r.NewStyle().
			Foreground(lipgloss.Color("238")),
		Panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1),
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("76")),
		Label: r.NewStyle().
			Foreground(lipgloss.Color("245")),
		Notice: r.NewStyle().
			Foreground(lipgloss.Color("214")),
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("245")),
	}
}
