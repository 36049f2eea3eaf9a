package finder

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#2563EB")
	muted  = lipgloss.Color("#6B7280")
	border = lipgloss.Color("#D1D5DB")
	warn   = lipgloss.Color("#B45309")
)

// Styles groups every lipgloss style the finder draws with.
type Styles struct {
	Title      lipgloss.Style
	Address    lipgloss.Style
	Chip       lipgloss.Style
	ChipActive lipgloss.Style
	Item       lipgloss.Style
	Cursor     lipgloss.Style
	Selected   lipgloss.Style
	Muted      lipgloss.Style
	Empty      lipgloss.Style
	Notice     lipgloss.Style
	Sheet      lipgloss.Style
	Tab        lipgloss.Style
	TabActive  lipgloss.Style
	Help       lipgloss.Style
}

// DefaultStyles returns the finder palette.
func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		Address:    lipgloss.NewStyle().Foreground(muted),
		Chip:       lipgloss.NewStyle().Padding(0, 1),
		ChipActive: lipgloss.NewStyle().Padding(0, 1).Bold(true).Reverse(true),
		Item:       lipgloss.NewStyle().PaddingLeft(2),
		Cursor:     lipgloss.NewStyle().PaddingLeft(0).Bold(true).Foreground(accent),
		Selected:   lipgloss.NewStyle().Bold(true),
		Muted:      lipgloss.NewStyle().Foreground(muted),
		Empty:      lipgloss.NewStyle().Foreground(muted).Padding(1, 2),
		Notice:     lipgloss.NewStyle().Foreground(warn),
		Sheet:      lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderTop(true).BorderForeground(border),
		Tab:        lipgloss.NewStyle().Padding(0, 1).Foreground(muted),
		TabActive:  lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true),
		Help:       lipgloss.NewStyle().Foreground(muted),
	}
}
