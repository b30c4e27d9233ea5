// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Iris   = lipgloss.Color("#3776AB")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Bullet  = "*"
)

// Listing holds the styles of the target listing.
type Listing struct {
	Heading     lipgloss.Style
	Name        lipgloss.Style
	Description lipgloss.Style
}

// NewListing builds listing styles bound to r. Names are padded to width.
func NewListing(r *lipgloss.Renderer, width int) Listing {
	return Listing{
		Heading:     r.NewStyle().Bold(true),
		Name:        r.NewStyle().Foreground(Iris).Bold(true).Width(width),
		Description: r.NewStyle().Foreground(Slate),
	}
}
