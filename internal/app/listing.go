package app

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"go.trai.ch/pyrun/internal/adapters/detector" //nolint:depguard // Terminal detection
	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/pyrun/internal/ui/output"
	"go.trai.ch/pyrun/internal/ui/style"
)

const listingHeading = "Available targets:"

// printListing writes every visible target with its description.
func (a *App) printListing(w io.Writer, table *domain.Table) error {
	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = detector.IsTerminal(f)
	}
	return writeListing(w, table, output.ColorProfileFor(isTTY))
}

func writeListing(w io.Writer, table *domain.Table, profileFn func() termenv.Profile) error {
	width := 0
	for target := range table.All() {
		if !target.Internal {
			width = max(width, len(target.Name.String()))
		}
	}

	styles := style.NewListing(output.NewRenderer(w, profileFn), width+2)

	if _, err := fmt.Fprintln(w, styles.Heading.Render(listingHeading)); err != nil {
		return err
	}
	for target := range table.All() {
		if target.Internal {
			continue
		}

		line := fmt.Sprintf(" %s %s", style.Bullet, styles.Name.UnsetWidth().Render(target.Name.String()))
		if target.Description != "" {
			line = fmt.Sprintf(" %s %s%s", style.Bullet,
				styles.Name.Render(target.Name.String()),
				styles.Description.Render(target.Description))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
