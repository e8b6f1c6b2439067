// Package export writes particle measurements out of the application:
// CSV files and clipboard text.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"

	"phase-analyzer/internal/capillary"
)

// Header is the fixed CSV column layout.
var Header = []string{"Name", "Height (µm)", "Notes"}

// ErrNoParticles is returned when there is nothing to export.
var ErrNoParticles = fmt.Errorf("no particles to export")

// Write renders particles as CSV. Heights print with two decimals.
// The notes column is emitted either way so the header stays stable,
// but its values are blanked unless includeNotes is set.
func Write(w io.Writer, particles []*capillary.Particle, includeNotes bool) error {
	if len(particles) == 0 {
		return ErrNoParticles
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range particles {
		notes := ""
		if includeNotes {
			notes = p.Notes
		}
		row := []string{p.Name, fmt.Sprintf("%.2f", p.HeightUM), notes}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the CSV to a file.
func Save(path string, particles []*capillary.Particle, includeNotes bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Write(f, particles, includeNotes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// String renders the CSV in memory.
func String(particles []*capillary.Particle, includeNotes bool) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, particles, includeNotes); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToClipboard copies the CSV rendering to the system clipboard.
func ToClipboard(particles []*capillary.Particle, includeNotes bool) error {
	s, err := String(particles, includeNotes)
	if err != nil {
		return err
	}
	return clipboard.WriteAll(s)
}
