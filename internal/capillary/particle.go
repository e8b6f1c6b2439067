package capillary

import (
	"phase-analyzer/pkg/geometry"
)

// Default label placement relative to the marker, matching where a
// fresh label drops on the canvas.
var defaultLabelOffset = geometry.Point2D{X: 10, Y: -60}

// Particle marks one point of interest inside the channel. X and Y are
// fixed at creation; Name and Notes are user-editable; HeightUM is
// derived from the frame and never entered directly. LabelOffset is
// purely presentational but persists with the workspace.
type Particle struct {
	X           float64          `json:"x"`
	Y           float64          `json:"y"`
	Name        string           `json:"name"`
	HeightUM    float64          `json:"height_um"`
	Notes       string           `json:"notes,omitempty"`
	LabelOffset geometry.Point2D `json:"label_offset"`
}

// NewParticle creates a particle at image-space (x, y) with the label
// in its default position.
func NewParticle(x, y float64, name string) *Particle {
	return &Particle{
		X:           x,
		Y:           y,
		Name:        name,
		LabelOffset: defaultLabelOffset,
	}
}

// UpdateHeight recomputes the particle's height from the frame. The
// stored height becomes zero when the frame reports a degenerate span.
func (p *Particle) UpdateHeight(f *Frame) error {
	h, err := f.HeightAt(p.X, p.Y)
	p.HeightUM = h
	return err
}

// LabelAnchor returns the image-space position of the particle's label.
func (p *Particle) LabelAnchor() geometry.Point2D {
	return geometry.Point2D{X: p.X, Y: p.Y}.Add(p.LabelOffset)
}
