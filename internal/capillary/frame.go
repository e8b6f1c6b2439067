// Package capillary models the measured capillary channel: the two
// reference lines marked on the micrograph, the channel height, tilt
// angle, and wall thickness, and the interpolation that turns a pixel
// position into a physical particle height.
package capillary

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"phase-analyzer/pkg/geometry"
)

// HeightMode selects how a committed height value is interpreted.
type HeightMode int

const (
	// CapillaryHeight means the value is the internal channel height.
	CapillaryHeight HeightMode = iota
	// MagnetDistance means the value is the outer magnet-to-magnet
	// distance; the glass wall is crossed twice, so twice the wall
	// thickness is subtracted to get the channel height.
	MagnetDistance
)

// Angle limits for the capillary tilt, in degrees.
const (
	MinAngle = -90.0
	MaxAngle = 90.0
)

// spanEps guards the interpolation divisor. A ceiling/floor span this
// close to zero leaves no usable channel to interpolate in.
const spanEps = 1e-9

var (
	// ErrInvalidThickness rejects negative wall thickness values.
	ErrInvalidThickness = errors.New("wall thickness must be non-negative")
	// ErrAngleOutOfRange rejects manually entered angles outside ±90°.
	ErrAngleOutOfRange = errors.New("angle must be between -90 and 90 degrees")
	// ErrDegenerateSpan means the wall-adjusted ceiling and floor
	// coincide, so heights cannot be interpolated.
	ErrDegenerateSpan = errors.New("ceiling and floor lines coincide")
)

// Frame holds the reference geometry of one capillary measurement.
// CeilingY, FloorY, and HeightUM start unset; heights read as zero
// until all three are present.
type Frame struct {
	CeilingY        *float64
	FloorY          *float64
	HeightUM        *float64
	AngleDegrees    float64
	WallThicknessUM float64
}

// NewFrame returns an empty frame: no lines, no height, 0° tilt.
func NewFrame() *Frame {
	return &Frame{}
}

// Reset clears every field back to the initial state.
func (f *Frame) Reset() {
	*f = Frame{}
}

// ClearLines unsets both reference lines, keeping height and angle.
func (f *Frame) ClearLines() {
	f.CeilingY = nil
	f.FloorY = nil
}

// SetCeiling anchors the ceiling line at the given image-space y.
func (f *Frame) SetCeiling(y float64) {
	f.CeilingY = ptr(y)
}

// SetFloor anchors the floor line at the given image-space y.
func (f *Frame) SetFloor(y float64) {
	f.FloorY = ptr(y)
}

// NudgeCeiling moves the ceiling line by one pixel. direction is -1
// (up) or +1 (down). No-op while the line is unset.
func (f *Frame) NudgeCeiling(direction int) {
	if f.CeilingY != nil {
		*f.CeilingY += float64(direction)
	}
}

// NudgeFloor moves the floor line by one pixel, like NudgeCeiling.
func (f *Frame) NudgeFloor(direction int) {
	if f.FloorY != nil {
		*f.FloorY += float64(direction)
	}
}

// SetAngle replaces the tilt angle, clamping into [MinAngle, MaxAngle].
// This is the coarse-control path; out-of-range input saturates.
func (f *Frame) SetAngle(deg float64) {
	f.AngleDegrees = clampAngle(deg)
}

// AdjustAngle adds a fine-control delta to the current angle, then
// clamps the sum.
func (f *Frame) AdjustAngle(delta float64) {
	f.AngleDegrees = clampAngle(f.AngleDegrees + delta)
}

// SetAngleExact applies a manually typed angle. Unlike SetAngle it
// rejects out-of-range values instead of clamping: a typo like "900"
// should fail loudly, not saturate to 90.
func (f *Frame) SetAngleExact(deg float64) error {
	if deg < MinAngle || deg > MaxAngle {
		return ErrAngleOutOfRange
	}
	f.AngleDegrees = deg
	return nil
}

// SetWallThickness sets the glass wall thickness in micrometers.
func (f *Frame) SetWallThickness(um float64) error {
	if um < 0 {
		return ErrInvalidThickness
	}
	f.WallThicknessUM = um
	return nil
}

// SetHeight derives and stores the channel height from a committed raw
// value in micrometers. In MagnetDistance mode with the wall enabled,
// the raw value is the outer distance and 2×wall is subtracted.
// Returns the stored channel height.
func (f *Frame) SetHeight(rawUM float64, mode HeightMode, wallEnabled bool) float64 {
	h := rawUM
	if mode == MagnetDistance && wallEnabled {
		h = rawUM - 2*f.WallThicknessUM
	}
	f.HeightUM = &h
	return h
}

// Ready reports whether both lines and the channel height are set.
func (f *Frame) Ready() bool {
	return f.CeilingY != nil && f.FloorY != nil && f.HeightUM != nil
}

// Ceiling returns the ceiling reference line with the current tilt
// applied. Only valid when the ceiling is set.
func (f *Frame) Ceiling() geometry.SlopedLine {
	return f.line(f.CeilingY)
}

// Floor returns the floor reference line with the current tilt applied.
func (f *Frame) Floor() geometry.SlopedLine {
	return f.line(f.FloorY)
}

func (f *Frame) line(anchor *float64) geometry.SlopedLine {
	l := geometry.SlopedLine{Slope: geometry.SlopeFromDegrees(f.AngleDegrees)}
	if anchor != nil {
		l.AnchorY = *anchor
	}
	return l
}

// WallInsetAt returns the pixel offset each reference line moves inward
// by at the given x to account for the glass wall. Zero when the wall
// thickness is zero or the frame is not ready.
func (f *Frame) WallInsetAt(x float64) float64 {
	if !f.Ready() || f.WallThicknessUM <= 0 || *f.HeightUM == 0 {
		return 0
	}
	total := math.Abs(f.Ceiling().YAt(x) - f.Floor().YAt(x))
	return f.WallThicknessUM / *f.HeightUM * total
}

// HeightAt interpolates the physical height in micrometers of a point
// at image-space (x, y). Both reference lines are projected to x using
// the tilt slope; with a nonzero wall thickness the lines move inward
// in proportion to wall/height before interpolating. Distance from the
// floor line, as a fraction of the adjusted span, scales the channel
// height.
//
// Returns 0 with a nil error while the frame is not Ready, and 0 with
// ErrDegenerateSpan when the adjusted lines coincide.
func (f *Frame) HeightAt(x, y float64) (float64, error) {
	if !f.Ready() {
		return 0, nil
	}

	ceilingY := f.Ceiling().YAt(x)
	floorY := f.Floor().YAt(x)
	total := math.Abs(ceilingY - floorY)

	if f.WallThicknessUM > 0 {
		if *f.HeightUM == 0 {
			return 0, ErrDegenerateSpan
		}
		adjust := f.WallThicknessUM / *f.HeightUM * total
		ceilingY += adjust
		floorY -= adjust
	}

	span := math.Abs(ceilingY - floorY)
	if scalar.EqualWithinAbs(span, 0, spanEps) {
		return 0, ErrDegenerateSpan
	}

	return math.Abs(y-floorY) / span * *f.HeightUM, nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{
		AngleDegrees:    f.AngleDegrees,
		WallThicknessUM: f.WallThicknessUM,
	}
	if f.CeilingY != nil {
		c.CeilingY = ptr(*f.CeilingY)
	}
	if f.FloorY != nil {
		c.FloorY = ptr(*f.FloorY)
	}
	if f.HeightUM != nil {
		c.HeightUM = ptr(*f.HeightUM)
	}
	return c
}

func clampAngle(deg float64) float64 {
	if deg < MinAngle {
		return MinAngle
	}
	if deg > MaxAngle {
		return MaxAngle
	}
	return deg
}

func ptr(v float64) *float64 {
	return &v
}
