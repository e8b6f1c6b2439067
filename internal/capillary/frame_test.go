package capillary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeightAtUnsetFields(t *testing.T) {
	f := NewFrame()

	h, err := f.HeightAt(10, 200)
	require.NoError(t, err)
	assert.Zero(t, h, "empty frame")

	f.SetCeiling(100)
	h, err = f.HeightAt(10, 200)
	require.NoError(t, err)
	assert.Zero(t, h, "floor and height still unset")

	f.SetFloor(300)
	h, err = f.HeightAt(10, 200)
	require.NoError(t, err)
	assert.Zero(t, h, "height still unset")
}

func TestHeightAtFlat(t *testing.T) {
	f := NewFrame()
	f.SetCeiling(100)
	f.SetFloor(300)
	f.SetHeight(50, CapillaryHeight, false)

	h, err := f.HeightAt(0, 200)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, h, 1e-9, "midpoint of a 50µm channel")

	h, err = f.HeightAt(0, 300)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, h, 1e-9, "on the floor")

	h, err = f.HeightAt(0, 100)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, h, 1e-9, "on the ceiling")
}

func TestHeightAtWithWall(t *testing.T) {
	f := NewFrame()
	f.SetCeiling(100)
	f.SetFloor(300)
	require.NoError(t, f.SetWallThickness(5))
	f.SetHeight(50, CapillaryHeight, true)

	// adjust = 5/50 × 200 = 20: ceiling 120, floor 280, span 160.
	h, err := f.HeightAt(0, 150)
	require.NoError(t, err)
	assert.InDelta(t, 40.625, h, 1e-9)
}

func TestHeightAtTilted(t *testing.T) {
	f := NewFrame()
	f.SetCeiling(100)
	f.SetFloor(300)
	f.SetHeight(50, CapillaryHeight, false)
	f.SetAngle(10)

	slope := math.Tan(10 * math.Pi / 180)
	x := 80.0
	// Probing the projected midpoint must return the mid height.
	mid := (100 + 300) / 2.0
	h, err := f.HeightAt(x, mid+x*slope)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, h, 1e-9)
}

func TestHeightAtDegenerateSpan(t *testing.T) {
	f := NewFrame()
	f.SetCeiling(200)
	f.SetFloor(200)
	f.SetHeight(50, CapillaryHeight, false)

	h, err := f.HeightAt(0, 150)
	assert.ErrorIs(t, err, ErrDegenerateSpan)
	assert.Zero(t, h)

	// The wall inset can collapse a real span too.
	f2 := NewFrame()
	f2.SetCeiling(100)
	f2.SetFloor(120)
	require.NoError(t, f2.SetWallThickness(25))
	f2.SetHeight(100, CapillaryHeight, true)
	// adjust = 25/100 × 20 = 5: ceiling 105, floor 115, fine.
	_, err = f2.HeightAt(0, 110)
	require.NoError(t, err)

	require.NoError(t, f2.SetWallThickness(50))
	// adjust = 50/100 × 20 = 10: ceiling 110, floor 110, degenerate.
	h, err = f2.HeightAt(0, 110)
	assert.ErrorIs(t, err, ErrDegenerateSpan)
	assert.Zero(t, h)
}

func TestHeightAtZeroChannelWithWall(t *testing.T) {
	f := NewFrame()
	f.SetCeiling(100)
	f.SetFloor(300)
	require.NoError(t, f.SetWallThickness(5))
	f.SetHeight(0, CapillaryHeight, true)

	h, err := f.HeightAt(0, 200)
	assert.ErrorIs(t, err, ErrDegenerateSpan)
	assert.Zero(t, h)
}

func TestSetHeightMagnetDistance(t *testing.T) {
	f := NewFrame()
	require.NoError(t, f.SetWallThickness(50))

	got := f.SetHeight(1000, MagnetDistance, true)
	assert.InDelta(t, 900.0, got, 1e-9)
	assert.InDelta(t, 900.0, *f.HeightUM, 1e-9)

	// Wall disabled: the raw value is taken as-is.
	got = f.SetHeight(1000, MagnetDistance, false)
	assert.InDelta(t, 1000.0, got, 1e-9)

	got = f.SetHeight(1000, CapillaryHeight, true)
	assert.InDelta(t, 1000.0, got, 1e-9)
}

func TestAngleClampAndExact(t *testing.T) {
	f := NewFrame()

	f.SetAngle(135)
	assert.Equal(t, 90.0, f.AngleDegrees)
	f.SetAngle(-135)
	assert.Equal(t, -90.0, f.AngleDegrees)

	f.SetAngle(85)
	f.AdjustAngle(10)
	assert.Equal(t, 90.0, f.AngleDegrees, "delta clamps at the limit")
	f.AdjustAngle(-0.5)
	assert.InDelta(t, 89.5, f.AngleDegrees, 1e-9)

	require.NoError(t, f.SetAngleExact(-90))
	assert.Equal(t, -90.0, f.AngleDegrees)

	err := f.SetAngleExact(90.01)
	assert.ErrorIs(t, err, ErrAngleOutOfRange)
	assert.Equal(t, -90.0, f.AngleDegrees, "rejected input leaves the angle alone")
}

func TestNudgeLines(t *testing.T) {
	f := NewFrame()

	f.NudgeCeiling(-1)
	f.NudgeFloor(1)
	assert.Nil(t, f.CeilingY, "nudge is a no-op while unset")
	assert.Nil(t, f.FloorY)

	f.SetCeiling(100)
	f.SetFloor(300)
	f.NudgeCeiling(-1)
	f.NudgeFloor(1)
	assert.Equal(t, 99.0, *f.CeilingY)
	assert.Equal(t, 301.0, *f.FloorY)
}

func TestSetWallThicknessRejectsNegative(t *testing.T) {
	f := NewFrame()
	require.NoError(t, f.SetWallThickness(5))

	err := f.SetWallThickness(-1)
	assert.ErrorIs(t, err, ErrInvalidThickness)
	assert.Equal(t, 5.0, f.WallThicknessUM, "prior value retained")
}

func TestParticleUpdateHeight(t *testing.T) {
	f := NewFrame()
	f.SetCeiling(50)
	f.SetFloor(250)
	f.SetHeight(200, CapillaryHeight, false)

	p := NewParticle(10, 150, "P1")
	require.NoError(t, p.UpdateHeight(f))
	assert.InDelta(t, 100.0, p.HeightUM, 1e-9)

	assert.Equal(t, 20.0, p.LabelAnchor().X)
	assert.Equal(t, 90.0, p.LabelAnchor().Y)
}

func TestFrameClone(t *testing.T) {
	f := NewFrame()
	f.SetCeiling(100)
	f.SetHeight(50, CapillaryHeight, false)
	f.SetAngle(5)

	c := f.Clone()
	f.NudgeCeiling(1)
	*f.HeightUM = 99

	assert.Equal(t, 100.0, *c.CeilingY)
	assert.Equal(t, 50.0, *c.HeightUM)
	assert.Equal(t, 5.0, c.AngleDegrees)
	assert.Nil(t, c.FloorY)
}
