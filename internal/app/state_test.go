package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phase-analyzer/internal/capillary"
	"phase-analyzer/internal/units"
)

func readyState(t *testing.T) *State {
	t.Helper()
	s := NewState()
	require.NoError(t, s.SetCeiling(100))
	require.NoError(t, s.SetFloor(300))
	_, err := s.SetHeightText("50")
	require.NoError(t, err)
	return s
}

func TestAddParticleComputesHeight(t *testing.T) {
	s := readyState(t)

	p, err := s.AddParticle(0, 200)
	require.NoError(t, err)
	assert.Equal(t, "P1", p.Name)
	assert.InDelta(t, 25.0, p.HeightUM, 1e-9)

	p2, err := s.AddParticle(0, 300)
	require.NoError(t, err)
	assert.Equal(t, "P2", p2.Name)
	assert.Zero(t, p2.HeightUM)
}

func TestFrameMutationRecomputesAllParticles(t *testing.T) {
	s := readyState(t)
	p, err := s.AddParticle(0, 200)
	require.NoError(t, err)
	require.InDelta(t, 25.0, p.HeightUM, 1e-9)

	// Doubling the channel height doubles every stored height.
	_, err = s.SetHeightText("100um")
	require.NoError(t, err)
	assert.InDelta(t, 50.0, p.HeightUM, 1e-9)

	// Moving the floor moves the interpolation base.
	require.NoError(t, s.SetFloor(400))
	assert.InDelta(t, 100.0/3*2, p.HeightUM, 1e-6)

	require.NoError(t, s.NudgeFloor(1))
	assert.Equal(t, 401.0, *s.Frame.FloorY)
}

func TestHeightTextValidation(t *testing.T) {
	s := readyState(t)

	_, err := s.SetHeightText("50xyz")
	assert.True(t, units.Is(err, units.InvalidUnit))
	assert.Equal(t, 50.0, *s.Frame.HeightUM, "bad input keeps the prior height")

	h, err := s.SetHeightText("1.5mm")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, h)
}

func TestMagnetDistanceMode(t *testing.T) {
	s := NewState()
	require.NoError(t, s.SetWallEnabled(true))
	require.NoError(t, s.SetWallThicknessText("50"))
	s.SetHeightMode(capillary.MagnetDistance)

	h, err := s.SetHeightText("1000")
	require.NoError(t, err)
	assert.Equal(t, 900.0, h)
}

func TestDisablingWallZeroesThickness(t *testing.T) {
	s := NewState()
	require.NoError(t, s.SetWallEnabled(true))
	require.NoError(t, s.SetWallThicknessText("5um"))
	require.Equal(t, 5.0, s.Frame.WallThicknessUM)

	require.NoError(t, s.SetWallEnabled(false))
	assert.Zero(t, s.Frame.WallThicknessUM)
}

func TestAngleTextRejectsOutOfRange(t *testing.T) {
	s := NewState()
	require.NoError(t, s.SetAngle(10))

	err := s.SetAngleText("900")
	assert.ErrorIs(t, err, capillary.ErrAngleOutOfRange)
	assert.Equal(t, 10.0, s.Frame.AngleDegrees)

	err = s.SetAngleText("not a number")
	assert.Error(t, err)
	assert.Equal(t, 10.0, s.Frame.AngleDegrees)

	require.NoError(t, s.SetAngleText("-45.5"))
	assert.Equal(t, -45.5, s.Frame.AngleDegrees)

	// The coarse control clamps instead.
	require.NoError(t, s.SetAngle(900))
	assert.Equal(t, 90.0, s.Frame.AngleDegrees)
}

func TestAutoNamesSkipUsed(t *testing.T) {
	s := readyState(t)

	_, err := s.AddParticle(0, 200)
	require.NoError(t, err)
	s.RenameParticle(0, "blob")

	// "P1" was still consumed by the first particle, so the next
	// free slot is P2 even after the rename.
	p, err := s.AddParticle(0, 210)
	require.NoError(t, err)
	assert.Equal(t, "P2", p.Name)

	s.RemoveParticle(1)
	p, err = s.AddParticle(0, 220)
	require.NoError(t, err)
	assert.Equal(t, "P3", p.Name, "removed names stay burned")
}

func TestParticleAt(t *testing.T) {
	s := readyState(t)
	_, err := s.AddParticle(100, 200)
	require.NoError(t, err)
	_, err = s.AddParticle(120, 200)
	require.NoError(t, err)

	assert.Equal(t, 0, s.ParticleAt(101, 201, 10))
	assert.Equal(t, 1, s.ParticleAt(119, 200, 10))
	assert.Equal(t, -1, s.ParticleAt(500, 500, 10))
}

func TestEvents(t *testing.T) {
	s := NewState()

	var frameEvents, particleEvents int
	var modified bool
	s.On(EventFrameChanged, func(interface{}) { frameEvents++ })
	s.On(EventParticlesChanged, func(interface{}) { particleEvents++ })
	s.On(EventModified, func(data interface{}) { modified = data.(bool) })

	require.NoError(t, s.SetCeiling(10))
	assert.Equal(t, 1, frameEvents)
	assert.True(t, modified)

	s.ClearSelections()
	assert.Equal(t, 2, frameEvents)
	assert.GreaterOrEqual(t, particleEvents, 2)
}

func TestClearSelectionsKeepsImageAndHeight(t *testing.T) {
	s := readyState(t)
	_, err := s.AddParticle(0, 200)
	require.NoError(t, err)

	s.ClearSelections()
	assert.Nil(t, s.Frame.CeilingY)
	assert.Nil(t, s.Frame.FloorY)
	assert.Empty(t, s.Particles)
	assert.NotNil(t, s.Frame.HeightUM, "height survives a selection clear")
}

func TestClearWorkspace(t *testing.T) {
	s := readyState(t)
	s.SetName("run 9")
	_, err := s.AddParticle(0, 200)
	require.NoError(t, err)

	s.ClearWorkspace()
	assert.Equal(t, DefaultWorkspaceName, s.Name)
	assert.False(t, s.Modified)
	assert.Empty(t, s.Particles)
	assert.Nil(t, s.Frame.HeightUM)

	p, err := s.AddParticle(0, 200)
	require.NoError(t, err)
	assert.Equal(t, "P1", p.Name, "used names reset with the workspace")
}

func TestWorkspaceSaveLoadRoundTrip(t *testing.T) {
	s := readyState(t)
	s.SetName("session A")
	require.NoError(t, s.SetAngleText("2.5"))
	p, err := s.AddParticle(10, 200)
	require.NoError(t, err)
	s.SetParticleNotes(0, "doublet")
	require.True(t, s.Modified)

	path := filepath.Join(t.TempDir(), "a.phw")
	require.NoError(t, s.SaveWorkspace(path))
	assert.False(t, s.Modified)
	assert.Equal(t, path, s.WorkspacePath)

	s2 := NewState()
	var loaded bool
	s2.On(EventWorkspaceLoaded, func(interface{}) { loaded = true })
	require.NoError(t, s2.LoadWorkspace(path))

	assert.True(t, loaded)
	assert.Equal(t, "session A", s2.Name)
	assert.Equal(t, 2.5, s2.Frame.AngleDegrees)
	require.Len(t, s2.Particles, 1)
	assert.Equal(t, p.Name, s2.Particles[0].Name)
	assert.Equal(t, "doublet", s2.Particles[0].Notes)
	assert.InDelta(t, p.HeightUM, s2.Particles[0].HeightUM, 1e-9)
	assert.False(t, s2.Modified)

	// Loaded name sets continue the numbering.
	next, err := s2.AddParticle(0, 250)
	require.NoError(t, err)
	assert.Equal(t, "P2", next.Name)
}

func TestExportCSV(t *testing.T) {
	s := readyState(t)
	_, err := s.AddParticle(0, 200)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, s.ExportCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Name,Height (µm),Notes"))
	assert.Contains(t, string(data), "P1,25.00")
}
