package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phase-analyzer/internal/capillary"
)

func TestRoundTrip(t *testing.T) {
	fr := capillary.NewFrame()
	fr.SetCeiling(100.5)
	fr.SetFloor(300.25)
	fr.SetHeight(50, capillary.CapillaryHeight, false)
	fr.SetAngle(-3.5)
	require.NoError(t, fr.SetWallThickness(5))

	p := capillary.NewParticle(42, 180, "P1")
	require.NoError(t, p.UpdateHeight(fr))
	p.Notes = "near the inlet"

	f := New("run 12")
	f.SetFrame(fr)
	f.Particles = []*capillary.Particle{p}
	f.SetUsedNames(map[string]struct{}{"P1": {}, "blob": {}})
	f.Image = "aGVsbG8="

	path := filepath.Join(t.TempDir(), "run12"+Extension)
	require.NoError(t, f.Save(path))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "run 12", got.Name)
	assert.Equal(t, FormatVersion, got.Version)
	require.NotNil(t, got.CeilingY)
	assert.Equal(t, 100.5, *got.CeilingY)
	require.NotNil(t, got.FloorY)
	assert.Equal(t, 300.25, *got.FloorY)
	assert.Equal(t, -3.5, got.AngleDegrees)
	assert.Equal(t, 5.0, got.WallThicknessUM)
	assert.Equal(t, []string{"P1", "blob"}, got.UsedNames)
	assert.Equal(t, "aGVsbG8=", got.Image)

	require.Len(t, got.Particles, 1)
	assert.Equal(t, "P1", got.Particles[0].Name)
	assert.Equal(t, "near the inlet", got.Particles[0].Notes)
	assert.Equal(t, 42.0, got.Particles[0].X)
	assert.InDelta(t, p.HeightUM, got.Particles[0].HeightUM, 1e-9)
	assert.Equal(t, 10.0, got.Particles[0].LabelOffset.X)
	assert.Equal(t, -60.0, got.Particles[0].LabelOffset.Y)

	// Unset optionals survive as nil, not zero.
	back := got.Frame()
	assert.NotNil(t, back.HeightUM)
}

func TestUnsetOptionalsStayNil(t *testing.T) {
	f := New("empty")
	path := filepath.Join(t.TempDir(), "empty"+Extension)
	require.NoError(t, f.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"ceiling_y": null`))

	got, err := Load(path)
	require.NoError(t, err)
	fr := got.Frame()
	assert.Nil(t, fr.CeilingY)
	assert.Nil(t, fr.FloorY)
	assert.Nil(t, fr.HeightUM)
	assert.False(t, fr.Ready())
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future"+Extension)
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "name": "x"}`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad"+Extension)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSetFrameCopies(t *testing.T) {
	fr := capillary.NewFrame()
	fr.SetCeiling(10)

	f := New("x")
	f.SetFrame(fr)
	fr.NudgeCeiling(1)

	assert.Equal(t, 10.0, *f.CeilingY, "record must not alias the live frame")
}
