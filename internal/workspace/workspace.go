// Package workspace persists a measurement session to a .phw file.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"phase-analyzer/internal/capillary"
)

// Extension is the workspace file extension.
const Extension = ".phw"

// FormatVersion is written into every saved file so future readers can
// migrate old workspaces.
const FormatVersion = 1

// File is the JSON structure of a .phw workspace file. The optional
// frame fields stay pointers so an unset line round-trips as null
// rather than collapsing to 0, which is a valid coordinate.
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created,omitempty"`
	Modified time.Time `json:"modified,omitempty"`

	HeightUM        *float64 `json:"capillary_height_um"`
	CeilingY        *float64 `json:"ceiling_y"`
	FloorY          *float64 `json:"floor_y"`
	AngleDegrees    float64  `json:"angle_degrees"`
	WallThicknessUM float64  `json:"wall_thickness_um"`

	Particles []*capillary.Particle `json:"particles"`
	UsedNames []string              `json:"used_names,omitempty"`

	// Base64 PNG of the original micrograph. Opaque here; the
	// micrograph package decodes it.
	Image string `json:"image,omitempty"`
}

// New creates an empty workspace record.
func New(name string) *File {
	return &File{
		Version: FormatVersion,
		Name:    name,
		Created: time.Now().UTC(),
	}
}

// SetFrame copies the frame's geometry into the record.
func (f *File) SetFrame(fr *capillary.Frame) {
	c := fr.Clone()
	f.CeilingY = c.CeilingY
	f.FloorY = c.FloorY
	f.HeightUM = c.HeightUM
	f.AngleDegrees = c.AngleDegrees
	f.WallThicknessUM = c.WallThicknessUM
}

// Frame reconstructs a capillary frame from the record.
func (f *File) Frame() *capillary.Frame {
	fr := &capillary.Frame{
		CeilingY:        f.CeilingY,
		FloorY:          f.FloorY,
		HeightUM:        f.HeightUM,
		AngleDegrees:    f.AngleDegrees,
		WallThicknessUM: f.WallThicknessUM,
	}
	return fr.Clone()
}

// SetUsedNames stores the name set in sorted order for stable output.
func (f *File) SetUsedNames(names map[string]struct{}) {
	f.UsedNames = make([]string, 0, len(names))
	for n := range names {
		f.UsedNames = append(f.UsedNames, n)
	}
	sort.Strings(f.UsedNames)
}

// Load reads and parses a workspace file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse workspace: %w", err)
	}
	if f.Version > FormatVersion {
		return nil, fmt.Errorf("workspace format version %d is newer than this build supports", f.Version)
	}
	return &f, nil
}

// Save writes the workspace to path, stamping the modified time.
func (f *File) Save(path string) error {
	f.Version = FormatVersion
	f.Modified = time.Now().UTC()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize workspace: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write workspace: %w", err)
	}
	return nil
}
