// Package app provides application lifecycle management, state, and events.
package app

import (
	"fmt"
	"strconv"
	"sync"

	"phase-analyzer/internal/capillary"
	"phase-analyzer/internal/export"
	"phase-analyzer/internal/micrograph"
	"phase-analyzer/internal/units"
	"phase-analyzer/internal/workspace"
	"phase-analyzer/pkg/geometry"
)

// DefaultWorkspaceName is used until the user names the session.
const DefaultWorkspaceName = "Untitled Workspace"

// State holds the application state: the loaded micrograph, the
// capillary frame, the particle list, and file bookkeeping. UI layers
// observe it through events rather than polling.
type State struct {
	mu sync.RWMutex

	// Workspace
	WorkspacePath string
	Name          string
	Modified      bool

	// Measurement
	Frame     *capillary.Frame
	Particles []*capillary.Particle
	usedNames map[string]struct{}

	// Image
	Micrograph *micrograph.Micrograph

	// Input interpretation for the height field
	HeightMode  capillary.HeightMode
	WallEnabled bool

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventWorkspaceLoaded EventType = iota
	EventWorkspaceSaved
	EventImageLoaded
	EventFrameChanged
	EventParticlesChanged
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state.
func NewState() *State {
	return &State{
		Name:      DefaultWorkspaceName,
		Frame:     capillary.NewFrame(),
		usedNames: make(map[string]struct{}),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the workspace as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// SetName renames the workspace.
func (s *State) SetName(name string) {
	s.mu.Lock()
	if name == "" {
		name = DefaultWorkspaceName
	}
	s.Name = name
	s.mu.Unlock()
	s.SetModified(true)
}

// LoadImage loads a micrograph from disk. Any existing lines and
// particles belong to the previous image and are discarded.
func (s *State) LoadImage(path string) error {
	m, err := micrograph.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Micrograph = m
	s.Frame.ClearLines()
	s.Particles = nil
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventImageLoaded, m)
	s.Emit(EventFrameChanged, nil)
	s.Emit(EventParticlesChanged, nil)
	return nil
}

// SetCeiling anchors the ceiling line and recomputes all heights.
func (s *State) SetCeiling(y float64) error {
	s.mu.Lock()
	s.Frame.SetCeiling(y)
	err := s.recomputeLocked()
	s.mu.Unlock()
	s.frameChanged()
	return err
}

// SetFloor anchors the floor line and recomputes all heights.
func (s *State) SetFloor(y float64) error {
	s.mu.Lock()
	s.Frame.SetFloor(y)
	err := s.recomputeLocked()
	s.mu.Unlock()
	s.frameChanged()
	return err
}

// NudgeCeiling moves the ceiling line one pixel; direction is ±1.
func (s *State) NudgeCeiling(direction int) error {
	s.mu.Lock()
	s.Frame.NudgeCeiling(direction)
	err := s.recomputeLocked()
	s.mu.Unlock()
	s.frameChanged()
	return err
}

// NudgeFloor moves the floor line one pixel; direction is ±1.
func (s *State) NudgeFloor(direction int) error {
	s.mu.Lock()
	s.Frame.NudgeFloor(direction)
	err := s.recomputeLocked()
	s.mu.Unlock()
	s.frameChanged()
	return err
}

// SetAngle replaces the tilt angle (coarse control; clamps).
func (s *State) SetAngle(deg float64) error {
	s.mu.Lock()
	s.Frame.SetAngle(deg)
	err := s.recomputeLocked()
	s.mu.Unlock()
	s.frameChanged()
	return err
}

// AdjustAngle adds a fine delta to the tilt angle (clamps).
func (s *State) AdjustAngle(delta float64) error {
	s.mu.Lock()
	s.Frame.AdjustAngle(delta)
	err := s.recomputeLocked()
	s.mu.Unlock()
	s.frameChanged()
	return err
}

// SetAngleText commits a manually typed angle. Unlike the controls it
// rejects anything outside ±90° and leaves the frame untouched on
// failure.
func (s *State) SetAngleText(text string) error {
	deg, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid angle %q", text)
	}

	s.mu.Lock()
	if err := s.Frame.SetAngleExact(deg); err != nil {
		s.mu.Unlock()
		return err
	}
	rerr := s.recomputeLocked()
	s.mu.Unlock()
	s.frameChanged()
	return rerr
}

// ResetAngle returns the tilt to 0°.
func (s *State) ResetAngle() error {
	return s.SetAngle(0)
}

// SetHeightText commits the height field. The text goes through the
// unit parser; the derived channel height (after the magnet-distance
// wall subtraction, if active) is returned for the UI to echo back.
// On a parse failure nothing changes.
func (s *State) SetHeightText(text string) (float64, error) {
	raw, err := units.Parse(text)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	h := s.Frame.SetHeight(raw, s.HeightMode, s.WallEnabled)
	rerr := s.recomputeLocked()
	s.mu.Unlock()
	s.frameChanged()
	return h, rerr
}

// SetHeightMode switches between capillary-height and magnet-distance
// interpretation. The UI re-commits the height text afterwards so the
// stored height tracks the new mode.
func (s *State) SetHeightMode(mode capillary.HeightMode) {
	s.mu.Lock()
	s.HeightMode = mode
	s.mu.Unlock()
}

// SetWallEnabled toggles the wall-thickness adjustment. Disabling
// zeroes the thickness.
func (s *State) SetWallEnabled(enabled bool) error {
	s.mu.Lock()
	s.WallEnabled = enabled
	var err error
	if !enabled {
		s.Frame.SetWallThickness(0)
		err = s.recomputeLocked()
	}
	s.mu.Unlock()
	s.frameChanged()
	return err
}

// SetWallThicknessText commits the wall-thickness field through the
// unit parser. Prior thickness is retained on failure.
func (s *State) SetWallThicknessText(text string) error {
	um, err := units.Parse(text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.Frame.SetWallThickness(um); err != nil {
		s.mu.Unlock()
		return err
	}
	rerr := s.recomputeLocked()
	s.mu.Unlock()
	s.frameChanged()
	return rerr
}

// AddParticle places a marker at image-space (x, y) with the next free
// auto name and returns it.
func (s *State) AddParticle(x, y float64) (*capillary.Particle, error) {
	s.mu.Lock()
	p := capillary.NewParticle(x, y, s.nextNameLocked())
	err := p.UpdateHeight(s.Frame)
	s.Particles = append(s.Particles, p)
	s.usedNames[p.Name] = struct{}{}
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventParticlesChanged, p)
	return p, err
}

// RemoveParticle deletes the particle at index i.
func (s *State) RemoveParticle(i int) {
	s.mu.Lock()
	if i < 0 || i >= len(s.Particles) {
		s.mu.Unlock()
		return
	}
	s.Particles = append(s.Particles[:i], s.Particles[i+1:]...)
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventParticlesChanged, nil)
}

// RenameParticle sets a particle's name and records it as used.
func (s *State) RenameParticle(i int, name string) {
	s.mu.Lock()
	if i < 0 || i >= len(s.Particles) || name == "" {
		s.mu.Unlock()
		return
	}
	s.Particles[i].Name = name
	s.usedNames[name] = struct{}{}
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventParticlesChanged, nil)
}

// SetParticleNotes sets a particle's free-form notes.
func (s *State) SetParticleNotes(i int, notes string) {
	s.mu.Lock()
	if i < 0 || i >= len(s.Particles) {
		s.mu.Unlock()
		return
	}
	s.Particles[i].Notes = notes
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventParticlesChanged, nil)
}

// MoveParticleLabel repositions a particle's label relative to its
// marker.
func (s *State) MoveParticleLabel(i int, offset geometry.Point2D) {
	s.mu.Lock()
	if i < 0 || i >= len(s.Particles) {
		s.mu.Unlock()
		return
	}
	s.Particles[i].LabelOffset = offset
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventParticlesChanged, nil)
}

// ParticleAt returns the index of the particle nearest to (x, y)
// within radius, or -1.
func (s *State) ParticleAt(x, y, radius float64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := -1
	bestDist := radius
	probe := geometry.Point2D{X: x, Y: y}
	for i, p := range s.Particles {
		d := probe.Distance(geometry.Point2D{X: p.X, Y: p.Y})
		if d <= bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// ClearSelections removes both reference lines and all particles,
// keeping the image, height, and angle.
func (s *State) ClearSelections() {
	s.mu.Lock()
	s.Frame.ClearLines()
	s.Particles = nil
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventFrameChanged, nil)
	s.Emit(EventParticlesChanged, nil)
}

// ClearWorkspace resets everything back to a fresh session.
func (s *State) ClearWorkspace() {
	s.mu.Lock()
	s.WorkspacePath = ""
	s.Name = DefaultWorkspaceName
	s.Frame.Reset()
	s.Particles = nil
	s.usedNames = make(map[string]struct{})
	s.Micrograph = nil
	s.HeightMode = capillary.CapillaryHeight
	s.WallEnabled = false
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventImageLoaded, nil)
	s.Emit(EventFrameChanged, nil)
	s.Emit(EventParticlesChanged, nil)
	s.Emit(EventModified, false)
}

// Snapshot captures the current session as a workspace record.
func (s *State) Snapshot() (*workspace.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() (*workspace.File, error) {
	f := workspace.New(s.Name)
	f.SetFrame(s.Frame)
	f.Particles = make([]*capillary.Particle, len(s.Particles))
	for i, p := range s.Particles {
		cp := *p
		f.Particles[i] = &cp
	}
	f.SetUsedNames(s.usedNames)

	if s.Micrograph != nil {
		img, err := s.Micrograph.EncodeBase64()
		if err != nil {
			return nil, err
		}
		f.Image = img
	}
	return f, nil
}

// SaveWorkspace writes the session to a .phw file.
func (s *State) SaveWorkspace(path string) error {
	s.mu.RLock()
	f, err := s.snapshotLocked()
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.WorkspacePath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventModified, false)
	s.Emit(EventWorkspaceSaved, path)
	return nil
}

// LoadWorkspace replaces the session with the contents of a .phw file.
func (s *State) LoadWorkspace(path string) error {
	f, err := workspace.Load(path)
	if err != nil {
		return err
	}

	var m *micrograph.Micrograph
	if f.Image != "" {
		if m, err = micrograph.FromBase64(f.Image); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.WorkspacePath = path
	s.Name = f.Name
	if s.Name == "" {
		s.Name = DefaultWorkspaceName
	}
	s.Frame = f.Frame()
	s.Particles = f.Particles
	s.usedNames = make(map[string]struct{})
	for _, n := range f.UsedNames {
		s.usedNames[n] = struct{}{}
	}
	for _, p := range s.Particles {
		s.usedNames[p.Name] = struct{}{}
	}
	s.Micrograph = m
	s.WallEnabled = s.Frame.WallThicknessUM > 0
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventImageLoaded, m)
	s.Emit(EventFrameChanged, nil)
	s.Emit(EventParticlesChanged, nil)
	s.Emit(EventModified, false)
	s.Emit(EventWorkspaceLoaded, path)
	return nil
}

// ExportCSV writes the particle table to path. Notes are included only
// when beta features are enabled.
func (s *State) ExportCSV(path string) error {
	s.mu.RLock()
	particles := s.Particles
	s.mu.RUnlock()
	return export.Save(path, particles, BetaFeaturesEnabled)
}

// CopyResults places the particle table on the system clipboard.
func (s *State) CopyResults() error {
	s.mu.RLock()
	particles := s.Particles
	s.mu.RUnlock()
	return export.ToClipboard(particles, BetaFeaturesEnabled)
}

// nextNameLocked returns the first Pn not yet used.
func (s *State) nextNameLocked() string {
	for n := len(s.Particles) + 1; ; n++ {
		name := fmt.Sprintf("P%d", n)
		if _, taken := s.usedNames[name]; !taken {
			return name
		}
	}
}

// recomputeLocked refreshes every particle height after a frame
// mutation. The first degenerate-span error is reported; affected
// particles read zero.
func (s *State) recomputeLocked() error {
	var first error
	for _, p := range s.Particles {
		if err := p.UpdateHeight(s.Frame); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *State) frameChanged() {
	s.SetModified(true)
	s.Emit(EventFrameChanged, nil)
	s.Emit(EventParticlesChanged, nil)
}
