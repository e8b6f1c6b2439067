package app

import (
	"os"
	"path/filepath"
	"time"
)

// Autosaver periodically snapshots a modified session to a recovery
// file so a crash doesn't lose unsaved measurements. The recovery file
// is removed again on a clean save or stop.
type Autosaver struct {
	state    *State
	path     string
	interval time.Duration
	stopCh   chan struct{}
	onError  func(error)
}

// NewAutosaver creates an autosaver writing to the given recovery path.
func NewAutosaver(state *State, path string, interval time.Duration) *Autosaver {
	a := &Autosaver{
		state:    state,
		path:     path,
		interval: interval,
		stopCh:   make(chan struct{}),
	}

	// A clean save makes the recovery copy stale.
	state.On(EventWorkspaceSaved, func(interface{}) {
		a.removeRecovery()
	})
	return a
}

// DefaultRecoveryPath places the recovery file next to the user cache.
func DefaultRecoveryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "phase", "recovery.phw")
}

// OnError sets the callback for failed snapshot writes. Called from a
// background goroutine.
func (a *Autosaver) OnError(callback func(error)) {
	a.onError = callback
}

// Start begins snapshotting in a background goroutine.
func (a *Autosaver) Start() {
	a.stopCh = make(chan struct{})
	go a.loop()
}

// Stop ends the goroutine and discards the recovery file.
func (a *Autosaver) Stop() {
	close(a.stopCh)
	a.removeRecovery()
}

// RecoveryPath returns the file the autosaver writes to.
func (a *Autosaver) RecoveryPath() string {
	return a.path
}

// HasRecovery reports whether a recovery file from an earlier run
// exists. Checked at startup, before the autosaver overwrites it.
func (a *Autosaver) HasRecovery() bool {
	_, err := os.Stat(a.path)
	return err == nil
}

func (a *Autosaver) loop() {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			if err := a.snapshot(); err != nil && a.onError != nil {
				a.onError(err)
			}
		}
	}
}

func (a *Autosaver) snapshot() error {
	a.state.mu.RLock()
	modified := a.state.Modified
	a.state.mu.RUnlock()
	if !modified {
		return nil
	}

	f, err := a.state.Snapshot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return err
	}
	return f.Save(a.path)
}

func (a *Autosaver) removeRecovery() {
	os.Remove(a.path)
}
