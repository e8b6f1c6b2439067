// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// Well-known preference keys.
const (
	KeyRecentFiles   = "recent_files"
	KeyLastDirectory = "last_directory"
	KeyLabelSize     = "label_size"
	KeyTourDone      = "tour_done"
)

// MaxRecentFiles caps the recent-workspaces list.
const MaxRecentFiles = 5

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from ~/.config/phase/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	dir := filepath.Join(configDir, "phase")
	p.path = filepath.Join(dir, prefsFile)

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// Float returns a float64 preference, or fallback if not set.
func (p *Prefs) Float(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch b := v.(type) {
		case bool:
			return b
		}
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Strings returns a string-list preference, or nil if not set.
// JSON decoding leaves lists as []interface{}, hence the conversion.
func (p *Prefs) Strings(key string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// SetStrings stores a string-list preference.
func (p *Prefs) SetStrings(key string, vals []string) {
	cp := make([]string, len(vals))
	copy(cp, vals)
	p.mu.Lock()
	p.values[key] = cp
	p.mu.Unlock()
}

// RecentFiles returns the recent workspace list, most recent first.
func (p *Prefs) RecentFiles() []string {
	return p.Strings(KeyRecentFiles)
}

// AddRecentFile moves path to the front of the recent list, dropping
// duplicates and anything past MaxRecentFiles.
func (p *Prefs) AddRecentFile(path string) {
	recent := p.RecentFiles()
	out := []string{path}
	for _, r := range recent {
		if r != path {
			out = append(out, r)
		}
	}
	if len(out) > MaxRecentFiles {
		out = out[:MaxRecentFiles]
	}
	p.SetStrings(KeyRecentFiles, out)
}

// RemoveRecentFile drops a path from the recent list, for entries that
// no longer exist on disk.
func (p *Prefs) RemoveRecentFile(path string) {
	recent := p.RecentFiles()
	out := recent[:0]
	for _, r := range recent {
		if r != path {
			out = append(out, r)
		}
	}
	p.SetStrings(KeyRecentFiles, out)
}
