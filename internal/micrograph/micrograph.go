// Package micrograph loads capillary images and prepares them for
// display and workspace embedding.
package micrograph

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// BaseWidth is the reference width markers and labels are sized
// against. Wider images draw proportionally larger overlays so they
// stay legible at fit-to-window zoom.
const BaseWidth = 1000.0

// Micrograph is one loaded capillary image.
type Micrograph struct {
	Path  string      // Original file path, empty when embedded
	Image image.Image // Decoded pixel data
}

// Load reads and decodes an image file.
func Load(path string) (*Micrograph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Micrograph{Path: path, Image: img}, nil
}

// FromBytes decodes an in-memory image, as embedded in a workspace.
func FromBytes(data []byte) (*Micrograph, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded image: %w", err)
	}
	return &Micrograph{Image: img}, nil
}

// FromBase64 decodes a base64 string produced by EncodeBase64.
func FromBase64(s string) (*Micrograph, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded image: %w", err)
	}
	return FromBytes(data)
}

// Width returns the image width in pixels.
func (m *Micrograph) Width() int {
	if m == nil || m.Image == nil {
		return 0
	}
	return m.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (m *Micrograph) Height() int {
	if m == nil || m.Image == nil {
		return 0
	}
	return m.Image.Bounds().Dy()
}

// ScaleFactor returns width/BaseWidth, the multiplier applied to
// marker radii and label sizes. 1 for an unloaded image.
func (m *Micrograph) ScaleFactor() float64 {
	w := m.Width()
	if w == 0 {
		return 1
	}
	return float64(w) / BaseWidth
}

// EncodePNG re-encodes the image as PNG regardless of source format,
// so workspace files stay loadable even if the original moves.
func (m *Micrograph) EncodePNG() ([]byte, error) {
	if m == nil || m.Image == nil {
		return nil, fmt.Errorf("no image loaded")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.Image); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 returns the PNG encoding as a base64 string for JSON
// embedding.
func (m *Micrograph) EncodeBase64() (string, error) {
	data, err := m.EncodePNG()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// SupportedFormats returns the list of supported image extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*.png, *.jpg, *.jpeg, *.bmp, *.tiff, *.tif)"
}
