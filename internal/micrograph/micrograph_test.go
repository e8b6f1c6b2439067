package micrograph

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	return img
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cap.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, testImage(40, 30)))
	require.NoError(t, f.Close())

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, m.Path)
	assert.Equal(t, 40, m.Width())
	assert.Equal(t, 30, m.Height())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestBase64RoundTrip(t *testing.T) {
	m := &Micrograph{Image: testImage(16, 8)}

	s, err := m.EncodeBase64()
	require.NoError(t, err)

	back, err := FromBase64(s)
	require.NoError(t, err)
	assert.Equal(t, 16, back.Width())
	assert.Equal(t, 8, back.Height())
	assert.Empty(t, back.Path)
}

func TestScaleFactor(t *testing.T) {
	assert.Equal(t, 1.0, (*Micrograph)(nil).ScaleFactor())
	assert.Equal(t, 2.0, (&Micrograph{Image: testImage(2000, 10)}).ScaleFactor())
	assert.Equal(t, 0.5, (&Micrograph{Image: testImage(500, 10)}).ScaleFactor())
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("sample.PNG"))
	assert.True(t, IsSupportedFormat("sample.bmp"))
	assert.True(t, IsSupportedFormat("dir/sample.tif"))
	assert.False(t, IsSupportedFormat("sample.gif"))
	assert.False(t, IsSupportedFormat("sample"))
}
