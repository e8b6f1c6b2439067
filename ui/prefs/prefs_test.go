package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPrefs() *Prefs {
	return &Prefs{values: make(map[string]interface{})}
}

func TestRecentFilesOrdering(t *testing.T) {
	p := testPrefs()

	p.AddRecentFile("/a.phw")
	p.AddRecentFile("/b.phw")
	p.AddRecentFile("/c.phw")
	assert.Equal(t, []string{"/c.phw", "/b.phw", "/a.phw"}, p.RecentFiles())

	// Re-adding promotes instead of duplicating.
	p.AddRecentFile("/a.phw")
	assert.Equal(t, []string{"/a.phw", "/c.phw", "/b.phw"}, p.RecentFiles())
}

func TestRecentFilesCap(t *testing.T) {
	p := testPrefs()
	for _, f := range []string{"/1", "/2", "/3", "/4", "/5", "/6"} {
		p.AddRecentFile(f)
	}

	got := p.RecentFiles()
	assert.Len(t, got, MaxRecentFiles)
	assert.Equal(t, "/6", got[0])
	assert.NotContains(t, got, "/1")
}

func TestRemoveRecentFile(t *testing.T) {
	p := testPrefs()
	p.AddRecentFile("/a.phw")
	p.AddRecentFile("/b.phw")

	p.RemoveRecentFile("/a.phw")
	assert.Equal(t, []string{"/b.phw"}, p.RecentFiles())
}

func TestStringsSurvivesJSONTypes(t *testing.T) {
	// After a disk round trip the list comes back as []interface{}.
	p := testPrefs()
	p.values[KeyRecentFiles] = []interface{}{"/a.phw", "/b.phw"}
	assert.Equal(t, []string{"/a.phw", "/b.phw"}, p.RecentFiles())
}

func TestTypedAccessors(t *testing.T) {
	p := testPrefs()

	assert.Equal(t, 100.0, p.Float(KeyLabelSize, 100))
	p.SetFloat(KeyLabelSize, 140)
	assert.Equal(t, 140.0, p.Float(KeyLabelSize, 100))

	assert.Equal(t, "", p.String(KeyLastDirectory))
	p.SetString(KeyLastDirectory, "/data")
	assert.Equal(t, "/data", p.String(KeyLastDirectory))

	assert.True(t, p.Bool("missing", true))
	p.SetBool("missing", false)
	assert.False(t, p.Bool("missing", true))
}
