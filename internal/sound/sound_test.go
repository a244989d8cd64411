//go:build !ci

package sound

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV 写入一段静音
func writeWAV(t *testing.T, path string, rate beep.SampleRate) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	left := int(rate) / 10
	silence := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if left == 0 {
			return 0, false
		}
		n := min(len(samples), left)
		clear(samples[:n])
		left -= n
		return n, true
	})
	require.NoError(t, wav.Encode(f, silence, format))
}

func TestManager_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "turn.wav"), sampleRate)
	writeWAV(t, filepath.Join(dir, "trick.WAV"), 22050)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "win.wav"), []byte("not audio"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	m := NewManager(dir)
	require.NoError(t, m.load())
	assert.True(t, m.Loaded(CueYourTurn))
	assert.True(t, m.Loaded(CueTrick), "resampled and case-insensitive extension")
	assert.False(t, m.Loaded(CueWin), "broken file skipped")
	assert.False(t, m.Loaded(CueLose))
}

func TestManager_MissingDir(t *testing.T) {
	t.Parallel()

	m := NewManager(filepath.Join(t.TempDir(), "none"))
	assert.NoError(t, m.load())
	assert.False(t, m.Loaded(CueYourTurn))
}

func TestManager_PlayDisabled(t *testing.T) {
	t.Parallel()

	m := NewManager("")
	assert.Equal(t, DefaultDir, m.dir)
	// 未初始化扬声器时静默
	m.Play(CueYourTurn)
	m.Close()
}
