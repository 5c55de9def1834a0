package coeffs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadWAV_RoundTrip(t *testing.T) {
	taps := []float64{0, 0.5, -0.25, 0.125, -1, 0.999}

	for _, bitDepth := range []int{16, 24, 32} {
		path := filepath.Join(t.TempDir(), "ir.wav")
		require.NoError(t, SaveWAV(path, taps, 44100, bitDepth), "bit depth %d", bitDepth)

		got, err := LoadWAV(path)
		require.NoError(t, err)
		require.Len(t, got, len(taps))

		step := 1 / pcmFullScale(bitDepth)
		for i := range taps {
			assert.InDelta(t, taps[i], got[i], step, "bit depth %d tap %d", bitDepth, i)
		}
	}
}

func TestLoadAny_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	taps := []float64{0.25, 0.5, 0.25}

	wavPath := filepath.Join(dir, "ir.wav")
	require.NoError(t, SaveWAV(wavPath, taps, 0, 0))
	txtPath := filepath.Join(dir, "ir.txt")
	require.NoError(t, Save(txtPath, taps, WriteOptions{}))

	for _, path := range []string{wavPath, txtPath} {
		got, err := LoadAny(path)
		require.NoError(t, err, path)
		assert.InDeltaSlice(t, taps, got, 1e-6, path)
	}
}

func TestSaveWAV_Errors(t *testing.T) {
	dir := t.TempDir()

	err := SaveWAV(filepath.Join(dir, "clip.wav"), []float64{0.5, 1.2}, 0, 0)
	assert.ErrorIs(t, err, ErrClipping)

	err = SaveWAV(filepath.Join(dir, "depth.wav"), []float64{0.5}, 0, 12)
	assert.ErrorIs(t, err, ErrUnsupportedWAV)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadWAV_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.wav")
	require.NoError(t, os.WriteFile(path, []byte("0.5\n0.25\n"), 0o644))

	_, err := LoadWAV(path)
	assert.Error(t, err)
}
