package analyzer

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prcd/imageprocessor/pkg/imgerr"
	"github.com/prcd/imageprocessor/pkg/types"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Fill with a gradient pattern
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			img.Set(x, y, color.RGBA{r, g, 128, 255})
		}
	}

	return img
}

func writeImage(t *testing.T, name string, format types.Format, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	img := createTestImage(width, height)
	switch format {
	case types.PNG:
		require.NoError(t, png.Encode(f, img))
	case types.JPEG:
		require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 80}))
	case types.GIF:
		require.NoError(t, gif.Encode(f, img, nil))
	default:
		t.Fatalf("unsupported test format %s", format)
	}
	return path
}

func TestProbe(t *testing.T) {
	cases := []struct {
		name   string
		format types.Format
		w, h   int
	}{
		{"a.png", types.PNG, 40, 30},
		{"b.jpg", types.JPEG, 64, 16},
		{"c.gif", types.GIF, 10, 20},
		// the extension does not decide the format
		{"d.jpg", types.PNG, 7, 9},
	}

	a := New()
	for _, tc := range cases {
		path := writeImage(t, tc.name, tc.format, tc.w, tc.h)

		spec, err := a.Probe(path)
		require.NoError(t, err, tc.name)
		assert.Equal(t, types.ImageSpec{Width: tc.w, Height: tc.h, Format: tc.format}, spec, tc.name)
		assert.InDelta(t, float64(tc.w)/float64(tc.h), spec.Ratio(), 1e-9)
	}
}

func TestProbeRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.jpg")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o644))

	_, err := New().Probe(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, imgerr.ErrUnsupportedFormat))
}

func TestProbeRejectsCorruptHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	data := append([]byte("\x89PNG\r\n\x1a\n"), []byte("garbage-after-signature")...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := New().Probe(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, imgerr.ErrUnsupportedFormat))
}

func TestProbeMissingFile(t *testing.T) {
	_, err := New().Probe(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, imgerr.ErrIO))
}

func TestProbeHonoursSupportedFormats(t *testing.T) {
	path := writeImage(t, "a.png", types.PNG, 8, 8)

	a := NewWithConfig(Config{SupportedFormats: []types.Format{types.JPEG}})
	_, err := a.Probe(path)
	assert.True(t, errors.Is(err, imgerr.ErrUnsupportedFormat))
}

func BenchmarkProbe(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "bench.png")
	f, err := os.Create(path)
	if err != nil {
		b.Fatal(err)
	}
	png.Encode(f, createTestImage(1920, 1080))
	f.Close()

	a := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Probe(path)
	}
}
