package types

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"jpg":  JPEG,
		"JPEG": JPEG,
		".png": PNG,
		"tif":  TIFF,
		"webp": WebP,
		"gif":  GIF,
		"bmp":  BMP,
	}
	for in, want := range tests {
		got, ok := ParseFormat(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseFormat("heic")
	assert.False(t, ok)
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, "jpg", JPEG.Extension())
	assert.Equal(t, "tif", TIFF.Extension())
	assert.Equal(t, "webp", WebP.Extension())
	assert.True(t, JPEG.Lossy())
	assert.False(t, PNG.Lossy())
}

func TestEncodable(t *testing.T) {
	for _, f := range OutputFormats() {
		assert.True(t, f.Encodable(), f)
	}
	for _, f := range []Format{GIF, BMP, TIFF, ""} {
		assert.False(t, f.Encodable(), f)
	}
}

func TestParseMethod(t *testing.T) {
	m, ok := ParseMethod("fill")
	assert.True(t, ok)
	assert.Equal(t, Fill, m)

	_, ok = ParseMethod("Fit")
	assert.False(t, ok)
	assert.Equal(t, Fit, DefaultMethod)
}

func TestRatios(t *testing.T) {
	assert.Equal(t, 2.0, ImageSpec{Width: 4000, Height: 2000}.Ratio())
	assert.Zero(t, TargetSpec{Width: 100}.Ratio())
	assert.Equal(t, 0.5, TargetSpec{Width: 100, Height: 200}.Ratio())
}

func TestRect(t *testing.T) {
	r := Rect{X: 100, Y: 0, Width: 200, Height: 200}
	assert.True(t, r.Within(400, 200))
	assert.False(t, r.Within(250, 200))
	assert.False(t, Rect{Width: 0, Height: 5}.Within(10, 10))
	assert.Equal(t, 300, r.Rectangle().Max.X)
}

func TestPlanIdentity(t *testing.T) {
	src := ImageSpec{Width: 50, Height: 40}
	assert.True(t, ResamplePlan{Crop: src.Bounds(), Width: 50, Height: 40}.Identity(src))
	assert.False(t, ResamplePlan{Crop: src.Bounds(), Width: 25, Height: 20}.Identity(src))
}

func TestTargetPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/out", "a.jpg"), TargetSpec{Folder: "/out", FileName: "a.jpg"}.Path())
}
