package analyzer

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/prcd/imageprocessor/pkg/imgerr"
	"github.com/prcd/imageprocessor/pkg/types"
)

// ImageAnalyzer reads image metadata without decoding pixel data
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image analyzer
type Config struct {
	SupportedFormats []types.Format
}

var mimeFormats = []struct {
	mime   string
	format types.Format
}{
	{"image/gif", types.GIF},
	{"image/jpeg", types.JPEG},
	{"image/png", types.PNG},
	{"image/bmp", types.BMP},
	{"image/tiff", types.TIFF},
	{"image/webp", types.WebP},
}

// New creates a new ImageAnalyzer accepting every format it can decode
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			SupportedFormats: []types.Format{types.GIF, types.JPEG, types.PNG, types.BMP, types.TIFF, types.WebP},
		},
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// Probe returns the dimensions and format of the image at path
func (a *ImageAnalyzer) Probe(path string) (types.ImageSpec, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return types.ImageSpec{}, imgerr.IO("read", path, err)
	}

	format, ok := formatForMIME(mtype)
	if !ok || !a.isFormatSupported(format) {
		return types.ImageSpec{}, imgerr.UnsupportedFormat(path, mtype.String(), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return types.ImageSpec{}, imgerr.IO("open", path, err)
	}
	defer file.Close()

	cfg, name, err := image.DecodeConfig(file)
	if err != nil {
		return types.ImageSpec{}, imgerr.UnsupportedFormat(path, string(format), fmt.Errorf("failed to decode image header: %w", err))
	}
	if decoded, ok := types.ParseFormat(name); !ok || decoded != format {
		return types.ImageSpec{}, imgerr.UnsupportedFormat(path, name, fmt.Errorf("content does not match detected type %s", mtype))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return types.ImageSpec{}, imgerr.UnsupportedFormat(path, name, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height))
	}

	return types.ImageSpec{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}

func (a *ImageAnalyzer) isFormatSupported(format types.Format) bool {
	for _, supported := range a.config.SupportedFormats {
		if supported == format {
			return true
		}
	}
	return false
}

func formatForMIME(m *mimetype.MIME) (types.Format, bool) {
	for _, mf := range mimeFormats {
		if m.Is(mf.mime) {
			return mf.format, true
		}
	}
	return "", false
}
