package processing

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"github.com/prcd/imageprocessor/internal/utils"
	"github.com/prcd/imageprocessor/pkg/analyzer"
	"github.com/prcd/imageprocessor/pkg/imgerr"
	"github.com/prcd/imageprocessor/pkg/types"
)

// Engine names the resampling implementation
type Engine string

const (
	EngineImaging Engine = "imaging"
	EngineNfnt    Engine = "nfnt"
	EngineXDraw   Engine = "xdraw"
)

// Filter names the resampling kernel
type Filter string

const (
	FilterLanczos    Filter = "lanczos"
	FilterCatmullRom Filter = "catmullrom"
	FilterLinear     Filter = "linear"
	FilterBox        Filter = "box"
	FilterNearest    Filter = "nearest"
)

// Config selects how images are resampled and encoded
type Config struct {
	Engine       Engine
	Filter       Filter
	WebPLossless bool
	FileMode     os.FileMode
}

// DefaultConfig returns the configuration used by NewProcessor
func DefaultConfig() Config {
	return Config{
		Engine:   EngineImaging,
		Filter:   FilterLanczos,
		FileMode: 0o644,
	}
}

// engineFilters lists the kernels each engine implements
var engineFilters = map[Engine][]Filter{
	EngineImaging: {FilterLanczos, FilterCatmullRom, FilterLinear, FilterBox, FilterNearest},
	EngineNfnt:    {FilterLanczos, FilterCatmullRom, FilterLinear, FilterNearest},
	EngineXDraw:   {FilterCatmullRom, FilterLinear, FilterNearest},
}

// Validate reports an unknown engine, or a filter the engine does not implement
func (c Config) Validate() error {
	filters, ok := engineFilters[c.Engine]
	if !ok {
		return fmt.Errorf("unknown resample engine %q", c.Engine)
	}
	for _, f := range filters {
		if f == c.Filter {
			return nil
		}
	}
	return fmt.Errorf("resample engine %s does not implement filter %q", c.Engine, c.Filter)
}

// Processor handles image processing operations
type Processor struct {
	config   Config
	analyzer *analyzer.ImageAnalyzer
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return NewProcessorWithConfig(DefaultConfig())
}

// NewProcessorWithConfig creates a processor with custom configuration
func NewProcessorWithConfig(config Config) *Processor {
	if config.Engine == "" {
		config.Engine = EngineImaging
	}
	if config.Filter == "" {
		config.Filter = FilterLanczos
	}
	if config.FileMode == 0 {
		config.FileMode = 0o644
	}
	return &Processor{
		config:   config,
		analyzer: analyzer.New(),
	}
}

// Probe returns the dimensions and format of the image at path
func (p *Processor) Probe(path string) (types.ImageSpec, error) {
	return p.analyzer.Probe(path)
}

// Exists reports whether anything exists at path
func (p *Processor) Exists(path string) (bool, error) {
	return utils.PathExists(path)
}

// Decode loads the image at path, which the prober identified as format
func (p *Processor) Decode(path string, format types.Format) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, imgerr.IO("open", path, err)
	}
	defer f.Close()

	var img image.Image
	var name string
	if format == types.WebP {
		img, err = webp.Decode(f)
		name = string(types.WebP)
	} else {
		img, name, err = image.Decode(f)
	}
	if err != nil {
		return nil, imgerr.IO("decode", path, err)
	}
	if decoded, ok := types.ParseFormat(name); !ok || decoded != format {
		return nil, imgerr.UnsupportedFormat(path, name, fmt.Errorf("expected %s", format))
	}
	return img, nil
}

// Resample crops src to crop and scales the result to width x height
func (p *Processor) Resample(src image.Image, crop types.Rect, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", width, height)
	}
	if err := p.config.Validate(); err != nil {
		return nil, err
	}
	bounds := src.Bounds()
	rect := crop.Rectangle().Add(bounds.Min)
	if !rect.In(bounds) || rect.Empty() {
		return nil, fmt.Errorf("crop %v outside image bounds %v", rect, bounds)
	}

	switch p.config.Engine {
	case EngineNfnt:
		cropped := imaging.Crop(src, rect)
		return resize.Resize(uint(width), uint(height), cropped, p.nfntFilter()), nil
	case EngineXDraw:
		dst := image.NewNRGBA(image.Rect(0, 0, width, height))
		p.drawScaler().Scale(dst, dst.Bounds(), src, rect, draw.Src, nil)
		return dst, nil
	case EngineImaging:
		cropped := imaging.Crop(src, rect)
		if cropped.Bounds().Dx() == width && cropped.Bounds().Dy() == height {
			return cropped, nil
		}
		return imaging.Resize(cropped, width, height, p.imagingFilter()), nil
	}
	return nil, fmt.Errorf("unknown resample engine %q", p.config.Engine)
}

// Encode serialises img in format. quality applies to lossy formats only.
func (p *Processor) Encode(img image.Image, format types.Format, quality int) ([]byte, error) {
	if format.Lossy() && (quality < 0 || quality > 100) {
		return nil, imgerr.InvalidQuality(quality)
	}

	var buf bytes.Buffer
	switch format {
	case types.JPEG:
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
	case types.PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
	case types.WebP:
		opts := &webp.Options{Lossless: p.config.WebPLossless, Quality: float32(quality)}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encoding webp: %w", err)
		}
	default:
		return nil, imgerr.NoEncoder(string(format))
	}
	return buf.Bytes(), nil
}

// Write stores data at path. The bytes go to a temporary file in the same
// directory which is renamed into place, so readers never see a partial file.
func (p *Processor) Write(data []byte, path string) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tmp, data, p.config.FileMode); err != nil {
		os.Remove(tmp)
		return imgerr.IO("write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return imgerr.IO("rename", path, err)
	}
	return nil
}

func (p *Processor) imagingFilter() imaging.ResampleFilter {
	switch p.config.Filter {
	case FilterCatmullRom:
		return imaging.CatmullRom
	case FilterLinear:
		return imaging.Linear
	case FilterBox:
		return imaging.Box
	case FilterNearest:
		return imaging.NearestNeighbor
	}
	return imaging.Lanczos
}

func (p *Processor) nfntFilter() resize.InterpolationFunction {
	switch p.config.Filter {
	case FilterCatmullRom:
		return resize.Bicubic
	case FilterLinear:
		return resize.Bilinear
	case FilterNearest:
		return resize.NearestNeighbor
	}
	return resize.Lanczos3
}

func (p *Processor) drawScaler() draw.Scaler {
	switch p.config.Filter {
	case FilterLinear:
		return draw.BiLinear
	case FilterNearest:
		return draw.NearestNeighbor
	}
	return draw.CatmullRom
}

// ParseEngine validates an engine name
func ParseEngine(s string) (Engine, bool) {
	switch e := Engine(strings.ToLower(s)); e {
	case EngineImaging, EngineNfnt, EngineXDraw:
		return e, true
	}
	return "", false
}

// ParseFilter validates a filter name
func ParseFilter(s string) (Filter, bool) {
	switch f := Filter(strings.ToLower(s)); f {
	case FilterLanczos, FilterCatmullRom, FilterLinear, FilterBox, FilterNearest:
		return f, true
	}
	return "", false
}
