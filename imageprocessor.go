// Package imageprocessor resizes a single image file into a re-encoded copy.
//
// Two geometric policies are supported:
//
//   - fill: crop the source around its center to the target aspect ratio,
//     then scale it to exactly the target width and height.
//   - fit: scale the source down, never up, until it fits inside the target
//     box while keeping the whole image and its proportions.
//
// Basic usage:
//
//	p := imageprocessor.New(processing.NewProcessor())
//	err := p.SetOptions(map[string]any{
//		"input_path": "upload.png",
//		"folder":     "/var/www/thumbs",
//		"file_name":  "upload.jpg",
//		"width":      800,
//		"height":     800,
//		"method":     "fill",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := p.Process()
//
// Settings are validated as they are applied. Process checks that every
// required setting is present, refuses to replace an existing file unless
// overwriting was allowed, and only then decodes, resamples, encodes and
// writes the image. Errors are *imgerr.Error values; use errors.Is with the
// imgerr sentinels to tell them apart.
package imageprocessor

import (
	"time"

	"go.uber.org/zap"

	"github.com/prcd/imageprocessor/pkg/codec"
	"github.com/prcd/imageprocessor/pkg/imgerr"
	"github.com/prcd/imageprocessor/pkg/options"
	"github.com/prcd/imageprocessor/pkg/planner"
	"github.com/prcd/imageprocessor/pkg/types"
)

// Version of the image processor library
const Version = "1.0.0"

// ImageProcessor configures and runs one resize. It is not safe for concurrent use.
type ImageProcessor struct {
	codec   codec.Codec
	builder *options.Builder
	logger  *zap.Logger
}

// Option customises an ImageProcessor
type Option func(*settings)

type settings struct {
	logger  *zap.Logger
	builder []options.BuilderOption
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithOutputFormat sets the one format output files are encoded in (jpeg by default)
func WithOutputFormat(f types.Format) Option {
	return func(s *settings) {
		s.builder = append(s.builder, options.WithOutputFormat(f))
	}
}

// WithDefaultQuality replaces the quality used when none is set (75)
func WithDefaultQuality(q int) Option {
	return func(s *settings) {
		s.builder = append(s.builder, options.WithDefaultQuality(q))
	}
}

// WithDefaultMethod replaces the method used when none is set (fit)
func WithDefaultMethod(m types.Method) Option {
	return func(s *settings) {
		s.builder = append(s.builder, options.WithDefaultMethod(m))
	}
}

// New creates an ImageProcessor that performs image I/O through c
func New(c codec.Codec, opts ...Option) *ImageProcessor {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	return &ImageProcessor{
		codec:   c,
		builder: options.NewBuilder(c, s.builder...),
		logger:  s.logger,
	}
}

// NewWithOptions creates an ImageProcessor, applies values and, when
// processNow is set, processes the image straight away.
func NewWithOptions(c codec.Codec, values map[string]any, processNow bool, opts ...Option) (*ImageProcessor, error) {
	p := New(c, opts...)
	if values != nil {
		if err := p.SetOptions(values); err != nil {
			return nil, err
		}
	}
	if processNow {
		if _, err := p.Process(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Result describes a written output file
type Result struct {
	Path   string             `json:"path"`
	Source types.ImageSpec    `json:"source"`
	Target types.TargetSpec   `json:"target"`
	Plan   types.ResamplePlan `json:"plan"`
	Bytes  int                `json:"bytes"`
}

// SetOptions applies a map of option values, see options.Builder.SetOptions
func (p *ImageProcessor) SetOptions(values map[string]any) error {
	return p.builder.SetOptions(values)
}

// SetInputPath sets and probes the source image
func (p *ImageProcessor) SetInputPath(path string) error {
	return p.builder.SetInputPath(path)
}

// SetWidth sets the target width (integer or digit-only string)
func (p *ImageProcessor) SetWidth(v any) error {
	return p.builder.SetWidth(v)
}

// SetHeight sets the target height (integer or digit-only string)
func (p *ImageProcessor) SetHeight(v any) error {
	return p.builder.SetHeight(v)
}

// SetFolder sets the output directory
func (p *ImageProcessor) SetFolder(path string) error {
	return p.builder.SetFolder(path)
}

// SetFileName sets the output file name
func (p *ImageProcessor) SetFileName(name string) error {
	return p.builder.SetFileName(name)
}

// SetQuality sets the encoder quality, 0 to 100
func (p *ImageProcessor) SetQuality(v any) error {
	return p.builder.SetQuality(v)
}

// SetMethod sets the resize method, fill or fit
func (p *ImageProcessor) SetMethod(v any) error {
	return p.builder.SetMethod(v)
}

// AllowOverwrite permits replacing an existing output file
func (p *ImageProcessor) AllowOverwrite(v any) error {
	return p.builder.AllowOverwrite(v)
}

// Ratio returns the target aspect ratio, 0 until width and height are both set
func (p *ImageProcessor) Ratio() float64 {
	return p.builder.Ratio()
}

// Source returns the probed source image
func (p *ImageProcessor) Source() types.ImageSpec {
	return p.builder.Source()
}

// Process resizes the configured image and writes it to folder/file_name
func (p *ImageProcessor) Process() (Result, error) {
	start := time.Now()

	cfg, err := p.builder.Build()
	if err != nil {
		return Result{}, err
	}
	out := cfg.OutputPath()
	log := p.logger.With(zap.String("input", cfg.InputPath), zap.String("output", out))
	log.Debug("processing", zap.Stringer("options", p.builder))

	if err := cfg.CheckOverwrite(p.codec.Exists); err != nil {
		log.Warn("refusing to process", zap.Error(err))
		return Result{}, err
	}

	plan, err := planner.Plan(cfg.Source, cfg.Target)
	if err != nil {
		return Result{}, err
	}
	log.Debug("planned resample",
		zap.String("method", string(cfg.Target.Method)),
		zap.Int("source_width", cfg.Source.Width),
		zap.Int("source_height", cfg.Source.Height),
		zap.Any("crop", plan.Crop),
		zap.Int("width", plan.Width),
		zap.Int("height", plan.Height),
	)

	data, err := p.render(cfg, plan)
	if err != nil {
		log.Error("processing failed", zap.Error(err))
		return Result{}, err
	}

	if err := p.codec.Write(data, out); err != nil {
		err = imgerr.IO("write", out, err)
		log.Error("processing failed", zap.Error(err))
		return Result{}, err
	}

	log.Info("image written",
		zap.Int("width", plan.Width),
		zap.Int("height", plan.Height),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return Result{
		Path:   out,
		Source: cfg.Source,
		Target: cfg.Target,
		Plan:   plan,
		Bytes:  len(data),
	}, nil
}

// render decodes, resamples and encodes. The pixel buffers stay local to this
// call so they are released whichever way it returns.
func (p *ImageProcessor) render(cfg options.Config, plan types.ResamplePlan) ([]byte, error) {
	src, err := p.codec.Decode(cfg.InputPath, cfg.Source.Format)
	if err != nil {
		return nil, imgerr.IO("decode", cfg.InputPath, err)
	}

	dst := src
	if !plan.Identity(cfg.Source) {
		dst, err = p.codec.Resample(src, plan.Crop, plan.Width, plan.Height)
		if err != nil {
			return nil, imgerr.IO("resample", cfg.InputPath, err)
		}
	}

	data, err := p.codec.Encode(dst, cfg.Target.OutputFormat, cfg.Target.Quality)
	if err != nil {
		return nil, imgerr.IO("encode", cfg.OutputPath(), err)
	}
	return data, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
