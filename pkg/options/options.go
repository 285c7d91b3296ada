// Package options validates the settings of a single resize run.
//
// A Builder accepts values one at a time, either through typed setters or a
// loosely typed option map, rejecting anything malformed as soon as it is set.
// Build turns the accumulated values into an immutable Config once every
// required field is present.
package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/prcd/imageprocessor/internal/utils"
	"github.com/prcd/imageprocessor/pkg/codec"
	"github.com/prcd/imageprocessor/pkg/imgerr"
	"github.com/prcd/imageprocessor/pkg/types"
)

// Option keys accepted by SetOptions
const (
	KeyInputPath = "input_path"
	KeyWidth     = "width"
	KeyHeight    = "height"
	KeyFolder    = "folder"
	KeyFileName  = "file_name"
	KeyQuality   = "quality"
	KeyMethod    = "method"
	KeyOverwrite = "overwrite"
)

// DefaultQuality is the encoder quality used when none is set
const DefaultQuality = 75

// applyOrder is the order SetOptions applies known keys in
var applyOrder = []string{
	KeyOverwrite,
	KeyInputPath,
	KeyWidth,
	KeyHeight,
	KeyFolder,
	KeyFileName,
	KeyQuality,
	KeyMethod,
}

// Config is a complete, validated set of run parameters
type Config struct {
	InputPath string
	Source    types.ImageSpec
	Target    types.TargetSpec
}

// OutputPath is the destination file path
func (c Config) OutputPath() string {
	return c.Target.Path()
}

// CheckOverwrite fails with FileExists when the destination is already
// present and overwriting was not allowed.
func (c Config) CheckOverwrite(exists func(path string) (bool, error)) error {
	if c.Target.Overwrite {
		return nil
	}
	path := c.OutputPath()
	found, err := exists(path)
	if err != nil {
		return imgerr.IO("stat", path, err)
	}
	if found {
		return imgerr.FileExists(path)
	}
	return nil
}

// Builder accumulates validated run parameters
type Builder struct {
	prober       codec.Prober
	outputFormat types.Format

	inputPath string
	source    types.ImageSpec
	width     int
	height    int
	folder    string
	fileName  string
	quality   int
	method    types.Method
	overwrite bool
}

// BuilderOption customises a Builder
type BuilderOption func(*Builder)

// WithOutputFormat sets the single format the output file name must match
func WithOutputFormat(f types.Format) BuilderOption {
	return func(b *Builder) {
		b.outputFormat = f
	}
}

// WithDefaultQuality replaces the default encoder quality
func WithDefaultQuality(q int) BuilderOption {
	return func(b *Builder) {
		b.quality = q
	}
}

// WithDefaultMethod replaces the default resize method
func WithDefaultMethod(m types.Method) BuilderOption {
	return func(b *Builder) {
		b.method = m
	}
}

// NewBuilder creates a Builder that probes input files with prober
func NewBuilder(prober codec.Prober, opts ...BuilderOption) *Builder {
	b := &Builder{
		prober:       prober,
		outputFormat: types.JPEG,
		quality:      DefaultQuality,
		method:       types.DefaultMethod,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OutputFormat returns the format output files are encoded in
func (b *Builder) OutputFormat() types.Format {
	return b.outputFormat
}

// SetInputPath sets the source image and probes it for size and format
func (b *Builder) SetInputPath(path string) error {
	if !utils.FileExists(path) {
		return imgerr.Validation(KeyInputPath, path, "file does not exist")
	}
	if err := utils.CheckReadable(path); err != nil {
		return imgerr.UnsupportedFormat(path, "", err)
	}

	spec, err := b.prober.Probe(path)
	if err != nil {
		return asUnsupported(path, err)
	}

	b.inputPath = path
	b.source = spec
	return nil
}

// Source returns the probed source image, zero until an input path is set
func (b *Builder) Source() types.ImageSpec {
	return b.source
}

// SetWidth sets the target width from an integer or a digit-only string
func (b *Builder) SetWidth(v any) error {
	n, ok := toInt(v)
	if !ok || n < 1 {
		return imgerr.Validation(KeyWidth, v, "must be a positive integer (string permitted)")
	}
	b.width = n
	return nil
}

// SetHeight sets the target height from an integer or a digit-only string
func (b *Builder) SetHeight(v any) error {
	n, ok := toInt(v)
	if !ok || n < 1 {
		return imgerr.Validation(KeyHeight, v, "must be a positive integer (string permitted)")
	}
	b.height = n
	return nil
}

// Ratio is the target width/height, 0 until both are set
func (b *Builder) Ratio() float64 {
	return types.TargetSpec{Width: b.width, Height: b.height}.Ratio()
}

// SetFolder sets the existing directory the output is written to
func (b *Builder) SetFolder(path string) error {
	if !utils.DirExists(path) {
		return imgerr.Validation(KeyFolder, path, "folder does not exist")
	}
	b.folder = path
	return nil
}

// SetFileName sets the output file name. Its extension must match the output format.
func (b *Builder) SetFileName(name string) error {
	if !b.outputFormat.Encodable() {
		return imgerr.NoEncoder(string(b.outputFormat))
	}
	want := b.outputFormat.Extension()
	if utils.LastExtension(name) != want {
		return imgerr.UnsupportedOutputFormat(name, want)
	}
	b.fileName = name
	return nil
}

// SetQuality sets the encoder quality, 0 to 100
func (b *Builder) SetQuality(v any) error {
	n, ok := toInt(v)
	if !ok || n < 0 || n > 100 {
		return imgerr.InvalidQuality(v)
	}
	b.quality = n
	return nil
}

// SetMethod sets the resize method from a Method or its name
func (b *Builder) SetMethod(v any) error {
	var name string
	switch m := v.(type) {
	case types.Method:
		name = string(m)
	case string:
		name = m
	default:
		return imgerr.InvalidMethod(v)
	}
	method, ok := types.ParseMethod(name)
	if !ok {
		return imgerr.InvalidMethod(v)
	}
	b.method = method
	return nil
}

// AllowOverwrite permits replacing an existing output file. Accepts a bool or 0/1.
func (b *Builder) AllowOverwrite(v any) error {
	allow, ok := toBool(v)
	if !ok {
		return imgerr.InvalidBoolean(KeyOverwrite, v)
	}
	b.overwrite = allow
	return nil
}

// SetOptions applies a map of option values. Unknown keys are reported
// together before any value is applied; after that the first invalid value
// stops the call.
func (b *Builder) SetOptions(values map[string]any) error {
	var unknown []string
	for k := range values {
		if !isKnownKey(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return imgerr.UnknownOption(unknown)
	}

	for _, key := range applyOrder {
		v, ok := values[key]
		if !ok {
			continue
		}
		if err := b.apply(key, v); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) apply(key string, v any) error {
	switch key {
	case KeyOverwrite:
		return b.AllowOverwrite(v)
	case KeyWidth:
		return b.SetWidth(v)
	case KeyHeight:
		return b.SetHeight(v)
	case KeyQuality:
		return b.SetQuality(v)
	case KeyMethod:
		return b.SetMethod(v)
	}

	s, ok := v.(string)
	if !ok {
		return imgerr.Validation(key, v, "must be a string")
	}
	switch key {
	case KeyInputPath:
		return b.SetInputPath(s)
	case KeyFolder:
		return b.SetFolder(s)
	case KeyFileName:
		return b.SetFileName(s)
	}
	return imgerr.UnknownOption([]string{key})
}

// Missing lists the required fields that are still unset
func (b *Builder) Missing() []string {
	var missing []string
	if b.inputPath == "" {
		missing = append(missing, KeyInputPath)
	}
	if b.folder == "" {
		missing = append(missing, KeyFolder)
	}
	if b.fileName == "" {
		missing = append(missing, KeyFileName)
	}
	if b.width == 0 {
		missing = append(missing, KeyWidth)
	}
	if b.height == 0 {
		missing = append(missing, KeyHeight)
	}
	return missing
}

// Build returns the finished Config, or IncompleteConfiguration naming every
// required field that is still unset.
func (b *Builder) Build() (Config, error) {
	if missing := b.Missing(); len(missing) > 0 {
		return Config{}, imgerr.IncompleteConfiguration(missing)
	}
	return Config{
		InputPath: b.inputPath,
		Source:    b.source,
		Target: types.TargetSpec{
			Width:        b.width,
			Height:       b.height,
			Method:       b.method,
			Quality:      b.quality,
			Overwrite:    b.overwrite,
			Folder:       b.folder,
			FileName:     b.fileName,
			OutputFormat: b.outputFormat,
		},
	}, nil
}

func isKnownKey(k string) bool {
	for _, known := range applyOrder {
		if k == known {
			return true
		}
	}
	return false
}

func asUnsupported(path string, err error) error {
	var e *imgerr.Error
	if errors.As(err, &e) {
		return err
	}
	return imgerr.UnsupportedFormat(path, "", err)
}

// toInt accepts Go integer kinds and strings made only of ASCII digits.
// Floats are rejected even when integral.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), n == int64(int(n))
	case uint:
		return int(n), int(n) >= 0
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), int64(n) <= int64(^uint(0)>>1)
	case uint64:
		return int(n), n <= uint64(^uint(0)>>1)
	case json.Number:
		return digitsToInt(n.String())
	case string:
		return digitsToInt(n)
	}
	return 0, false
}

func digitsToInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// toBool accepts a bool, the strings "0" and "1", or any integer input
// toInt accepts whose value is 0 or 1
func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch b {
		case "1":
			return true, true
		case "0":
			return false, true
		}
		return false, false
	}
	n, ok := toInt(v)
	if !ok {
		return false, false
	}
	switch n {
	case 1:
		return true, true
	case 0:
		return false, true
	}
	return false, false
}

// String renders the builder state for logs
func (b *Builder) String() string {
	return fmt.Sprintf("input=%q target=%dx%d method=%s quality=%d overwrite=%t out=%q",
		b.inputPath, b.width, b.height, b.method, b.quality, b.overwrite, types.TargetSpec{Folder: b.folder, FileName: b.fileName}.Path())
}
