package types

import (
	"image"
	"path/filepath"
	"strings"
)

// Method selects how the source is mapped onto the target box
type Method string

const (
	// Fill crops the source to the target ratio (centered) and scales it to exactly the target box.
	Fill Method = "fill"
	// Fit scales the source down, never up, until it fits inside the target box.
	Fit Method = "fit"
)

// DefaultMethod is used when no method is configured
const DefaultMethod = Fit

// ParseMethod converts a method name to a Method
func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case Fill:
		return Fill, true
	case Fit:
		return Fit, true
	}
	return "", false
}

// Format is a raster format known to the prober
type Format string

const (
	GIF  Format = "gif"
	JPEG Format = "jpeg"
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	WebP Format = "webp"
)

// Extension returns the canonical file extension for the format, without the dot
func (f Format) Extension() string {
	switch f {
	case JPEG:
		return "jpg"
	case TIFF:
		return "tif"
	}
	return string(f)
}

// Lossy reports whether the encoder honours a quality setting
func (f Format) Lossy() bool {
	return f == JPEG || f == WebP
}

// OutputFormats lists the formats an encoder can be configured to produce
func OutputFormats() []Format {
	return []Format{JPEG, PNG, WebP}
}

// Encodable reports whether f is one of OutputFormats
func (f Format) Encodable() bool {
	for _, out := range OutputFormats() {
		if f == out {
			return true
		}
	}
	return false
}

// ParseFormat accepts a format name or a common extension alias
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "gif":
		return GIF, true
	case "jpg", "jpeg":
		return JPEG, true
	case "png":
		return PNG, true
	case "bmp":
		return BMP, true
	case "tif", "tiff":
		return TIFF, true
	case "webp":
		return WebP, true
	}
	return "", false
}

// ImageSpec describes a probed source image
type ImageSpec struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format Format `json:"format"`
}

// Ratio returns width/height, or 0 when either side is unknown
func (s ImageSpec) Ratio() float64 {
	return ratio(s.Width, s.Height)
}

// Bounds returns the full source rectangle
func (s ImageSpec) Bounds() Rect {
	return Rect{Width: s.Width, Height: s.Height}
}

// TargetSpec is the requested output
type TargetSpec struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Method       Method `json:"method"`
	Quality      int    `json:"quality"`
	Overwrite    bool   `json:"overwrite"`
	Folder       string `json:"folder"`
	FileName     string `json:"file_name"`
	OutputFormat Format `json:"output_format"`
}

// Ratio returns width/height, or 0 while either dimension is unset
func (t TargetSpec) Ratio() float64 {
	return ratio(t.Width, t.Height)
}

// Path is the destination file path
func (t TargetSpec) Path() string {
	return filepath.Join(t.Folder, t.FileName)
}

// Rect is a rectangle in source pixel space
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rectangle converts r to an image.Rectangle
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Within reports whether r lies entirely inside a w x h image
func (r Rect) Within(w, h int) bool {
	return r.X >= 0 && r.Y >= 0 && r.Width > 0 && r.Height > 0 &&
		r.X+r.Width <= w && r.Y+r.Height <= h
}

// ResamplePlan is the crop and canvas handed to the resampler
type ResamplePlan struct {
	Crop   Rect `json:"crop"`
	Width  int  `json:"width"`
	Height int  `json:"height"`
}

// Identity reports whether applying the plan to src would leave it unchanged
func (p ResamplePlan) Identity(src ImageSpec) bool {
	return p.Crop == src.Bounds() && p.Width == src.Width && p.Height == src.Height
}

func ratio(w, h int) float64 {
	if w <= 0 || h <= 0 {
		return 0
	}
	return float64(w) / float64(h)
}
