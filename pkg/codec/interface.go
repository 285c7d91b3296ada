package codec

import (
	"image"

	"github.com/prcd/imageprocessor/pkg/types"
)

// Prober reads dimensions and format from an image file without decoding pixels
type Prober interface {
	Probe(path string) (types.ImageSpec, error)
}

// Codec is the image I/O collaborator used by a processing run
type Codec interface {
	Prober
	Decode(path string, format types.Format) (image.Image, error)
	Resample(src image.Image, crop types.Rect, width, height int) (image.Image, error)
	Encode(img image.Image, format types.Format, quality int) ([]byte, error)
	Write(data []byte, path string) error
	Exists(path string) (bool, error)
}
