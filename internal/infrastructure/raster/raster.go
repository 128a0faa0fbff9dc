package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// MaxPixels bounds the decoded size of a source image.
	MaxPixels = 50_000_000
	// MaxAspect caps a thumbnail's height at MaxAspect times its width.
	MaxAspect = 4
)

var (
	ErrUnsupported = errors.New("unsupported image")
	ErrTooLarge    = fmt.Errorf("%w: too many pixels", ErrUnsupported)
)

// Source is a decoded image that can be resized concurrently.
type Source struct {
	img    image.Image
	format imaging.Format
}

// Decode accepts any format imaging can both read and write
// (jpeg, png, gif, bmp, tiff). Dimensions are checked from the header
// before any pixel is allocated.
func Decode(data []byte) (*Source, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}

	return &Source{img: img, format: format}, nil
}

func (s *Source) Format() imaging.Format { return s.format }

// Thumbnail scales the image to width, keeping the aspect ratio, and encodes
// it in the source format. Images taller than MaxAspect allows are fitted
// into width x MaxAspect*width instead. Output is deterministic for a given
// input.
func (s *Source) Thumbnail(width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid width %d", width)
	}

	var dst *image.NRGBA
	b := s.img.Bounds()
	maxHeight := MaxAspect * width
	if int64(b.Dy())*int64(width) > int64(maxHeight)*int64(b.Dx()) {
		dst = imaging.Fit(s.img, width, maxHeight, imaging.Lanczos)
	} else {
		dst = imaging.Resize(s.img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, s.format); err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.format, err)
	}

	return buf.Bytes(), nil
}
