// Package picture downsamples and recompresses photos before they leave the
// application, either towards the captioning service or into an exported
// document, and applies the cosmetic filters from the theme package.
package picture

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"

	"github.com/afriel/keepsake/internal/theme"
)

// Captioning payloads stay small to keep request sizes down; export embeds
// tolerate a larger cap. Quality values trade bandwidth for fidelity and are
// deliberately not tunable.
const (
	CaptionMaxDim  = 800
	CaptionQuality = 70
	ExportMaxDim   = 1200
	ExportQuality  = 80
)

// Normalize re-encodes data as JPEG with the longest side capped at maxDim,
// preserving the aspect ratio. Images already within the cap are recompressed
// without resizing. If the payload cannot be decoded or re-encoded the
// original bytes are returned unmodified.
func Normalize(data []byte, maxDim, quality int) []byte {
	return NormalizeFiltered(data, theme.Original, maxDim, quality)
}

// NormalizeFiltered applies the given filter before resizing and
// recompressing. Like Normalize it falls back to the original bytes when the
// payload cannot be processed.
func NormalizeFiltered(data []byte, f theme.Filter, maxDim, quality int) []byte {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data
	}

	img = Apply(img, f)

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return data
	}

	return buf.Bytes()
}

// Apply returns img with the filter's pixel transform applied. Unknown
// filters and the original filter leave the image untouched.
func Apply(img image.Image, f theme.Filter) image.Image {
	switch f {
	case theme.Mono:
		return imaging.Grayscale(img)
	case theme.Vivid:
		return imaging.AdjustSaturation(img, 40)
	case theme.Fade:
		faded := imaging.AdjustContrast(img, -15)
		return imaging.AdjustBrightness(faded, 10)
	default:
		return img
	}
}
