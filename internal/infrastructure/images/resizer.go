// Package images resizes uploaded images to the fixed dimensions the site
// serves, encoding everything as JPEG.
package images

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

const jpegQuality = 90

// Resizer implements the ImageResizer port with disintegration/imaging.
type Resizer struct{}

func NewResizer() *Resizer {
	return &Resizer{}
}

// ResizeJPEG decodes the uploaded image, scales and center-crops it to cover
// width x height exactly, and returns JPEG bytes.
func (Resizer) ResizeJPEG(r io.Reader, width, height int) ([]byte, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := imaging.Fill(src, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
