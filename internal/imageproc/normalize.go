// Package imageproc prepares uploaded images for the generation service:
// decoding, content-type correction, bounded downscaling and logo overlay.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"mockup/internal/domain"
)

// DefaultMaxSize bounds the longest side of a normalized image.
const DefaultMaxSize = 1024

const jpegQuality = 90

// ErrEmptyImage is returned when an upload carries no bytes.
var ErrEmptyImage = errors.New("imageproc: empty image")

// Image is a decoded, size-bounded image ready for compositing and upload.
type Image struct {
	Pixels      *image.NRGBA
	ContentType string
	Width       int
	Height      int
}

// Encoded holds the transport form of an Image.
type Encoded struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Normalize decodes the upload, resolves its content type and scales it down
// so that neither side exceeds maxSize. Images already inside the bound are
// left at their original size. maxSize <= 0 disables resizing.
func Normalize(up domain.Upload, maxSize int) (*Image, error) {
	if up.Reader == nil {
		return nil, ErrEmptyImage
	}
	raw, err := io.ReadAll(up.Reader)
	if err != nil {
		return nil, fmt.Errorf("imageproc: read upload: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyImage
	}
	decoded, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imageproc: decode %q: %w", up.Filename, err)
	}

	var pixels *image.NRGBA
	b := decoded.Bounds()
	if maxSize > 0 && (b.Dx() > maxSize || b.Dy() > maxSize) {
		pixels = imaging.Fit(decoded, maxSize, maxSize, imaging.Lanczos)
	} else {
		pixels = imaging.Clone(decoded)
	}

	return &Image{
		Pixels:      pixels,
		ContentType: ResolveContentType(up.Filename, up.ContentType),
		Width:       pixels.Bounds().Dx(),
		Height:      pixels.Bounds().Dy(),
	}, nil
}

// Encode renders the image as JPEG when its content type is image/jpeg and as
// PNG otherwise, labelled image/png. Only an unresolved generic type is passed
// through unchanged.
func (img *Image) Encode() (*Encoded, error) {
	if img == nil || img.Pixels == nil {
		return nil, ErrEmptyImage
	}
	var buf bytes.Buffer
	ct := img.ContentType
	switch ct {
	case MIMEJPEG:
		if err := imaging.Encode(&buf, img.Pixels, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
			return nil, fmt.Errorf("imageproc: encode jpeg: %w", err)
		}
	default:
		if err := imaging.Encode(&buf, img.Pixels, imaging.PNG); err != nil {
			return nil, fmt.Errorf("imageproc: encode png: %w", err)
		}
		if ct == "" || !isGeneric(ct) {
			ct = MIMEPNG
		}
	}
	return &Encoded{Data: buf.Bytes(), ContentType: ct, Ext: extensionFor(ct)}, nil
}
