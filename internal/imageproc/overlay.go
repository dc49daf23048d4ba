package imageproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DefaultLogoOffset is the top-left anchor used when no placement is configured.
var DefaultLogoOffset = image.Pt(50, 50)

// Placement controls where and how large the logo is drawn on the product.
// Scale is the logo width as a fraction of the base width; zero keeps the
// logo at its normalized size.
type Placement struct {
	Offset image.Point
	Scale  float64
}

// DefaultPlacement returns the (50,50) anchor without scaling.
func DefaultPlacement() Placement {
	return Placement{Offset: DefaultLogoOffset}
}

// Overlay alpha-composites logo onto base at the placement anchor. The result
// always has the base's dimensions and content type; logo pixels outside the
// base are clipped. Neither input is modified.
func Overlay(base, logo *Image, p Placement) *Image {
	if base == nil {
		return nil
	}
	if logo == nil || logo.Pixels == nil {
		return &Image{
			Pixels:      imaging.Clone(base.Pixels),
			ContentType: base.ContentType,
			Width:       base.Width,
			Height:      base.Height,
		}
	}
	mark := scaledLogo(logo.Pixels, base.Width, p.Scale)
	out := imaging.Overlay(base.Pixels, mark, p.Offset, 1.0)
	return &Image{
		Pixels:      out,
		ContentType: base.ContentType,
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
	}
}

// MaskCanvas draws the logo at the placement anchor onto a fully transparent
// canvas the size of base. The generation service receives it in the mask
// slot, which requires the same dimensions as the edited image.
func MaskCanvas(base, logo *Image, p Placement) *Image {
	if base == nil {
		return nil
	}
	canvas := imaging.New(base.Width, base.Height, color.NRGBA{})
	if logo != nil && logo.Pixels != nil {
		canvas = imaging.Overlay(canvas, scaledLogo(logo.Pixels, base.Width, p.Scale), p.Offset, 1.0)
	}
	return &Image{
		Pixels:      canvas,
		ContentType: MIMEPNG,
		Width:       base.Width,
		Height:      base.Height,
	}
}

func scaledLogo(logo *image.NRGBA, baseWidth int, scale float64) image.Image {
	if scale <= 0 {
		return logo
	}
	width := int(float64(baseWidth)*scale + 0.5)
	if width < 1 {
		width = 1
	}
	return imaging.Resize(logo, width, 0, imaging.Lanczos)
}
