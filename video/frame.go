package video

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// decodeImage parses provider image bytes into a raster. Every segment image
// is decoded before capture starts so a bad image fails the render fast.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// compose letterboxes img into a w×h frame: scaled to fit without
// distortion, centered, surrounded by a solid background.
func compose(img image.Image, w, h int) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(frame, frame.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	sb := img.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return frame
	}

	scale := float64(w) / float64(sb.Dx())
	if s := float64(h) / float64(sb.Dy()); s < scale {
		scale = s
	}
	dw := int(float64(sb.Dx()) * scale)
	dh := int(float64(sb.Dy()) * scale)
	x0 := (w - dw) / 2
	y0 := (h - dh) / 2

	dst := image.Rect(x0, y0, x0+dw, y0+dh)
	xdraw.ApproxBiLinear.Scale(frame, dst, img, sb, xdraw.Over, nil)
	return frame
}
