package blob

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"
)

// layer is one translucent, blurred polygon of the composite.
type layer struct {
	scale   float64
	opacity float64
	blur    float64
	color   func(palette []RGB) RGB
}

// layers are composited back to front: halo, mid, body, core.
var layers = []layer{
	{scale: 1.2, opacity: 0.2, blur: 40, color: func(p []RGB) RGB { return p[0] }},
	{scale: 1.0, opacity: 0.4, blur: 25, color: func(p []RGB) RGB { return BlendColors(p[0], secondary(p), 0.6) }},
	{scale: 0.85, opacity: 0.7, blur: 15, color: func(p []RGB) RGB { return p[0] }},
	{scale: 0.6, opacity: 0.9, blur: 10, color: func(p []RGB) RGB { return Brighten(p[0], 1.3) }},
}

// canvasPersistence is the share of the fresh composite in the output; the
// rest of the previous canvas shows through.
const canvasPersistence = 0.65

func secondary(palette []RGB) RGB {
	if len(palette) > 1 {
		return palette[1]
	}
	return palette[0]
}

// Composite draws the four blob layers over canvas and blends the result
// 65% over the original canvas. blurScale multiplies the blur radii of the
// reference 1200px canvas. canvas is not modified.
func Composite(canvas image.Image, contour []Point, palette []RGB, blurScale float64) *image.NRGBA {
	base := imaging.Clone(canvas)
	if len(contour) < 3 || len(palette) == 0 {
		return base
	}

	result := imaging.Clone(base)
	for _, l := range layers {
		drawLayer(result, ScalePoints(contour, l.scale), l.color(palette).NRGBA(uint8(255*l.opacity)), l.blur*blurScale)
	}
	return imaging.Overlay(base, result, image.Point{}, canvasPersistence)
}

// drawLayer fills the polygon, blurs it, and composites it over dst. Only the
// polygon bounds plus a three-sigma margin are rasterized and blurred.
func drawLayer(dst *image.NRGBA, points []Point, fill color.NRGBA, sigma float64) {
	margin := int(math.Ceil(3*sigma)) + 2
	rect := bounds(points).Inset(-margin).Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}

	mask := polygonMask(points, rect)
	tile := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.DrawMask(tile, tile.Bounds(), image.NewUniform(fill), image.Point{}, mask, image.Point{}, draw.Src)

	var blurred image.Image = tile
	if sigma > 0 {
		blurred = imaging.Blur(tile, sigma)
	}
	draw.Draw(dst, rect, blurred, image.Point{}, draw.Over)
}

// polygonMask rasterizes the closed polygon into an anti-aliased alpha mask
// covering rect, with rect.Min at the mask origin.
func polygonMask(points []Point, rect image.Rectangle) *image.Alpha {
	w, h := rect.Dx(), rect.Dy()
	r := vector.NewRasterizer(w, h)
	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	r.MoveTo(float32(points[0].X-ox), float32(points[0].Y-oy))
	for _, p := range points[1:] {
		r.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	r.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}
