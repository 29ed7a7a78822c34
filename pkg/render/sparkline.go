package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"f1laptrend/pkg/model"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/pkg/errors"
)

const sparkMargin = 4

// Sparkline draws a compact trend line without axes. Years are spread evenly
// on the x axis; faster laps sit higher.
func Sparkline(w io.Writer, points []model.TrendPoint, width, height int, hex string) error {
	if len(points) == 0 {
		return ErrNoData
	}
	if width <= 2*sparkMargin || height <= 2*sparkMargin {
		return errors.Errorf("sparkline: size %dx%d too small", width, height)
	}

	sorted := make([]model.TrendPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	dest := image.NewRGBA(image.Rect(0, 0, width, height))
	gc := draw2dimg.NewGraphicContext(dest)
	gc.SetFillColor(color.White)
	gc.Clear()

	drawSpark(gc, sorted, float64(width), float64(height), parseHex(hex))
	return png.Encode(w, dest)
}

func drawSpark(gc draw2d.GraphicContext, points []model.TrendPoint, width, height float64, col color.Color) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	firstYear := float64(points[0].Year)
	years := float64(points[len(points)-1].Year) - firstYear
	if years == 0 {
		years = 1
	}

	plotW := width - 2*sparkMargin
	plotH := height - 2*sparkMargin
	pos := func(p model.TrendPoint) (float64, float64) {
		x := sparkMargin + (float64(p.Year)-firstYear)/years*plotW
		// lower lap times are drawn higher up
		y := sparkMargin + (p.Value-lo)/span*plotH
		return x, y
	}

	gc.Save()
	gc.SetStrokeColor(col)
	gc.SetLineWidth(2)
	for i, p := range points {
		x, y := pos(p)
		if i == 0 {
			gc.MoveTo(x, y)
			continue
		}
		gc.LineTo(x, y)
	}
	gc.Stroke()

	x, y := pos(points[len(points)-1])
	gc.SetFillColor(col)
	draw2dkit.Circle(gc, x, y, 2.5)
	gc.Fill()
	gc.Restore()
}

// parseHex accepts "#rrggbb" or "#rgb" and falls back to grey.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if len(s) != 6 || err != nil {
		return color.RGBA{0xaa, 0xaa, 0xaa, 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
