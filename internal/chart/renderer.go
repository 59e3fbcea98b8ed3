// Package chart renders goal projection charts as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/scaryPonens/fundadvisor/internal/domain"
)

const (
	chartWidth  = 960
	chartHeight = 640
)

var (
	colBackground   = color.RGBA{R: 250, G: 252, B: 255, A: 255}
	colGrid         = color.RGBA{R: 225, G: 232, B: 240, A: 255}
	colConservative = color.RGBA{R: 104, G: 122, B: 146, A: 255}
	colExpected     = color.RGBA{R: 62, G: 106, B: 214, A: 255}
	colBestCase     = color.RGBA{R: 255, G: 149, B: 0, A: 255}
	colInvested     = color.RGBA{R: 120, G: 139, B: 164, A: 255}
	colGain         = color.RGBA{R: 18, G: 140, B: 126, A: 255}
	colMarker       = color.RGBA{R: 62, G: 106, B: 214, A: 255}
)

// Image is an encoded chart ready to serve.
type Image struct {
	MimeType string
	Width    int
	Height   int
	Bytes    []byte
}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderGoalChart draws the month-by-month corpus growth for a saved goal:
// the three return scenarios and the contribution baseline in the main
// panel, with the expected gain over contributions as bars below.
func (r *Renderer) RenderGoalChart(g domain.Goal) (*Image, error) {
	months := g.HorizonYears * 12
	if months <= 0 {
		return nil, fmt.Errorf("need a positive horizon to render chart")
	}
	if g.InitialCorpus <= 0 && g.MonthlySIP <= 0 {
		return nil, fmt.Errorf("need a corpus or sip to render chart")
	}

	assumption := domain.ReturnsFor(g.RiskCategory)
	expectedRate := g.AdjustedReturn
	if expectedRate <= 0 {
		expectedRate = assumption.Expected
	}

	conservative := corpusSeries(g.InitialCorpus, g.MonthlySIP, assumption.Conservative, months)
	expected := corpusSeries(g.InitialCorpus, g.MonthlySIP, expectedRate, months)
	best := corpusSeries(g.InitialCorpus, g.MonthlySIP, assumption.BestCase, months)
	invested := investedSeries(g.InitialCorpus, g.MonthlySIP, months)

	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	paint(img, img.Bounds(), colBackground)

	// Scale the main panel to the extremes across scenarios and contributions.
	lo, _ := seriesBounds(conservative)
	iLo, _ := seriesBounds(invested)
	_, hi := seriesBounds(best)
	lo = math.Min(lo, iLo)

	mainRect := image.Rect(60, 20, chartWidth-20, (chartHeight*72)/100)
	main := newPlot(img, mainRect, months+1, lo, hi)
	main.grid(8, 6)
	main.line(invested, colInvested)
	main.line(conservative, colConservative)
	main.line(best, colBestCase)
	main.line(expected, colExpected)
	main.vline(months, colMarker)

	gains := make([]float64, len(expected))
	for i := range gains {
		gains[i] = expected[i] - invested[i]
	}
	gLo, gHi := seriesBounds(gains)
	if gLo > 0 {
		gLo = 0
	}

	auxRect := image.Rect(60, mainRect.Max.Y+16, chartWidth-20, chartHeight-30)
	aux := newPlot(img, auxRect, len(gains), gLo, gHi)
	aux.grid(8, 3)
	aux.hline(0, colConservative)
	aux.bars(gains, colGain)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return &Image{
		MimeType: "image/png",
		Width:    chartWidth,
		Height:   chartHeight,
		Bytes:    buf.Bytes(),
	}, nil
}

// corpusSeries accumulates the corpus month by month at the given annual
// rate. The value at every whole month matches the closed-form projection
// used by the planner.
func corpusSeries(principal, sip, annualReturnPct float64, months int) []float64 {
	r := annualReturnPct / 12 / 100
	out := make([]float64, months+1)
	v := principal
	out[0] = v
	for m := 1; m <= months; m++ {
		v = v*(1+r) + sip
		out[m] = v
	}
	return out
}

func investedSeries(principal, sip float64, months int) []float64 {
	out := make([]float64, months+1)
	for m := 0; m <= months; m++ {
		out[m] = principal + sip*float64(m)
	}
	return out
}

// plot maps (index, value) points onto a pixel rectangle of the canvas.
// points is the series length; values outside [lo, hi] clamp to the edge.
type plot struct {
	img    *image.RGBA
	rect   image.Rectangle
	lo, hi float64
	points int
}

func newPlot(img *image.RGBA, rect image.Rectangle, points int, lo, hi float64) *plot {
	if hi <= lo {
		hi = lo + 1
	}
	return &plot{img: img, rect: rect, lo: lo, hi: hi, points: points}
}

func (p *plot) x(idx int) int {
	if p.points <= 1 {
		return p.rect.Min.X
	}
	return p.rect.Min.X + (idx*(p.rect.Dx()-1))/(p.points-1)
}

func (p *plot) y(v float64) int {
	ratio := (v - p.lo) / (p.hi - p.lo)
	ratio = math.Max(0, math.Min(1, ratio))
	return p.rect.Max.Y - int(ratio*float64(p.rect.Dy()-1))
}

// line strokes a polyline through the series, breaking at gaps.
func (p *plot) line(series []float64, col color.RGBA) {
	lastX, lastY := -1, -1
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			lastX, lastY = -1, -1
			continue
		}
		x, y := p.x(i), p.y(v)
		if lastX >= 0 {
			stroke(p.img, lastX, lastY, x, y, col)
		}
		lastX, lastY = x, y
	}
}

// bars fills a vertical bar from the zero line to each value.
func (p *plot) bars(series []float64, col color.RGBA) {
	if len(series) == 0 {
		return
	}
	barW := max(1, (p.rect.Dx()-10)/len(series)-1)
	zeroY := p.y(0)
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		x, y := p.x(i), p.y(v)
		top := min(y, zeroY)
		bottom := max(y, zeroY)
		paint(p.img, image.Rect(x-barW/2, top, x+barW/2+1, bottom+1), col)
	}
}

func (p *plot) grid(cols, rows int) {
	for i := 0; i <= cols; i++ {
		x := p.rect.Min.X + (p.rect.Dx()*i)/max(1, cols)
		stroke(p.img, x, p.rect.Min.Y, x, p.rect.Max.Y, colGrid)
	}
	for i := 0; i <= rows; i++ {
		y := p.rect.Min.Y + (p.rect.Dy()*i)/max(1, rows)
		stroke(p.img, p.rect.Min.X, y, p.rect.Max.X, y, colGrid)
	}
}

// hline rules a horizontal line at a data value, the zero axis usually.
func (p *plot) hline(v float64, col color.RGBA) {
	y := p.y(v)
	stroke(p.img, p.rect.Min.X, y, p.rect.Max.X, y, col)
}

// vline rules a vertical line at a series index, used as the horizon marker.
func (p *plot) vline(idx int, col color.RGBA) {
	x := p.x(idx)
	stroke(p.img, x, p.rect.Min.Y, x, p.rect.Max.Y, col)
}

// seriesBounds returns the finite min and max of the series, defaulting to
// [0, 1] when nothing is finite.
func seriesBounds(values []float64) (float64, float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) || math.IsInf(hi, -1) {
		return 0, 1
	}
	if lo == hi {
		return lo, hi + 1
	}
	return lo, hi
}

func paint(img *image.RGBA, rect image.Rectangle, col color.RGBA) {
	r := rect.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

// stroke draws a Bresenham line clipped to the canvas.
func stroke(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.SetRGBA(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
