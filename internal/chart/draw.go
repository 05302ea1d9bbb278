package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format は画像形式です
type Format string

// 画像形式
const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ContentType は形式に対応するMIMEタイプを返します
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// DrawOptions は画像の大きさです
type DrawOptions struct {
	Width  int
	Height int
}

var (
	barColor  = drawing.ColorFromHex("2C3E50")
	lineColor = drawing.ColorFromHex("E74C3C")
)

// Draw はChartSpecを画像として書き出します
//
// 棒系列は第1軸、折れ線系列は第2軸に描く。NoData の仕様は
// メッセージだけの空のグラフになる。
func Draw(spec ChartSpec, opts DrawOptions, format Format, w io.Writer) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	var renderer gochart.RendererProvider
	switch format {
	case FormatSVG:
		renderer = gochart.SVG
	case FormatPNG:
		renderer = gochart.PNG
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	c := gochart.Chart{
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
	}

	if spec.NoData || len(spec.Series) == 0 {
		c.Title = spec.Message
		if c.Title == "" {
			c.Title = "no data"
		}
		// go-chart は表示系列が1つもないと描画しないため透明な系列を置く
		c.Series = []gochart.Series{gochart.ContinuousSeries{
			Style:   gochart.Style{StrokeColor: drawing.ColorTransparent},
			XValues: []float64{0, 1},
			YValues: []float64{0, 1},
		}}
		c.XAxis = gochart.XAxis{Style: gochart.Style{Hidden: true}}
		c.YAxis = gochart.YAxis{Style: gochart.Style{Hidden: true}}
		return c.Render(renderer, w)
	}

	var xmin, xmax float64 = math.Inf(1), math.Inf(-1)
	var primary []float64
	for _, s := range spec.Series {
		xs := toFloats(s.X)
		for _, x := range xs {
			xmin = math.Min(xmin, x)
			xmax = math.Max(xmax, x)
		}

		cs := gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Y,
		}
		if s.Axis == AxisSecondary {
			cs.YAxis = gochart.YAxisSecondary
		} else {
			primary = append(primary, s.Y...)
		}

		switch s.Type {
		case SeriesBar:
			cs.Style = gochart.Style{FillColor: barColor.WithAlpha(200), StrokeColor: barColor, StrokeWidth: 1}
			c.Series = append(c.Series, barSeries{ContinuousSeries: cs})
		case SeriesLine:
			cs.Style = gochart.Style{StrokeColor: lineColor, StrokeWidth: s.LineWidth}
			c.Series = append(c.Series, cs)
		}
	}

	// 端の棒が切れないよう半年分ずつ広げる
	c.XAxis = gochart.XAxis{
		Name:  spec.XAxis.Title,
		Range: &gochart.ContinuousRange{Min: xmin - 1, Max: xmax + 1},
		Ticks: yearTicks(int(xmin), int(xmax)),
	}
	c.YAxis = gochart.YAxis{Name: spec.YAxis.Title}
	if len(primary) > 0 {
		// 棒は0から伸ばす
		c.YAxis.Range = &gochart.ContinuousRange{Min: math.Min(0, minOf(primary)), Max: niceMax(maxOf(primary))}
	}
	c.YAxisSecondary = gochart.YAxis{Name: spec.YAxis2.Title}
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}

	return c.Render(renderer, w)
}

// barSeries は ContinuousSeries の値を棒として描きます
type barSeries struct {
	gochart.ContinuousSeries
}

// Render は各点をX位置の中心に置いた棒を描きます
func (bs barSeries) Render(r gochart.Renderer, canvasBox gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	n := bs.Len()
	if n == 0 {
		return
	}
	style := bs.Style.InheritFrom(defaults)

	slot := float64(canvasBox.Width()) / float64(n+1)
	half := int(math.Max(1, slot*0.4))
	base := canvasBox.Bottom - yrange.Translate(math.Max(yrange.GetMin(), 0))

	for i := 0; i < n; i++ {
		x, y := bs.GetValues(i)
		cx := canvasBox.Left + xrange.Translate(x)
		cy := canvasBox.Bottom - yrange.Translate(y)
		top, bottom := cy, base
		if top > bottom {
			top, bottom = bottom, top
		}
		gochart.Draw.Box(r, gochart.Box{Top: top, Left: cx - half, Right: cx + half, Bottom: bottom}, style)
	}
}

func yearTicks(from, to int) []gochart.Tick {
	step := 5
	if to-from <= 10 {
		step = 1
	}
	var ticks []gochart.Tick
	for y := from - from%step; y <= to; y += step {
		if y < from {
			continue
		}
		ticks = append(ticks, gochart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	return ticks
}

// niceMax は最大値を1, 2, 5 × 10^n の刻みに切り上げます
func niceMax(v float64) float64 {
	if v <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}

func toFloats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

func minOf(vs []float64) float64 {
	m := math.Inf(1)
	for _, v := range vs {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(vs []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vs {
		m = math.Max(m, v)
	}
	return m
}
