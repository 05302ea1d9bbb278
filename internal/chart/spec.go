// Package chart は2軸グラフ（棒 + 折れ線）の描画仕様を組み立てます
package chart

import (
	"fmt"
)

// SeriesType は系列の種類です
type SeriesType string

// 系列の種類
const (
	SeriesBar  SeriesType = "bar"
	SeriesLine SeriesType = "line"
)

// AxisRef は系列が属するY軸です
type AxisRef string

// Y軸
const (
	AxisPrimary   AxisRef = "y"
	AxisSecondary AxisRef = "y2"
)

// AxisSide はY軸を置く側です
type AxisSide string

// Y軸の位置
const (
	SideLeft  AxisSide = "left"
	SideRight AxisSide = "right"
)

// LineWidth は折れ線系列の線幅
const LineWidth = 3.0

// XAxisTitle はX軸のタイトル
const XAxisTitle = "年次"

// Series は1つの系列を表します
type Series struct {
	Name      string     `json:"name"`
	Type      SeriesType `json:"type"`
	X         []int      `json:"x"`
	Y         []float64  `json:"y"`
	Axis      AxisRef    `json:"axis"`
	LineWidth float64    `json:"line_width,omitempty"` // 折れ線のみ
}

// Axis は軸の設定を表します
type Axis struct {
	Title      string   `json:"title"`
	Side       AxisSide `json:"side,omitempty"`
	Overlaying AxisRef  `json:"overlaying,omitempty"` // 第2軸は必ず AxisPrimary を指定する
}

// ChartSpec は描画面に渡すグラフの仕様です
//
// 選択が変わるたびに作り直し、キャッシュも差分計算もしない。
type ChartSpec struct {
	XAxis   Axis     `json:"xaxis"`
	YAxis   Axis     `json:"yaxis"`
	YAxis2  Axis     `json:"yaxis2"`
	Series  []Series `json:"series"`
	NoData  bool     `json:"no_data,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Validate は列挙値、系列の長さ、第2軸の重ね合わせ指定を検証します
func (s ChartSpec) Validate() error {
	for i, sr := range s.Series {
		switch sr.Type {
		case SeriesBar, SeriesLine:
		default:
			return fmt.Errorf("series %d: unknown type %q", i, sr.Type)
		}
		switch sr.Axis {
		case AxisPrimary:
		case AxisSecondary:
			// 重ね合わせ指定がないと第2軸は表示されない
			if s.YAxis2.Overlaying != AxisPrimary {
				return fmt.Errorf("series %d: secondary axis must overlay %q", i, AxisPrimary)
			}
		default:
			return fmt.Errorf("series %d: unknown axis %q", i, sr.Axis)
		}
		if len(sr.X) != len(sr.Y) {
			return fmt.Errorf("series %d: x has %d values, y has %d", i, len(sr.X), len(sr.Y))
		}
	}
	for _, a := range []Axis{s.YAxis, s.YAxis2} {
		switch a.Side {
		case "", SideLeft, SideRight:
		default:
			return fmt.Errorf("unknown axis side %q", a.Side)
		}
	}
	return nil
}
