package chart

import (
	"iryohi/internal/dataset"
)

// Render は選択された2列から2軸グラフの仕様を組み立てます
//
// a は棒グラフとして左の第1軸に、b は折れ線として右の第2軸に割り当てる。
// a と b が同じ列でもよい。どちらかの列が解決できない場合は系列を持たない
// NoData の仕様を返す。ds は変更しない。
func Render(ds *dataset.Dataset, a, b dataset.ColumnRef) ChartSpec {
	spec := ChartSpec{
		XAxis: Axis{Title: XAxisTitle},
	}

	ya, err := ds.Values(a)
	if err != nil {
		return noData(spec, err)
	}
	yb, err := ds.Values(b)
	if err != nil {
		return noData(spec, err)
	}

	spec.YAxis = Axis{Title: string(a), Side: SideLeft}
	spec.YAxis2 = Axis{Title: string(b), Side: SideRight, Overlaying: AxisPrimary}
	spec.Series = []Series{
		{
			Name: string(a),
			Type: SeriesBar,
			X:    ds.Years(),
			Y:    ya,
			Axis: AxisPrimary,
		},
		{
			Name:      string(b),
			Type:      SeriesLine,
			X:         ds.Years(),
			Y:         yb,
			Axis:      AxisSecondary,
			LineWidth: LineWidth,
		},
	}
	return spec
}

func noData(spec ChartSpec, err error) ChartSpec {
	spec.Series = []Series{}
	spec.NoData = true
	spec.Message = err.Error()
	return spec
}
