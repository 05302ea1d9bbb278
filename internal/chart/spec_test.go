package chart

import (
	"strings"
	"testing"
)

func TestChartSpec_Validate(t *testing.T) {
	valid := func() ChartSpec {
		return ChartSpec{
			XAxis:  Axis{Title: XAxisTitle},
			YAxis:  Axis{Title: "a", Side: SideLeft},
			YAxis2: Axis{Title: "b", Side: SideRight, Overlaying: AxisPrimary},
			Series: []Series{
				{Name: "a", Type: SeriesBar, X: []int{1, 2}, Y: []float64{1, 2}, Axis: AxisPrimary},
				{Name: "b", Type: SeriesLine, X: []int{1, 2}, Y: []float64{3, 4}, Axis: AxisSecondary, LineWidth: LineWidth},
			},
		}
	}

	tests := []struct {
		name    string
		modify  func(s *ChartSpec)
		wantErr string
	}{
		{name: "正常系", modify: func(*ChartSpec) {}},
		{name: "系列なし", modify: func(s *ChartSpec) { s.Series = nil }},
		{
			name:    "第2軸の重ね合わせ指定がない",
			modify:  func(s *ChartSpec) { s.YAxis2.Overlaying = "" },
			wantErr: "must overlay",
		},
		{
			name:    "未知の系列種類",
			modify:  func(s *ChartSpec) { s.Series[0].Type = "pie" },
			wantErr: "unknown type",
		},
		{
			name:    "未知の軸",
			modify:  func(s *ChartSpec) { s.Series[0].Axis = "y3" },
			wantErr: "unknown axis",
		},
		{
			name:    "XとYの長さが違う",
			modify:  func(s *ChartSpec) { s.Series[1].Y = []float64{1} },
			wantErr: "x has 2 values",
		},
		{
			name:    "未知の軸位置",
			modify:  func(s *ChartSpec) { s.YAxis.Side = "top" },
			wantErr: "unknown axis side",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.modify(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
