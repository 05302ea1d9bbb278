// Package table はデータセットの表表示を組み立てます
package table

import (
	"errors"
	"strconv"

	"iryohi/internal/dataset"
)

// ErrEmptyDataset は表示する行がない場合のエラー
var ErrEmptyDataset = errors.New("dataset must not be empty")

// DefaultMaxHeight は表の表示領域の高さ（px）
const DefaultMaxHeight = 300

// Header は列見出しです
type Header struct {
	ID    string `json:"id"`   // 列のキー
	Name  string `json:"name"` // 表示名
	Align string `json:"align"`
}

// View は見出し固定・縦スクロールの表です
type View struct {
	Columns     []Header   `json:"columns"`
	Rows        [][]string `json:"rows"`
	MaxHeight   int        `json:"max_height"`   // 表示領域の高さ（px）
	FixedHeader bool       `json:"fixed_header"` // スクロール中も見出しを表示する
	ScrollX     bool       `json:"scroll_x"`
}

// Options は表の表示設定です
type Options struct {
	MaxHeight int
}

// Build はデータセットの全行・全列をデータセット順に並べた表を作ります
func Build(ds *dataset.Dataset, opts Options) (*View, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}

	maxHeight := opts.MaxHeight
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}

	cols := ds.Columns()
	headers := make([]Header, 0, len(cols))
	for _, c := range cols {
		headers = append(headers, Header{ID: c.Key, Name: string(c.Name), Align: "right"})
	}

	rows := make([][]string, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		r := ds.Row(i)
		cells := make([]string, 0, len(cols))
		cells = append(cells, strconv.Itoa(r.Year))
		for _, v := range r.Values {
			cells = append(cells, formatValue(v))
		}
		rows = append(rows, cells)
	}

	return &View{
		Columns:     headers,
		Rows:        rows,
		MaxHeight:   maxHeight,
		FixedHeader: true,
		ScrollX:     true,
	}, nil
}

// formatValue は値を必要最小限の桁数で表します
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
