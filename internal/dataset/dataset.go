// Package dataset は国民医療費の年次データセットを提供します
package dataset

import (
	"github.com/pkg/errors"
)

// ColumnRef はデータセットの列を名前で参照します
type ColumnRef string

// 固定スキーマの列名
const (
	ColumnYear           ColumnRef = "年次"
	ColumnTotalCost      ColumnRef = "医療費計(億円)"
	ColumnCostPerCapita  ColumnRef = "一人当たり医療費(千円)"
	ColumnGDP            ColumnRef = "国内総生産(GDP)(億円)"
	ColumnNationalIncome ColumnRef = "国民所得(NI)(億円)"
	ColumnGDPRatio       ColumnRef = "GDPに対する比率(%)"
	ColumnNIRatio        ColumnRef = "NIに対する比率(%)"
	ColumnPopulation     ColumnRef = "総人口(千人)"
)

// Column はデータセットの列定義を表します
type Column struct {
	Key  string    `json:"key"`  // 英字キー
	Name ColumnRef `json:"name"` // 表示名（選択値としても使う）
	Unit string    `json:"unit"` // 単位
}

var schema = []Column{
	{Key: "year", Name: ColumnYear, Unit: "年"},
	{Key: "total_cost", Name: ColumnTotalCost, Unit: "億円"},
	{Key: "cost_per_capita", Name: ColumnCostPerCapita, Unit: "千円"},
	{Key: "gdp", Name: ColumnGDP, Unit: "億円"},
	{Key: "national_income", Name: ColumnNationalIncome, Unit: "億円"},
	{Key: "gdp_ratio", Name: ColumnGDPRatio, Unit: "%"},
	{Key: "ni_ratio", Name: ColumnNIRatio, Unit: "%"},
	{Key: "population", Name: ColumnPopulation, Unit: "千人"},
}

// Schema は固定スキーマの列定義をデータセット順で返します
// 先頭は年次列
func Schema() []Column {
	out := make([]Column, len(schema))
	copy(out, schema)
	return out
}

var (
	// ErrUnknownColumn は存在しない列を参照した場合のエラー
	ErrUnknownColumn = errors.New("unknown column")
	// ErrEmptyDataset は有効な行が1行もない場合のエラー
	ErrEmptyDataset = errors.New("dataset has no rows")
	// ErrSchemaMismatch はヘッダーが固定スキーマに対応しない場合のエラー
	ErrSchemaMismatch = errors.New("columns do not match the expected schema")
	// ErrMalformedRow は行の値が欠損または数値でない場合のエラー
	ErrMalformedRow = errors.New("malformed row")
	// ErrYearOrder は年次が昇順でない場合のエラー
	ErrYearOrder = errors.New("years are not strictly ascending")
)

// Dataset は読み込み済みの不変データセットです
//
// 値は列ごとのスライスで保持する。公開メソッドはコピーを返すため、
// 呼び出し側がデータセットを変更することはできない。
type Dataset struct {
	columns []Column
	years   []int
	values  [][]float64 // columns[1:] と同じ順序
}

// Row はデータセットの1行を表します
type Row struct {
	Year   int       `json:"year"`
	Values []float64 `json:"values"` // ValueColumns と同じ順序
}

// New は年次と値列からデータセットを組み立てます
// values は ValueColumns の順序で、各スライスの長さは years と一致する必要がある
func New(years []int, values [][]float64) (*Dataset, error) {
	if len(years) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(values) != len(schema)-1 {
		return nil, errors.Wrapf(ErrSchemaMismatch, "got %d value columns, want %d", len(values), len(schema)-1)
	}
	for i := 1; i < len(years); i++ {
		if years[i] <= years[i-1] {
			return nil, errors.Wrapf(ErrYearOrder, "year %d follows %d", years[i], years[i-1])
		}
	}

	ds := &Dataset{
		columns: Schema(),
		years:   append([]int(nil), years...),
		values:  make([][]float64, len(values)),
	}
	for i, col := range values {
		if len(col) != len(years) {
			return nil, errors.Wrapf(ErrMalformedRow, "column %s has %d values, want %d", schema[i+1].Name, len(col), len(years))
		}
		ds.values[i] = append([]float64(nil), col...)
	}
	return ds, nil
}

// Len は行数を返します
func (d *Dataset) Len() int {
	return len(d.years)
}

// Columns は年次列を含む全列をデータセット順で返します
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// ValueColumns は年次列を除いた列をデータセット順で返します
func (d *Dataset) ValueColumns() []Column {
	out := make([]Column, len(d.columns)-1)
	copy(out, d.columns[1:])
	return out
}

// Years は年次列の値を返します
func (d *Dataset) Years() []int {
	return append([]int(nil), d.years...)
}

// Lookup は列名から列定義を探します
func (d *Dataset) Lookup(ref ColumnRef) (Column, bool) {
	if i := d.index(ref); i >= 0 {
		return d.columns[i], true
	}
	return Column{}, false
}

// Values は指定された値列の値を返します
// 年次列や存在しない列を指定した場合は ErrUnknownColumn を返す
func (d *Dataset) Values(ref ColumnRef) ([]float64, error) {
	i := d.index(ref)
	if i < 1 {
		return nil, errors.Wrapf(ErrUnknownColumn, "%q", string(ref))
	}
	return append([]float64(nil), d.values[i-1]...), nil
}

// Row は i 行目を返します
func (d *Dataset) Row(i int) Row {
	r := Row{Year: d.years[i], Values: make([]float64, len(d.values))}
	for c := range d.values {
		r.Values[c] = d.values[c][i]
	}
	return r
}

func (d *Dataset) index(ref ColumnRef) int {
	for i, c := range d.columns {
		if c.Name == ref {
			return i
		}
	}
	return -1
}
