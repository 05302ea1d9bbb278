package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MinFilledCells は行を有効とみなす最小の非空セル数
// これ未満の行（注記行など）は読み込み時に捨てる
const MinFilledCells = 3

// ParseResult は Parse の付随情報です
type ParseResult struct {
	Dropped int // 非空セルが足りず捨てた行数
}

// Parse はCSVを読み込んで固定スキーマのデータセットを組み立てます
//
// ヘッダーは固定スキーマの列名をちょうど1回ずつ含む必要がある（順不同）。
// 列の過不足は ErrSchemaMismatch として扱い、移行は試みない。
func Parse(r io.Reader) (*Dataset, ParseResult, error) {
	var res ParseResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, res, ErrEmptyDataset
	}
	if err != nil {
		return nil, res, errors.Wrap(err, "failed to read header")
	}

	// CSV列番号 -> スキーマ列番号
	mapping, err := mapHeader(header)
	if err != nil {
		return nil, res, err
	}

	var years []int
	values := make([][]float64, len(schema)-1)

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, res, errors.Wrapf(err, "line %d", line)
		}

		if filledCells(record) < MinFilledCells {
			res.Dropped++
			continue
		}

		cells := make([]string, len(schema))
		for i, sc := range mapping {
			if i < len(record) {
				cells[sc] = strings.TrimSpace(record[i])
			}
		}

		year, err := strconv.Atoi(strings.ReplaceAll(cells[0], ",", ""))
		if err != nil {
			return nil, res, errors.Wrapf(ErrMalformedRow, "line %d: %s %q", line, ColumnYear, cells[0])
		}
		years = append(years, year)

		for c := 1; c < len(schema); c++ {
			v, err := parseNumber(cells[c])
			if err != nil {
				return nil, res, errors.Wrapf(ErrMalformedRow, "line %d: %s %q", line, schema[c].Name, cells[c])
			}
			values[c-1] = append(values[c-1], v)
		}
	}

	ds, err := New(years, values)
	if err != nil {
		return nil, res, err
	}
	return ds, res, nil
}

func mapHeader(header []string) ([]int, error) {
	mapping := make([]int, len(header))
	seen := make(map[int]bool, len(schema))
	for i, h := range header {
		name := ColumnRef(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		idx := -1
		for s, col := range schema {
			if col.Name == name {
				idx = s
				break
			}
		}
		if idx < 0 {
			return nil, errors.Wrapf(ErrSchemaMismatch, "unexpected column %q", string(name))
		}
		if seen[idx] {
			return nil, errors.Wrapf(ErrSchemaMismatch, "duplicate column %q", string(name))
		}
		seen[idx] = true
		mapping[i] = idx
	}
	for s, col := range schema {
		if !seen[s] {
			return nil, errors.Wrapf(ErrSchemaMismatch, "missing column %q", string(col.Name))
		}
	}
	return mapping, nil
}

func filledCells(record []string) int {
	n := 0
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// parseNumber は桁区切りのカンマを含む数値を解釈します
func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty cell")
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("not a finite number: %s", s)
	}
	return v, nil
}
