package inventory

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportRow is one spreadsheet line of a bulk inventory import.
type ImportRow struct {
	Line        int     `json:"line"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	MinStock    float64 `json:"min_stock"`
	CostPerUnit float64 `json:"cost_per_unit"`
}

var importColumns = []string{"name", "category", "unit", "quantity", "min_stock", "cost_per_unit"}

// header aliases, lower-cased
var headerAliases = map[string]string{
	"name":          "name",
	"item":          "name",
	"nombre":        "name",
	"category":      "category",
	"categoria":     "category",
	"unit":          "unit",
	"unidad":        "unit",
	"quantity":      "quantity",
	"qty":           "quantity",
	"cantidad":      "quantity",
	"min_stock":     "min_stock",
	"min stock":     "min_stock",
	"stock_minimo":  "min_stock",
	"cost_per_unit": "cost_per_unit",
	"cost":          "cost_per_unit",
	"costo":         "cost_per_unit",
}

var ErrEmptySheet = errors.New("spreadsheet has no rows")

// ReadImportFile loads the first sheet of an xlsx file.
func ReadImportFile(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return rows, nil
}

// ParseImportRows maps spreadsheet rows onto ImportRows. When the first row is
// a recognised header its column order is used, otherwise columns are read in
// the default order. Rows that cannot be read are reported, not fatal.
func ParseImportRows(rows [][]string) ([]ImportRow, []string) {
	if len(rows) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	start := 0
	for i, cell := range rows[0] {
		if key, ok := headerAliases[strings.ToLower(strings.TrimSpace(cell))]; ok {
			cols[key] = i
		}
	}
	if _, ok := cols["name"]; ok {
		start = 1
	} else {
		cols = map[string]int{}
		for i, key := range importColumns {
			cols[key] = i
		}
	}

	cell := func(row []string, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	num := func(row []string, key string) (float64, error) {
		v := strings.ReplaceAll(cell(row, key), ",", ".")
		if v == "" {
			return 0, nil
		}
		return strconv.ParseFloat(v, 64)
	}

	var out []ImportRow
	var problems []string
	for i := start; i < len(rows); i++ {
		row := rows[i]
		line := i + 1

		name := cell(row, "name")
		if name == "" {
			continue
		}

		parsed := ImportRow{
			Line:     line,
			Name:     name,
			Category: cell(row, "category"),
			Unit:     cell(row, "unit"),
		}
		if parsed.Category == "" {
			parsed.Category = "General"
		}
		if parsed.Unit == "" {
			parsed.Unit = "kg"
		}

		var err error
		if parsed.Quantity, err = num(row, "quantity"); err != nil || parsed.Quantity < 0 {
			problems = append(problems, fmt.Sprintf("line %d: invalid quantity", line))
			continue
		}
		if parsed.MinStock, err = num(row, "min_stock"); err != nil || parsed.MinStock < 0 {
			problems = append(problems, fmt.Sprintf("line %d: invalid min_stock", line))
			continue
		}
		if parsed.CostPerUnit, err = num(row, "cost_per_unit"); err != nil || parsed.CostPerUnit < 0 {
			problems = append(problems, fmt.Sprintf("line %d: invalid cost_per_unit", line))
			continue
		}

		out = append(out, parsed)
	}
	return out, problems
}
