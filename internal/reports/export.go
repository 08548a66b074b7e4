package reports

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var ErrUnknownFormat = errors.New("format must be json, csv or xlsx")

func money(v float64) string   { return strconv.FormatFloat(v, 'f', 2, 64) }
func percent(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" }

// sections lays the report out as titled tables shared by the CSV and
// spreadsheet writers.
func (r *Report) sections() []section {
	summary := section{title: "Summary", rows: [][]string{
		{"Total sales", money(r.Summary.TotalSales)},
		{"Total cost", money(r.Summary.TotalCost)},
		{"Net profit", money(r.Summary.NetProfit)},
		{"Average margin", percent(r.Summary.AverageMargin)},
		{"Growth", percent(r.Summary.Growth)},
		{"Sales", strconv.Itoa(r.Summary.SalesCount)},
		{"Period (days)", strconv.Itoa(r.Summary.PeriodDays)},
	}}

	monthly := section{title: "Monthly trend", header: []string{"Month", "Sales", "Costs", "Profit"}}
	for _, m := range r.Monthly {
		monthly.rows = append(monthly.rows, []string{m.Month, money(m.Sales), money(m.Costs), money(m.Profit)})
	}

	cats := section{title: "Categories", header: []string{"Category", "Quantity", "Revenue"}}
	for _, c := range r.Categories {
		cats.rows = append(cats.rows, []string{c.Category, strconv.Itoa(c.Quantity), money(c.Revenue)})
	}

	margins := section{title: "Profit margins", header: []string{"Recipe", "Price", "Cost", "Margin"}}
	for _, m := range r.Margins {
		margins.rows = append(margins.rows, []string{m.Name, money(m.Price), money(m.Cost), percent(m.Margin)})
	}

	payments := section{title: "Payment methods", header: []string{"Method", "Share", "Count", "Total"}}
	for _, p := range r.Payments {
		payments.rows = append(payments.rows, []string{string(p.Method), percent(p.Percentage), strconv.Itoa(p.Count), money(p.Total)})
	}
	return []section{summary, monthly, cats, margins, payments}
}

type section struct {
	title  string
	header []string
	rows   [][]string
}

func (r *Report) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"Sales report"},
		{"Generated", r.ExportedAt.Format("2006-01-02 15:04:05")},
	}
	for _, s := range r.sections() {
		records = append(records, []string{}, []string{s.title})
		if s.header != nil {
			records = append(records, s.header)
		}
		records = append(records, s.rows...)
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX writes one sheet per section.
func (r *Report) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range r.sections() {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.title); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.title); err != nil {
			return nil, err
		}

		rows := s.rows
		if s.header != nil {
			rows = append([][]string{s.header}, rows...)
		}
		for n, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, n+1)
			if err != nil {
				return nil, err
			}
			values := make([]any, len(row))
			for k, v := range row {
				values[k] = v
			}
			if err := f.SetSheetRow(s.title, cell, &values); err != nil {
				return nil, fmt.Errorf("sheet %s: %w", s.title, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
