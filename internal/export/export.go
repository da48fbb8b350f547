// Package export renders a filtered slice of the owner's transactions as a
// spreadsheet or CSV file with trailing summary rows.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/statistics"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

func (f Format) Valid() bool {
	return f == FormatXLSX || f == FormatCSV
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

const sheetName = "Transactions"

var header = []string{"Date", "Type", "Category", "Amount", "Description", "Created At"}

// Row is one exported transaction.
type Row struct {
	Date        string
	Type        string
	Category    string
	Amount      decimal.Decimal
	Description string
	CreatedAt   string
}

// Report is the content of an export before encoding.
type Report struct {
	Period calendar.Range
	Rows   []Row
	Totals statistics.Totals
}

// Build converts txs into rows and totals them over period. Transactions
// whose category no longer exists are labelled uncategorized.
func Build(txs []finance.Transaction, categories finance.CategoryIndex, period calendar.Range) Report {
	rows := make([]Row, 0, len(txs))
	for _, t := range txs {
		created := ""
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, Row{
			Date:        t.Date.String(),
			Type:        string(t.Type),
			Category:    categories.NameOf(t.CategoryID),
			Amount:      t.Amount,
			Description: t.Description,
			CreatedAt:   created,
		})
	}
	return Report{
		Period: period,
		Rows:   rows,
		Totals: statistics.Summarize(txs, period),
	}
}

func (r Report) summary() [][]string {
	return [][]string{
		{"Summary"},
		{"Total income", "", "", r.Totals.Income.StringFixed(2)},
		{"Total expense", "", "", r.Totals.Expense.StringFixed(2)},
		{"Balance", "", "", r.Totals.Balance.StringFixed(2)},
	}
}

func (row Row) cells() []string {
	return []string{row.Date, row.Type, row.Category, row.Amount.StringFixed(2), row.Description, row.CreatedAt}
}

// Encode writes the report in the requested format.
func (r Report) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatCSV:
		return r.writeCSV(w)
	case FormatXLSX:
		return r.writeXLSX(w)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func (r Report) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := cw.Write(row.cells()); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{""}); err != nil {
		return err
	}
	for _, line := range r.summary() {
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r Report) writeXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, row := range r.Rows {
		cells := row.cells()
		if err := setRow(f, i+2, cells); err != nil {
			return err
		}
		// Amounts go in as numbers so spreadsheet formulas work on them.
		cell, err := excelize.CoordinatesToCellName(4, i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellFloat(sheetName, cell, row.Amount.Round(2).InexactFloat64(), 2, 64); err != nil {
			return err
		}
	}

	next := len(r.Rows) + 3
	for i, line := range r.summary() {
		if err := setRow(f, next+i, line); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 12, "B": 10, "C": 16, "D": 12, "E": 30, "F": 20}
	for col, width := range widths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheetName, cell, &cells)
}

// Bytes encodes the report into memory.
func (r Report) Bytes(format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
