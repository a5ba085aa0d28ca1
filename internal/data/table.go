package data

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Table holds the full assessment dataset: one row per subject, one column
// per item-level feature or binary diagnosis flag. Missing cells are NaN.
type Table struct {
	Columns []string
	Rows    [][]float64

	index map[string]int
}

func NewTable(columns []string, rows [][]float64) *Table {
	t := &Table{Columns: columns, Rows: rows}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, name := range t.Columns {
		t.index[name] = i
	}
}

// LoadCSV reads the processed dataset. Empty cells and the usual NA markers
// become NaN so the imputer can fill them later.
func LoadCSV(filename string) (*Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient data in file %s", filename)
	}

	headers := records[0]
	rows := make([][]float64, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i+1, len(record), len(headers))
		}
		row := make([]float64, len(record))
		for j, cell := range record {
			row[j] = parseCell(cell)
		}
		rows[i] = row
	}

	return NewTable(headers, rows), nil
}

func parseCell(cell string) float64 {
	cell = strings.TrimSpace(cell)
	switch cell {
	case "", "NA", "NaN", "nan", "None":
		return math.NaN()
	case "True", "TRUE", "true":
		return 1
	case "False", "FALSE", "false":
		return 0
	}
	val, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return val
}

func (t *Table) NumRows() int {
	return len(t.Rows)
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) ColumnIndex(name string) (int, bool) {
	idx, ok := t.index[name]
	return idx, ok
}

// Column returns a copy of one column's values.
func (t *Table) Column(name string) ([]float64, error) {
	idx, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Select returns a row-major matrix with the requested columns, in order.
func (t *Table) Select(columns []string) ([][]float64, error) {
	indices := make([]int, len(columns))
	for i, name := range columns {
		idx, ok := t.index[name]
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		indices[i] = idx
	}

	out := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]float64, len(indices))
		for j, idx := range indices {
			out[i][j] = row[idx]
		}
	}
	return out, nil
}

// BinaryColumn reads a 0/1 label column. Any value other than exactly 1
// counts as negative, matching how the diagnosis flags are encoded.
func (t *Table) BinaryColumn(name string) ([]int, error) {
	values, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(values))
	for i, v := range values {
		if v == 1 {
			labels[i] = 1
		}
	}
	return labels, nil
}

// PositiveCount counts rows where the given binary column is 1.
func (t *Table) PositiveCount(name string) (int, error) {
	labels, err := t.BinaryColumn(name)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, l := range labels {
		count += l
	}
	return count, nil
}

// ColumnsWithPrefix returns column names starting with prefix, in table order.
func (t *Table) ColumnsWithPrefix(prefix string) []string {
	var names []string
	for _, name := range t.Columns {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names
}
