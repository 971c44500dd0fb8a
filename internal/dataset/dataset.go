// Package dataset provides the immutable, typed in-memory table the
// analysis engine operates over. A Dataset is never mutated after
// construction; derivations like Select build a new one.
package dataset

import (
	"fmt"
	"math"
	"time"

	"github.com/querylens/querylens/internal/models"
)

// Dataset is an ordered sequence of rows with a declared per-column
// type. Accessors hand out copies or read-only views; callers must not
// mutate returned rows.
type Dataset struct {
	columns []string
	types   map[string]models.ColumnType
	rows    []models.Row
}

// New builds a dataset from an ordered column list, a schema, and rows.
// Every column must have a declared type; rows may omit columns, which
// read as null.
func New(columns []string, types map[string]models.ColumnType, rows []models.Row) (*Dataset, error) {
	ts := make(map[string]models.ColumnType, len(columns))
	for _, col := range columns {
		t, ok := types[col]
		if !ok {
			return nil, fmt.Errorf("no declared type for column %q", col)
		}
		ts[col] = t
	}
	return &Dataset{columns: append([]string(nil), columns...), types: ts, rows: rows}, nil
}

// FromRecords builds a dataset from plain row maps, inferring column
// order (first appearance) and column types from the values.
func FromRecords(records []models.Row) *Dataset {
	var columns []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for col := range rec {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	// Map iteration order is random; keep column order deterministic.
	sortWithinRecord(columns, records)

	types := make(map[string]models.ColumnType, len(columns))
	for _, col := range columns {
		types[col] = inferType(records, col)
	}
	return &Dataset{columns: columns, types: types, rows: records}
}

// sortWithinRecord orders columns by their first-seen record and then
// alphabetically within that record, so FromRecords is deterministic.
func sortWithinRecord(columns []string, records []models.Row) {
	firstSeen := make(map[string]int, len(columns))
	for _, col := range columns {
		firstSeen[col] = len(records)
	}
	for i, rec := range records {
		for col := range rec {
			if i < firstSeen[col] {
				firstSeen[col] = i
			}
		}
	}
	sortSlice(columns, func(a, b string) bool {
		if firstSeen[a] != firstSeen[b] {
			return firstSeen[a] < firstSeen[b]
		}
		return a < b
	})
}

func inferType(records []models.Row, col string) models.ColumnType {
	for _, rec := range records {
		v, ok := rec[col]
		if !ok || IsNull(v) {
			continue
		}
		switch tv := v.(type) {
		case bool:
			return models.TypeBoolean
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return models.TypeInteger
		case float32:
			return models.TypeFloat
		case float64:
			if tv == math.Trunc(tv) && !math.IsInf(tv, 0) {
				// JSON numbers decode as float64; keep whole values integral.
				return models.TypeInteger
			}
			return models.TypeFloat
		case time.Time:
			return models.TypeDatetime
		case string:
			if _, ok := parseTime(tv); ok {
				return models.TypeDatetime
			}
			return models.TypeString
		default:
			return models.TypeString
		}
	}
	return models.TypeNull
}

// Columns returns the ordered column names.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int { return len(d.rows) }

// HasColumn reports whether the column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.types[name]
	return ok
}

// ColumnType returns the declared type of a column.
func (d *Dataset) ColumnType(name string) (models.ColumnType, error) {
	t, ok := d.types[name]
	if !ok {
		return "", fmt.Errorf("unknown column %q", name)
	}
	return t, nil
}

// Values returns the column's values in row order. Missing cells read
// as nil.
func (d *Dataset) Values(name string) ([]any, error) {
	if !d.HasColumn(name) {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]any, len(d.rows))
	for i, row := range d.rows {
		out[i] = row[name]
	}
	return out, nil
}

// Row returns the i-th row. The returned map must not be mutated.
func (d *Dataset) Row(i int) models.Row { return d.rows[i] }

// Rows returns all rows in order. The returned slice and its maps must
// not be mutated.
func (d *Dataset) Rows() []models.Row { return d.rows }

// Select returns a new dataset containing the rows where mask is true.
// The mask length must equal the row count.
func (d *Dataset) Select(mask []bool) (*Dataset, error) {
	if len(mask) != len(d.rows) {
		return nil, fmt.Errorf("mask length %d does not match row count %d", len(mask), len(d.rows))
	}
	var rows []models.Row
	for i, keep := range mask {
		if keep {
			rows = append(rows, d.rows[i])
		}
	}
	return &Dataset{columns: d.columns, types: d.types, rows: rows}, nil
}

// NumericValues returns the column coerced to floats, nil for any cell
// that is null or not convertible.
func (d *Dataset) NumericValues(name string) ([]*float64, error) {
	vals, err := d.Values(name)
	if err != nil {
		return nil, err
	}
	out := make([]*float64, len(vals))
	for i, v := range vals {
		out[i] = Float(v)
	}
	return out, nil
}

// NullCount returns how many cells in the column are null.
func (d *Dataset) NullCount(name string) (int, error) {
	vals, err := d.Values(name)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range vals {
		if IsNull(v) {
			n++
		}
	}
	return n, nil
}
