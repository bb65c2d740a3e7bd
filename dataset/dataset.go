package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed reports a file that is not a rectangular table with a
// unique header row.
var ErrMalformed = errors.New("malformed dataset")

// MissingColumnError lists required columns absent from a header.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ParseError reports a cell that could not be read as the expected type.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d column %s: %q %s", e.Row, e.Column, e.Value, e.Reason)
}

// Dataset is an ordered table of raw cell text. Cells are parsed on demand
// so columns the pipeline does not understand pass through untouched.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

func New(columns []string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

func (d *Dataset) Len() int {
	return len(d.Rows)
}

func (d *Dataset) ColumnIndex(name string) int {
	for i, column := range d.Columns {
		if column == name {
			return i
		}
	}
	return -1
}

func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// Require returns a *MissingColumnError naming every absent column.
func (d *Dataset) Require(columns []string) error {
	var missing []string
	for _, column := range columns {
		if !d.HasColumn(column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

// Features parses the named columns of every row, in the given order.
// Every cell must hold a finite number.
func (d *Dataset) Features(columns []string) ([][]float64, error) {
	if err := d.Require(columns); err != nil {
		return nil, err
	}
	indices := make([]int, len(columns))
	for i, column := range columns {
		indices[i] = d.ColumnIndex(column)
	}

	vectors := make([][]float64, len(d.Rows))
	for r, row := range d.Rows {
		vector := make([]float64, len(columns))
		for i, idx := range indices {
			value, err := ParseFeature(row[idx])
			if err != nil {
				return nil, &ParseError{Row: r + 1, Column: columns[i], Value: row[idx], Reason: err.Error()}
			}
			vector[i] = value
		}
		vectors[r] = vector
	}
	return vectors, nil
}

// Labels parses a binary label column.
func (d *Dataset) Labels(column string) ([]int, error) {
	if err := d.Require([]string{column}); err != nil {
		return nil, err
	}
	idx := d.ColumnIndex(column)
	labels := make([]int, len(d.Rows))
	for r, row := range d.Rows {
		label, err := ParseLabel(row[idx])
		if err != nil {
			return nil, &ParseError{Row: r + 1, Column: column, Value: row[idx], Reason: err.Error()}
		}
		labels[r] = label
	}
	return labels, nil
}

// SetIntColumn writes values into column, appending the column when it is
// not present yet and overwriting it in place otherwise.
func (d *Dataset) SetIntColumn(column string, values []int) error {
	if len(values) != len(d.Rows) {
		return fmt.Errorf("column %s has %d values for %d rows", column, len(values), len(d.Rows))
	}
	idx := d.ColumnIndex(column)
	if idx < 0 {
		d.Columns = append(d.Columns, column)
		for r := range d.Rows {
			d.Rows[r] = append(d.Rows[r], strconv.Itoa(values[r]))
		}
		return nil
	}
	for r := range d.Rows {
		d.Rows[r][idx] = strconv.Itoa(values[r])
	}
	return nil
}

// Project returns the named columns of every row as text.
func (d *Dataset) Project(columns []string) ([][]string, error) {
	if err := d.Require(columns); err != nil {
		return nil, err
	}
	indices := make([]int, len(columns))
	for i, column := range columns {
		indices[i] = d.ColumnIndex(column)
	}
	out := make([][]string, len(d.Rows))
	for r, row := range d.Rows {
		cells := make([]string, len(indices))
		for i, idx := range indices {
			cells[i] = row[idx]
		}
		out[r] = cells
	}
	return out, nil
}

func (d *Dataset) Clone() *Dataset {
	clone := New(d.Columns)
	clone.Rows = make([][]string, len(d.Rows))
	for r, row := range d.Rows {
		clone.Rows[r] = append([]string(nil), row...)
	}
	return clone
}

func ParseFeature(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, errors.New("is empty")
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, errors.New("is not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("is not finite")
	}
	return f, nil
}

// ParseLabel accepts 0/1 in integer, float or boolean spelling.
func ParseLabel(value string) (int, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, errors.New("is not a binary label")
	}
	switch f {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	default:
		return 0, errors.New("is not a binary label")
	}
}
