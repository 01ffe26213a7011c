package table

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/teammaker/internal/domain"
)

// Row is one data row of a table (immutable value object).
type Row struct {
	index  int
	values []string
}

// Index returns the row's 0-based position among the data rows.
func (r Row) Index() int { return r.index }

// Value returns the raw value in the given column.
func (r Row) Value(col int) string { return r.values[col] }

// Values returns a copy of the row's values in header order.
func (r Row) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// Table is a parsed delimited table: a unique header plus rows of equal width.
type Table struct {
	header []string
	rows   []Row
}

// New validates header and records and creates a Table.
// Header names must be non-empty and unique, every record must match the header width.
func New(header []string, records [][]string) (Table, error) {
	if len(header) < 2 {
		return Table{}, fmt.Errorf("%w: header must contain at least two columns", domain.ErrMalformedInput)
	}
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if h == "" {
			return Table{}, fmt.Errorf("%w: header column %d is empty", domain.ErrMalformedInput, i)
		}
		if seen[h] {
			return Table{}, fmt.Errorf("%w: duplicate header %q", domain.ErrMalformedInput, h)
		}
		seen[h] = true
	}
	for i, rec := range records {
		if len(rec) != len(header) {
			return Table{}, fmt.Errorf("%w: row %d has %d fields, header has %d",
				domain.ErrMalformedInput, i+1, len(rec), len(header))
		}
	}
	return Reconstruct(header, records), nil
}

// Reconstruct creates a Table without validation (storage hydration).
func Reconstruct(header []string, records [][]string) Table {
	h := make([]string, len(header))
	copy(h, header)
	rows := make([]Row, len(records))
	for i, rec := range records {
		v := make([]string, len(rec))
		copy(v, rec)
		rows[i] = Row{index: i, values: v}
	}
	return Table{header: h, rows: rows}
}

// Header returns a copy of the column names.
func (t Table) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Columns returns the column count.
func (t Table) Columns() int { return len(t.header) }

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.rows) }

// Row returns the row at index i.
func (t Table) Row(i int) Row { return t.rows[i] }

// Records returns a copy of all row values (storage serialization).
func (t Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Values()
	}
	return out
}

// Label returns the display name of a row: its first column.
func (t Table) Label(i int) string { return t.rows[i].values[0] }

// Distinct returns the distinct values of a column in ascending order.
func (t Table) Distinct(col int) ([]string, error) {
	if col < 0 || col >= len(t.header) {
		return nil, fmt.Errorf("%w: column %d outside 0..%d", domain.ErrUnknownColumn, col, len(t.header)-1)
	}
	set := make(map[string]struct{})
	for _, r := range t.rows {
		set[r.values[col]] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}
