package category

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/teammaker/internal/domain"
	"github.com/kailas-cloud/teammaker/internal/domain/table"
)

// Entry is a caller-supplied weight for one value of a category column.
// The value is addressed either by its raw text or, when ValueIndex is set,
// by its position among the column's distinct values in ascending order.
type Entry struct {
	Value      string
	ValueIndex *int
	Weight     float64
	Label      string
}

// Value is one enumerated value of a category with its normalized weight.
type Value struct {
	raw    string
	label  string
	weight float64
	rows   int
}

// Raw returns the value as it appears in the table.
func (v Value) Raw() string { return v.raw }

// Label returns the human-readable label (defaults to the raw value).
func (v Value) Label() string { return v.label }

// Weight returns the normalized weight; all weights of a category sum to 1.
func (v Value) Weight() float64 { return v.weight }

// Rows returns how many table rows carry the value.
func (v Value) Rows() int { return v.rows }

// Category is a weighted enumeration over the distinct values of one column.
type Category struct {
	column   int
	name     string
	priority float64
	values   []Value
	rowValue []int
}

// LabelColumn holds member labels and cannot be a category.
const LabelColumn = 0

// New builds a Category for column of t.
// With no entries every observed value gets the same weight.
func New(t table.Table, column int, name string, priority float64, entries []Entry) (Category, error) {
	if column == LabelColumn {
		return Category{}, fmt.Errorf("%w: column %d holds member labels", domain.ErrUnknownColumn, column)
	}
	observed, err := t.Distinct(column)
	if err != nil {
		return Category{}, err
	}
	if err := checkWeight(priority); err != nil {
		return Category{}, fmt.Errorf("category %d priority: %w", column, err)
	}
	if name == "" {
		name = t.Header()[column]
	}

	index := make(map[string]int, len(observed))
	values := make([]Value, len(observed))
	for i, raw := range observed {
		index[raw] = i
		values[i] = Value{raw: raw, label: raw}
	}

	if len(entries) == 0 {
		for i := range values {
			values[i].weight = 1
		}
	}
	for _, e := range entries {
		raw := e.Value
		if e.ValueIndex != nil {
			vi := *e.ValueIndex
			if vi < 0 || vi >= len(observed) {
				return Category{}, fmt.Errorf("%w: value index %d outside 0..%d of column %d",
					domain.ErrUnknownColumn, vi, len(observed)-1, column)
			}
			raw = observed[vi]
		}
		if err := checkWeight(e.Weight); err != nil {
			return Category{}, fmt.Errorf("category %d value %q: %w", column, raw, err)
		}
		i, ok := index[raw]
		if !ok {
			i = len(values)
			index[raw] = i
			values = append(values, Value{raw: raw, label: raw})
		}
		values[i].weight += e.Weight
		if e.Label != "" {
			values[i].label = e.Label
		}
	}

	var total float64
	for _, v := range values {
		total += v.weight
	}
	if total == 0 && len(values) > 0 {
		return Category{}, fmt.Errorf("%w: all weights of category %d are zero", domain.ErrInvalidWeight, column)
	}
	for i := range values {
		values[i].weight /= total
	}

	rowValue := make([]int, t.Len())
	for i := 0; i < t.Len(); i++ {
		vi := index[t.Row(i).Value(column)]
		rowValue[i] = vi
		values[vi].rows++
	}

	return Category{
		column:   column,
		name:     name,
		priority: priority,
		values:   values,
		rowValue: rowValue,
	}, nil
}

func checkWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidWeight, w)
	}
	return nil
}

// Column returns the table column the category is built from.
func (c Category) Column() int { return c.column }

// Name returns the human-readable category name.
func (c Category) Name() string { return c.name }

// Priority returns the category weight relative to the other requested categories.
func (c Category) Priority() float64 { return c.priority }

// Len returns the number of enumerated values.
func (c Category) Len() int { return len(c.values) }

// Value returns the enumerated value at index i.
func (c Category) Value(i int) Value { return c.values[i] }

// Values returns a copy of the enumerated values.
func (c Category) Values() []Value {
	out := make([]Value, len(c.values))
	copy(out, c.values)
	return out
}

// ValueOf returns the value index of a table row.
func (c Category) ValueOf(row int) int { return c.rowValue[row] }

// Rows returns the number of table rows the category was built over.
func (c Category) Rows() int { return len(c.rowValue) }

// Prioritize validates a category set and returns it ordered by descending
// priority, with priorities normalized to sum to 1. Ties keep request order.
func Prioritize(cats []Category) ([]Category, error) {
	if len(cats) == 0 {
		return nil, nil
	}
	seen := make(map[int]bool, len(cats))
	var total float64
	for _, c := range cats {
		if seen[c.column] {
			return nil, fmt.Errorf("%w: column %d", domain.ErrDuplicateCategory, c.column)
		}
		seen[c.column] = true
		total += c.priority
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: all category weights are zero", domain.ErrInvalidWeight)
	}

	out := make([]Category, len(cats))
	copy(out, cats)
	for i := range out {
		out[i].priority /= total
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].priority > out[j].priority
	})
	return out, nil
}

// Spec is a request-level description of a category before it is bound to a table.
type Spec struct {
	Column   int
	Name     string
	Priority float64
	Entries  []Entry
}

// Build binds specs to t and returns the categories in request order.
func Build(t table.Table, specs []Spec) ([]Category, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]Category, 0, len(specs))
	for _, s := range specs {
		c, err := New(t, s.Column, s.Name, s.Priority, s.Entries)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
