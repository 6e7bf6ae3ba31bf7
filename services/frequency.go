package services

import (
	"sort"

	"airbnb-pricer/dataset"
	"airbnb-pricer/models"
)

// FrequencyTable maps a category to the number of rows that carry it.
type FrequencyTable map[string]int

// Keys returns the categories in sorted order.
func (ft FrequencyTable) Keys() []string {
	keys := make([]string, 0, len(ft))
	for k := range ft {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy.
func (ft FrequencyTable) Clone() FrequencyTable {
	out := make(FrequencyTable, len(ft))
	for k, v := range ft {
		out[k] = v
	}
	return out
}

// Merge returns a table with the counts of ft and o added together.
func (ft FrequencyTable) Merge(o FrequencyTable) FrequencyTable {
	out := ft.Clone()
	for k, v := range o {
		out[k] += v
	}
	return out
}

// ComputeFrequencyTable counts how many rows of t share each value of column.
func ComputeFrequencyTable(t *dataset.Table, column string) (FrequencyTable, error) {
	col, err := requireColumn(t, "frequency", column)
	if err != nil {
		return nil, err
	}
	ft := make(FrequencyTable)
	for r, cell := range col.Cells {
		if cell.IsNull() {
			return nil, &ParseError{Column: column, Row: r, Value: display(cell), Err: errNullValue}
		}
		ft[cell.String()]++
	}
	return ft, nil
}

// ApplyFrequencyMapping replaces each value of column with its count in ft. A value
// missing from ft is a MappingError; no default count is assumed.
func ApplyFrequencyMapping(t *dataset.Table, column string, ft FrequencyTable) (*dataset.Table, error) {
	col, err := requireColumn(t, "frequency", column)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(col.Cells))
	for r, cell := range col.Cells {
		n, ok := ft[cell.String()]
		if !ok || cell.IsNull() {
			return nil, &MappingError{Column: column, Row: r, Value: display(cell)}
		}
		vals[r] = float64(n)
	}
	return t.WithColumn(dataset.NumberColumn(column, vals))
}

// EncodeNeighbourhood frequency-encodes neighbourhood_cleansed against the table itself.
func EncodeNeighbourhood(t *dataset.Table) (*dataset.Table, error) {
	ft, err := ComputeFrequencyTable(t, models.ColNeighbourhoodCleansed)
	if err != nil {
		return nil, err
	}
	return ApplyFrequencyMapping(t, models.ColNeighbourhoodCleansed, ft)
}
