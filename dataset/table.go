package dataset

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrColumnNotFound is returned when an operation names a column the table does not have.
var ErrColumnNotFound = errors.New("column not found")

// Kind tells which variant a Cell holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
)

// Cell is a single table value: null, text, or a float64 number.
type Cell struct {
	Kind Kind
	Text string
	Num  float64
}

// Null returns the missing-value cell.
func Null() Cell { return Cell{Kind: KindNull} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{Kind: KindText, Text: s} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{Kind: KindNumber, Num: f} }

// IsNull reports whether the cell is missing.
func (c Cell) IsNull() bool { return c.Kind == KindNull }

// String renders the cell the way it is written to CSV. Null renders as "".
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Column is a named sequence of cells.
type Column struct {
	Name  string
	Cells []Cell
}

// NewColumn builds a column, copying cells.
func NewColumn(name string, cells []Cell) Column {
	cp := make([]Cell, len(cells))
	copy(cp, cells)
	return Column{Name: name, Cells: cp}
}

// NumberColumn builds a numeric column from values.
func NumberColumn(name string, values []float64) Column {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Number(v)
	}
	return Column{Name: name, Cells: cells}
}

// TextColumn builds a text column from values.
func TextColumn(name string, values []string) Column {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Text(v)
	}
	return Column{Name: name, Cells: cells}
}

func (c Column) clone() Column {
	return NewColumn(c.Name, c.Cells)
}

// Table is an ordered set of equally long named columns. Row identity is position.
//
// Every method that changes shape or content returns a new Table and leaves the
// receiver untouched, so a Table handed to a caller is never mutated behind its back.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New builds a table from columns. All columns must have the same length and unique names.
func New(columns ...Column) (*Table, error) {
	t := &Table{columns: make([]Column, 0, len(columns)), index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("dataset: duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = len(c.Cells)
		} else if len(c.Cells) != t.rows {
			return nil, fmt.Errorf("dataset: column %q has %d rows, want %d", c.Name, len(c.Cells), t.rows)
		}
		t.index[c.Name] = len(t.columns)
		t.columns = append(t.columns, c.clone())
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and static fixtures.
func MustNew(columns ...Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return t.columns[i].clone(), nil
}

// Cell returns the value at row of the named column.
func (t *Table) Cell(row int, name string) (Cell, error) {
	i, ok := t.index[name]
	if !ok {
		return Cell{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	if row < 0 || row >= t.rows {
		return Cell{}, fmt.Errorf("dataset: row %d out of range [0,%d)", row, t.rows)
	}
	return t.columns[i].Cells[row], nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.clone()
	}
	return rebuild(cols, t.rows)
}

// Drop returns a table without the named columns. It fails if any name is absent.
func (t *Table) Drop(names ...string) (*Table, error) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !t.Has(n) {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, n)
		}
		drop[n] = struct{}{}
	}
	cols := make([]Column, 0, len(t.columns))
	for _, c := range t.columns {
		if _, skip := drop[c.Name]; !skip {
			cols = append(cols, c.clone())
		}
	}
	return rebuild(cols, t.rows), nil
}

// WithColumn replaces the column of the same name in place, or appends it when absent.
func (t *Table) WithColumn(col Column) (*Table, error) {
	if len(col.Cells) != t.rows && len(t.columns) > 0 {
		return nil, fmt.Errorf("dataset: column %q has %d rows, want %d", col.Name, len(col.Cells), t.rows)
	}
	cols := make([]Column, 0, len(t.columns)+1)
	replaced := false
	for _, c := range t.columns {
		if c.Name == col.Name {
			cols = append(cols, col.clone())
			replaced = true
			continue
		}
		cols = append(cols, c.clone())
	}
	if !replaced {
		cols = append(cols, col.clone())
	}
	return rebuild(cols, len(col.Cells)), nil
}

// Append adds col as the last column. The name must be new.
func (t *Table) Append(col Column) (*Table, error) {
	if t.Has(col.Name) {
		return nil, fmt.Errorf("dataset: duplicate column %q", col.Name)
	}
	return t.WithColumn(col)
}

// InsertBefore places col immediately before the anchor column. The name must be new.
func (t *Table) InsertBefore(anchor string, col Column) (*Table, error) {
	pos, ok := t.index[anchor]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, anchor)
	}
	if t.Has(col.Name) {
		return nil, fmt.Errorf("dataset: duplicate column %q", col.Name)
	}
	if len(col.Cells) != t.rows {
		return nil, fmt.Errorf("dataset: column %q has %d rows, want %d", col.Name, len(col.Cells), t.rows)
	}
	cols := make([]Column, 0, len(t.columns)+1)
	for i, c := range t.columns {
		if i == pos {
			cols = append(cols, col.clone())
		}
		cols = append(cols, c.clone())
	}
	return rebuild(cols, t.rows), nil
}

// Filter keeps the rows for which keep returns true. Kept rows are re-indexed 0..n-1
// in their original order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	var rows []int
	for r := 0; r < t.rows; r++ {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		cells := make([]Cell, len(rows))
		for j, r := range rows {
			cells[j] = c.Cells[r]
		}
		cols[i] = Column{Name: c.Name, Cells: cells}
	}
	return rebuild(cols, len(rows))
}

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// Records returns the header followed by each row rendered with Cell.String.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, t.rows+1)
	out = append(out, t.Names())
	for r := 0; r < t.rows; r++ {
		row := make([]string, len(t.columns))
		for i, c := range t.columns {
			row[i] = c.Cells[r].String()
		}
		out = append(out, row)
	}
	return out
}

// Matrix returns the named columns as float rows. Every cell must be numeric.
func (t *Table) Matrix(names ...string) ([][]float64, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		j, ok := t.index[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, n)
		}
		idx[i] = j
	}
	out := make([][]float64, t.rows)
	for r := 0; r < t.rows; r++ {
		row := make([]float64, len(idx))
		for i, j := range idx {
			c := t.columns[j].Cells[r]
			if c.Kind != KindNumber {
				return nil, fmt.Errorf("dataset: row %d column %q is not numeric", r, t.columns[j].Name)
			}
			row[i] = c.Num
		}
		out[r] = row
	}
	return out, nil
}

// NullCount returns the number of null cells across all columns.
func (t *Table) NullCount() int {
	n := 0
	for _, c := range t.columns {
		for _, cell := range c.Cells {
			if cell.IsNull() {
				n++
			}
		}
	}
	return n
}

// Equal reports whether both tables have the same columns, order and cells.
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i, c := range t.columns {
		oc := o.columns[i]
		if c.Name != oc.Name {
			return false
		}
		for r := range c.Cells {
			if c.Cells[r] != oc.Cells[r] {
				return false
			}
		}
	}
	return true
}

func rebuild(cols []Column, rows int) *Table {
	t := &Table{columns: cols, index: make(map[string]int, len(cols)), rows: rows}
	for i, c := range cols {
		t.index[c.Name] = i
	}
	return t
}
