package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultNullTokens are the raw strings read as missing values. They are the NA tokens
// recognised by the pandas CSV reader the training data was first prepared with, so
// e.g. host_response_rate "N/A" is missing rather than a malformed percentage.
var DefaultNullTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	Delimiter  rune     // Field delimiter (default: ',')
	NullTokens []string // Values read as null (default: DefaultNullTokens)
	LazyQuotes bool     // Tolerate stray quotes in unquoted fields
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		Delimiter:  ',',
		NullTokens: DefaultNullTokens,
	}
}

// LoadCSV loads a table from a CSV file with a header row.
func LoadCSV(path string, opts *CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %q: %w", path, err)
	}
	return t, nil
}

// ReadCSV loads a table from CSV text with a header row. Every non-null value is kept as
// text; typing is left to the encoders.
func ReadCSV(r io.Reader, opts *CSVOptions) (*Table, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	nulls := opts.NullTokens
	if nulls == nil {
		nulls = DefaultNullTokens
	}
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nulls),
		dataframe.WithDelimiter(delim),
		dataframe.WithLazyQuotes(opts.LazyQuotes),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("dataset: parse csv: %w", df.Err)
	}
	return FromDataFrame(df)
}

// FromDataFrame converts a gota DataFrame into a Table. NA elements become null cells and
// everything else becomes text.
func FromDataFrame(df dataframe.DataFrame) (*Table, error) {
	names := df.Names()
	cols := make([]Column, len(names))
	for i, name := range names {
		s := df.Col(name)
		if s.Err != nil {
			return nil, fmt.Errorf("dataset: column %q: %w", name, s.Err)
		}
		cells := make([]Cell, s.Len())
		for j := 0; j < s.Len(); j++ {
			e := s.Elem(j)
			if e.IsNA() {
				cells[j] = Null()
				continue
			}
			cells[j] = Text(e.String())
		}
		cols[i] = Column{Name: name, Cells: cells}
	}
	return New(cols...)
}

// FromRecords builds a table from a header and string rows, applying the null tokens.
// A nil tokens slice means DefaultNullTokens.
func FromRecords(header []string, rows [][]string, nullTokens []string) (*Table, error) {
	if nullTokens == nil {
		nullTokens = DefaultNullTokens
	}
	isNull := make(map[string]struct{}, len(nullTokens))
	for _, tok := range nullTokens {
		isNull[tok] = struct{}{}
	}

	cols := make([]Column, len(header))
	for i, name := range header {
		cols[i] = Column{Name: name, Cells: make([]Cell, len(rows))}
	}
	for r, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("dataset: row %d has %d fields, want %d", r, len(row), len(header))
		}
		for i, v := range row {
			if _, null := isNull[v]; null {
				cols[i].Cells[r] = Null()
			} else {
				cols[i].Cells[r] = Text(v)
			}
		}
	}
	return New(cols...)
}
