package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"airbnb-pricer/dataset"
	"airbnb-pricer/models"
)

var (
	// percentRegexp captures the number in front of a trailing percent sign
	percentRegexp = regexp.MustCompile(`^\s*([+-]?\d+(?:\.\d+)?)\s*%\s*$`)

	// hostSinceLayouts are tried in order when parsing host_since
	hostSinceLayouts = []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006/01/02",
		"01/02/2006",
		"2 January 2006",
		"January 2, 2006",
	}
)

// Encoder is a single table transformation.
type Encoder func(*dataset.Table) (*dataset.Table, error)

// EncodeBathrooms replaces bathrooms_text with a numeric bathrooms count and a
// shared_bath flag placed immediately before price. A count that does not parse
// becomes 0; this is the only encoder with a fallback instead of an error.
func EncodeBathrooms(t *dataset.Table) (*dataset.Table, error) {
	col, err := requireColumn(t, "bathrooms", models.ColBathroomsText)
	if err != nil {
		return nil, err
	}
	if !t.Has(models.ColPrice) {
		return nil, &SchemaError{Stage: "bathrooms", Column: models.ColPrice}
	}

	baths := make([]float64, len(col.Cells))
	shared := make([]float64, len(col.Cells))
	for r, cell := range col.Cells {
		if cell.IsNull() {
			return nil, &ParseError{Column: col.Name, Row: r, Value: display(cell), Err: errNullValue}
		}
		baths[r], shared[r] = parseBathrooms(cell.String())
	}

	out, err := t.WithColumn(dataset.NumberColumn(models.ColBathrooms, baths))
	if err != nil {
		return nil, err
	}
	if out, err = out.Drop(models.ColBathroomsText); err != nil {
		return nil, err
	}
	return out.InsertBefore(models.ColPrice, dataset.NumberColumn(models.ColSharedBath, shared))
}

// parseBathrooms reads text such as "1.5 shared baths" or "Half-bath".
func parseBathrooms(text string) (count, shared float64) {
	s := strings.ToLower(text)
	if strings.Contains(s, "shared") {
		shared = 1
	}
	if fields := strings.Fields(s); len(fields) > 0 {
		if v, err := strconv.ParseFloat(fields[0], 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			count = v
		}
	}
	if strings.Contains(s, "half-bath") {
		count += 0.5
	}
	return count, shared
}

// EncodeAmenities replaces the amenities list text with its item count.
func EncodeAmenities(t *dataset.Table) (*dataset.Table, error) {
	return mapText(t, "amenities", models.ColAmenities, func(s string) (float64, error) {
		items, err := parseAmenities(s)
		if err != nil {
			return 0, err
		}
		return float64(len(items)), nil
	})
}

// parseAmenities splits a list such as ["Wifi", "Kitchen"]. The empty list "[]"
// yields one empty item.
func parseAmenities(s string) ([]string, error) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, errNotBracketed
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	items := make([]string, len(parts))
	for i, p := range parts {
		items[i] = strings.TrimLeft(strings.ReplaceAll(p, `"`, ""), " \t")
	}
	return items, nil
}

// EncodeHostSince replaces the host registration date with its year.
func EncodeHostSince(t *dataset.Table) (*dataset.Table, error) {
	return mapText(t, "host_since", models.ColHostSince, parseYear)
}

func parseYear(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, layout := range hostSinceLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return float64(ts.Year()), nil
		}
	}
	return 0, errUnknownDateForm
}

// EncodeResponseRate replaces "87%" with 87.
func EncodeResponseRate(t *dataset.Table) (*dataset.Table, error) {
	return mapText(t, "response_rate", models.ColHostResponseRate, parsePercent)
}

func parsePercent(s string) (float64, error) {
	m := percentRegexp.FindStringSubmatch(s)
	if len(m) < 2 {
		return 0, errNotPercent
	}
	return strconv.ParseFloat(m[1], 64)
}

// EncodePrice parses price into a new trailing target column and removes price.
func EncodePrice(t *dataset.Table) (*dataset.Table, error) {
	col, err := requireColumn(t, "price", models.ColPrice)
	if err != nil {
		return nil, err
	}
	if t.Has(models.TargetColumn) {
		return nil, &SchemaError{Stage: "price", Column: models.TargetColumn}
	}

	target := make([]float64, len(col.Cells))
	for r, cell := range col.Cells {
		if cell.IsNull() {
			return nil, &ParseError{Column: col.Name, Row: r, Value: display(cell), Err: errNullValue}
		}
		v, err := parsePrice(cell.String())
		if err != nil {
			return nil, &ParseError{Column: col.Name, Row: r, Value: cell.String(), Err: err}
		}
		target[r] = v
	}

	out, err := t.Drop(models.ColPrice)
	if err != nil {
		return nil, err
	}
	return out.Append(dataset.NumberColumn(models.TargetColumn, target))
}

// parsePrice reads a currency-prefixed amount such as "$1,234.50".
func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	sym, size := utf8.DecodeRuneInString(s)
	if sym == utf8.RuneError || unicode.IsDigit(sym) || strings.ContainsRune("+-.,", sym) {
		return 0, errNoCurrency
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s[size:], ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// EncodeRoomType applies RoomTypeMap.
func EncodeRoomType(t *dataset.Table) (*dataset.Table, error) {
	return MapCategories(t, models.ColRoomType, RoomTypeMap)
}

// EncodeResponseTime applies ResponseTimeMap.
func EncodeResponseTime(t *dataset.Table) (*dataset.Table, error) {
	return MapCategories(t, models.ColHostResponseTime, ResponseTimeMap)
}

// EncodeBooleans applies BooleanMap to every column in BooleanColumns.
func EncodeBooleans(t *dataset.Table) (*dataset.Table, error) {
	out := t
	for _, name := range BooleanColumns {
		var err error
		if out, err = MapCategories(out, name, BooleanMap); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MapCategories replaces each value of column with its entry in mapping. A value
// with no entry, null included, is a MappingError.
func MapCategories(t *dataset.Table, column string, mapping map[string]float64) (*dataset.Table, error) {
	col, err := requireColumn(t, "categories", column)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(col.Cells))
	for r, cell := range col.Cells {
		v, ok := mapping[cell.String()]
		if !ok || cell.IsNull() {
			return nil, &MappingError{Column: column, Row: r, Value: display(cell)}
		}
		vals[r] = v
	}
	return t.WithColumn(dataset.NumberColumn(column, vals))
}

// Materialize converts every remaining cell to a number. Null and non-numeric
// cells are ParseErrors, so a successful result has no nulls.
func Materialize(t *dataset.Table) (*dataset.Table, error) {
	out := t
	for _, name := range t.Names() {
		col, _ := out.Column(name)
		changed := false
		for r, cell := range col.Cells {
			switch cell.Kind {
			case dataset.KindNumber:
				continue
			case dataset.KindNull:
				return nil, &ParseError{Column: name, Row: r, Value: display(cell), Err: errNullValue}
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell.Text), 64)
			if err != nil {
				return nil, &ParseError{Column: name, Row: r, Value: cell.Text, Err: err}
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &ParseError{Column: name, Row: r, Value: cell.Text, Err: errNotFinite}
			}
			col.Cells[r] = dataset.Number(v)
			changed = true
		}
		if !changed {
			continue
		}
		var err error
		if out, err = out.WithColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// mapText parses each cell of column with parse and stores the result in place.
func mapText(t *dataset.Table, stage, column string, parse func(string) (float64, error)) (*dataset.Table, error) {
	col, err := requireColumn(t, stage, column)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(col.Cells))
	for r, cell := range col.Cells {
		if cell.IsNull() {
			return nil, &ParseError{Column: column, Row: r, Value: display(cell), Err: errNullValue}
		}
		v, err := parse(cell.String())
		if err != nil {
			return nil, &ParseError{Column: column, Row: r, Value: cell.String(), Err: err}
		}
		vals[r] = v
	}
	return t.WithColumn(dataset.NumberColumn(column, vals))
}
