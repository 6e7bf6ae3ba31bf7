package services

import (
	"errors"
	"reflect"
	"testing"

	"airbnb-pricer/models"
)

func sampleRaw(t *testing.T) []map[string]string {
	t.Helper()
	return []map[string]string{
		listing(map[string]string{"id": "1"}),
		listing(map[string]string{
			"id":                     "2",
			"neighbourhood_cleansed": "Khlong Toei",
			"room_type":              "Private room",
			"bathrooms_text":         "Shared half-bath",
			"price":                  "$45.00",
			"host_response_time":     "",
			"host_response_rate":     "",
			"reviews_per_month":      "",
			"host_is_superhost":      "f",
		}),
		listing(map[string]string{"id": "3", "host_since": ""}),
		listing(map[string]string{
			"id":             "4",
			"bathrooms_text": "",
			"amenities":      `["Wifi"]`,
			"price":          "$2,000.00",
			"host_since":     "2020-11-30",
		}),
	}
}

func TestRunPreprocessingPipelineSchema(t *testing.T) {
	raw := rawTable(t, sampleRaw(t)...)

	out, err := RunPreprocessingPipeline(raw)
	if err != nil {
		t.Fatalf("RunPreprocessingPipeline: %v", err)
	}
	if got := out.Names(); !reflect.DeepEqual(got, models.EncodedColumns()) {
		t.Errorf("columns = %v; want %v", got, models.EncodedColumns())
	}
	if out.Len() != raw.Len()-1 {
		t.Errorf("rows = %d; want %d (one row without host_since)", out.Len(), raw.Len()-1)
	}
	if n := out.NullCount(); n != 0 {
		t.Errorf("NullCount = %d; want 0", n)
	}
	if _, err := out.Matrix(out.Names()...); err != nil {
		t.Errorf("output is not fully numeric: %v", err)
	}
}

func TestRunPreprocessingPipelineValues(t *testing.T) {
	out, err := RunPreprocessingPipeline(rawTable(t, sampleRaw(t)...))
	if err != nil {
		t.Fatalf("RunPreprocessingPipeline: %v", err)
	}

	tests := []struct {
		row    int
		column string
		want   float64
	}{
		{0, "host_since", 2015},
		{0, "host_response_time", 4},
		{0, "host_response_rate", 87},
		{0, "host_is_superhost", 1},
		{0, "host_identity_verified", 0},
		{0, "neighbourhood_cleansed", 2},
		{0, "room_type", 3},
		{0, "bathrooms", 1.5},
		{0, "shared_bath", 0},
		{0, "amenities", 3},
		{0, "reviews_per_month", 0.5},
		{0, "target", 1234.50},
		{1, "neighbourhood_cleansed", 1},
		{1, "room_type", 2},
		{1, "bathrooms", 0.5},
		{1, "shared_bath", 1},
		{1, "host_response_time", 0},
		{1, "host_response_rate", 0},
		{1, "reviews_per_month", 0},
		{1, "target", 45},
		{2, "host_since", 2020},
		{2, "bathrooms", 0},
		{2, "amenities", 1},
		{2, "target", 2000},
	}
	for _, tt := range tests {
		if got := cell(t, out, tt.row, tt.column).Num; got != tt.want {
			t.Errorf("row %d %s = %v; want %v", tt.row, tt.column, got, tt.want)
		}
	}
}

func TestRunPreprocessingPipelineDeterministic(t *testing.T) {
	raw := rawTable(t, sampleRaw(t)...)
	before := raw.Clone()

	first, err := RunPreprocessingPipeline(raw)
	if err != nil {
		t.Fatal(err)
	}
	second, err := RunPreprocessingPipeline(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Records(), second.Records()) {
		t.Error("two runs over the same input produced different output")
	}
	if !raw.Equal(before) {
		t.Error("pipeline modified its input table")
	}
}

func TestPipelineFailsFast(t *testing.T) {
	tests := []struct {
		name     string
		override map[string]string
		check    func(error) bool
	}{
		{
			name:     "bad price",
			override: map[string]string{"price": "1234"},
			check:    func(err error) bool { var e *ParseError; return errors.As(err, &e) },
		},
		{
			name:     "bad date",
			override: map[string]string{"host_since": "someday"},
			check:    func(err error) bool { var e *ParseError; return errors.As(err, &e) },
		},
		{
			name:     "bad percent",
			override: map[string]string{"host_response_rate": "often"},
			check:    func(err error) bool { var e *ParseError; return errors.As(err, &e) },
		},
		{
			name:     "unknown room type",
			override: map[string]string{"room_type": "Treehouse"},
			check:    func(err error) bool { var e *MappingError; return errors.As(err, &e) },
		},
		{
			name:     "null boolean",
			override: map[string]string{"instant_bookable": ""},
			check:    func(err error) bool { var e *MappingError; return errors.As(err, &e) },
		},
		{
			name:     "null numeric field",
			override: map[string]string{"accommodates": ""},
			check:    func(err error) bool { var e *ParseError; return errors.As(err, &e) },
		},
	}

	for _, tt := range tests {
		raw := rawTable(t, baseListing, listing(tt.override))
		out, err := NewPipeline(newTestLogger()).Run(raw)
		if err == nil || out != nil {
			t.Errorf("%s: got table=%v err=%v; want error and no table", tt.name, out != nil, err)
			continue
		}
		if !tt.check(err) {
			t.Errorf("%s: error %v has the wrong type", tt.name, err)
		}
	}
}

func TestPipelineSchemaError(t *testing.T) {
	raw, err := rawTable(t, baseListing).Drop("host_response_rate")
	if err != nil {
		t.Fatal(err)
	}
	_, err = RunPreprocessingPipeline(raw)
	var se *SchemaError
	if !errors.As(err, &se) || se.Column != "host_response_rate" {
		t.Errorf("error = %v; want SchemaError for host_response_rate", err)
	}
}

func TestRunDetailed(t *testing.T) {
	res, err := NewPipeline(newTestLogger()).RunDetailed(rawTable(t, sampleRaw(t)...))
	if err != nil {
		t.Fatalf("RunDetailed: %v", err)
	}
	if res.RawRows != 4 || res.DroppedRows != 1 {
		t.Errorf("RawRows=%d DroppedRows=%d; want 4 and 1", res.RawRows, res.DroppedRows)
	}
	if want := (FrequencyTable{"Bang Rak": 2, "Khlong Toei": 1}); !reflect.DeepEqual(res.Frequencies, want) {
		t.Errorf("Frequencies = %v; want %v", res.Frequencies, want)
	}
}

func TestPipelineFrozenFrequencies(t *testing.T) {
	frozen := FrequencyTable{"Bang Rak": 120, "Khlong Toei": 40}
	p := NewPipeline(newTestLogger(), WithFrozenFrequencies(frozen))

	res, err := p.RunDetailed(rawTable(t, sampleRaw(t)...))
	if err != nil {
		t.Fatalf("RunDetailed: %v", err)
	}
	if got := cell(t, res.Table, 0, "neighbourhood_cleansed").Num; got != 120 {
		t.Errorf("frozen count = %v; want 120", got)
	}

	unknown := rawTable(t, listing(map[string]string{"neighbourhood_cleansed": "Sathon"}))
	_, err = p.Run(unknown)
	var me *MappingError
	if !errors.As(err, &me) {
		t.Errorf("unknown neighbourhood error = %v; want *MappingError", err)
	}
}

func TestStepNames(t *testing.T) {
	want := []string{
		"prune", "normalize", "bathrooms", "amenities", "host_since", "response_rate",
		"price", "room_type", "response_time", "booleans", "neighbourhood", "materialize",
	}
	if got := NewPipeline(nil).StepNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("StepNames = %v; want %v", got, want)
	}
}
