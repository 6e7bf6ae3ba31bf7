package services

import (
	"errors"
	"reflect"
	"testing"

	"airbnb-pricer/dataset"
)

func TestParseBathrooms(t *testing.T) {
	tests := []struct {
		raw        string
		wantCount  float64
		wantShared float64
	}{
		{"1.5 baths", 1.5, 0},
		{"1 bath", 1, 0},
		{"Half-bath", 0.5, 0},
		{"Shared half-bath", 0.5, 1},
		{"2 shared baths", 2, 1},
		{"1 private bath", 1, 0},
		{"0 baths", 0, 0},
		{"Private half-bath", 0.5, 0},
		{"", 0, 0},
	}

	for _, tt := range tests {
		count, shared := parseBathrooms(tt.raw)
		if count != tt.wantCount || shared != tt.wantShared {
			t.Errorf("parseBathrooms(%q) = (%.1f, %.0f); want (%.1f, %.0f)",
				tt.raw, count, shared, tt.wantCount, tt.wantShared)
		}
	}
}

func TestParseAmenities(t *testing.T) {
	items, err := parseAmenities(`["Wifi", "Kitchen", "Pool"]`)
	if err != nil {
		t.Fatalf("parseAmenities: %v", err)
	}
	if want := []string{"Wifi", "Kitchen", "Pool"}; !reflect.DeepEqual(items, want) {
		t.Errorf("items = %q; want %q", items, want)
	}

	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{`["Wifi"]`, 1, false},
		{`[]`, 1, false},
		{`["Hot water", "Essentials"]`, 2, false},
		{`Wifi, Kitchen`, 0, true},
		{`[`, 0, true},
	}
	for _, tt := range tests {
		got, err := parseAmenities(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAmenities(%q) error = %v; wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && len(got) != tt.want {
			t.Errorf("parseAmenities(%q) count = %d; want %d", tt.raw, len(got), tt.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"$1,234.50", 1234.50, false},
		{"$80.00", 80, false},
		{"€95", 95, false},
		{"฿3,500.00", 3500, false},
		{"1234", 0, true},
		{"", 0, true},
		{"$", 0, true},
		{"$abc", 0, true},
		{"-$5", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePrice(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePrice(%q) error = %v; wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"87%", 87, false},
		{"0%", 0, false},
		{"100%", 100, false},
		{"99.5%", 99.5, false},
		{"87", 0, true},
		{"N/A", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePercent(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePercent(%q) error = %v; wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePercent(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"2015-04-02", 2015, false},
		{"2009/12/31", 2009, false},
		{"2021-06-01T00:00:00Z", 2021, false},
		{"yesterday", 0, true},
	}

	for _, tt := range tests {
		got, err := parseYear(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseYear(%q) error = %v; wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseYear(%q) = %.0f; want %.0f", tt.raw, got, tt.want)
		}
	}
}

func TestEncodeBathroomsPlacesSharedBathBeforePrice(t *testing.T) {
	pruned, err := PruneColumns(rawTable(t, listing(map[string]string{"bathrooms_text": "1 shared bath"})))
	if err != nil {
		t.Fatal(err)
	}

	out, err := EncodeBathrooms(pruned)
	if err != nil {
		t.Fatalf("EncodeBathrooms: %v", err)
	}
	if out.Has("bathrooms_text") {
		t.Error("bathrooms_text should be removed")
	}
	if out.Index("shared_bath") != 14 || out.Index("price") != 15 {
		t.Errorf("shared_bath at %d, price at %d; want 14 and 15", out.Index("shared_bath"), out.Index("price"))
	}
	if got := cell(t, out, 0, "shared_bath").Num; got != 1 {
		t.Errorf("shared_bath = %v; want 1", got)
	}
	if got := cell(t, out, 0, "bathrooms").Num; got != 1 {
		t.Errorf("bathrooms = %v; want 1", got)
	}
}

func TestEncodePriceAppendsTarget(t *testing.T) {
	tbl := dataset.MustNew(
		dataset.TextColumn("price", []string{"$1,234.50", "$80.00"}),
		dataset.TextColumn("room_type", []string{"Private room", "Shared room"}),
	)

	out, err := EncodePrice(tbl)
	if err != nil {
		t.Fatalf("EncodePrice: %v", err)
	}
	if got := out.Names(); !reflect.DeepEqual(got, []string{"room_type", "target"}) {
		t.Errorf("Names = %v", got)
	}
	if got := cell(t, out, 0, "target").Num; got != 1234.50 {
		t.Errorf("target = %v; want 1234.50", got)
	}
}

func TestEncodePriceRejectsBareNumber(t *testing.T) {
	tbl := dataset.MustNew(dataset.TextColumn("price", []string{"$10.00", "1234"}))

	_, err := EncodePrice(tbl)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v; want *ParseError", err)
	}
	if pe.Row != 1 || pe.Value != "1234" {
		t.Errorf("ParseError = %+v; want row 1 value 1234", pe)
	}
	if !errors.Is(err, errNoCurrency) {
		t.Errorf("error should wrap errNoCurrency")
	}
}

func TestMapCategories(t *testing.T) {
	tbl := dataset.MustNew(dataset.TextColumn("room_type", []string{"Entire home/apt", "Private room", "Hotel room", "Shared room"}))

	out, err := EncodeRoomType(tbl)
	if err != nil {
		t.Fatalf("EncodeRoomType: %v", err)
	}
	m, err := out.Matrix("room_type")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{3, 2, 1, 0}
	for i, row := range m {
		if row[0] != want[i] {
			t.Errorf("row %d = %v; want %v", i, row[0], want[i])
		}
	}
}

func TestMapCategoriesUnknownKey(t *testing.T) {
	tests := []struct {
		name  string
		table *dataset.Table
		enc   Encoder
	}{
		{
			name:  "room type",
			table: dataset.MustNew(dataset.TextColumn("room_type", []string{"Private room", "Castle"})),
			enc:   EncodeRoomType,
		},
		{
			name:  "response time",
			table: dataset.MustNew(dataset.TextColumn("host_response_time", []string{"within a week"})),
			enc:   EncodeResponseTime,
		},
		{
			name:  "null category",
			table: dataset.MustNew(dataset.NewColumn("room_type", []dataset.Cell{dataset.Null()})),
			enc:   EncodeRoomType,
		},
	}

	for _, tt := range tests {
		_, err := tt.enc(tt.table)
		var me *MappingError
		if !errors.As(err, &me) {
			t.Errorf("%s: error = %v; want *MappingError", tt.name, err)
		}
	}
}

func TestEncodeBooleans(t *testing.T) {
	cols := make([]dataset.Column, 0, len(BooleanColumns))
	for _, name := range BooleanColumns {
		cols = append(cols, dataset.TextColumn(name, []string{"t", "f"}))
	}
	out, err := EncodeBooleans(dataset.MustNew(cols...))
	if err != nil {
		t.Fatalf("EncodeBooleans: %v", err)
	}
	m, err := out.Matrix(BooleanColumns...)
	if err != nil {
		t.Fatal(err)
	}
	for j := range BooleanColumns {
		if m[0][j] != 1 || m[1][j] != 0 {
			t.Errorf("%s = %v, %v; want 1, 0", BooleanColumns[j], m[0][j], m[1][j])
		}
	}

	bad := dataset.MustNew(append(cols[:len(cols)-1:len(cols)-1], dataset.TextColumn(BooleanColumns[len(cols)-1], []string{"t", "yes"}))...)
	if _, err := EncodeBooleans(bad); err == nil {
		t.Error("expected MappingError for \"yes\"")
	}
}

func TestMaterialize(t *testing.T) {
	tbl := dataset.MustNew(
		dataset.TextColumn("latitude", []string{"13.72", " 13.8 "}),
		dataset.NumberColumn("target", []float64{10, 20}),
	)
	out, err := Materialize(tbl)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if got := cell(t, out, 1, "latitude"); got.Kind != dataset.KindNumber || got.Num != 13.8 {
		t.Errorf("latitude row 1 = %+v; want number 13.8", got)
	}

	_, err = Materialize(dataset.MustNew(dataset.NewColumn("beds", []dataset.Cell{dataset.Text("2"), dataset.Null()})))
	var pe *ParseError
	if !errors.As(err, &pe) || !errors.Is(err, errNullValue) {
		t.Errorf("null cell error = %v; want ParseError wrapping errNullValue", err)
	}
}
