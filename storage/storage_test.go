package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"airbnb-pricer/dataset"
	"airbnb-pricer/models"
	"airbnb-pricer/utils"
)

func featureTable(target ...float64) *dataset.Table {
	rooms := make([]float64, len(target))
	for i := range rooms {
		rooms[i] = float64(i % 4)
	}
	return dataset.MustNew(
		dataset.NumberColumn("room_type", rooms),
		dataset.NumberColumn("target", target),
	)
}

func TestCSVSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	data := "id,price,host_response_rate\n1,\"$1,234.50\",N/A\n2,$80.00,95%\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	tbl, err := NewCSVSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d; want 2", tbl.Len())
	}
	c, _ := tbl.Cell(0, "price")
	if c.Text != "$1,234.50" {
		t.Errorf("price = %q; want $1,234.50", c.Text)
	}
	c, _ = tbl.Cell(0, "host_response_rate")
	if !c.IsNull() {
		t.Errorf("N/A should load as null")
	}
}

func TestCSVWriterAppendsTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "features.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	ctx := context.Background()
	if err := w.Write(ctx, featureTable(1234.5, 80)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(ctx, featureTable(45)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if w.Rows() != 3 {
		t.Errorf("Rows = %d; want 3", w.Rows())
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "room_type,target\n0,1234.5\n1,80\n0,45\n"
	if string(b) != want {
		t.Errorf("file = %q; want %q", b, want)
	}
}

func TestCSVWriterRejectsDifferentLayout(t *testing.T) {
	w, err := NewCSVWriter(filepath.Join(t.TempDir(), "features.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx := context.Background()
	if err := w.Write(ctx, featureTable(10)); err != nil {
		t.Fatal(err)
	}
	other := dataset.MustNew(dataset.NumberColumn("target", []float64{1}))
	if err := w.Write(ctx, other); err == nil {
		t.Error("expected error for a different column layout")
	}
}

func TestCSVWriterConcurrent(t *testing.T) {
	w, err := NewCSVWriter(filepath.Join(t.TempDir(), "features.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Write(context.Background(), featureTable(1, 2, 3)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if w.Rows() != 24 {
		t.Errorf("Rows = %d; want 24", w.Rows())
	}
}

func TestInsertSQL(t *testing.T) {
	got := insertSQL("listing_features", []string{"room_type", "target"}, 2)
	want := `INSERT INTO "listing_features" ("room_type","target") VALUES ($1,$2),($3,$4)`
	if got != want {
		t.Errorf("insertSQL = %q; want %q", got, want)
	}
}

func TestCreateTableSQL(t *testing.T) {
	got := createTableSQL("raw_listings", []string{"id", "price"}, "TEXT", true)
	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "raw_listings"`,
		"row_id SERIAL PRIMARY KEY",
		`"id" TEXT`,
		`"price" TEXT`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("createTableSQL missing %q in %q", want, got)
		}
	}
}

func TestArtifactStoreFrequencies(t *testing.T) {
	s, err := OpenInMemoryArtifactStore(utils.Nop())
	if err != nil {
		t.Fatalf("OpenInMemoryArtifactStore: %v", err)
	}
	defer s.Close()

	if _, err := s.LoadFrequencies("neighbourhood_cleansed"); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("LoadFrequencies before save: %v; want ErrArtifactNotFound", err)
	}

	snap := &models.FrequencySnapshot{
		Column:    "neighbourhood_cleansed",
		Sources:   []string{"listings.csv"},
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Counts:    map[string]int{"Bang Rak": 120, "Khlong Toei": 40},
	}
	if err := s.SaveFrequencies(snap); err != nil {
		t.Fatalf("SaveFrequencies: %v", err)
	}
	got, err := s.LoadFrequencies("neighbourhood_cleansed")
	if err != nil {
		t.Fatalf("LoadFrequencies: %v", err)
	}
	if got.Counts["Bang Rak"] != 120 || len(got.Counts) != 2 {
		t.Errorf("Counts = %v", got.Counts)
	}
	if !got.CreatedAt.Equal(snap.CreatedAt) {
		t.Errorf("CreatedAt = %v; want %v", got.CreatedAt, snap.CreatedAt)
	}
}

func TestArtifactStoreModelOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenArtifactStore(dir, utils.Nop())
	if err != nil {
		t.Fatalf("OpenArtifactStore: %v", err)
	}
	if _, err := s.LoadModel(); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("LoadModel before save: %v; want ErrArtifactNotFound", err)
	}
	if err := s.SaveModel([]byte(`{"kind":"linear"}`)); err != nil {
		t.Fatalf("SaveModel: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = OpenArtifactStore(dir, utils.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	b, err := s.LoadModel()
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if string(b) != `{"kind":"linear"}` {
		t.Errorf("LoadModel = %s", b)
	}
}

// TestPostgresStoreRoundTrip runs against a real database when POSTGRES_TEST_DSN is set.
func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	ctx := context.Background()
	ps, err := NewPostgresStore(ctx, PostgresOptions{
		DSN:           dsn,
		RawTable:      "raw_listings_test",
		FeaturesTable: "listing_features_test",
		Retry:         utils.RetryConfig{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	defer ps.Close()

	raw := dataset.MustNew(
		dataset.TextColumn("id", []string{"1", "2"}),
		dataset.NewColumn("host_response_rate", []dataset.Cell{dataset.Text("95%"), dataset.Null()}),
	)
	if err := ps.WriteRaw(ctx, raw); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	loaded, err := ps.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Equal(raw) {
		t.Errorf("Load = %v; want %v", loaded.Records(), raw.Records())
	}

	if err := ps.ResetFeatures(ctx, []string{"room_type", "target"}); err != nil {
		t.Fatalf("ResetFeatures: %v", err)
	}
	if err := ps.Write(ctx, featureTable(1, 2, 3)); err != nil {
		t.Fatalf("Write: %v", err)
	}
}
