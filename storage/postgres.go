package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"airbnb-pricer/dataset"
	"airbnb-pricer/utils"
)

const (
	batchSize   = 50
	rowIDColumn = "row_id"
)

// PostgresStore reads raw listings from and writes encoded features to PostgreSQL.
// Raw listings live in a table of TEXT columns, one per CSV field, so values reach
// the pipeline exactly as they appear in listings.csv.
type PostgresStore struct {
	db            *sql.DB
	rawTable      string
	featuresTable string
	logger        *utils.Logger
}

// PostgresOptions configures NewPostgresStore.
type PostgresOptions struct {
	DSN           string
	RawTable      string
	FeaturesTable string
	Retry         utils.RetryConfig
	Logger        *utils.Logger
}

// NewPostgresStore opens a connection to PostgreSQL and waits for it to accept
// queries, retrying with back-off.
func NewPostgresStore(ctx context.Context, opts PostgresOptions) (*PostgresStore, error) {
	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.Nop()
	}
	retry := opts.Retry
	if retry.Logger == nil {
		retry.Logger = logger
	}
	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &PostgresStore{
		db:            db,
		rawTable:      opts.RawTable,
		featuresTable: opts.FeaturesTable,
		logger:        logger,
	}, nil
}

// Load reads the whole raw listings table in insertion order. NULL and the usual
// NA tokens become null cells.
func (ps *PostgresStore) Load(ctx context.Context) (*dataset.Table, error) {
	header, hasRowID, err := ps.columns(ctx, ps.rawTable)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("postgres: table %s has no columns", ps.rawTable)
	}

	quoted := make([]string, len(header))
	for i, c := range header {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	query := "SELECT " + strings.Join(quoted, ",") + " FROM " + pq.QuoteIdentifier(ps.rawTable)
	if hasRowID {
		query += " ORDER BY " + rowIDColumn
	}

	rows, err := ps.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: load %s: %w", ps.rawTable, err)
	}
	defer rows.Close()

	var records [][]string
	vals := make([]sql.NullString, len(header))
	dest := make([]any, len(header))
	for i := range vals {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		rec := make([]string, len(header))
		for i, v := range vals {
			if v.Valid {
				rec[i] = v.String
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: read rows: %w", err)
	}

	ps.logger.Info().Str("table", ps.rawTable).Int("rows", len(records)).Msg("[postgres] Loaded raw listings")
	return dataset.FromRecords(header, records, nil)
}

// WriteRaw replaces the raw listings table with t, storing every column as TEXT.
func (ps *PostgresStore) WriteRaw(ctx context.Context, t *dataset.Table) error {
	if err := ps.recreate(ctx, ps.rawTable, t.Names(), "TEXT"); err != nil {
		return err
	}
	return ps.insert(ctx, ps.rawTable, t, func(c dataset.Cell) any {
		if c.IsNull() {
			return nil
		}
		return c.String()
	})
}

// ResetFeatures drops and recreates the features table for the given columns.
func (ps *PostgresStore) ResetFeatures(ctx context.Context, columns []string) error {
	return ps.recreate(ctx, ps.featuresTable, columns, "DOUBLE PRECISION NOT NULL")
}

// Write appends an encoded table to the features table, creating it if needed.
func (ps *PostgresStore) Write(ctx context.Context, t *dataset.Table) error {
	if t.Len() == 0 {
		return nil
	}
	if _, err := ps.db.ExecContext(ctx, createTableSQL(ps.featuresTable, t.Names(), "DOUBLE PRECISION NOT NULL", true)); err != nil {
		return fmt.Errorf("postgres: migrate %s: %w", ps.featuresTable, err)
	}
	return ps.insert(ctx, ps.featuresTable, t, func(c dataset.Cell) any {
		if c.Kind == dataset.KindNumber {
			return c.Num
		}
		return c.String()
	})
}

// columns lists the data columns of table, leaving out the serial row id.
func (ps *PostgresStore) columns(ctx context.Context, table string) ([]string, bool, error) {
	rows, err := ps.db.QueryContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(table)+" LIMIT 0")
	if err != nil {
		return nil, false, fmt.Errorf("postgres: describe %s: %w", table, err)
	}
	defer rows.Close()

	all, err := rows.Columns()
	if err != nil {
		return nil, false, fmt.Errorf("postgres: columns of %s: %w", table, err)
	}
	names := make([]string, 0, len(all))
	hasRowID := false
	for _, c := range all {
		if c == rowIDColumn {
			hasRowID = true
			continue
		}
		names = append(names, c)
	}
	return names, hasRowID, nil
}

func (ps *PostgresStore) recreate(ctx context.Context, table string, columns []string, colType string) error {
	_, err := ps.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+pq.QuoteIdentifier(table))
	if err != nil {
		return fmt.Errorf("postgres: drop %s: %w", table, err)
	}
	if _, err := ps.db.ExecContext(ctx, createTableSQL(table, columns, colType, false)); err != nil {
		return fmt.Errorf("postgres: create %s: %w", table, err)
	}
	return nil
}

// insert writes t in batches inside one transaction.
func (ps *PostgresStore) insert(ctx context.Context, table string, t *dataset.Table, value func(dataset.Cell) any) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	names := t.Names()
	cols := make([]dataset.Column, len(names))
	for i, n := range names {
		cols[i], _ = t.Column(n)
	}

	for start := 0; start < t.Len(); start += batchSize {
		end := min(start+batchSize, t.Len())
		args := make([]any, 0, (end-start)*len(cols))
		for r := start; r < end; r++ {
			for _, c := range cols {
				args = append(args, value(c.Cells[r]))
			}
		}
		if _, err := tx.ExecContext(ctx, insertSQL(table, names, end-start), args...); err != nil {
			return fmt.Errorf("postgres: insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	ps.logger.Info().Str("table", table).Int("rows", t.Len()).Msg("[postgres] Rows written")
	return nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func createTableSQL(table string, columns []string, colType string, ifNotExists bool) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(pq.QuoteIdentifier(table))
	fmt.Fprintf(&b, " (\n\t%s SERIAL PRIMARY KEY", rowIDColumn)
	for _, c := range columns {
		fmt.Fprintf(&b, ",\n\t%s %s", pq.QuoteIdentifier(c), colType)
	}
	b.WriteString("\n)")
	return b.String()
}

func insertSQL(table string, columns []string, rows int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}

	valueStrings := make([]string, rows)
	n := 1
	for r := 0; r < rows; r++ {
		ph := make([]string, len(columns))
		for i := range columns {
			ph[i] = fmt.Sprintf("$%d", n)
			n++
		}
		valueStrings[r] = "(" + strings.Join(ph, ",") + ")"
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		pq.QuoteIdentifier(table), strings.Join(quoted, ","), strings.Join(valueStrings, ","))
}
