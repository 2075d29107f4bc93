package export

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/choropleth-cli/internal/enrich"
)

// SQLiteWriter writes views into a SQLite database using modernc.org/sqlite.
type SQLiteWriter struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn.
func OpenSQLite(dsn string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteWriter{db: db}, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS exports (
	id          TEXT PRIMARY KEY,
	regions     INTEGER NOT NULL,
	mean        REAL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS regions (
	region_id        TEXT PRIMARY KEY,
	region_name      TEXT NOT NULL,
	metric_value     REAL NOT NULL,
	metric_category  TEXT NOT NULL,
	label            TEXT NOT NULL,
	color            TEXT NOT NULL,
	quality_category TEXT NOT NULL DEFAULT '',
	lon              REAL NOT NULL,
	lat              REAL NOT NULL,
	position         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS category_counts (
	category TEXT PRIMARY KEY,
	label    TEXT NOT NULL,
	rank     INTEGER NOT NULL,
	count    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_regions_category ON regions(metric_category);
`

// Migrate creates the export tables.
func (s *SQLiteWriter) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteWriter) Close() error {
	return s.db.Close()
}

// Replace swaps the regions and category_counts tables for v and s in one
// transaction and records the export. It returns the export id.
func (s *SQLiteWriter) Replace(ctx context.Context, v enrich.View, sum enrich.Summary, p enrich.Palette) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{`DELETE FROM regions`, `DELETE FROM category_counts`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return "", eris.Wrapf(err, "sqlite: %s", stmt)
		}
	}

	insertRegion, err := tx.PrepareContext(ctx,
		`INSERT INTO regions (region_id, region_name, metric_value, metric_category, label, color, quality_category, lon, lat, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: prepare region insert")
	}
	defer insertRegion.Close() //nolint:errcheck

	for i, r := range Records(v, p) {
		if _, err := insertRegion.ExecContext(ctx,
			r.ID, r.Name, r.Value, r.Category, r.Label, r.Color, r.Quality, r.Lon, r.Lat, i,
		); err != nil {
			return "", eris.Wrapf(err, "sqlite: insert region %s", r.ID)
		}
	}

	for _, cc := range sum.CategoryCounts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO category_counts (category, label, rank, count) VALUES (?, ?, ?, ?)`,
			string(cc.Category), p.Label(cc.Category), cc.Category.Rank(), cc.Count,
		); err != nil {
			return "", eris.Wrapf(err, "sqlite: insert category count %s", cc.Category)
		}
	}

	var mean sql.NullFloat64
	if !sum.NoData {
		mean = sql.NullFloat64{Float64: sum.Mean, Valid: true}
	}
	id := uuid.New().String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exports (id, regions, mean, created_at) VALUES (?, ?, ?, ?)`,
		id, v.Len(), mean, time.Now().UTC(),
	); err != nil {
		return "", eris.Wrap(err, "sqlite: insert export")
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "sqlite: commit")
	}
	return id, nil
}

// WriteSQLite opens path, migrates it and replaces its contents with v.
func WriteSQLite(ctx context.Context, path string, v enrich.View, sum enrich.Summary, p enrich.Palette) error {
	w, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	defer w.Close() //nolint:errcheck

	if err := w.Migrate(ctx); err != nil {
		return err
	}
	_, err = w.Replace(ctx, v, sum, p)
	return err
}
