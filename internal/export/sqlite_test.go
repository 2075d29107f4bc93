package export

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/choropleth-cli/internal/enrich"
)

func newTestSQLiteWriter(t *testing.T) (*SQLiteWriter, *sql.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	w, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() }) //nolint:errcheck
	require.NoError(t, w.Migrate(context.Background()))
	return w, w.db
}

func TestSQLite_Replace(t *testing.T) {
	w, db := newTestSQLiteWriter(t)
	ctx := context.Background()
	v := testView(t)

	id, err := w.Replace(ctx, v, enrich.Summarize(v, 3, 1), enrich.DefaultPalette())
	require.NoError(t, err)
	assert.Len(t, id, 36)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM regions`).Scan(&n))
	assert.Equal(t, 2, n)

	var name, color string
	var value float64
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT region_name, metric_value, color FROM regions WHERE region_id = ?`, "02",
	).Scan(&name, &value, &color))
	assert.Equal(t, "Kab Sukabumi", name)
	assert.Equal(t, 45.5, value)
	assert.Equal(t, "darkred", color)

	rows, err := db.QueryContext(ctx, `SELECT category, count FROM category_counts ORDER BY rank`)
	require.NoError(t, err)
	defer rows.Close() //nolint:errcheck
	counts := map[string]int{}
	var order []string
	for rows.Next() {
		var c string
		var cnt int
		require.NoError(t, rows.Scan(&c, &cnt))
		counts[c] = cnt
		order = append(order, c)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Low", "Medium", "High", "Very High"}, order)
	assert.Equal(t, 1, counts["Low"])
	assert.Equal(t, 0, counts["High"])
}

func TestSQLite_ReplaceOverwrites(t *testing.T) {
	w, db := newTestSQLiteWriter(t)
	ctx := context.Background()
	v := testView(t)
	p := enrich.DefaultPalette()

	_, err := w.Replace(ctx, v, enrich.Summarize(v, 0, 0), p)
	require.NoError(t, err)

	low := enrich.Filter(v, enrich.FilterOptions{Category: "Low"})
	_, err = w.Replace(ctx, low, enrich.Summarize(low, 0, 0), p)
	require.NoError(t, err)

	var regions, exports int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM regions`).Scan(&regions))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exports`).Scan(&exports))
	assert.Equal(t, 1, regions)
	assert.Equal(t, 2, exports)
}

func TestSQLite_EmptyViewHasNullMean(t *testing.T) {
	w, db := newTestSQLiteWriter(t)
	ctx := context.Background()

	_, err := w.Replace(ctx, enrich.View{}, enrich.Summarize(enrich.View{}, 0, 0), enrich.DefaultPalette())
	require.NoError(t, err)

	var mean sql.NullFloat64
	require.NoError(t, db.QueryRowContext(ctx, `SELECT mean FROM exports`).Scan(&mean))
	assert.False(t, mean.Valid)
}
