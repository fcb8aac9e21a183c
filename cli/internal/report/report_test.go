package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver(t *testing.T) {
	tests := []struct {
		dsn    string
		driver string
		source string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "postgres", "postgres://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://localhost/db", "postgres", "postgresql://localhost/db"},
		{"mysql://u:p@tcp(localhost:3306)/db", "mysql", "u:p@tcp(localhost:3306)/db"},
		{"sqlite:///tmp/report.db", "sqlite3", "/tmp/report.db"},
		{"file:report.db?cache=shared", "sqlite3", "file:report.db?cache=shared"},
		{"report.db", "sqlite3", "report.db"},
	}
	for _, tc := range tests {
		t.Run(tc.dsn, func(t *testing.T) {
			driver, source, err := Driver(tc.dsn)
			require.NoError(t, err)
			assert.Equal(t, tc.driver, driver)
			assert.Equal(t, tc.source, source)
		})
	}

	_, _, err := Driver("redis://localhost")
	assert.Error(t, err)
	_, _, err = Driver("whatever")
	assert.Error(t, err)
}

func TestWriteAndTotalsSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "report.db")
	r, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer r.Close()

	records := []Record{
		{File: "src/main.rs", Call: "m!()", Kind: "fn-like", Fragment: "Expr", Status: "ok", Tokens: 3},
		{File: "src/main.rs", Call: "big!()", Kind: "fn-like", Fragment: "Expr", Status: "OutputTooLarge", Message: "total tokens count exceed limit: count = 65537"},
		{File: "src/main.rs", Call: "n!()", Kind: "fn-like", Fragment: "Expr", Status: "ok", Tokens: 1},
	}
	require.NoError(t, r.Write(ctx, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), records))

	totals, err := r.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ok": 2, "OutputTooLarge": 1}, totals)

	// Reopening keeps existing rows.
	r2, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer r2.Close()
	totals, err = r2.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, totals["ok"]+totals["OutputTooLarge"])
}
