// Package report exports expansion outcomes to a SQL database.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// Record is one expanded call site.
type Record struct {
	File     string
	Call     string
	Kind     string
	Fragment string
	// Status is "ok", "unresolved" or a failure kind.
	Status  string
	Message string
	Tokens  int
}

// Reporter writes records to one database.
type Reporter struct {
	db     *sql.DB
	driver string
}

// Driver maps a DSN to a database/sql driver name and the source string
// that driver expects.
func Driver(dsn string) (driver string, source string, err error) {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		if strings.HasPrefix(dsn, "file:") || strings.HasSuffix(dsn, ".db") || dsn == ":memory:" {
			return "sqlite3", dsn, nil
		}
		return "", "", fmt.Errorf("unsupported report DSN %q", dsn)
	}
	switch scheme {
	case "postgres", "postgresql":
		return "postgres", dsn, nil
	case "mysql":
		return "mysql", rest, nil
	case "sqlite", "sqlite3":
		return "sqlite3", rest, nil
	}
	return "", "", fmt.Errorf("unsupported report DSN scheme %q", scheme)
}

// Open connects to dsn and creates the report table if needed.
func Open(ctx context.Context, dsn string) (*Reporter, error) {
	driver, source, err := Driver(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}
	r := &Reporter{db: db, driver: driver}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reporter) migrate(ctx context.Context) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	switch r.driver {
	case "postgres":
		id = "SERIAL PRIMARY KEY"
	case "mysql":
		id = "INTEGER PRIMARY KEY AUTO_INCREMENT"
	}
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS expansion_report (
	id `+id+`,
	run_at VARCHAR(64) NOT NULL,
	file VARCHAR(1024) NOT NULL,
	call_text TEXT NOT NULL,
	call_kind VARCHAR(32) NOT NULL,
	fragment VARCHAR(32) NOT NULL,
	status VARCHAR(64) NOT NULL,
	message TEXT NOT NULL,
	tokens INTEGER NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("create report table: %w", err)
	}
	return nil
}

// placeholders returns n bind parameters in the driver's syntax.
func (r *Reporter) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		if r.driver == "postgres" {
			ps[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ps[i] = "?"
		}
	}
	return strings.Join(ps, ", ")
}

// Write stores records in one transaction, stamped with at.
func (r *Reporter) Write(ctx context.Context, at time.Time, records []Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO expansion_report (run_at, file, call_text, call_kind, fragment, status, message, tokens) VALUES ("+r.placeholders(8)+")")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	stamp := at.UTC().Format(time.RFC3339)
	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, stamp, rec.File, rec.Call, rec.Kind, rec.Fragment, rec.Status, rec.Message, rec.Tokens); err != nil {
			return fmt.Errorf("insert record for %s: %w", rec.File, err)
		}
	}
	return tx.Commit()
}

// Totals returns the number of stored records per status.
func (r *Reporter) Totals(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM expansion_report GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// Close closes the database.
func (r *Reporter) Close() error {
	return r.db.Close()
}
