package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresDSN adjusts a connection string for the environment. Local
// databases get sslmode=disable unless set. Everything else goes through
// the Supabase transaction pooler, which cannot hold server-side prepared
// statements, so the simple protocol is forced.
func PostgresDSN(dsn string, development bool) string {
	isURL := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
	appendParam := func(param string) {
		switch {
		case !isURL:
			dsn += " " + param
		case strings.Contains(dsn, "?"):
			dsn += "&" + param
		default:
			dsn += "?" + param
		}
	}
	if development && !strings.Contains(dsn, "sslmode") {
		appendParam("sslmode=disable")
	}
	if !development && !strings.Contains(dsn, "prefer_simple_protocol") {
		appendParam("prefer_simple_protocol=true")
	}
	return dsn
}

// Open connects to Postgres through the pgx database/sql driver and applies
// the pool limits shared by the API and the workers.
func Open(ctx context.Context, dsn string, development bool) (*sql.DB, error) {
	db, err := sql.Open("pgx", PostgresDSN(dsn, development))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}
