// Package store implements the schema manager (C4) and the query façade
// (C6) over a modernc.org/sqlite-backed embedded database.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/PlatosRepublic7/navdatamanager/internal/errs"
)

// pragmas tune the engine the way a batch-ingest workload wants: durable
// write-ahead journaling, relaxed synchronous commits, a generous page
// cache, in-memory temp storage, memory-mapped reads, and incremental
// auto-vacuum so VACUUM after a large load doesn't need to rewrite the
// whole file in one pass.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA cache_size = -20000",
	"PRAGMA temp_store = MEMORY",
	"PRAGMA mmap_size = 268435456",
	"PRAGMA auto_vacuum = INCREMENTAL",
	"PRAGMA foreign_keys = ON",
}

// DB wraps the embedded store connection.
type DB struct {
	conn *sql.DB
}

// Open creates/connects to the SQLite file at path, applies the tuning
// pragmas and ensures the schema exists.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreError, fmt.Errorf("open %s: %w", path, err))
	}
	conn.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, errs.Wrap(errs.KindStoreError, fmt.Errorf("pragma %q: %w", p, err))
		}
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, errs.Wrap(errs.KindStoreError, fmt.Errorf("apply schema: %w", err))
	}
	return &DB{conn: conn}, nil
}

// Conn exposes the underlying *sql.DB for the loader and query façade.
func (d *DB) Conn() *sql.DB { return d.conn }

// Close releases the connection.
func (d *DB) Close() error { return d.conn.Close() }

// Optimize runs the post-ingest ANALYZE / VACUUM / incremental vacuum
// pass, outside of any ingest transaction.
func (d *DB) Optimize() error {
	for _, stmt := range []string{"ANALYZE", "PRAGMA incremental_vacuum", "VACUUM"} {
		if _, err := d.conn.Exec(stmt); err != nil {
			return errs.Wrap(errs.KindStoreError, fmt.Errorf("%s: %w", stmt, err))
		}
	}
	return nil
}
