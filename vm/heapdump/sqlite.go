package heapdump

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrSnapshotNotFound indicates the requested snapshot is not in the database.
var ErrSnapshotNotFound = errors.New("snapshot not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id       TEXT PRIMARY KEY,
		heap_id  TEXT NOT NULL,
		taken_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS objects (
		snapshot_id TEXT NOT NULL,
		id          INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		proto       INTEGER,
		class       TEXT,
		is_root     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (snapshot_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		snapshot_id TEXT NOT NULL,
		object_id   INTEGER NOT NULL,
		ns_kind     TEXT NOT NULL,
		ns          TEXT NOT NULL,
		name        TEXT NOT NULL,
		kind        TEXT NOT NULL,
		state       TEXT,
		value_type  TEXT,
		value       TEXT,
		ref         INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS slots (
		snapshot_id TEXT NOT NULL,
		object_id   INTEGER NOT NULL,
		idx         INTEGER NOT NULL,
		value_type  TEXT NOT NULL,
		value       TEXT,
		ref         INTEGER,
		PRIMARY KEY (snapshot_id, object_id, idx)
	)`,
}

// OpenSQLite opens (creating if needed) a snapshot database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables: %w", err)
		}
	}
	return db, nil
}

// nullRef maps a zero object ID to NULL.
func nullRef(id uint64) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id != 0}
}

// WriteSQLite stores snap in db in one transaction. Writing the same snapshot
// twice replaces it.
func WriteSQLite(ctx context.Context, db *sql.DB, snap *Snapshot) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"objects", "properties", "slots"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE snapshot_id = ?", snap.ID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO snapshots (id, heap_id, taken_at) VALUES (?, ?, ?)",
		snap.ID, snap.HeapID, snap.TakenAt,
	); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	roots := make(map[uint64]int, len(snap.Roots))
	for _, id := range snap.Roots {
		roots[id] = 1
	}

	for _, o := range snap.Objects {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO objects (snapshot_id, id, kind, proto, class, is_root) VALUES (?, ?, ?, ?, ?, ?)",
			snap.ID, int64(o.ID), o.Kind, nullRef(o.Proto), o.Class, roots[o.ID],
		); err != nil {
			return fmt.Errorf("saving object %d: %w", o.ID, err)
		}

		for i, v := range o.Slots {
			if _, err = tx.ExecContext(ctx,
				"INSERT INTO slots (snapshot_id, object_id, idx, value_type, value, ref) VALUES (?, ?, ?, ?, ?, ?)",
				snap.ID, int64(o.ID), i, v.Type, v.Text, nullRef(v.Ref),
			); err != nil {
				return fmt.Errorf("saving slot %d of object %d: %w", i, o.ID, err)
			}
		}

		for _, p := range o.Properties {
			var vt, text sql.NullString
			var ref sql.NullInt64
			if p.Value != nil {
				vt = sql.NullString{String: p.Value.Type, Valid: true}
				text = sql.NullString{String: p.Value.Text, Valid: true}
				ref = nullRef(p.Value.Ref)
			}
			if _, err = tx.ExecContext(ctx,
				"INSERT INTO properties (snapshot_id, object_id, ns_kind, ns, name, kind, state, value_type, value, ref) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
				snap.ID, int64(o.ID), p.NSKind, p.Namespace, p.Name, p.Kind, p.State, vt, text, ref,
			); err != nil {
				return fmt.Errorf("saving property %s of object %d: %w", p.Name, o.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// ReadSummary computes the summary of a stored snapshot.
func ReadSummary(ctx context.Context, db *sql.DB, id string) (*Summary, error) {
	sum := &Summary{SnapshotID: id, ByKind: map[string]int{}}

	err := db.QueryRowContext(ctx, "SELECT heap_id FROM snapshots WHERE id = ?", id).Scan(&sum.HeapID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		"SELECT kind, COUNT(*), SUM(is_root) FROM objects WHERE snapshot_id = ? GROUP BY kind", id)
	if err != nil {
		return nil, fmt.Errorf("querying objects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n, roots int
		if err := rows.Scan(&kind, &n, &roots); err != nil {
			return nil, fmt.Errorf("scanning objects: %w", err)
		}
		sum.ByKind[kind] = n
		sum.Objects += n
		sum.Roots += roots
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying objects: %w", err)
	}

	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM properties WHERE snapshot_id = ?", id).Scan(&sum.Properties); err != nil {
		return nil, fmt.Errorf("counting properties: %w", err)
	}
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM slots WHERE snapshot_id = ?", id).Scan(&sum.Slots); err != nil {
		return nil, fmt.Errorf("counting slots: %w", err)
	}
	return sum, nil
}
