/*
Package sqlite provides a SQLite-backed tombstone archive for deleted records.

PURPOSE:
  The live record engine is in-memory; deleting a record discards it and
  its audit trail from the index. Compliance-sensitive deployments instead
  wire this archive into the store, and Delete writes the final snapshot -
  history included - to SQLite before the record leaves the live index.

APPEND-ONLY ENFORCEMENT:
  The archive never updates or deletes rows. A record archived twice
  (deleted, re-created under the same ID, deleted again) produces two
  tombstones distinguished by archived_at.

KEY TABLES:
  archived_records:  Final snapshot of each deleted record (JSON payload
                     plus queryable key columns)
  archived_history:  The record's full audit trail, one row per entry

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so archive writes don't
  block concurrent tombstone queries.

USAGE:
  archive, err := sqlite.New("./data/tombstones.db")
  if err != nil {
      log.Fatal(err)
  }
  defer archive.Close()

  store := generic.NewRecordStore(generic.StoreConfig{
      Families: families,
      Archive:  archive,
  })

SEE ALSO:
  - generic/store.go: The Archive interface and the Delete path
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/record-engine/generic"
)

// Archive implements generic.Archive using SQLite.
type Archive struct {
	db *sql.DB
}

// Compile-time check that Archive satisfies the store's interface.
var _ generic.Archive = (*Archive)(nil)

// New creates a SQLite archive at the given path.
// Use ":memory:" for an in-memory archive (tests).
func New(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate archive database: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) migrate() error {
	schema := `
	-- Tombstones (append-only)
	CREATE TABLE IF NOT EXISTS archived_records (
		rowid INTEGER PRIMARY KEY AUTOINCREMENT,
		record_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		version INTEGER NOT NULL,
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		archived_at TEXT NOT NULL,
		snapshot_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_archived_records_record_id
		ON archived_records(record_id);
	CREATE INDEX IF NOT EXISTS idx_archived_records_kind
		ON archived_records(kind);

	-- Audit trails of archived records (append-only)
	CREATE TABLE IF NOT EXISTS archived_history (
		entry_id TEXT NOT NULL,
		record_id TEXT NOT NULL,
		action TEXT NOT NULL,
		actor TEXT NOT NULL,
		entry_timestamp TEXT NOT NULL,
		position INTEGER NOT NULL,
		changes_json TEXT,
		comment TEXT,
		visibility TEXT,
		archived_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_archived_history_record_id
		ON archived_history(record_id);
	`
	_, err := a.db.Exec(schema)
	return err
}

// =============================================================================
// WRITE PATH - called by RecordStore.Delete
// =============================================================================

// ArchiveRecord writes the record's final snapshot and full history in one
// database transaction. Either the whole tombstone lands or none of it.
func (a *Archive) ArchiveRecord(ctx context.Context, rec *generic.Record) error {
	snapshot, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record %s: %w", rec.ID, err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	archivedAt := time.Now().UTC().Format(time.RFC3339Nano)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO archived_records
			(record_id, kind, status, version, created_by, created_at, updated_at, archived_at, snapshot_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rec.ID), string(rec.Kind), string(rec.Status), rec.Version,
		rec.CreatedBy,
		rec.CreatedAt.Format(time.RFC3339Nano),
		rec.UpdatedAt.Format(time.RFC3339Nano),
		archivedAt, string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("inserting tombstone for %s: %w", rec.ID, err)
	}

	for i, entry := range rec.History {
		var changesJSON []byte
		if len(entry.Changes) > 0 {
			changesJSON, err = json.Marshal(entry.Changes)
			if err != nil {
				return fmt.Errorf("marshaling changes for entry %s: %w", entry.ID, err)
			}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO archived_history
				(entry_id, record_id, action, actor, entry_timestamp, position, changes_json, comment, visibility, archived_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(entry.ID), string(rec.ID), string(entry.Action), entry.Actor,
			entry.Timestamp.Format(time.RFC3339Nano), i,
			nullableString(changesJSON), entry.Comment, string(entry.Visibility),
			archivedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting history entry %s: %w", entry.ID, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// READ PATH - tombstone inspection
// =============================================================================

// ArchivedRecord is one tombstone row.
type ArchivedRecord struct {
	Record     generic.Record
	ArchivedAt time.Time
}

// GetArchived returns all tombstones for a record ID, oldest first.
// Multiple rows appear when an ID was deleted more than once.
func (a *Archive) GetArchived(ctx context.Context, id generic.RecordID) ([]ArchivedRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT snapshot_json, archived_at FROM archived_records
		WHERE record_id = ? ORDER BY rowid`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArchived(rows)
}

// ListArchived returns all tombstones for a kind, oldest first.
func (a *Archive) ListArchived(ctx context.Context, kind generic.Kind) ([]ArchivedRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT snapshot_json, archived_at FROM archived_records
		WHERE kind = ? ORDER BY rowid`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArchived(rows)
}

func scanArchived(rows *sql.Rows) ([]ArchivedRecord, error) {
	var out []ArchivedRecord
	for rows.Next() {
		var snapshot, archivedAt string
		if err := rows.Scan(&snapshot, &archivedAt); err != nil {
			return nil, err
		}
		var rec generic.Record
		if err := json.Unmarshal([]byte(snapshot), &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling archived snapshot: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, archivedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing archived_at: %w", err)
		}
		out = append(out, ArchivedRecord{Record: rec, ArchivedAt: at})
	}
	return out, rows.Err()
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
