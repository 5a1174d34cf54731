// Package persistence provides the SQLite-backed intent journal.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/torus/internal/session"
)

// DB wraps a SQLite connection holding the intent journal and metadata.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one writer; sqlite serializes anyway
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS intents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		action TEXT NOT NULL,
		success INTEGER NOT NULL,
		message TEXT NOT NULL,
		running INTEGER NOT NULL,
		paused INTEGER NOT NULL,
		fps REAL NOT NULL,
		rotation_speed REAL NOT NULL,
		color_speed REAL NOT NULL,
		created_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_intents_created ON intents(created_ms);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// IntentRecord is a journaled intent as stored.
type IntentRecord struct {
	ID            string  `db:"id" json:"id"`
	Action        string  `db:"action" json:"action"`
	Success       bool    `db:"success" json:"success"`
	Message       string  `db:"message" json:"message"`
	Running       bool    `db:"running" json:"running"`
	Paused        bool    `db:"paused" json:"paused"`
	FPS           float64 `db:"fps" json:"fps"`
	RotationSpeed float64 `db:"rotation_speed" json:"rotation_speed"`
	ColorSpeed    float64 `db:"color_speed" json:"color_speed"`
	CreatedMs     int64   `db:"created_ms" json:"-"`
}

// CreatedAt returns the time the intent was handled.
func (r IntentRecord) CreatedAt() time.Time {
	return time.UnixMilli(r.CreatedMs)
}

// Record appends a handled intent. It satisfies session.Journal.
func (db *DB) Record(ctx context.Context, e session.Entry) error {
	_, err := db.conn.NamedExecContext(ctx, `INSERT INTO intents
		(id, action, success, message, running, paused, fps, rotation_speed, color_speed, created_ms)
		VALUES (:id, :action, :success, :message, :running, :paused, :fps, :rotation_speed, :color_speed, :created_ms)`,
		IntentRecord{
			ID:            e.ID,
			Action:        string(e.Action),
			Success:       e.Response.Success,
			Message:       e.Response.Message,
			Running:       e.State.Running,
			Paused:        e.State.Paused,
			FPS:           e.State.Settings.FPS,
			RotationSpeed: e.State.Settings.RotationSpeed,
			ColorSpeed:    e.State.Settings.ColorSpeed,
			CreatedMs:     e.At.UnixMilli(),
		},
	)
	if err != nil {
		return fmt.Errorf("insert intent %s: %w", e.ID, err)
	}
	return nil
}

// RecentIntents returns the most recent intents, newest first.
func (db *DB) RecentIntents(ctx context.Context, limit int) ([]IntentRecord, error) {
	records := []IntentRecord{}
	err := db.conn.SelectContext(ctx, &records,
		`SELECT id, action, success, message, running, paused, fps, rotation_speed, color_speed, created_ms
		 FROM intents ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select intents: %w", err)
	}
	return records, nil
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. ok is false when the key is absent.
func (db *DB) GetMeta(key string) (value string, ok bool, err error) {
	err = db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
