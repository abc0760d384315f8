package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// Store provides durable storage for action journals.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections to
	// avoid SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append records one processed action. Implements the bus's Journal
// interface.
//
// Uses ON CONFLICT(seq) DO NOTHING for idempotency: re-journaling the same
// seq (e.g. a replay writing into its source) is silently ignored.
func (s *Store) Append(ctx context.Context, seq int64, actionType string, payload any) error {
	canonical, err := MarshalCanonical(payload)
	if err != nil {
		return fmt.Errorf("append action: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO actions (seq, type, payload, payload_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`,
		seq,
		actionType,
		string(canonical),
		PayloadHash(canonical),
	)
	if err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

// Record is one journaled action row.
type Record struct {
	Seq     int64
	Type    string
	Payload []byte
	Hash    string
}

// ReadAll returns every journaled action in replay order (seq ASC).
// Returns an empty slice, not nil, for an empty journal.
func (s *Store) ReadAll(ctx context.Context) ([]Record, error) {
	return s.readFrom(ctx, 0)
}

// ReadFrom returns journaled actions with seq > after, in replay order.
func (s *Store) ReadFrom(ctx context.Context, after int64) ([]Record, error) {
	return s.readFrom(ctx, after)
}

func (s *Store) readFrom(ctx context.Context, after int64) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, type, payload, payload_hash
		FROM actions
		WHERE seq > ?
		ORDER BY seq ASC
	`, after)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var payload string
		if err := rows.Scan(&r.Seq, &r.Type, &payload, &r.Hash); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		r.Payload = []byte(payload)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// LastSeq returns the highest seq in the journal, 0 when empty.
// Used to resume the logical clock when reopening a session's journal.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM actions
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

// Verify recomputes every payload hash and returns the seqs whose stored
// hash no longer matches. An empty result means the journal is intact.
func (s *Store) Verify(ctx context.Context) ([]int64, error) {
	records, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	var corrupt []int64
	for _, r := range records {
		if PayloadHash(r.Payload) != r.Hash {
			corrupt = append(corrupt, r.Seq)
		}
	}
	return corrupt, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
