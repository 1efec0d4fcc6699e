// Package sqlite is the SQLite-backed exchange recorder.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tjfontaine/wirebridge/internal/storage"
)

// Store records exchanges in a SQLite database.
type Store struct {
	db *sql.DB
}

var _ storage.Recorder = (*Store)(nil)

// New opens or creates the database at dbPath and ensures the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS exchanges (
			id TEXT PRIMARY KEY,
			direction TEXT NOT NULL,
			model TEXT NOT NULL,
			streaming INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			duration_ns INTEGER,
			request_client TEXT,
			request_upstream TEXT,
			response_upstream TEXT,
			response_client TEXT,
			finish_reason TEXT,
			usage TEXT,
			error_message TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_direction ON exchanges(direction)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_model ON exchanges(model)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// SaveExchange inserts an exchange record.
func (s *Store) SaveExchange(ctx context.Context, ex *storage.Exchange) error {
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}

	query := `INSERT INTO exchanges (
		id, direction, model, streaming, status, duration_ns,
		request_client, request_upstream, response_upstream, response_client,
		finish_reason, usage, error_message, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	streaming := 0
	if ex.Streaming {
		streaming = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		ex.ID, string(ex.Direction), ex.Model, streaming, string(ex.Status), int64(ex.Duration),
		nullString(ex.ClientRequest), nullString(ex.UpstreamRequest),
		nullString(ex.UpstreamResponse), nullString(ex.ClientResponse),
		nullStr(ex.FinishReason), nullString(ex.Usage), nullStr(ex.ErrorMessage),
		ex.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save exchange: %w", err)
	}

	return nil
}

// GetExchange retrieves an exchange by ID.
func (s *Store) GetExchange(ctx context.Context, id string) (*storage.Exchange, error) {
	query := `SELECT
		id, direction, model, streaming, status, duration_ns,
		request_client, request_upstream, response_upstream, response_client,
		finish_reason, usage, error_message, created_at
	FROM exchanges WHERE id = ?`

	var ex storage.Exchange
	var direction, status string
	var streaming int
	var durationNs int64
	var reqClient, reqUpstream, respUpstream, respClient sql.NullString
	var finishReason, usage, errorMessage sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&ex.ID, &direction, &ex.Model, &streaming, &status, &durationNs,
		&reqClient, &reqUpstream, &respUpstream, &respClient,
		&finishReason, &usage, &errorMessage, &ex.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("exchange %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}

	ex.Direction = storage.Direction(direction)
	ex.Status = storage.ExchangeStatus(status)
	ex.Streaming = streaming == 1
	ex.Duration = time.Duration(durationNs)

	if reqClient.Valid {
		ex.ClientRequest = []byte(reqClient.String)
	}
	if reqUpstream.Valid {
		ex.UpstreamRequest = []byte(reqUpstream.String)
	}
	if respUpstream.Valid {
		ex.UpstreamResponse = []byte(respUpstream.String)
	}
	if respClient.Valid {
		ex.ClientResponse = []byte(respClient.String)
	}
	if finishReason.Valid {
		ex.FinishReason = finishReason.String
	}
	if usage.Valid {
		ex.Usage = []byte(usage.String)
	}
	if errorMessage.Valid {
		ex.ErrorMessage = errorMessage.String
	}

	return &ex, nil
}

// ListExchanges returns exchange summaries newest first.
func (s *Store) ListExchanges(ctx context.Context, opts storage.ListOptions) ([]storage.ExchangeSummary, error) {
	query := `SELECT id, direction, model, streaming, status, duration_ns, finish_reason, created_at
	FROM exchanges`

	var args []any
	where := ""
	if opts.Direction != "" {
		where = " WHERE direction = ?"
		args = append(args, string(opts.Direction))
	}
	if opts.Model != "" {
		if where == "" {
			where = " WHERE model = ?"
		} else {
			where += " AND model = ?"
		}
		args = append(args, opts.Model)
	}
	query += where + " ORDER BY created_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer rows.Close()

	var out []storage.ExchangeSummary
	for rows.Next() {
		var sum storage.ExchangeSummary
		var direction, status string
		var streaming int
		var durationNs int64
		var finishReason sql.NullString

		if err := rows.Scan(&sum.ID, &direction, &sum.Model, &streaming, &status,
			&durationNs, &finishReason, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}

		sum.Direction = storage.Direction(direction)
		sum.Status = storage.ExchangeStatus(status)
		sum.Streaming = streaming == 1
		sum.Duration = time.Duration(durationNs)
		if finishReason.Valid {
			sum.FinishReason = finishReason.String
		}
		out = append(out, sum)
	}

	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
