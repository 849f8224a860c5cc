package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/registry-client/internal/submission"
)

const schema = `
	CREATE TABLE IF NOT EXISTS submissions (
		id          TEXT PRIMARY KEY,
		doc_id      TEXT        NOT NULL,
		status      TEXT        NOT NULL,
		registry_id TEXT,
		error       TEXT,
		client_ip   TEXT        NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)
`

// PostgresStore is a PostgreSQL implementation of submission.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed submission store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the submissions table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)

	return err
}

func (p *PostgresStore) Save(ctx context.Context, s *submission.Submission) error {
	query := `
		INSERT INTO submissions (id, doc_id, status, registry_id, error, client_ip, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		string(s.ID),
		s.DocID,
		string(s.Status),
		nullableString(s.RegistryID),
		nullableString(s.Error),
		s.ClientIP,
		s.CreatedAt,
		s.UpdatedAt,
	)

	return err
}

func (p *PostgresStore) GetByID(ctx context.Context, id submission.ID) (*submission.Submission, error) {
	query := `
		SELECT id, doc_id, status, registry_id, error, client_ip, created_at, updated_at
		FROM submissions
		WHERE id = $1
	`

	var (
		s          submission.Submission
		registryID *string
		errMsg     *string
	)

	err := p.pool.QueryRow(ctx, query, string(id)).Scan(
		&s.ID,
		&s.DocID,
		&s.Status,
		&registryID,
		&errMsg,
		&s.ClientIP,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, submission.ErrNotFound
		}

		return nil, err
	}

	if registryID != nil {
		s.RegistryID = *registryID
	}

	if errMsg != nil {
		s.Error = *errMsg
	}

	return &s, nil
}

func (p *PostgresStore) UpdateStatus(ctx context.Context, id submission.ID, outcome submission.Outcome) error {
	query := `
		UPDATE submissions
		SET status = $2, registry_id = $3, error = $4, updated_at = now()
		WHERE id = $1
	`

	tag, err := p.pool.Exec(ctx, query,
		string(id),
		string(outcome.Status),
		nullableString(outcome.RegistryID),
		nullableString(outcome.Error),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return submission.ErrNotFound
	}

	return nil
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

var _ submission.Repository = (*PostgresStore)(nil)
