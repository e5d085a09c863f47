// Package storepgx persists CV documents in Postgres through a pgx pool.
// Documents are stored as JSONB next to a few listing columns.
package storepgx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/goliatone/go-cvbuilder/cv"
)

// DB is the subset of *pgxpool.Pool used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// Store implements cv.Persistence on Postgres.
type Store struct {
	DB     DB
	Now    func() time.Time
	Logger cv.Logger
}

var _ cv.Persistence = (*Store)(nil)

// Connect opens a pool for dsn.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, cv.NewError(cv.KindValidation, "postgres dsn is required", nil)
	}
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, cv.NewError(cv.KindPersistence, "connect postgres", err)
	}
	return pool, nil
}

// NewStore creates a store over db.
func NewStore(db DB) *Store {
	return &Store{DB: db, Now: time.Now, Logger: cv.NopLogger{}}
}

const upsertDocument = `INSERT INTO cv_documents (id, full_name, template_id, payload, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, template_id = EXCLUDED.template_id,
		payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

const selectDocument = `SELECT payload FROM cv_documents WHERE id = $1`

// Save upserts doc.
func (s *Store) Save(ctx context.Context, doc cv.Document) error {
	if s == nil || s.DB == nil {
		return cv.NewError(cv.KindNotImpl, "postgres pool not configured", nil)
	}
	if doc.ID == "" {
		return cv.NewError(cv.KindValidation, "document id is required", nil)
	}
	payload, err := cv.MarshalDocument(doc)
	if err != nil {
		return cv.NewError(cv.KindPersistence, "encode document", err)
	}
	updated := doc.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}
	if _, err := s.DB.Exec(ctx, upsertDocument, doc.ID, doc.Personal.FullName, doc.TemplateID, payload, updated); err != nil {
		return cv.NewError(cv.KindPersistence, fmt.Sprintf("save document %q", doc.ID), err)
	}
	s.logger().Debugf("postgres saved document=%s bytes=%d", doc.ID, len(payload))
	return nil
}

// Load reads a document by id.
func (s *Store) Load(ctx context.Context, id string) (cv.Document, error) {
	if s == nil || s.DB == nil {
		return cv.Document{}, cv.NewError(cv.KindNotImpl, "postgres pool not configured", nil)
	}
	if id == "" {
		return cv.Document{}, cv.NewError(cv.KindValidation, "document id is required", nil)
	}
	var payload []byte
	if err := s.DB.QueryRow(ctx, selectDocument, id).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cv.Document{}, cv.NewError(cv.KindNotFound, fmt.Sprintf("document %q not found", id), nil)
		}
		return cv.Document{}, cv.NewError(cv.KindPersistence, fmt.Sprintf("load document %q", id), err)
	}
	doc, err := cv.UnmarshalDocument(payload)
	if err != nil {
		return cv.Document{}, cv.NewError(cv.KindPersistence, fmt.Sprintf("decode document %q", id), err)
	}
	return doc, nil
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) logger() cv.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return cv.NopLogger{}
}
