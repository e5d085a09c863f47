package storebun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-cvbuilder/cv"
)

// DocumentSummary is a listing row.
type DocumentSummary struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	TemplateID string    `json:"template_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DocumentStore implements cv.Persistence on a bun database. The
// document is stored as normalized JSON; a few columns are lifted out for
// listings.
type DocumentStore struct {
	DB  *bun.DB
	Now func() time.Time
}

var _ cv.Persistence = (*DocumentStore)(nil)

// NewDocumentStore creates a document store.
func NewDocumentStore(db *bun.DB) *DocumentStore {
	return &DocumentStore{DB: db, Now: time.Now}
}

// Save upserts doc.
func (s *DocumentStore) Save(ctx context.Context, doc cv.Document) error {
	if s == nil || s.DB == nil {
		return cv.NewError(cv.KindNotImpl, "document database not configured", nil)
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

	model := documentModel{
		ID:         doc.ID,
		FullName:   doc.Personal.FullName,
		TemplateID: doc.TemplateID,
		Payload:    string(payload),
		UpdatedAt:  updated,
	}
	_, err = s.DB.NewInsert().
		Model(&model).
		On("CONFLICT (id) DO UPDATE").
		Set("full_name = EXCLUDED.full_name").
		Set("template_id = EXCLUDED.template_id").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return cv.NewError(cv.KindPersistence, fmt.Sprintf("save document %q", doc.ID), err)
	}
	return nil
}

// Load reads a document by id.
func (s *DocumentStore) Load(ctx context.Context, id string) (cv.Document, error) {
	if s == nil || s.DB == nil {
		return cv.Document{}, cv.NewError(cv.KindNotImpl, "document database not configured", nil)
	}
	if id == "" {
		return cv.Document{}, cv.NewError(cv.KindValidation, "document id is required", nil)
	}

	model := new(documentModel)
	if err := s.DB.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cv.Document{}, cv.NewError(cv.KindNotFound, fmt.Sprintf("document %q not found", id), nil)
		}
		return cv.Document{}, cv.NewError(cv.KindPersistence, fmt.Sprintf("load document %q", id), err)
	}
	doc, err := cv.UnmarshalDocument([]byte(model.Payload))
	if err != nil {
		return cv.Document{}, cv.NewError(cv.KindPersistence, fmt.Sprintf("decode document %q", id), err)
	}
	return doc, nil
}

// List returns document summaries, most recently updated first.
func (s *DocumentStore) List(ctx context.Context) ([]DocumentSummary, error) {
	if s == nil || s.DB == nil {
		return nil, cv.NewError(cv.KindNotImpl, "document database not configured", nil)
	}
	models := make([]documentModel, 0)
	err := s.DB.NewSelect().
		Model(&models).
		Column("id", "full_name", "template_id", "updated_at").
		Order("updated_at DESC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, cv.NewError(cv.KindPersistence, "list documents", err)
	}
	out := make([]DocumentSummary, 0, len(models))
	for _, m := range models {
		out = append(out, DocumentSummary{ID: m.ID, FullName: m.FullName, TemplateID: m.TemplateID, UpdatedAt: m.UpdatedAt})
	}
	return out, nil
}

// Delete removes a document.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.DB == nil {
		return cv.NewError(cv.KindNotImpl, "document database not configured", nil)
	}
	res, err := s.DB.NewDelete().Model((*documentModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return cv.NewError(cv.KindPersistence, fmt.Sprintf("delete document %q", id), err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return cv.NewError(cv.KindNotFound, fmt.Sprintf("document %q not found", id), nil)
	}
	return nil
}

func (s *DocumentStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type documentModel struct {
	bun.BaseModel `bun:"table:cv_documents,alias:d"`

	ID         string    `bun:",pk"`
	FullName   string    `bun:"full_name"`
	TemplateID string    `bun:"template_id"`
	Payload    string    `bun:"payload,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}
