package storebun

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-cvbuilder/cv"
)

// Tracker records PDF export history in a bun database.
type Tracker struct {
	DB          *bun.DB
	Now         func() time.Time
	IDGenerator func() string
}

var _ cv.ExportTracker = (*Tracker)(nil)

// NewTracker creates a bun-backed tracker.
func NewTracker(db *bun.DB) *Tracker {
	return &Tracker{DB: db, Now: time.Now, IDGenerator: uuid.NewString}
}

// Start inserts a running export record.
func (t *Tracker) Start(ctx context.Context, record cv.ExportRecord) (string, error) {
	if t == nil || t.DB == nil {
		return "", cv.NewError(cv.KindNotImpl, "tracker database not configured", nil)
	}
	if record.ID == "" {
		record.ID = t.nextID()
	}
	if record.State == "" {
		record.State = cv.ExportStateRunning
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = t.now()
	}

	model := exportModelFrom(record)
	if _, err := t.DB.NewInsert().Model(&model).Exec(ctx); err != nil {
		return "", cv.NewError(cv.KindPersistence, "record export start", err)
	}
	return record.ID, nil
}

// Complete marks an export as succeeded.
func (t *Tracker) Complete(ctx context.Context, id string, bytes int64, artifactKey string) error {
	return t.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("state = ?", string(cv.ExportStateSucceeded)).
			Set("bytes = ?", bytes).
			Set("artifact_key = ?", artifactKey).
			Set("completed_at = COALESCE(completed_at, ?)", t.now())
	})
}

// Fail marks an export as failed, keeping the error text.
func (t *Tracker) Fail(ctx context.Context, id string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return t.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("state = ?", string(cv.ExportStateFailed)).
			Set("error_message = ?", message).
			Set("completed_at = COALESCE(completed_at, ?)", t.now())
	})
}

// List returns a document's exports, newest first. An empty documentID
// lists all exports.
func (t *Tracker) List(ctx context.Context, documentID string) ([]cv.ExportRecord, error) {
	if t == nil || t.DB == nil {
		return nil, cv.NewError(cv.KindNotImpl, "tracker database not configured", nil)
	}
	models := make([]exportModel, 0)
	query := t.DB.NewSelect().Model(&models)
	if documentID != "" {
		query = query.Where("document_id = ?", documentID)
	}
	if err := query.Order("started_at DESC", "id DESC").Scan(ctx); err != nil {
		return nil, cv.NewError(cv.KindPersistence, "list exports", err)
	}
	records := make([]cv.ExportRecord, 0, len(models))
	for _, m := range models {
		records = append(records, m.toRecord())
	}
	return records, nil
}

func (t *Tracker) update(ctx context.Context, id string, apply func(*bun.UpdateQuery) *bun.UpdateQuery) error {
	if t == nil || t.DB == nil {
		return cv.NewError(cv.KindNotImpl, "tracker database not configured", nil)
	}
	if id == "" {
		return cv.NewError(cv.KindValidation, "export id is required", nil)
	}
	query := apply(t.DB.NewUpdate().Model((*exportModel)(nil)).Where("id = ?", id))
	res, err := query.Exec(ctx)
	if err != nil {
		return cv.NewError(cv.KindPersistence, fmt.Sprintf("update export %q", id), err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return cv.NewError(cv.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	return nil
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Tracker) nextID() string {
	if t.IDGenerator != nil {
		return t.IDGenerator()
	}
	return uuid.NewString()
}

type exportModel struct {
	bun.BaseModel `bun:"table:cv_exports,alias:e"`

	ID          string    `bun:",pk"`
	DocumentID  string    `bun:"document_id,notnull"`
	TemplateID  string    `bun:"template_id"`
	State       string    `bun:"state,notnull"`
	Bytes       int64     `bun:"bytes"`
	ArtifactKey string    `bun:"artifact_key"`
	Error       string    `bun:"error_message"`
	StartedAt   time.Time `bun:"started_at,notnull"`
	CompletedAt time.Time `bun:"completed_at,nullzero"`
}

func exportModelFrom(r cv.ExportRecord) exportModel {
	return exportModel{
		ID:          r.ID,
		DocumentID:  r.DocumentID,
		TemplateID:  r.TemplateID,
		State:       string(r.State),
		Bytes:       r.Bytes,
		ArtifactKey: r.ArtifactKey,
		Error:       r.Error,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}

func (m exportModel) toRecord() cv.ExportRecord {
	return cv.ExportRecord{
		ID:          m.ID,
		DocumentID:  m.DocumentID,
		TemplateID:  m.TemplateID,
		State:       cv.ExportState(m.State),
		Bytes:       m.Bytes,
		ArtifactKey: m.ArtifactKey,
		Error:       m.Error,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
	}
}
