package query

import (
	"bytes"
	"context"
	"io"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/layout"
)

func storeRequired() error {
	return errors.New("document store is required", errors.CategoryInternal).
		WithTextCode("STORE_REQUIRED")
}

// DocumentSnapshotHandler returns the live document.
type DocumentSnapshotHandler struct {
	Store *cv.Store
}

func NewDocumentSnapshotHandler(store *cv.Store) *DocumentSnapshotHandler {
	return &DocumentSnapshotHandler{Store: store}
}

func (h *DocumentSnapshotHandler) Query(ctx context.Context, msg DocumentSnapshot) (cv.Document, error) {
	_ = ctx
	_ = msg
	if h == nil || h.Store == nil {
		return cv.Document{}, storeRequired()
	}
	return h.Store.Snapshot(), nil
}

// DocumentStatusHandler returns the store status.
type DocumentStatusHandler struct {
	Store *cv.Store
}

func NewDocumentStatusHandler(store *cv.Store) *DocumentStatusHandler {
	return &DocumentStatusHandler{Store: store}
}

func (h *DocumentStatusHandler) Query(ctx context.Context, msg DocumentStatus) (cv.Status, error) {
	_ = ctx
	_ = msg
	if h == nil || h.Store == nil {
		return cv.Status{}, storeRequired()
	}
	return h.Store.Status(), nil
}

// FieldProblem is one failed field check.
type FieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationReport lists document problems. Valid is true when Fields is
// empty.
type ValidationReport struct {
	DocumentID string         `json:"document_id"`
	Valid      bool           `json:"valid"`
	Fields     []FieldProblem `json:"fields,omitempty"`
}

// ValidateDocumentHandler validates a whole document.
type ValidateDocumentHandler struct {
	Store *cv.Store
}

func NewValidateDocumentHandler(store *cv.Store) *ValidateDocumentHandler {
	return &ValidateDocumentHandler{Store: store}
}

func (h *ValidateDocumentHandler) Query(ctx context.Context, msg ValidateDocument) (ValidationReport, error) {
	_ = ctx
	var doc cv.Document
	switch {
	case msg.Document != nil:
		doc = msg.Document.Normalize()
	case h != nil && h.Store != nil:
		doc = h.Store.Snapshot()
	default:
		return ValidationReport{}, storeRequired()
	}

	report := ValidationReport{DocumentID: doc.ID, Valid: true}
	err := cv.ValidateDocument(doc)
	if err == nil {
		return report, nil
	}
	if !cv.IsValidation(err) {
		return ValidationReport{}, err
	}
	report.Valid = false
	for _, f := range cv.FieldErrors(err) {
		report.Fields = append(report.Fields, FieldProblem{Field: f.Field, Message: f.Message})
	}
	return report, nil
}

// PageRenderer writes an HTML page for a document.
type PageRenderer interface {
	Render(ctx context.Context, doc cv.Document, templateID string, w io.Writer) (int64, error)
}

// PreviewDocumentHandler renders the live document to HTML.
type PreviewDocumentHandler struct {
	Store    *cv.Store
	Renderer PageRenderer
}

func NewPreviewDocumentHandler(store *cv.Store, renderer PageRenderer) *PreviewDocumentHandler {
	return &PreviewDocumentHandler{Store: store, Renderer: renderer}
}

func (h *PreviewDocumentHandler) Query(ctx context.Context, msg PreviewDocument) ([]byte, error) {
	if h == nil || h.Store == nil {
		return nil, storeRequired()
	}
	if h.Renderer == nil {
		return nil, errors.New("page renderer is required", errors.CategoryInternal).
			WithTextCode("RENDERER_REQUIRED")
	}
	var buf bytes.Buffer
	if _, err := h.Renderer.Render(ctx, h.Store.Snapshot(), msg.TemplateID, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportHistoryHandler lists recorded exports.
type ExportHistoryHandler struct {
	Tracker cv.ExportTracker
}

func NewExportHistoryHandler(tracker cv.ExportTracker) *ExportHistoryHandler {
	return &ExportHistoryHandler{Tracker: tracker}
}

func (h *ExportHistoryHandler) Query(ctx context.Context, msg ExportHistory) ([]cv.ExportRecord, error) {
	if h == nil || h.Tracker == nil {
		return nil, cv.NewError(cv.KindNotImpl, "export history is not configured", nil)
	}
	return h.Tracker.List(ctx, msg.DocumentID)
}

// ListTemplatesHandler lists registered templates.
type ListTemplatesHandler struct {
	Layouts *layout.Registry
}

func NewListTemplatesHandler(layouts *layout.Registry) *ListTemplatesHandler {
	return &ListTemplatesHandler{Layouts: layouts}
}

func (h *ListTemplatesHandler) Query(ctx context.Context, msg ListTemplates) ([]layout.Info, error) {
	_ = ctx
	_ = msg
	if h == nil || h.Layouts == nil {
		return layout.NewRegistry().List(), nil
	}
	return h.Layouts.List(), nil
}
