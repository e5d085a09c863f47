package query

import (
	"bytes"
	"context"
	"strings"
	"testing"

	cvtemplate "github.com/goliatone/go-cvbuilder/adapters/template"
	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/layout"
)

func newStore() *cv.Store {
	doc := cv.NewDocument("doc-query")
	doc.Personal = cv.Personal{
		FullName: "Jane Byrne",
		Email:    "jane@example.ie",
		Phone:    "+353 87 123 4567",
		Address:  "12 Main Street, Dublin 2",
	}
	return cv.NewStore(doc, cv.NewMemoryPersistence(), nil)
}

func TestValidateDocumentHandler(t *testing.T) {
	store := newStore()
	handler := NewValidateDocumentHandler(store)

	report, err := handler.Query(context.Background(), ValidateDocument{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.Valid || report.DocumentID != "doc-query" {
		t.Fatalf("expected valid report, got %+v", report)
	}

	bad := cv.NewDocument("doc-bad")
	bad.Personal.Email = "nope"
	report, err = handler.Query(context.Background(), ValidateDocument{Document: &bad})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.Valid || len(report.Fields) == 0 {
		t.Fatalf("expected problems, got %+v", report)
	}
	found := false
	for _, f := range report.Fields {
		if f.Field == "personal.email" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected personal.email problem, got %+v", report.Fields)
	}
}

func TestPreviewDocumentHandler(t *testing.T) {
	store := newStore()
	handler := NewPreviewDocumentHandler(store, cvtemplate.NewRenderer())

	page, err := handler.Query(context.Background(), PreviewDocument{TemplateID: "london"})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !bytes.Contains(page, []byte("Jane Byrne")) {
		t.Fatalf("expected holder name in preview")
	}

	_, err = handler.Query(context.Background(), PreviewDocument{TemplateID: "paris"})
	if cv.KindFromError(err) != cv.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}

	if _, err := NewPreviewDocumentHandler(store, nil).Query(context.Background(), PreviewDocument{}); err == nil {
		t.Fatalf("expected missing renderer error")
	}
}

func TestExportHistoryHandler(t *testing.T) {
	if _, err := NewExportHistoryHandler(nil).Query(context.Background(), ExportHistory{DocumentID: "x"}); cv.KindFromError(err) != cv.KindNotImpl {
		t.Fatalf("expected not_implemented, got %v", err)
	}

	tracker := cv.NewMemoryTracker()
	_, _ = tracker.Start(context.Background(), cv.ExportRecord{DocumentID: "doc-query", TemplateID: "cork"})
	_, _ = tracker.Start(context.Background(), cv.ExportRecord{DocumentID: "other", TemplateID: "cork"})

	records, err := NewExportHistoryHandler(tracker).Query(context.Background(), ExportHistory{DocumentID: "doc-query"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if err := (ExportHistory{}).Validate(); err == nil {
		t.Fatalf("expected document id to be required")
	}
}

func TestListTemplatesAndStatus(t *testing.T) {
	infos, err := NewListTemplatesHandler(layout.NewRegistry()).Query(context.Background(), ListTemplates{})
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	if got := strings.Join(ids, ","); got != "cork,dublin,london,stockholm" {
		t.Fatalf("unexpected templates %s", got)
	}

	store := newStore()
	if _, err := store.UpdateSkills([]string{"Go"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	status, err := NewDocumentStatusHandler(store).Query(context.Background(), DocumentStatus{})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.HasUnsavedChanges {
		t.Fatalf("expected unsaved changes")
	}
	doc, err := NewDocumentSnapshotHandler(store).Query(context.Background(), DocumentSnapshot{})
	if err != nil || doc.ID != "doc-query" {
		t.Fatalf("snapshot: %v %q", err, doc.ID)
	}

	var nilHandler *DocumentStatusHandler
	if _, err := nilHandler.Query(context.Background(), DocumentStatus{}); err == nil {
		t.Fatalf("expected nil handler error")
	}
}
