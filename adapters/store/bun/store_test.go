package storebun

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-cvbuilder/cv"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(context.Background(), fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestDocumentStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(newTestDB(t))

	doc := cv.NewDocument("doc-1")
	doc.Personal.FullName = "Jane Byrne"
	doc.TemplateID = "stockholm"
	doc.SectionVisibility = map[cv.SectionType]bool{cv.SectionSummary: false}
	doc = doc.WithSection(cv.Section{
		Type:       cv.SectionExperience,
		Experience: []cv.ExperienceItem{{Role: "Engineer", Company: "Acme", Start: "2020-01", End: cv.Present}},
	})

	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc.Personal.FullName = "Jane B. Byrne"
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.Load(ctx, "doc-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Personal.FullName != "Jane B. Byrne" || got.TemplateID != "stockholm" {
		t.Fatalf("unexpected document %+v", got)
	}
	if got.Visible(cv.SectionSummary) {
		t.Fatalf("expected summary hidden after round trip")
	}
	exp, ok := got.Section(cv.SectionExperience)
	if !ok || len(exp.Experience) != 1 || exp.Experience[0].End != cv.Present {
		t.Fatalf("unexpected experience %+v", exp)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].FullName != "Jane B. Byrne" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestDocumentStoreNotFound(t *testing.T) {
	store := NewDocumentStore(newTestDB(t))
	if _, err := store.Load(context.Background(), "missing"); cv.KindFromError(err) != cv.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if err := store.Delete(context.Background(), "missing"); cv.KindFromError(err) != cv.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestDocumentStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(newTestDB(t))
	if err := store.Save(ctx, cv.NewDocument("doc-2")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "doc-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "doc-2"); cv.KindFromError(err) != cv.KindNotFound {
		t.Fatalf("expected not_found after delete, got %v", err)
	}
}

func TestDocumentStoreUnconfigured(t *testing.T) {
	var store *DocumentStore
	if err := store.Save(context.Background(), cv.NewDocument("x")); cv.KindFromError(err) != cv.KindNotImpl {
		t.Fatalf("expected not_implemented, got %v", err)
	}
}

func TestTrackerLifecycle(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(newTestDB(t))
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	tracker.Now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := tracker.Start(ctx, cv.ExportRecord{DocumentID: "doc-1", TemplateID: "dublin"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := tracker.Complete(ctx, first, 2048, "doc-1/"+first+".pdf"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	second, err := tracker.Start(ctx, cv.ExportRecord{DocumentID: "doc-1", TemplateID: "cork"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := tracker.Fail(ctx, second, errors.New("chromium crashed")); err != nil {
		t.Fatalf("fail: %v", err)
	}

	if _, err := tracker.Start(ctx, cv.ExportRecord{DocumentID: "doc-2"}); err != nil {
		t.Fatalf("start other: %v", err)
	}

	records, err := tracker.List(ctx, "doc-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != second || records[0].State != cv.ExportStateFailed || records[0].Error != "chromium crashed" {
		t.Fatalf("unexpected newest record %+v", records[0])
	}
	if records[1].State != cv.ExportStateSucceeded || records[1].Bytes != 2048 || records[1].CompletedAt.IsZero() {
		t.Fatalf("unexpected completed record %+v", records[1])
	}

	all, err := tracker.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
}

func TestTrackerUnknownID(t *testing.T) {
	tracker := NewTracker(newTestDB(t))
	if err := tracker.Complete(context.Background(), "nope", 1, ""); cv.KindFromError(err) != cv.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}
