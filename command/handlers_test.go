package command

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	gcmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/forms"
	"github.com/goliatone/go-cvbuilder/layout"
)

type stubPDF struct {
	calls int
}

func (s *stubPDF) Render(ctx context.Context, req cv.PDFRequest, w io.Writer, progress cv.ProgressFunc) error {
	_ = ctx
	s.calls++
	if progress != nil {
		progress(100, cv.StageRendering)
	}
	_, err := io.WriteString(w, "%PDF-1.7 "+req.Document.ID+" "+req.TemplateID)
	return err
}

func newTestStore(t *testing.T) (*cv.Store, *cv.MemoryPersistence) {
	t.Helper()
	persistence := cv.NewMemoryPersistence()
	exporter := cv.NewExporter(&stubPDF{})
	exporter.DefaultTemplate = layout.DefaultTemplate
	return cv.NewStore(cv.NewDocument("doc-cmd"), persistence, exporter), persistence
}

func TestSubmitSectionHandler_AppendsAndEdits(t *testing.T) {
	store, _ := newTestStore(t)
	handler := NewSubmitSectionHandler(forms.NewSet(store))

	var doc cv.Document
	err := handler.Execute(context.Background(), SubmitSection{
		Section: cv.SectionLanguages,
		Payload: json.RawMessage(`{"language":"Irish","proficiency":"C1"}`),
		Result:  &doc,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	langs, _ := doc.Section(cv.SectionLanguages)
	if len(langs.Languages) != 1 {
		t.Fatalf("expected one language, got %d", len(langs.Languages))
	}

	index := 0
	result := gcmd.NewResult[cv.Document]()
	ctx := gcmd.ContextWithResult(context.Background(), result)
	err = handler.Execute(ctx, SubmitSection{
		Section: cv.SectionLanguages,
		Payload: json.RawMessage(`{"language":"Irish","proficiency":"native"}`),
		Index:   &index,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	stored, ok := result.Load()
	if !ok {
		t.Fatalf("expected context result")
	}
	langs, _ = stored.Section(cv.SectionLanguages)
	if len(langs.Languages) != 1 || langs.Languages[0].Proficiency != cv.ProficiencyNative {
		t.Fatalf("unexpected languages: %+v", langs.Languages)
	}
}

func TestSubmitSectionHandler_ConcurrentEditsAndAppends(t *testing.T) {
	store, _ := newTestStore(t)
	handler := NewSubmitSectionHandler(forms.NewSet(store))
	if _, err := store.AddEducation(cv.EducationItem{Institution: "TCD", Degree: "BSc", Start: "2012-09"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	const rounds = 50
	var wg sync.WaitGroup
	errs := make(chan error, rounds*2)
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			index := 0
			errs <- handler.Execute(context.Background(), SubmitSection{
				Section: cv.SectionEducation,
				Payload: json.RawMessage(`{"institution":"TCD","degree":"MSc","start":"2012-09"}`),
				Index:   &index,
			})
		}()
		go func() {
			defer wg.Done()
			errs <- handler.Execute(context.Background(), SubmitSection{
				Section: cv.SectionEducation,
				Payload: json.RawMessage(`{"institution":"UCD","degree":"BA","start":"2010-09"}`),
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	edu, _ := store.Snapshot().Section(cv.SectionEducation)
	if len(edu.Education) != rounds+1 {
		t.Fatalf("expected %d entries, got %d", rounds+1, len(edu.Education))
	}
	if edu.Education[0].Institution != "TCD" || edu.Education[0].Degree != "MSc" {
		t.Fatalf("unexpected first entry: %+v", edu.Education[0])
	}
	for i, item := range edu.Education[1:] {
		if item.Institution != "UCD" {
			t.Fatalf("entry %d was overwritten: %+v", i+1, item)
		}
	}
}

func TestSubmitSectionHandler_Rejections(t *testing.T) {
	store, _ := newTestStore(t)
	handler := NewSubmitSectionHandler(forms.NewSet(store))

	cases := []struct {
		name string
		msg  SubmitSection
		kind cv.ErrorKind
	}{
		{"unknown section", SubmitSection{Section: "hobbies", Payload: json.RawMessage(`{}`)}, cv.KindValidation},
		{"index on single section", SubmitSection{Section: cv.SectionSummary, Payload: json.RawMessage(`{}`), Index: new(int)}, cv.KindValidation},
		{"missing entry", SubmitSection{Section: cv.SectionAwards, Payload: json.RawMessage(`{}`), Index: new(int)}, cv.KindNotFound},
		{"invalid payload", SubmitSection{Section: cv.SectionAwards, Payload: json.RawMessage(`{"title":"Best"}`)}, cv.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := handler.Execute(context.Background(), tc.msg)
			if got := cv.KindFromError(err); got != tc.kind {
				t.Fatalf("expected %s, got %s (%v)", tc.kind, got, err)
			}
		})
	}
	if store.Status().HasUnsavedChanges {
		t.Fatalf("rejected submissions must not change the document")
	}
}

func TestSaveAndLoadHandlers(t *testing.T) {
	store, persistence := newTestStore(t)
	set := forms.NewSet(store)
	if _, err := store.UpdateSkills([]string{"Go", "SQL"}); err != nil {
		t.Fatalf("update skills: %v", err)
	}

	if err := NewSaveDocumentHandler(store).Execute(context.Background(), SaveDocument{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if persistence.Saves() != 1 {
		t.Fatalf("expected one save, got %d", persistence.Saves())
	}

	reset := NewResetDocumentHandler(store, set)
	if err := reset.Execute(context.Background(), ResetDocument{}); err == nil {
		t.Fatalf("expected unconfirmed reset to fail")
	}
	if err := reset.Execute(context.Background(), ResetDocument{Confirmed: true}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if set.Skills.Len() != 0 {
		t.Fatalf("expected reset to clear skills")
	}

	var loaded cv.Document
	load := NewLoadDocumentHandler(store, set)
	if err := load.Execute(context.Background(), LoadDocument{DocumentID: "doc-cmd", Result: &loaded}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if set.Skills.Len() != 2 {
		t.Fatalf("expected loaded skills, got %d", set.Skills.Len())
	}
	if store.Status().HasUnsavedChanges {
		t.Fatalf("loaded document should be clean")
	}
}

func TestSelectTemplateHandler_RejectsUnknown(t *testing.T) {
	store, _ := newTestStore(t)
	handler := NewSelectTemplateHandler(store, layout.NewRegistry())

	err := handler.Execute(context.Background(), SelectTemplate{TemplateID: "paris"})
	if cv.KindFromError(err) != cv.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if err := handler.Execute(context.Background(), SelectTemplate{TemplateID: "london"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := store.Snapshot().TemplateID; got != "london" {
		t.Fatalf("expected london, got %q", got)
	}
}

func TestSetSectionVisibilityHandler(t *testing.T) {
	store, _ := newTestStore(t)
	handler := NewSetSectionVisibilityHandler(store)

	if err := handler.Execute(context.Background(), SetSectionVisibility{Section: cv.SectionAwards}); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if store.Snapshot().Visible(cv.SectionAwards) {
		t.Fatalf("expected awards hidden")
	}
	err := handler.Execute(context.Background(), SetSectionVisibility{Section: cv.SectionPersonal})
	if !cv.IsValidation(err) {
		t.Fatalf("expected personal to be unhideable, got %v", err)
	}
}

func TestDownloadPDFHandler_StoresResult(t *testing.T) {
	store, _ := newTestStore(t)
	handler := NewDownloadPDFHandler(store)

	if err := handler.Execute(context.Background(), DownloadPDF{}); err == nil {
		t.Fatalf("expected missing output to fail")
	}

	var buf bytes.Buffer
	var result cv.ExportResult
	if err := handler.Execute(context.Background(), DownloadPDF{TemplateID: "cork", Output: &buf, Result: &result}); err != nil {
		t.Fatalf("download: %v", err)
	}
	if result.TemplateID != "cork" || result.Bytes != int64(buf.Len()) {
		t.Fatalf("unexpected result: %+v", result)
	}
	if store.Status().HasUnsavedChanges {
		t.Fatalf("export must not dirty the document")
	}
}

func TestHandlers_RequireStore(t *testing.T) {
	var save *SaveDocumentHandler
	if err := save.Execute(context.Background(), SaveDocument{}); err == nil {
		t.Fatalf("expected nil handler error")
	}
	if err := (&DownloadPDFHandler{}).Execute(context.Background(), DownloadPDF{Output: io.Discard}); err == nil {
		t.Fatalf("expected missing store error")
	}
}
