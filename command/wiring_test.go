package command

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/goliatone/go-command/dispatcher"

	cvtemplate "github.com/goliatone/go-cvbuilder/adapters/template"
	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/query"
)

func TestRegisterHandlers_DispatchRoundTrip(t *testing.T) {
	store, persistence := newTestStore(t)
	subs, err := RegisterHandlers(nil, Dependencies{
		Store:   store,
		Preview: cvtemplate.NewRenderer(),
		Tracker: cv.NewMemoryTracker(),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	ctx := context.Background()
	doc, err := dispatcher.DispatchWithResult[SubmitSection, cv.Document](ctx, SubmitSection{
		Section: cv.SectionSkills,
		Payload: json.RawMessage(`{"skill":"Kubernetes"}`),
	})
	if err != nil {
		t.Fatalf("dispatch submit: %v", err)
	}
	skills, _ := doc.Section(cv.SectionSkills)
	if len(skills.Skills) != 1 {
		t.Fatalf("expected one skill, got %v", skills.Skills)
	}

	status, err := dispatcher.Query[query.DocumentStatus, cv.Status](ctx, query.DocumentStatus{})
	if err != nil {
		t.Fatalf("query status: %v", err)
	}
	if !status.HasUnsavedChanges {
		t.Fatalf("expected unsaved changes")
	}

	if err := dispatcher.Dispatch(ctx, SaveDocument{}); err != nil {
		t.Fatalf("dispatch save: %v", err)
	}
	if persistence.Saves() != 1 {
		t.Fatalf("expected one save, got %d", persistence.Saves())
	}

	page, err := dispatcher.Query[query.PreviewDocument, []byte](ctx, query.PreviewDocument{TemplateID: "stockholm"})
	if err != nil {
		t.Fatalf("query preview: %v", err)
	}
	if !bytes.Contains(page, []byte("Kubernetes")) {
		t.Fatalf("expected preview to include the skill")
	}
}

func TestRegisterHandlers_RequiresStore(t *testing.T) {
	if _, err := RegisterHandlers(nil, Dependencies{}); err == nil {
		t.Fatalf("expected missing store error")
	}
}
