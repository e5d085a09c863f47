package query

import (
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-cvbuilder/cv"
)

// DocumentSnapshot requests a copy of the live document.
type DocumentSnapshot struct{}

func (DocumentSnapshot) Type() string { return "cv:document:snapshot" }

func (DocumentSnapshot) Validate() error { return nil }

// DocumentStatus requests saving and export state.
type DocumentStatus struct{}

func (DocumentStatus) Type() string { return "cv:document:status" }

func (DocumentStatus) Validate() error { return nil }

// ValidateDocument checks the live document, or Document when set.
type ValidateDocument struct {
	Document *cv.Document
}

func (ValidateDocument) Type() string { return "cv:document:validate" }

func (ValidateDocument) Validate() error { return nil }

// PreviewDocument renders the live document as an HTML page.
type PreviewDocument struct {
	TemplateID string
}

func (PreviewDocument) Type() string { return "cv:document:preview" }

func (PreviewDocument) Validate() error { return nil }

// ExportHistory requests recorded exports for a document.
type ExportHistory struct {
	DocumentID string
}

func (ExportHistory) Type() string { return "cv:export:history" }

func (msg ExportHistory) Validate() error {
	if msg.DocumentID == "" {
		return errors.New("document ID is required", errors.CategoryValidation).
			WithTextCode("DOCUMENT_ID_REQUIRED")
	}
	return nil
}

// ListTemplates requests the available templates.
type ListTemplates struct{}

func (ListTemplates) Type() string { return "cv:template:list" }

func (ListTemplates) Validate() error { return nil }
