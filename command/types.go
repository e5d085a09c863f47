package command

import (
	"encoding/json"
	"io"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-cvbuilder/cv"
)

// LoadDocument replaces the live document with a persisted one.
type LoadDocument struct {
	DocumentID string
	Result     *cv.Document
}

func (LoadDocument) Type() string { return "cv:document:load" }

func (msg LoadDocument) Validate() error {
	if msg.DocumentID == "" {
		return errors.New("document ID is required", errors.CategoryValidation).
			WithTextCode("DOCUMENT_ID_REQUIRED")
	}
	return nil
}

// SaveDocument persists the live document.
type SaveDocument struct{}

func (SaveDocument) Type() string { return "cv:document:save" }

func (SaveDocument) Validate() error { return nil }

// ResetDocument restores the default document. Confirmed must be set by
// the caller after asking the user.
type ResetDocument struct {
	Confirmed bool
	Result    *cv.Document
}

func (ResetDocument) Type() string { return "cv:document:reset" }

func (msg ResetDocument) Validate() error {
	if !msg.Confirmed {
		return errors.New("reset must be confirmed", errors.CategoryValidation).
			WithTextCode("RESET_NOT_CONFIRMED")
	}
	return nil
}

// SubmitSection writes a JSON section payload through the section form.
type SubmitSection struct {
	Section cv.SectionType
	Payload json.RawMessage
	// Index selects the list entry to replace; nil appends.
	Index  *int
	Result *cv.Document
}

func (SubmitSection) Type() string { return "cv:section:submit" }

func (msg SubmitSection) Validate() error {
	if msg.Section == "" {
		return errors.New("section is required", errors.CategoryValidation).
			WithTextCode("SECTION_REQUIRED")
	}
	if len(msg.Payload) == 0 {
		return errors.New("payload is required", errors.CategoryValidation).
			WithTextCode("PAYLOAD_REQUIRED")
	}
	return nil
}

// SetSectionVisibility shows or hides a section.
type SetSectionVisibility struct {
	Section cv.SectionType
	Visible bool
}

func (SetSectionVisibility) Type() string { return "cv:section:visibility" }

func (msg SetSectionVisibility) Validate() error {
	if msg.Section == "" {
		return errors.New("section is required", errors.CategoryValidation).
			WithTextCode("SECTION_REQUIRED")
	}
	return nil
}

// SelectTemplate records the template used for preview and export.
type SelectTemplate struct {
	TemplateID string
}

func (SelectTemplate) Type() string { return "cv:template:select" }

func (msg SelectTemplate) Validate() error {
	if msg.TemplateID == "" {
		return errors.New("template ID is required", errors.CategoryValidation).
			WithTextCode("TEMPLATE_ID_REQUIRED")
	}
	return nil
}

// DownloadPDF exports the live document to Output.
type DownloadPDF struct {
	TemplateID string
	Output     io.Writer
	Result     *cv.ExportResult
}

func (DownloadPDF) Type() string { return "cv:pdf:download" }

func (msg DownloadPDF) Validate() error {
	if msg.Output == nil {
		return errors.New("output writer is required", errors.CategoryValidation).
			WithTextCode("OUTPUT_REQUIRED")
	}
	return nil
}
