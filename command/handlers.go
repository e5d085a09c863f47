package command

import (
	"context"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/forms"
	"github.com/goliatone/go-cvbuilder/layout"
)

func storeRequired() error {
	return errors.New("document store is required", errors.CategoryInternal).
		WithTextCode("STORE_REQUIRED")
}

func storeResult[T any](ctx context.Context, dst *T, value T) {
	if dst != nil {
		*dst = value
	}
	if res := gcmd.ResultFromContext[T](ctx); res != nil {
		res.Store(value)
	}
}

// LoadDocumentHandler loads a persisted document into the store.
type LoadDocumentHandler struct {
	Store *cv.Store
	// Forms, when set, is reloaded after the document changes.
	Forms *forms.Set
}

func NewLoadDocumentHandler(store *cv.Store, set *forms.Set) *LoadDocumentHandler {
	return &LoadDocumentHandler{Store: store, Forms: set}
}

func (h *LoadDocumentHandler) Execute(ctx context.Context, msg LoadDocument) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	doc, err := h.Store.Load(ctx, msg.DocumentID)
	if err != nil {
		return err
	}
	if h.Forms != nil {
		h.Forms.Reload()
	}
	storeResult(ctx, msg.Result, doc)
	return nil
}

// SaveDocumentHandler persists the live document.
type SaveDocumentHandler struct {
	Store *cv.Store
}

func NewSaveDocumentHandler(store *cv.Store) *SaveDocumentHandler {
	return &SaveDocumentHandler{Store: store}
}

func (h *SaveDocumentHandler) Execute(ctx context.Context, msg SaveDocument) error {
	_ = msg
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	return h.Store.Save(ctx)
}

// ResetDocumentHandler restores defaults.
type ResetDocumentHandler struct {
	Store *cv.Store
	Forms *forms.Set
}

func NewResetDocumentHandler(store *cv.Store, set *forms.Set) *ResetDocumentHandler {
	return &ResetDocumentHandler{Store: store, Forms: set}
}

func (h *ResetDocumentHandler) Execute(ctx context.Context, msg ResetDocument) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	doc := h.Store.Reset()
	if h.Forms != nil {
		h.Forms.Reload()
	}
	storeResult(ctx, msg.Result, doc)
	return nil
}

// SubmitSectionHandler routes JSON payloads to the section forms.
type SubmitSectionHandler struct {
	Forms *forms.Set
}

func NewSubmitSectionHandler(set *forms.Set) *SubmitSectionHandler {
	return &SubmitSectionHandler{Forms: set}
}

func (h *SubmitSectionHandler) Execute(ctx context.Context, msg SubmitSection) error {
	if h == nil || h.Forms == nil {
		return errors.New("section forms are required", errors.CategoryInternal).
			WithTextCode("FORMS_REQUIRED")
	}
	doc, err := h.Forms.Submit(msg.Section, msg.Index, msg.Payload)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, doc)
	return nil
}

// SetSectionVisibilityHandler toggles section visibility.
type SetSectionVisibilityHandler struct {
	Store *cv.Store
}

func NewSetSectionVisibilityHandler(store *cv.Store) *SetSectionVisibilityHandler {
	return &SetSectionVisibilityHandler{Store: store}
}

func (h *SetSectionVisibilityHandler) Execute(ctx context.Context, msg SetSectionVisibility) error {
	_ = ctx
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	_, err := h.Store.SetSectionVisibility(msg.Section, msg.Visible)
	return err
}

// SelectTemplateHandler stores the chosen template. Unknown ids are
// rejected when Layouts is set.
type SelectTemplateHandler struct {
	Store   *cv.Store
	Layouts *layout.Registry
}

func NewSelectTemplateHandler(store *cv.Store, layouts *layout.Registry) *SelectTemplateHandler {
	return &SelectTemplateHandler{Store: store, Layouts: layouts}
}

func (h *SelectTemplateHandler) Execute(ctx context.Context, msg SelectTemplate) error {
	_ = ctx
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	if h.Layouts != nil {
		if _, err := h.Layouts.Resolve(msg.TemplateID); err != nil {
			return err
		}
	}
	_, err := h.Store.SetTemplate(msg.TemplateID)
	return err
}

// DownloadPDFHandler exports the live document.
type DownloadPDFHandler struct {
	Store *cv.Store
}

func NewDownloadPDFHandler(store *cv.Store) *DownloadPDFHandler {
	return &DownloadPDFHandler{Store: store}
}

func (h *DownloadPDFHandler) Execute(ctx context.Context, msg DownloadPDF) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	result, err := h.Store.DownloadPDF(ctx, msg.TemplateID, msg.Output)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, result)
	return nil
}
