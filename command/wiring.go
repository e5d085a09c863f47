package command

import (
	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/forms"
	"github.com/goliatone/go-cvbuilder/layout"
	"github.com/goliatone/go-cvbuilder/query"
)

// Dependencies are the collaborators shared by the builder handlers.
// Forms defaults to a set over Store.
type Dependencies struct {
	Store   *cv.Store
	Forms   *forms.Set
	Layouts *layout.Registry
	Preview query.PageRenderer
	Tracker cv.ExportTracker
	Batch   *BatchRender
}

// RegisterHandlers subscribes the builder commands and queries to the
// go-command dispatcher and, when reg is set, adds them to the registry.
func RegisterHandlers(reg *gcmd.Registry, deps Dependencies) ([]dispatcher.Subscription, error) {
	if deps.Store == nil {
		return nil, errors.New("document store is required", errors.CategoryValidation).
			WithTextCode("STORE_REQUIRED")
	}
	set := deps.Forms
	if set == nil {
		set = forms.NewSet(deps.Store)
	}

	load := NewLoadDocumentHandler(deps.Store, set)
	save := NewSaveDocumentHandler(deps.Store)
	reset := NewResetDocumentHandler(deps.Store, set)
	submit := NewSubmitSectionHandler(set)
	visibility := NewSetSectionVisibilityHandler(deps.Store)
	tmpl := NewSelectTemplateHandler(deps.Store, deps.Layouts)
	pdf := NewDownloadPDFHandler(deps.Store)

	snapshot := query.NewDocumentSnapshotHandler(deps.Store)
	status := query.NewDocumentStatusHandler(deps.Store)
	validate := query.NewValidateDocumentHandler(deps.Store)
	preview := query.NewPreviewDocumentHandler(deps.Store, deps.Preview)
	history := query.NewExportHistoryHandler(deps.Tracker)
	templates := query.NewListTemplatesHandler(deps.Layouts)

	subscriptions := []dispatcher.Subscription{
		dispatcher.SubscribeCommand(load),
		dispatcher.SubscribeCommand(save),
		dispatcher.SubscribeCommand(reset),
		dispatcher.SubscribeCommand(submit),
		dispatcher.SubscribeCommand(visibility),
		dispatcher.SubscribeCommand(tmpl),
		dispatcher.SubscribeCommand(pdf),
		dispatcher.SubscribeQuery(snapshot),
		dispatcher.SubscribeQuery(status),
		dispatcher.SubscribeQuery(validate),
		dispatcher.SubscribeQuery(preview),
		dispatcher.SubscribeQuery(history),
		dispatcher.SubscribeQuery(templates),
	}

	if reg != nil {
		handlers := []any{
			load, save, reset, submit, visibility, tmpl, pdf,
			snapshot, status, validate, preview, history, templates,
		}
		if deps.Batch != nil {
			handlers = append(handlers, deps.Batch)
		}
		for _, handler := range handlers {
			if err := reg.RegisterCommand(handler); err != nil {
				return subscriptions, err
			}
		}
	}

	return subscriptions, nil
}
