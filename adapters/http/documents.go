package cvhttp

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-cvbuilder/command"
	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/query"
)

type loadRequest struct {
	ID string `json:"id"`
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

func (h *Handler) documentResponse(c *fiber.Ctx, doc cv.Document) error {
	return c.JSON(DocumentResponse{Document: doc, Status: h.store.Status()})
}

func (h *Handler) getDocument(c *fiber.Ctx) error {
	if h.store == nil {
		return writeError(c, cv.NewError(cv.KindInternal, "document store is not configured", nil))
	}
	return h.documentResponse(c, h.store.Snapshot())
}

func (h *Handler) loadDocument(c *fiber.Ctx) error {
	var req loadRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, cv.NewError(cv.KindValidation, "invalid payload", err))
	}
	msg := command.LoadDocument{DocumentID: req.ID}
	if err := msg.Validate(); err != nil {
		return writeError(c, err)
	}
	var doc cv.Document
	msg.Result = &doc
	if err := h.load.Execute(c.UserContext(), msg); err != nil {
		return writeError(c, err)
	}
	h.logger.Infof("cvhttp: loaded document %s", doc.ID)
	return h.documentResponse(c, doc)
}

func (h *Handler) saveDocument(c *fiber.Ctx) error {
	if err := h.save.Execute(c.UserContext(), command.SaveDocument{}); err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.store.Status())
}

func (h *Handler) resetDocument(c *fiber.Ctx) error {
	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, cv.NewError(cv.KindValidation, "invalid payload", err))
	}
	var doc cv.Document
	if err := h.reset.Execute(c.UserContext(), command.ResetDocument{Confirmed: req.Confirm, Result: &doc}); err != nil {
		return writeError(c, err)
	}
	return h.documentResponse(c, doc)
}

func (h *Handler) validateDocument(c *fiber.Ctx) error {
	report, err := h.validate.Query(c.UserContext(), query.ValidateDocument{})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

func (h *Handler) getStatus(c *fiber.Ctx) error {
	status, err := h.status.Query(c.UserContext(), query.DocumentStatus{})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(status)
}
