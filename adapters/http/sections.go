package cvhttp

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-cvbuilder/command"
	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/forms"
)

type moveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

func sectionParam(c *fiber.Ctx) cv.SectionType {
	return cv.SectionType(c.Params("section"))
}

func indexParam(c *fiber.Ctx) (int, error) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return 0, cv.NewError(cv.KindValidation, fmt.Sprintf("invalid index %q", c.Params("index")), err)
	}
	return index, nil
}

func (h *Handler) sectionForms() (*forms.Set, error) {
	if h.forms == nil {
		return nil, cv.NewError(cv.KindInternal, "section forms are not configured", nil)
	}
	return h.forms, nil
}

func (h *Handler) listForms(c *fiber.Ctx) error {
	if h.forms == nil {
		return writeError(c, cv.NewError(cv.KindInternal, "section forms are not configured", nil))
	}
	return c.JSON(h.forms.Definitions())
}

func (h *Handler) formSchema(c *fiber.Ctx) error {
	raw, err := forms.Schema(sectionParam(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/schema+json")
	return c.Send(raw)
}

func (h *Handler) submitSection(c *fiber.Ctx) error {
	return h.submitEntry(c, nil)
}

func (h *Handler) editEntry(c *fiber.Ctx) error {
	index, err := indexParam(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.submitEntry(c, &index)
}

func (h *Handler) submitEntry(c *fiber.Ctx, index *int) error {
	var doc cv.Document
	msg := command.SubmitSection{
		Section: sectionParam(c),
		Payload: append([]byte(nil), c.Body()...),
		Index:   index,
		Result:  &doc,
	}
	if err := msg.Validate(); err != nil {
		return writeError(c, err)
	}
	if err := h.submit.Execute(c.UserContext(), msg); err != nil {
		return writeError(c, err)
	}
	return h.documentResponse(c, doc)
}

func (h *Handler) removeEntry(c *fiber.Ctx) error {
	index, err := indexParam(c)
	if err != nil {
		return writeError(c, err)
	}
	set, err := h.sectionForms()
	if err != nil {
		return writeError(c, err)
	}
	doc, err := set.Remove(sectionParam(c), index)
	if err != nil {
		return writeError(c, err)
	}
	return h.documentResponse(c, doc)
}

func (h *Handler) moveEntry(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, cv.NewError(cv.KindValidation, "invalid payload", err))
	}
	set, err := h.sectionForms()
	if err != nil {
		return writeError(c, err)
	}
	doc, err := set.Move(sectionParam(c), req.From, req.To)
	if err != nil {
		return writeError(c, err)
	}
	return h.documentResponse(c, doc)
}

// clearSection empties the references section; other sections are cleared
// entry by entry.
func (h *Handler) clearSection(c *fiber.Ctx) error {
	if sectionParam(c) != cv.SectionReferences || h.forms == nil {
		return writeError(c, cv.NewError(cv.KindValidation, "only references can be cleared", nil))
	}
	doc, err := h.forms.ClearReferences()
	if err != nil {
		return writeError(c, err)
	}
	return h.documentResponse(c, doc)
}

func (h *Handler) setVisibility(c *fiber.Ctx) error {
	var req visibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, cv.NewError(cv.KindValidation, "invalid payload", err))
	}
	msg := command.SetSectionVisibility{Section: sectionParam(c), Visible: req.Visible}
	if err := h.visibility.Execute(c.UserContext(), msg); err != nil {
		return writeError(c, err)
	}
	return h.documentResponse(c, h.store.Snapshot())
}
