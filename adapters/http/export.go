package cvhttp

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-cvbuilder/command"
	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/query"
)

type templateRequest struct {
	ID string `json:"id"`
}

func (h *Handler) listTemplates(c *fiber.Ctx) error {
	infos, err := h.templates.Query(c.UserContext(), query.ListTemplates{})
	if err != nil {
		return writeError(c, err)
	}
	selected := ""
	if h.store != nil {
		selected = h.store.Snapshot().TemplateID
	}
	return c.JSON(fiber.Map{"templates": infos, "selected": selected})
}

func (h *Handler) selectTemplate(c *fiber.Ctx) error {
	var req templateRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, cv.NewError(cv.KindValidation, "invalid payload", err))
	}
	msg := command.SelectTemplate{TemplateID: req.ID}
	if err := msg.Validate(); err != nil {
		return writeError(c, err)
	}
	if err := h.template.Execute(c.UserContext(), msg); err != nil {
		return writeError(c, err)
	}
	return h.documentResponse(c, h.store.Snapshot())
}

func (h *Handler) previewPage(c *fiber.Ctx) error {
	page, err := h.preview.Query(c.UserContext(), query.PreviewDocument{TemplateID: c.Query("template")})
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(page)
}

func (h *Handler) downloadPDF(c *fiber.Ctx) error {
	var (
		buf    bytes.Buffer
		result cv.ExportResult
	)
	msg := command.DownloadPDF{TemplateID: c.Query("template"), Output: &buf, Result: &result}
	if err := h.pdf.Execute(c.UserContext(), msg); err != nil {
		return writeError(c, err)
	}
	c.Set("X-Export-ID", result.ID)
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(result.Filename)
	return c.Send(buf.Bytes())
}

func (h *Handler) listExports(c *fiber.Ctx) error {
	if h.store == nil {
		return writeError(c, cv.NewError(cv.KindInternal, "document store is not configured", nil))
	}
	records, err := h.history.Query(c.UserContext(), query.ExportHistory{DocumentID: h.store.Snapshot().ID})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(records)
}

func (h *Handler) downloadExport(c *fiber.Ctx) error {
	if h.artifacts == nil {
		return writeError(c, cv.NewError(cv.KindNotImpl, "artifact storage is not configured", nil))
	}
	records, err := h.history.Query(c.UserContext(), query.ExportHistory{DocumentID: h.store.Snapshot().ID})
	if err != nil {
		return writeError(c, err)
	}
	id := c.Params("id")
	for _, record := range records {
		if record.ID != id {
			continue
		}
		if record.ArtifactKey == "" {
			return writeError(c, cv.NewError(cv.KindNotFound, fmt.Sprintf("export %q has no artifact", id), nil))
		}
		rc, meta, err := h.artifacts.Open(c.UserContext(), record.ArtifactKey)
		if err != nil {
			return writeError(c, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return writeError(c, cv.NewError(cv.KindPersistence, "read artifact", err))
		}
		c.Set("X-Export-ID", record.ID)
		c.Set(fiber.HeaderContentType, meta.ContentType)
		c.Attachment(meta.Filename)
		return c.Send(data)
	}
	return writeError(c, cv.NewError(cv.KindNotFound, fmt.Sprintf("export %q not found", id), nil))
}
