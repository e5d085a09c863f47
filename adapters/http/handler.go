package cvhttp

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/goliatone/go-cvbuilder/command"
	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/forms"
	"github.com/goliatone/go-cvbuilder/layout"
	"github.com/goliatone/go-cvbuilder/query"
)

// DefaultBasePath prefixes every builder route.
const DefaultBasePath = "/api/cv"

// Config configures the builder HTTP surface. Forms defaults to a set over
// Store; Layouts to the built-in templates.
type Config struct {
	Store     *cv.Store
	Forms     *forms.Set
	Layouts   *layout.Registry
	Preview   query.PageRenderer
	Tracker   cv.ExportTracker
	Artifacts cv.ArtifactStore
	BasePath  string
	Logger    cv.Logger
}

// Handler exposes the builder over HTTP.
type Handler struct {
	store     *cv.Store
	forms     *forms.Set
	artifacts cv.ArtifactStore
	basePath  string
	logger    cv.Logger

	load       *command.LoadDocumentHandler
	save       *command.SaveDocumentHandler
	reset      *command.ResetDocumentHandler
	submit     *command.SubmitSectionHandler
	visibility *command.SetSectionVisibilityHandler
	template   *command.SelectTemplateHandler
	pdf        *command.DownloadPDFHandler
	status     *query.DocumentStatusHandler
	validate   *query.ValidateDocumentHandler
	preview    *query.PreviewDocumentHandler
	history    *query.ExportHistoryHandler
	templates  *query.ListTemplatesHandler
}

// NewHandler creates the handler.
func NewHandler(cfg Config) *Handler {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	log := cfg.Logger
	if log == nil {
		log = cv.NopLogger{}
	}
	layouts := cfg.Layouts
	if layouts == nil {
		layouts = layout.NewRegistry()
	}
	set := cfg.Forms
	if set == nil && cfg.Store != nil {
		set = forms.NewSet(cfg.Store)
	}

	return &Handler{
		store:      cfg.Store,
		forms:      set,
		artifacts:  cfg.Artifacts,
		basePath:   basePath,
		logger:     log,
		load:       command.NewLoadDocumentHandler(cfg.Store, set),
		save:       command.NewSaveDocumentHandler(cfg.Store),
		reset:      command.NewResetDocumentHandler(cfg.Store, set),
		submit:     command.NewSubmitSectionHandler(set),
		visibility: command.NewSetSectionVisibilityHandler(cfg.Store),
		template:   command.NewSelectTemplateHandler(cfg.Store, layouts),
		pdf:        command.NewDownloadPDFHandler(cfg.Store),
		status:     query.NewDocumentStatusHandler(cfg.Store),
		validate:   query.NewValidateDocumentHandler(cfg.Store),
		preview:    query.NewPreviewDocumentHandler(cfg.Store, cfg.Preview),
		history:    query.NewExportHistoryHandler(cfg.Tracker),
		templates:  query.NewListTemplatesHandler(layouts),
	}
}

// BasePath returns the route prefix.
func (h *Handler) BasePath() string {
	if h == nil {
		return DefaultBasePath
	}
	return h.basePath
}

// RegisterRoutes mounts the builder routes on r.
func (h *Handler) RegisterRoutes(r fiber.Router) {
	g := r.Group(h.BasePath())

	g.Get("/document", h.getDocument)
	g.Post("/document/load", h.loadDocument)
	g.Post("/document/save", h.saveDocument)
	g.Post("/document/reset", h.resetDocument)
	g.Get("/document/validate", h.validateDocument)
	g.Get("/status", h.getStatus)

	g.Get("/forms", h.listForms)
	g.Get("/forms/:section/schema", h.formSchema)
	g.Post("/sections/:section", h.submitSection)
	g.Delete("/sections/:section", h.clearSection)
	g.Put("/sections/:section/visibility", h.setVisibility)
	g.Post("/sections/:section/move", h.moveEntry)
	g.Put("/sections/:section/:index", h.editEntry)
	g.Delete("/sections/:section/:index", h.removeEntry)

	g.Get("/templates", h.listTemplates)
	g.Put("/template", h.selectTemplate)
	g.Get("/preview", h.previewPage)
	g.Get("/pdf", h.downloadPDF)
	g.Get("/exports", h.listExports)
	g.Get("/exports/:id/download", h.downloadExport)
}

// AppConfig configures NewApp.
type AppConfig struct {
	Name         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
	AllowOrigins string
	// AccessLog enables the fiber request logger.
	AccessLog bool
}

// NewApp builds a fiber app serving h.
func NewApp(h *Handler, cfg AppConfig) *fiber.App {
	if cfg.Name == "" {
		cfg.Name = "cvbuilder"
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
		}))
	}
	if cfg.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowOrigins,
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders: "Content-Type",
		}))
	}
	h.RegisterRoutes(app)
	return app
}
