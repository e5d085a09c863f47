package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/flosch/pongo2/v6"

	cvpdf "github.com/goliatone/go-cvbuilder/adapters/pdf"
	storebun "github.com/goliatone/go-cvbuilder/adapters/store/bun"
	storefs "github.com/goliatone/go-cvbuilder/adapters/store/fs"
	storepgx "github.com/goliatone/go-cvbuilder/adapters/store/pgx"
	cvtemplate "github.com/goliatone/go-cvbuilder/adapters/template"
	"github.com/goliatone/go-cvbuilder/config"
	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/layout"
)

// pongoPageFile is the page template read from templates.page_dir.
const pongoPageFile = "cv.html"

// runtime holds the collaborators built from config.
type runtime struct {
	cfg         config.Config
	logger      cv.Logger
	layouts     *layout.Registry
	pages       *cvtemplate.Renderer
	persistence cv.Persistence
	artifacts   cv.ArtifactStore
	tracker     cv.ExportTracker
	exporter    *cv.Exporter
	store       *cv.Store
	closers     []func() error
}

func openRuntime(ctx context.Context, cfg config.Config, logger cv.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger, layouts: layout.NewRegistry()}
	if err := rt.openStorage(ctx); err != nil {
		_ = rt.Close()
		return nil, err
	}

	pages, err := newPageRenderer(cfg.Templates, rt.layouts)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.pages = pages

	engine := newEngine(cfg.PDF)
	if closer, ok := engine.(interface{ Close() error }); ok {
		rt.closers = append(rt.closers, closer.Close)
	}
	exporter := cv.NewExporter(cvpdf.Renderer{
		HTML:         pages,
		Engine:       engine,
		Options:      cfg.PDF.Page,
		MaxHTMLBytes: cfg.PDF.MaxHTMLBytes,
		Logger:       logger,
	})
	exporter.Artifacts = rt.artifacts
	exporter.Tracker = rt.tracker
	exporter.DefaultTemplate = cfg.Templates.Default
	exporter.Logger = logger
	rt.exporter = exporter

	rt.store = cv.NewStore(cv.NewDocument(cfg.Storage.DocumentID), rt.persistence, exporter)
	rt.store.Logger = logger
	return rt, nil
}

func (rt *runtime) openStorage(ctx context.Context) error {
	st := rt.cfg.Storage
	switch st.Driver {
	case config.DriverMemory:
		rt.persistence = cv.NewMemoryPersistence()
		rt.artifacts = cv.NewMemoryArtifacts()
		rt.tracker = cv.NewMemoryTracker()
	case config.DriverFS:
		fs := storefs.NewStore(st.Root)
		rt.persistence = fs
		rt.artifacts = fs
		rt.tracker = cv.NewMemoryTracker()
	case config.DriverSQLite:
		db, err := storebun.Open(ctx, st.DSN)
		if err != nil {
			return cv.NewError(cv.KindPersistence, "open sqlite", err)
		}
		rt.closers = append(rt.closers, db.Close)
		rt.persistence = storebun.NewDocumentStore(db)
		rt.tracker = storebun.NewTracker(db)
		rt.artifacts = rt.artifactDir()
	case config.DriverPostgres:
		pool, err := storepgx.Connect(ctx, st.DSN)
		if err != nil {
			return err
		}
		rt.closers = append(rt.closers, func() error { pool.Close(); return nil })
		if err := storepgx.Migrate(ctx, pool, rt.logger); err != nil {
			return cv.NewError(cv.KindPersistence, "migrate postgres", err)
		}
		store := storepgx.NewStore(pool)
		store.Logger = rt.logger
		rt.persistence = store
		rt.tracker = cv.NewMemoryTracker()
		rt.artifacts = rt.artifactDir()
	default:
		return cv.NewError(cv.KindValidation, fmt.Sprintf("unknown storage driver %q", st.Driver), nil)
	}
	rt.logger.Debugf("storage driver=%s", st.Driver)
	return nil
}

// artifactDir stores PDFs under storage.root when it is set.
func (rt *runtime) artifactDir() cv.ArtifactStore {
	if rt.cfg.Storage.Root == "" {
		return cv.NewMemoryArtifacts()
	}
	return storefs.NewStore(rt.cfg.Storage.Root)
}

// Close releases storage and the PDF engine in reverse order.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// openDocument loads id into the store, starting a blank document when
// none is stored yet.
func (rt *runtime) openDocument(ctx context.Context, id string) (cv.Document, error) {
	doc, err := rt.store.Load(ctx, id)
	if err == nil {
		return doc, nil
	}
	if cv.KindFromError(err) != cv.KindNotFound {
		return cv.Document{}, err
	}
	rt.logger.Infof("document %s not found, starting a blank one", id)
	return rt.store.Snapshot(), nil
}

func newEngine(cfg config.PDFConfig) cvpdf.Engine {
	if cfg.Engine == config.EngineWKHTMLTOPDF {
		return cvpdf.WKHTMLTOPDFEngine{Command: cfg.Command, Timeout: cfg.Timeout}
	}
	return &cvpdf.ChromiumEngine{BrowserPath: cfg.BrowserPath, Headless: true, Timeout: cfg.Timeout}
}

func newPageRenderer(cfg config.TemplatesConfig, layouts *layout.Registry) (*cvtemplate.Renderer, error) {
	pages := cvtemplate.NewRenderer()
	pages.Layouts = layouts
	if cfg.Executor != config.ExecutorPongo2 {
		return pages, nil
	}

	if cfg.PageDir == "" {
		exec := cvtemplate.NewPongoExecutor(nil)
		if err := exec.AddString(pages.TemplateName, cvtemplate.DefaultPongoPage); err != nil {
			return nil, err
		}
		pages.Templates = exec
		return pages, nil
	}
	loader, err := pongo2.NewLocalFileSystemLoader(cfg.PageDir)
	if err != nil {
		return nil, cv.NewError(cv.KindValidation, fmt.Sprintf("templates.page_dir %s", cfg.PageDir), err)
	}
	pages.Templates = cvtemplate.NewPongoExecutor(loader)
	pages.TemplateName = pongoPageFile
	return pages, nil
}
