package cv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ExportResult describes a finished PDF export.
type ExportResult struct {
	ID          string
	DocumentID  string
	TemplateID  string
	Filename    string
	Bytes       int64
	ArtifactKey string
	StartedAt   time.Time
	CompletedAt time.Time
}

// Exporter drives a PDF render through preparing, rendering and
// finalizing stages. Artifacts and Tracker are optional.
type Exporter struct {
	Renderer        PDFRenderer
	Artifacts       ArtifactStore
	Tracker         ExportTracker
	DefaultTemplate string
	Logger          Logger
	Now             func() time.Time
	IDGenerator     func() string
}

// NewExporter creates an exporter for renderer.
func NewExporter(renderer PDFRenderer) *Exporter {
	return &Exporter{
		Renderer:    renderer,
		Logger:      NopLogger{},
		Now:         time.Now,
		IDGenerator: uuid.NewString,
	}
}

// Export renders doc with templateID into w. progress may be nil.
func (e *Exporter) Export(ctx context.Context, doc Document, templateID string, w io.Writer, progress ProgressFunc) (ExportResult, error) {
	if e == nil || e.Renderer == nil {
		return ExportResult{}, NewError(KindInternal, "pdf renderer is not configured", nil)
	}
	if w == nil {
		return ExportResult{}, NewError(KindValidation, "output writer is required", nil)
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.Logger == nil {
		e.Logger = NopLogger{}
	}
	if e.IDGenerator == nil {
		e.IDGenerator = uuid.NewString
	}
	if templateID == "" {
		templateID = e.DefaultTemplate
	}
	if templateID == "" {
		return ExportResult{}, NewValidationError("invalid export", fieldError("templateId", "cannot be blank", templateID))
	}

	report := newStageReporter(progress)
	report.set(0, StagePreparing)

	result := ExportResult{
		ID:         e.IDGenerator(),
		DocumentID: doc.ID,
		TemplateID: templateID,
		Filename:   ExportFilename(doc),
		StartedAt:  e.Now(),
	}

	if e.Tracker != nil {
		id, err := e.Tracker.Start(ctx, ExportRecord{
			ID:         result.ID,
			DocumentID: doc.ID,
			TemplateID: templateID,
			State:      ExportStateRunning,
			StartedAt:  result.StartedAt,
		})
		if err != nil {
			e.Logger.Errorf("cv: export tracker start failed: %v", err)
		} else if id != "" {
			result.ID = id
		}
	}
	report.set(10, StagePreparing)

	var artifact *bytes.Buffer
	out := w
	if e.Artifacts != nil {
		artifact = &bytes.Buffer{}
		out = io.MultiWriter(w, artifact)
	}
	counter := &countingWriter{w: out}

	report.set(10, StageRendering)
	err := e.Renderer.Render(ctx, PDFRequest{Document: doc, TemplateID: templateID}, counter, func(percent int, _ string) {
		report.set(10+clampPercent(percent)*80/100, StageRendering)
	})
	if err != nil {
		return result, e.fail(ctx, result, NewError(KindRender, "pdf render failed", err))
	}
	result.Bytes = counter.n

	report.set(90, StageFinalizing)
	if artifact != nil {
		key := fmt.Sprintf("%s/%s.pdf", doc.ID, result.ID)
		ref, err := e.Artifacts.Put(ctx, key, bytes.NewReader(artifact.Bytes()), ArtifactMeta{
			ContentType: "application/pdf",
			Filename:    result.Filename,
			DocumentID:  doc.ID,
			TemplateID:  templateID,
			CreatedAt:   e.Now(),
		})
		if err != nil {
			return result, e.fail(ctx, result, NewError(KindRender, "store pdf artifact failed", err))
		}
		result.ArtifactKey = ref.Key
	}

	result.CompletedAt = e.Now()
	if e.Tracker != nil {
		if err := e.Tracker.Complete(ctx, result.ID, result.Bytes, result.ArtifactKey); err != nil {
			e.Logger.Errorf("cv: export tracker complete failed: %v", err)
		}
	}
	report.set(100, StageFinalizing)
	e.Logger.Infof("cv: exported document %s with template %s (%d bytes)", doc.ID, templateID, result.Bytes)
	return result, nil
}

func (e *Exporter) fail(ctx context.Context, result ExportResult, err error) error {
	e.Logger.Errorf("cv: export %s failed: %v", result.ID, err)
	if e.Tracker != nil {
		if trackErr := e.Tracker.Fail(ctx, result.ID, err); trackErr != nil {
			e.Logger.Errorf("cv: export tracker fail failed: %v", trackErr)
		}
	}
	return err
}

var filenameUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// ExportFilename derives a download name from the holder's name.
func ExportFilename(doc Document) string {
	base := filenameUnsafe.ReplaceAllString(strings.ToLower(doc.Personal.FullName), "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "resume"
	}
	return base + "-cv.pdf"
}

// stageReporter forwards progress, never moving backwards.
type stageReporter struct {
	mu   sync.Mutex
	fn   ProgressFunc
	last int
}

func newStageReporter(fn ProgressFunc) *stageReporter {
	return &stageReporter{fn: fn, last: -1}
}

func (r *stageReporter) set(percent int, stage string) {
	if r.fn == nil {
		return
	}
	r.mu.Lock()
	percent = clampPercent(percent)
	if percent < r.last {
		percent = r.last
	}
	r.last = percent
	r.mu.Unlock()
	r.fn(percent, stage)
}

func clampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
