package cvpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/goliatone/go-cvbuilder/cv"
)

// DefaultMaxHTMLBytes bounds the page buffered before conversion.
const DefaultMaxHTMLBytes int64 = 8 * 1024 * 1024

// HTMLRenderer writes the HTML page for a document.
type HTMLRenderer interface {
	Render(ctx context.Context, doc cv.Document, templateID string, w io.Writer) (int64, error)
}

// RenderRequest is the input to an Engine.
type RenderRequest struct {
	HTML    []byte
	Options PageOptions
}

// Engine converts HTML to PDF bytes.
type Engine interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// EngineFunc adapts a function to an Engine.
type EngineFunc func(ctx context.Context, req RenderRequest) ([]byte, error)

func (f EngineFunc) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if f == nil {
		return nil, errors.New("pdf engine func is nil")
	}
	return f(ctx, req)
}

// Renderer implements cv.PDFRenderer.
type Renderer struct {
	HTML         HTMLRenderer
	Engine       Engine
	Options      PageOptions
	MaxHTMLBytes int64
	Logger       cv.Logger
}

var _ cv.PDFRenderer = Renderer{}

// Render writes the PDF for req to w. Progress runs from 0 to 100 across
// the HTML and conversion steps.
func (r Renderer) Render(ctx context.Context, req cv.PDFRequest, w io.Writer, progress cv.ProgressFunc) error {
	if r.HTML == nil {
		return cv.NewError(cv.KindValidation, "pdf renderer requires html renderer", nil)
	}
	if r.Engine == nil {
		return cv.NewError(cv.KindValidation, "pdf renderer requires engine", nil)
	}
	if progress == nil {
		progress = func(int, string) {}
	}
	logger := r.Logger
	if logger == nil {
		logger = cv.NopLogger{}
	}

	progress(0, cv.StageRendering)
	buffer := newLimitedBuffer(r.MaxHTMLBytes)
	if _, err := r.HTML.Render(ctx, req.Document, req.TemplateID, buffer); err != nil {
		return err
	}
	progress(30, cv.StageRendering)

	started := time.Now()
	pdf, err := r.Engine.Render(ctx, RenderRequest{
		HTML:    buffer.Bytes(),
		Options: DefaultPageOptions.Merge(r.Options),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return cv.NewError(cv.KindRender, "convert html to pdf", err)
	}
	logger.Debugf("pdf converted document=%s html_bytes=%d pdf_bytes=%d took=%s", req.Document.ID, len(buffer.Bytes()), len(pdf), time.Since(started))
	progress(90, cv.StageRendering)

	if len(pdf) > 0 {
		if _, err := w.Write(pdf); err != nil {
			return cv.NewError(cv.KindRender, "write pdf", err)
		}
	}
	progress(100, cv.StageRendering)
	return nil
}

// WKHTMLTOPDFEngine shells out to wkhtmltopdf using stdin and stdout.
type WKHTMLTOPDFEngine struct {
	Command string
	Args    []string
	Env     []string
	Timeout time.Duration
}

// Render runs wkhtmltopdf with page flags derived from req.Options.
func (e WKHTMLTOPDFEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if err := req.Options.Validate(); err != nil {
		return nil, err
	}
	cmdPath := strings.TrimSpace(e.Command)
	if cmdPath == "" {
		cmdPath = "wkhtmltopdf"
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := append(wkhtmltopdfArgs(req.Options), e.Args...)
	args = append(args, "-", "-")
	cmd := exec.CommandContext(ctx, cmdPath, args...)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	cmd.Stdin = bytes.NewReader(req.HTML)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = "wkhtmltopdf failed"
		}
		return nil, fmt.Errorf("%s: %w", message, err)
	}
	return stdout.Bytes(), nil
}

func wkhtmltopdfArgs(opts PageOptions) []string {
	args := []string{"--quiet", "--encoding", "utf-8"}
	if opts.PageSize != "" {
		args = append(args, "--page-size", opts.PageSize)
	}
	if opts.Landscape != nil && *opts.Landscape {
		args = append(args, "--orientation", "Landscape")
	}
	if opts.PrintBackground != nil && !*opts.PrintBackground {
		args = append(args, "--no-background")
	}
	margins := [][2]string{
		{"--margin-top", opts.MarginTop},
		{"--margin-bottom", opts.MarginBottom},
		{"--margin-left", opts.MarginLeft},
		{"--margin-right", opts.MarginRight},
	}
	for _, m := range margins {
		if m[1] != "" {
			args = append(args, m[0], strings.ReplaceAll(m[1], " ", ""))
		}
	}
	if opts.BlockExternal {
		args = append(args, "--disable-local-file-access", "--disable-external-links")
	}
	return args
}

type limitedBuffer struct {
	buf     bytes.Buffer
	maxSize int64
}

func newLimitedBuffer(maxSize int64) *limitedBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxHTMLBytes
	}
	return &limitedBuffer{maxSize: maxSize}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if int64(b.buf.Len()+len(p)) > b.maxSize {
		return 0, cv.NewError(cv.KindRender, "rendered page exceeds max html bytes", nil)
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}
