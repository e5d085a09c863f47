package cvtemplate

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/layout"
)

// DefaultTemplateName is the page template executed by Renderer.
const DefaultTemplateName = "cv"

//go:embed assets/*.html assets/*.css
var assets embed.FS

// TemplateExecutor executes a named template with data.
type TemplateExecutor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// PageData is the context passed to page templates.
type PageData struct {
	Title       string        `json:"title"`
	Lang        string        `json:"lang"`
	TemplateID  string        `json:"template_id"`
	CSS         template.CSS  `json:"css"`
	Body        template.HTML `json:"body"`
	Tree        layout.Node   `json:"tree"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Renderer turns documents into HTML pages.
type Renderer struct {
	Layouts      *layout.Registry
	Templates    TemplateExecutor
	TemplateName string
	Lang         string
	Now          func() time.Time
}

// NewRenderer creates a renderer with the built-in layouts and page template.
func NewRenderer() *Renderer {
	return &Renderer{
		Layouts:      layout.NewRegistry(),
		Templates:    DefaultTemplates(),
		TemplateName: DefaultTemplateName,
		Lang:         "en",
		Now:          time.Now,
	}
}

var (
	defaultOnce      sync.Once
	defaultTemplates *template.Template
)

// DefaultTemplates returns the embedded html/template set holding the
// "cv" page and the recursive "node" fragment templates.
func DefaultTemplates() *template.Template {
	defaultOnce.Do(func() {
		defaultTemplates = template.Must(template.New("root").Funcs(FuncMap()).ParseFS(assets, "assets/*.html"))
	})
	return defaultTemplates
}

// FuncMap holds helpers used by the node templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"safeURL": safeURL,
	}
}

// safeURL allows the link schemes the layouts emit.
func safeURL(raw string) template.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "tel":
		return template.URL(raw)
	default:
		return "#"
	}
}

// Stylesheet returns the CSS for a template id.
func Stylesheet(templateID string) string {
	base, _ := assets.ReadFile("assets/base.css")
	extra, err := assets.ReadFile("assets/" + templateID + ".css")
	if err != nil {
		return string(base)
	}
	return string(base) + "\n" + string(extra)
}

// Render writes a complete HTML page for doc and returns the bytes written.
func (r Renderer) Render(ctx context.Context, doc cv.Document, templateID string, w io.Writer) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if r.Templates == nil {
		return 0, cv.NewError(cv.KindInternal, "html renderer requires templates", nil)
	}
	layouts := r.Layouts
	if layouts == nil {
		layouts = layout.NewRegistry()
	}
	if templateID == "" {
		templateID = doc.TemplateID
	}
	if templateID == "" {
		templateID = layout.DefaultTemplate
	}

	tree, err := layouts.Render(doc, templateID)
	if err != nil {
		return 0, err
	}

	var body bytes.Buffer
	if err := RenderFragment(&body, tree); err != nil {
		return 0, err
	}

	name := r.TemplateName
	if name == "" {
		name = DefaultTemplateName
	}
	lang := r.Lang
	if lang == "" {
		lang = "en"
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	data := PageData{
		Title:       pageTitle(doc),
		Lang:        lang,
		TemplateID:  templateID,
		CSS:         template.CSS(Stylesheet(templateID)),
		Body:        template.HTML(body.String()),
		Tree:        tree,
		GeneratedAt: now(),
	}

	cw := &countingWriter{w: w}
	if err := r.Templates.ExecuteTemplate(cw, name, data); err != nil {
		return cw.count, cv.NewError(cv.KindRender, fmt.Sprintf("execute template %q", name), err)
	}
	return cw.count, nil
}

// RenderFragment writes the HTML of tree without a page wrapper.
func RenderFragment(w io.Writer, tree layout.Node) error {
	if err := DefaultTemplates().ExecuteTemplate(w, "node", tree); err != nil {
		return cv.NewError(cv.KindRender, "render html fragment", err)
	}
	return nil
}

func pageTitle(doc cv.Document) string {
	if doc.Personal.FullName == "" {
		return "Curriculum Vitae"
	}
	return doc.Personal.FullName + " - CV"
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.count += int64(n)
	return n, err
}
