package cvtemplate

import (
	"fmt"
	"io"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// PongoExecutor runs Django-style page templates with pongo2. Templates
// receive "page" (PageData), "body" (the rendered fragment, marked safe)
// and "css".
type PongoExecutor struct {
	Set *pongo2.TemplateSet

	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

var _ TemplateExecutor = (*PongoExecutor)(nil)

// NewPongoExecutor creates an executor. A nil loader reads from the
// embedded assets.
func NewPongoExecutor(loader pongo2.TemplateLoader) *PongoExecutor {
	if loader == nil {
		loader = pongo2.NewFSLoader(assets)
	}
	return &PongoExecutor{
		Set:       pongo2.NewSet("cvbuilder", loader),
		templates: make(map[string]*pongo2.Template),
	}
}

// AddString compiles src and registers it under name.
func (e *PongoExecutor) AddString(name, src string) error {
	tpl, err := e.Set.FromString(src)
	if err != nil {
		return fmt.Errorf("pongo2: compile %q: %w", name, err)
	}
	e.mu.Lock()
	e.templates[name] = tpl
	e.mu.Unlock()
	return nil
}

// ExecuteTemplate renders name. Unregistered names are loaded from the set.
func (e *PongoExecutor) ExecuteTemplate(w io.Writer, name string, data any) error {
	e.mu.RLock()
	tpl, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		var err error
		tpl, err = e.Set.FromCache(name)
		if err != nil {
			return fmt.Errorf("pongo2: load %q: %w", name, err)
		}
	}

	ctx := pongo2.Context{"page": data}
	if page, ok := data.(PageData); ok {
		ctx["body"] = pongo2.AsSafeValue(string(page.Body))
		ctx["css"] = pongo2.AsSafeValue(string(page.CSS))
		ctx["title"] = page.Title
	}
	return tpl.ExecuteWriter(ctx, w)
}

// DefaultPongoPage is a minimal page template for PongoExecutor.
const DefaultPongoPage = `<!DOCTYPE html>
<html lang="{{ page.Lang }}">
<head><meta charset="utf-8"><title>{{ title }}</title><style>{{ css }}</style></head>
<body class="template-{{ page.TemplateID }}">
{{ body }}
</body>
</html>
`
