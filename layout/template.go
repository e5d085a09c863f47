package layout

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-cvbuilder/cv"
)

// Region is a layout column.
type Region string

const (
	RegionMain    Region = "main"
	RegionSidebar Region = "sidebar"
)

// SidebarSide positions the sidebar column.
type SidebarSide string

const (
	SidebarNone  SidebarSide = ""
	SidebarLeft  SidebarSide = "left"
	SidebarRight SidebarSide = "right"
)

// Info describes a template.
type Info struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Sidebar     SidebarSide `json:"sidebar,omitempty"`
}

// Template renders the header and individual sections. Selection and
// ordering of sections is owned by Plan; a template only chooses the
// region of each section type and its markup.
type Template interface {
	Info() Info
	Region(typ cv.SectionType) Region
	Header(p cv.Personal) Node
	Section(ps PlannedSection) Node
}

// Registry maps template ids to templates.
type Registry struct {
	Sections *cv.SectionRegistry

	mu        sync.RWMutex
	templates map[string]Template
}

// NewRegistry creates a registry holding the built-in templates.
func NewRegistry() *Registry {
	reg := &Registry{templates: make(map[string]Template)}
	_ = reg.Register(Stockholm{})
	_ = reg.Register(Dublin{})
	_ = reg.Register(London{})
	_ = reg.Register(Cork{})
	return reg
}

// DefaultTemplate is used when a document has no template selected.
const DefaultTemplate = "dublin"

// Register adds a template.
func (r *Registry) Register(t Template) error {
	if t == nil {
		return cv.NewError(cv.KindValidation, "template is required", nil)
	}
	id := t.Info().ID
	if id == "" {
		return cv.NewError(cv.KindValidation, "template id is required", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.templates == nil {
		r.templates = make(map[string]Template)
	}
	if _, exists := r.templates[id]; exists {
		return cv.NewError(cv.KindValidation, fmt.Sprintf("template %q already registered", id), nil)
	}
	r.templates[id] = t
	return nil
}

// Resolve returns the template for id.
func (r *Registry) Resolve(id string) (Template, error) {
	if id == "" {
		id = DefaultTemplate
	}
	r.mu.RLock()
	t, ok := r.templates[id]
	r.mu.RUnlock()
	if !ok {
		return nil, cv.NewError(cv.KindNotFound, fmt.Sprintf("template %q not found", id), nil)
	}
	return t, nil
}

// List returns the registered templates sorted by id.
func (r *Registry) List() []Info {
	r.mu.RLock()
	out := make([]Info, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t.Info())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Render builds the visual tree of doc with the given template. It is pure.
func (r *Registry) Render(doc cv.Document, templateID string) (Node, error) {
	if templateID == "" {
		templateID = doc.TemplateID
	}
	t, err := r.Resolve(templateID)
	if err != nil {
		return Node{}, err
	}
	return Compose(t, doc, r.Sections), nil
}

// Compose assembles header and regions for t. Each region keeps the
// registry order of its sections.
func Compose(t Template, doc cv.Document, sections *cv.SectionRegistry) Node {
	info := t.Info()
	root := Node{Kind: KindDocument, Class: "cv cv-" + info.ID}
	root.Children = append(root.Children, t.Header(doc.Personal))

	main := Node{Kind: KindRegion, Class: string(RegionMain)}
	sidebar := Node{Kind: KindRegion, Class: string(RegionSidebar)}
	for _, ps := range Plan(doc, sections) {
		node := t.Section(ps)
		if info.Sidebar != SidebarNone && t.Region(ps.Section.Type) == RegionSidebar {
			sidebar.Children = append(sidebar.Children, node)
			continue
		}
		main.Children = append(main.Children, node)
	}

	body := Node{Kind: KindBody, Class: "columns-1"}
	switch info.Sidebar {
	case SidebarLeft:
		body.Class = "columns-2 sidebar-left"
		body.Children = []Node{sidebar, main}
	case SidebarRight:
		body.Class = "columns-2 sidebar-right"
		body.Children = []Node{main, sidebar}
	default:
		body.Children = []Node{main}
	}
	root.Children = append(root.Children, body)
	return root
}
