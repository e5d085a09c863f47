package cv

import (
	"fmt"
	"sort"
	"sync"
)

// SectionMeta is the static metadata of a section type.
type SectionMeta struct {
	ID             SectionType
	Label          string
	Icon           string
	DefaultVisible bool
	Hideable       bool
	Order          int
	// MaxItems bounds list sections; zero means unbounded.
	MaxItems int
}

// SectionEntry is a section type with its resolved visibility.
type SectionEntry struct {
	ID      SectionType
	Label   string
	Visible bool
}

// SectionRegistry owns section ordering and default visibility.
type SectionRegistry struct {
	mu    sync.RWMutex
	metas map[SectionType]SectionMeta
}

// NewSectionRegistry creates an empty registry.
func NewSectionRegistry() *SectionRegistry {
	return &SectionRegistry{metas: make(map[SectionType]SectionMeta)}
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *SectionRegistry
)

// DefaultRegistry returns the builder's section table.
func DefaultRegistry() *SectionRegistry {
	defaultRegistryOnce.Do(func() {
		reg := NewSectionRegistry()
		for _, meta := range defaultSectionMetas() {
			_ = reg.Register(meta)
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

func defaultSectionMetas() []SectionMeta {
	return []SectionMeta{
		{ID: SectionPersonal, Label: "Personal Details", Icon: "user", DefaultVisible: true, Order: 0},
		{ID: SectionSummary, Label: "Professional Summary", Icon: "file-text", DefaultVisible: true, Hideable: true, Order: 10},
		{ID: SectionExperience, Label: "Work Experience", Icon: "briefcase", DefaultVisible: true, Hideable: true, Order: 20},
		{ID: SectionEducation, Label: "Education", Icon: "graduation-cap", DefaultVisible: true, Hideable: true, Order: 30},
		{ID: SectionSkills, Label: "Skills", Icon: "wrench", DefaultVisible: true, Hideable: true, Order: 40, MaxItems: 20},
		{ID: SectionCertifications, Label: "Certifications", Icon: "award", DefaultVisible: true, Hideable: true, Order: 50, MaxItems: 10},
		{ID: SectionLanguages, Label: "Languages", Icon: "globe", DefaultVisible: true, Hideable: true, Order: 60, MaxItems: 8},
		{ID: SectionVolunteer, Label: "Volunteer Experience", Icon: "heart", DefaultVisible: true, Hideable: true, Order: 70, MaxItems: 5},
		{ID: SectionAwards, Label: "Awards & Honours", Icon: "trophy", DefaultVisible: true, Hideable: true, Order: 80, MaxItems: 6},
		{ID: SectionPublications, Label: "Publications", Icon: "book-open", DefaultVisible: true, Hideable: true, Order: 90, MaxItems: 10},
		{ID: SectionReferences, Label: "References", Icon: "users", DefaultVisible: true, Hideable: true, Order: 100, MaxItems: 4},
	}
}

// Register adds section metadata.
func (r *SectionRegistry) Register(meta SectionMeta) error {
	if r == nil {
		return NewError(KindInternal, "section registry is nil", nil)
	}
	if meta.ID == "" {
		return NewError(KindValidation, "section id is required", nil)
	}
	if meta.MaxItems < 0 {
		return NewError(KindValidation, fmt.Sprintf("section %q max items must be positive", meta.ID), nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.metas[meta.ID]; exists {
		return NewError(KindValidation, fmt.Sprintf("section %q already registered", meta.ID), nil)
	}
	r.metas[meta.ID] = meta
	return nil
}

// Lookup returns the metadata for a section type.
func (r *SectionRegistry) Lookup(id SectionType) (SectionMeta, bool) {
	if r == nil {
		return SectionMeta{}, false
	}
	r.mu.RLock()
	meta, ok := r.metas[id]
	r.mu.RUnlock()
	return meta, ok
}

// Label returns the display label, falling back to the id.
func (r *SectionRegistry) Label(id SectionType) string {
	if meta, ok := r.Lookup(id); ok && meta.Label != "" {
		return meta.Label
	}
	return string(id)
}

// MaxItems returns the capacity of a list section, zero when unbounded.
func (r *SectionRegistry) MaxItems(id SectionType) int {
	meta, _ := r.Lookup(id)
	return meta.MaxItems
}

// IsVisible resolves visibility for id. Non-hideable sections are always
// visible; an absent key falls back to the registered default.
func (r *SectionRegistry) IsVisible(visibility map[SectionType]bool, id SectionType) bool {
	meta, ok := r.Lookup(id)
	if !ok {
		return false
	}
	if !meta.Hideable {
		return true
	}
	if visible, set := visibility[id]; set {
		return visible
	}
	return meta.DefaultVisible
}

// Metas returns all registered metadata in display order.
func (r *SectionRegistry) Metas() []SectionMeta {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	out := make([]SectionMeta, 0, len(r.metas))
	for _, meta := range r.metas {
		out = append(out, meta)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SidebarSections returns every section with its resolved visibility in
// display order.
func (r *SectionRegistry) SidebarSections(visibility map[SectionType]bool) []SectionEntry {
	metas := r.Metas()
	out := make([]SectionEntry, 0, len(metas))
	for _, meta := range metas {
		out = append(out, SectionEntry{
			ID:      meta.ID,
			Label:   meta.Label,
			Visible: r.IsVisible(visibility, meta.ID),
		})
	}
	return out
}

// OrderedSections returns the visible sections in display order.
func (r *SectionRegistry) OrderedSections(visibility map[SectionType]bool) []SectionEntry {
	all := r.SidebarSections(visibility)
	out := all[:0]
	for _, entry := range all {
		if entry.Visible {
			out = append(out, entry)
		}
	}
	return out
}
