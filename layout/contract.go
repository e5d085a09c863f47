package layout

import "github.com/goliatone/go-cvbuilder/cv"

// PlannedSection is a section selected for rendering.
type PlannedSection struct {
	Label   string
	Section cv.Section
}

// Plan returns the sections to render, in registry order: visible,
// present and non-empty. Personal details are rendered by the header
// and never appear here. Templates consume the plan and never iterate
// doc.Sections themselves.
func Plan(doc cv.Document, reg *cv.SectionRegistry) []PlannedSection {
	if reg == nil {
		reg = cv.DefaultRegistry()
	}
	var out []PlannedSection
	for _, entry := range reg.OrderedSections(doc.SectionVisibility) {
		if entry.ID == cv.SectionPersonal {
			continue
		}
		section, ok := doc.Section(entry.ID)
		if !ok || section.IsEmpty() {
			continue
		}
		out = append(out, PlannedSection{Label: entry.Label, Section: section})
	}
	return out
}
