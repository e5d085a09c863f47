package cv

import (
	"maps"
	"slices"
	"strings"
)

// NewDocument returns an empty document holding one section per type.
func NewDocument(id string) Document {
	doc := Document{ID: id}
	doc.Sections = make([]Section, 0, len(ContentSectionTypes))
	for _, typ := range ContentSectionTypes {
		doc.Sections = append(doc.Sections, Section{Type: typ})
	}
	return doc
}

// Section returns the section of the given type.
func (d Document) Section(typ SectionType) (Section, bool) {
	for _, section := range d.Sections {
		if section.Type == typ {
			return section, true
		}
	}
	return Section{}, false
}

// Visible reports whether the section type renders for this document.
func (d Document) Visible(typ SectionType) bool {
	return DefaultRegistry().IsVisible(d.SectionVisibility, typ)
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	out := d
	out.SectionVisibility = maps.Clone(d.SectionVisibility)
	if d.Sections != nil {
		out.Sections = make([]Section, len(d.Sections))
		for i, section := range d.Sections {
			out.Sections[i] = section.Clone()
		}
	}
	return out
}

// Clone returns a deep copy.
func (s Section) Clone() Section {
	out := s
	out.Skills = slices.Clone(s.Skills)
	out.Education = slices.Clone(s.Education)
	out.Certifications = slices.Clone(s.Certifications)
	out.Languages = slices.Clone(s.Languages)
	out.Volunteer = slices.Clone(s.Volunteer)
	out.Awards = slices.Clone(s.Awards)
	out.Publications = slices.Clone(s.Publications)
	if s.Experience != nil {
		out.Experience = make([]ExperienceItem, len(s.Experience))
		for i, item := range s.Experience {
			item.Bullets = slices.Clone(item.Bullets)
			out.Experience[i] = item
		}
	}
	if s.References != nil {
		refs := *s.References
		refs.Contacts = slices.Clone(s.References.Contacts)
		out.References = &refs
	}
	return out
}

// IsEmpty reports whether the section has no content for its type.
func (s Section) IsEmpty() bool {
	switch s.Type {
	case SectionSummary:
		return strings.TrimSpace(s.Summary) == ""
	case SectionExperience:
		return len(s.Experience) == 0
	case SectionEducation:
		return len(s.Education) == 0
	case SectionSkills:
		return len(s.Skills) == 0
	case SectionCertifications:
		return len(s.Certifications) == 0
	case SectionLanguages:
		return len(s.Languages) == 0
	case SectionVolunteer:
		return len(s.Volunteer) == 0
	case SectionAwards:
		return len(s.Awards) == 0
	case SectionPublications:
		return len(s.Publications) == 0
	case SectionReferences:
		if s.References == nil || s.References.Mode == "" {
			return true
		}
		return s.References.Mode == ReferencesDetailed && len(s.References.Contacts) == 0
	default:
		return true
	}
}

// ItemCount returns the number of list entries held by the section.
func (s Section) ItemCount() int {
	switch s.Type {
	case SectionExperience:
		return len(s.Experience)
	case SectionEducation:
		return len(s.Education)
	case SectionSkills:
		return len(s.Skills)
	case SectionCertifications:
		return len(s.Certifications)
	case SectionLanguages:
		return len(s.Languages)
	case SectionVolunteer:
		return len(s.Volunteer)
	case SectionAwards:
		return len(s.Awards)
	case SectionPublications:
		return len(s.Publications)
	case SectionReferences:
		if s.References == nil {
			return 0
		}
		return len(s.References.Contacts)
	default:
		return 0
	}
}

// Normalize returns a canonical copy: one section per type in registry
// order, payloads of other types cleared, and empty collections set to nil.
// When a type repeats, the first non-empty section is kept; callers that
// must not lose content check DuplicateSections first.
func (d Document) Normalize() Document {
	out := d.Clone()
	byType := make(map[SectionType]Section, len(out.Sections))
	for _, section := range out.Sections {
		if kept, seen := byType[section.Type]; seen && !kept.IsEmpty() {
			continue
		}
		byType[section.Type] = section
	}

	out.Sections = make([]Section, 0, len(ContentSectionTypes))
	for _, typ := range ContentSectionTypes {
		section := byType[typ]
		section.Type = typ
		out.Sections = append(out.Sections, normalizeSection(section))
	}

	if len(out.SectionVisibility) == 0 {
		out.SectionVisibility = nil
	} else {
		delete(out.SectionVisibility, SectionPersonal)
		if len(out.SectionVisibility) == 0 {
			out.SectionVisibility = nil
		}
	}
	return out
}

// DuplicateSections returns the section types that appear more than once
// with content, in document order.
func (d Document) DuplicateSections() []SectionType {
	filled := make(map[SectionType]int, len(d.Sections))
	var out []SectionType
	for _, section := range d.Sections {
		if section.IsEmpty() {
			continue
		}
		filled[section.Type]++
		if filled[section.Type] == 2 {
			out = append(out, section.Type)
		}
	}
	return out
}

func normalizeSection(s Section) Section {
	out := Section{Type: s.Type}
	switch s.Type {
	case SectionSummary:
		out.Summary = strings.TrimSpace(s.Summary)
	case SectionExperience:
		out.Experience = nilIfEmpty(s.Experience)
		for i := range out.Experience {
			out.Experience[i].Bullets = nilIfEmpty(out.Experience[i].Bullets)
		}
	case SectionEducation:
		out.Education = nilIfEmpty(s.Education)
	case SectionSkills:
		out.Skills = nilIfEmpty(s.Skills)
	case SectionCertifications:
		out.Certifications = nilIfEmpty(s.Certifications)
	case SectionLanguages:
		out.Languages = nilIfEmpty(s.Languages)
	case SectionVolunteer:
		out.Volunteer = nilIfEmpty(s.Volunteer)
	case SectionAwards:
		out.Awards = nilIfEmpty(s.Awards)
	case SectionPublications:
		out.Publications = nilIfEmpty(s.Publications)
	case SectionReferences:
		if s.References != nil {
			refs := *s.References
			refs.Contacts = nilIfEmpty(refs.Contacts)
			out.References = &refs
		}
	}
	return out
}

func nilIfEmpty[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	return items
}

// WithSection returns a copy of the document with section replaced.
func (d Document) WithSection(section Section) Document {
	out := d.Clone()
	for i := range out.Sections {
		if out.Sections[i].Type == section.Type {
			out.Sections[i] = section
			return out
		}
	}
	out.Sections = append(out.Sections, section)
	return out
}
