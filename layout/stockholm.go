package layout

import "github.com/goliatone/go-cvbuilder/cv"

// Stockholm is a two-column layout with a left sidebar.
type Stockholm struct{}

var stockholmStyle = Style{Prefix: "sth", UpperHeadings: true}

func (Stockholm) Info() Info {
	return Info{
		ID:          "stockholm",
		Name:        "Stockholm",
		Description: "Two columns with a shaded sidebar for skills and credentials.",
		Sidebar:     SidebarLeft,
	}
}

func (Stockholm) Region(typ cv.SectionType) Region {
	switch typ {
	case cv.SectionSkills, cv.SectionLanguages, cv.SectionEducation, cv.SectionCertifications:
		return RegionSidebar
	default:
		return RegionMain
	}
}

func (Stockholm) Header(p cv.Personal) Node {
	header := HeaderNode(p, stockholmStyle)
	if initials := Initials(p.FullName); initials != "" {
		header.Children = append([]Node{{Kind: KindMeta, Class: "sth-monogram", Text: initials}}, header.Children...)
	}
	return header
}

func (Stockholm) Section(ps PlannedSection) Node {
	return SectionNode(ps, stockholmStyle)
}
