package layout

import "github.com/goliatone/go-cvbuilder/cv"

// Cork is a two-column layout with a right sidebar.
type Cork struct{}

var corkStyle = Style{Prefix: "crk", DateFirst: true}

func (Cork) Info() Info {
	return Info{
		ID:          "cork",
		Name:        "Cork",
		Description: "Two columns, experience first with a right-hand sidebar.",
		Sidebar:     SidebarRight,
	}
}

func (Cork) Region(typ cv.SectionType) Region {
	switch typ {
	case cv.SectionSkills, cv.SectionLanguages, cv.SectionAwards, cv.SectionReferences:
		return RegionSidebar
	default:
		return RegionMain
	}
}

func (Cork) Header(p cv.Personal) Node {
	return HeaderNode(p, corkStyle)
}

func (Cork) Section(ps PlannedSection) Node {
	return SectionNode(ps, corkStyle)
}
