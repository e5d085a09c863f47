package layout

import "github.com/goliatone/go-cvbuilder/cv"

// Dublin is the single-column "Dublin Professional" layout.
type Dublin struct{}

var dublinStyle = Style{Prefix: "dub"}

func (Dublin) Info() Info {
	return Info{
		ID:          "dublin",
		Name:        "Dublin Professional",
		Description: "Single column with ruled section headings.",
	}
}

func (Dublin) Region(cv.SectionType) Region {
	return RegionMain
}

func (Dublin) Header(p cv.Personal) Node {
	return HeaderNode(p, dublinStyle)
}

func (Dublin) Section(ps PlannedSection) Node {
	node := SectionNode(ps, dublinStyle)
	node.Class += " dub-ruled"
	return node
}
