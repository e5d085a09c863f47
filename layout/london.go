package layout

import (
	"strings"

	"github.com/goliatone/go-cvbuilder/cv"
)

// London is a minimal single-column layout.
type London struct{}

var londonStyle = Style{Prefix: "ldn", Inline: true, DateFirst: true}

func (London) Info() Info {
	return Info{
		ID:          "london",
		Name:        "London",
		Description: "Minimal single column, dates leading each entry.",
	}
}

func (London) Region(cv.SectionType) Region {
	return RegionMain
}

// Header renders contact details on a single line.
func (London) Header(p cv.Personal) Node {
	header := Node{Kind: KindHeader, Class: "ldn-header", Section: cv.SectionPersonal}
	name := p.FullName
	if p.Title != "" {
		name += " | " + p.Title
	}
	header.Children = append(header.Children, Node{Kind: KindTitle, Class: "ldn-name", Text: name})

	var contact []string
	for _, v := range []string{p.Email, p.Phone, p.Address, p.LinkedIn, p.Website, p.WorkPermit} {
		if v != "" {
			contact = append(contact, displayURL(v))
		}
	}
	if len(contact) > 0 {
		header.Children = append(header.Children, Node{Kind: KindLine, Class: "ldn-contact", Text: strings.Join(contact, " · ")})
	}
	return header
}

func (London) Section(ps PlannedSection) Node {
	return SectionNode(ps, londonStyle)
}
