package layout

import (
	"strings"

	"github.com/goliatone/go-cvbuilder/cv"
)

// Style tunes the shared section markup.
type Style struct {
	// Prefix is prepended to every class name.
	Prefix string
	// UpperHeadings renders section headings in capitals.
	UpperHeadings bool
	// Inline merges entry title and subtitle into one line.
	Inline bool
	// DateFirst places the date range before the entry title.
	DateFirst bool
}

func (s Style) class(name string) string {
	if s.Prefix == "" {
		return name
	}
	return s.Prefix + "-" + name
}

// DateRange formats "start - end"; a missing end yields start only.
func DateRange(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start
	case start == "":
		return end
	default:
		return start + " - " + end
	}
}

// SkillsLine joins skills into the single rendered line.
func SkillsLine(skills []string) string {
	return strings.Join(skills, ", ")
}

var proficiencyLabels = map[string]string{
	cv.ProficiencyNative: "Native",
	cv.ProficiencyC2:     "C2 Proficient",
	cv.ProficiencyC1:     "C1 Advanced",
	cv.ProficiencyB2:     "B2 Upper intermediate",
	cv.ProficiencyB1:     "B1 Intermediate",
	cv.ProficiencyA2:     "A2 Elementary",
	cv.ProficiencyA1:     "A1 Beginner",
}

// ProficiencyLabel returns the display label of a language level.
func ProficiencyLabel(level string) string {
	if label, ok := proficiencyLabels[level]; ok {
		return label
	}
	return level
}

// HeaderNode renders the personal details block. Optional fields that are
// empty are omitted.
func HeaderNode(p cv.Personal, style Style) Node {
	header := Node{Kind: KindHeader, Class: style.class("header"), Section: cv.SectionPersonal}
	header.Children = append(header.Children, Node{Kind: KindTitle, Class: style.class("name"), Text: p.FullName})
	if p.Title != "" {
		header.Children = append(header.Children, Node{Kind: KindSubtitle, Class: style.class("role"), Text: p.Title})
	}

	contact := Node{Kind: KindList, Class: style.class("contact")}
	if p.Email != "" {
		contact.Children = append(contact.Children, Node{Kind: KindItem}.with(Node{Kind: KindLink, Text: p.Email, Href: "mailto:" + p.Email}))
	}
	if p.Phone != "" {
		contact.Children = append(contact.Children, Node{Kind: KindItem}.with(Node{Kind: KindLink, Text: p.Phone, Href: "tel:" + strings.ReplaceAll(p.Phone, " ", "")}))
	}
	if p.Address != "" {
		contact.Children = append(contact.Children, Node{Kind: KindItem, Text: p.Address})
	}
	if p.LinkedIn != "" {
		contact.Children = append(contact.Children, Node{Kind: KindItem}.with(Node{Kind: KindLink, Text: displayURL(p.LinkedIn), Href: p.LinkedIn}))
	}
	if p.Website != "" {
		contact.Children = append(contact.Children, Node{Kind: KindItem}.with(Node{Kind: KindLink, Text: displayURL(p.Website), Href: p.Website}))
	}
	if len(contact.Children) > 0 {
		header.Children = append(header.Children, contact)
	}
	if p.WorkPermit != "" {
		header.Children = append(header.Children, Node{Kind: KindMeta, Class: style.class("permit"), Text: p.WorkPermit})
	}
	return header
}

func displayURL(raw string) string {
	out := strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	return strings.TrimSuffix(strings.TrimPrefix(out, "www."), "/")
}

// SectionNode renders ps with the shared markup.
func SectionNode(ps PlannedSection, style Style) Node {
	label := ps.Label
	if style.UpperHeadings {
		label = strings.ToUpper(label)
	}
	node := Node{
		Kind:    KindSection,
		Class:   style.class("section") + " " + style.class(string(ps.Section.Type)),
		Section: ps.Section.Type,
	}
	node.Children = append(node.Children, Node{Kind: KindHeading, Class: style.class("heading"), Text: label})
	node.Children = append(node.Children, sectionBody(ps.Section, style)...)
	return node
}

func sectionBody(s cv.Section, style Style) []Node {
	switch s.Type {
	case cv.SectionSummary:
		return summaryNodes(s.Summary, style)
	case cv.SectionSkills:
		return []Node{{Kind: KindLine, Class: style.class("skills"), Text: SkillsLine(s.Skills)}}
	case cv.SectionExperience:
		out := make([]Node, 0, len(s.Experience))
		for _, item := range s.Experience {
			entry := entryNode(style, item.Role, item.Company, DateRange(item.Start, item.End))
			if item.Location != "" {
				entry.Children = append(entry.Children, Node{Kind: KindMeta, Class: style.class("location"), Text: item.Location})
			}
			if len(item.Bullets) > 0 {
				list := Node{Kind: KindList, Class: style.class("bullets")}
				for _, bullet := range item.Bullets {
					list.Children = append(list.Children, Node{Kind: KindItem, Text: bullet})
				}
				entry.Children = append(entry.Children, list)
			}
			out = append(out, entry)
		}
		return out
	case cv.SectionEducation:
		out := make([]Node, 0, len(s.Education))
		for _, item := range s.Education {
			title := item.Degree
			if item.Field != "" {
				title += " in " + item.Field
			}
			entry := entryNode(style, title, item.Institution, DateRange(item.Start, item.End))
			if item.Grade != "" {
				entry.Children = append(entry.Children, Node{Kind: KindMeta, Class: style.class("grade"), Text: "Grade: " + item.Grade})
			}
			out = append(out, entry)
		}
		return out
	case cv.SectionCertifications:
		out := make([]Node, 0, len(s.Certifications))
		for _, item := range s.Certifications {
			entry := entryNode(style, item.Name, item.Issuer, DateRange(item.IssueDate, item.ExpiryDate))
			if item.CredentialID != "" {
				entry.Children = append(entry.Children, Node{Kind: KindMeta, Class: style.class("credential"), Text: "Credential ID: " + item.CredentialID})
			}
			if item.URL != "" {
				entry.Children = append(entry.Children, Node{Kind: KindLink, Text: displayURL(item.URL), Href: item.URL})
			}
			out = append(out, entry)
		}
		return out
	case cv.SectionLanguages:
		list := Node{Kind: KindList, Class: style.class("languages")}
		for _, item := range s.Languages {
			list.Children = append(list.Children, Node{Kind: KindItem, Text: item.Language + " (" + ProficiencyLabel(item.Proficiency) + ")"})
		}
		return []Node{list}
	case cv.SectionVolunteer:
		out := make([]Node, 0, len(s.Volunteer))
		for _, item := range s.Volunteer {
			entry := entryNode(style, item.Role, item.Organization, DateRange(item.Start, item.End))
			if item.Description != "" {
				entry.Children = append(entry.Children, Node{Kind: KindParagraph, Text: item.Description})
			}
			out = append(out, entry)
		}
		return out
	case cv.SectionAwards:
		out := make([]Node, 0, len(s.Awards))
		for _, item := range s.Awards {
			entry := entryNode(style, item.Title, item.Issuer, item.Date)
			if item.Description != "" {
				entry.Children = append(entry.Children, Node{Kind: KindParagraph, Text: item.Description})
			}
			out = append(out, entry)
		}
		return out
	case cv.SectionPublications:
		out := make([]Node, 0, len(s.Publications))
		for _, item := range s.Publications {
			entry := entryNode(style, item.Title, item.Publisher, item.Date)
			if item.URL != "" {
				entry.Children = append(entry.Children, Node{Kind: KindLink, Text: displayURL(item.URL), Href: item.URL})
			}
			out = append(out, entry)
		}
		return out
	case cv.SectionReferences:
		return referenceNodes(s.References, style)
	default:
		return nil
	}
}

func entryNode(style Style, title, subtitle, dates string) Node {
	entry := Node{Kind: KindEntry, Class: style.class("entry")}
	var head []Node
	if style.Inline && subtitle != "" {
		head = append(head, Node{Kind: KindTitle, Class: style.class("title"), Text: title + ", " + subtitle})
	} else {
		head = append(head, Node{Kind: KindTitle, Class: style.class("title"), Text: title})
		if subtitle != "" {
			head = append(head, Node{Kind: KindSubtitle, Class: style.class("subtitle"), Text: subtitle})
		}
	}
	if dates == "" {
		entry.Children = head
		return entry
	}
	date := Node{Kind: KindDate, Class: style.class("date"), Text: dates}
	if style.DateFirst {
		entry.Children = append([]Node{date}, head...)
		return entry
	}
	entry.Children = append(head, date)
	return entry
}

// summaryNodes renders markdown-lite: blank lines split paragraphs and
// lines starting with "- " or "* " form bullet lists.
func summaryNodes(text string, style Style) []Node {
	var out []Node
	var para []string
	var list *Node
	flushPara := func() {
		if len(para) > 0 {
			out = append(out, Node{Kind: KindParagraph, Class: style.class("summary"), Text: strings.Join(para, " ")})
			para = nil
		}
	}
	flushList := func() {
		if list != nil {
			out = append(out, *list)
			list = nil
		}
	}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flushPara()
			flushList()
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			flushPara()
			if list == nil {
				list = &Node{Kind: KindList, Class: style.class("summary-list")}
			}
			list.Children = append(list.Children, Node{Kind: KindItem, Text: strings.TrimSpace(line[2:])})
		default:
			flushList()
			para = append(para, line)
		}
	}
	flushPara()
	flushList()
	return out
}

func referenceNodes(refs *cv.References, style Style) []Node {
	if refs == nil {
		return nil
	}
	if refs.Mode == cv.ReferencesOnRequest {
		return []Node{{Kind: KindParagraph, Class: style.class("references"), Text: "References available on request."}}
	}
	out := make([]Node, 0, len(refs.Contacts))
	for _, contact := range refs.Contacts {
		var subtitle []string
		if contact.Relationship != "" {
			subtitle = append(subtitle, contact.Relationship)
		}
		if contact.Company != "" {
			subtitle = append(subtitle, contact.Company)
		}
		entry := entryNode(style, contact.Name, strings.Join(subtitle, ", "), "")
		if contact.Email != "" {
			entry.Children = append(entry.Children, Node{Kind: KindLink, Text: contact.Email, Href: "mailto:" + contact.Email})
		}
		if contact.Phone != "" {
			entry.Children = append(entry.Children, Node{Kind: KindMeta, Text: contact.Phone})
		}
		out = append(out, entry)
	}
	return out
}

// Initials returns up to two capital initials of name.
func Initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			out = append(out, []rune(strings.ToUpper(string(r)))...)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
