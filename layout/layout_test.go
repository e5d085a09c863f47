package layout

import (
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-cvbuilder/cv"
)

func scenarioDocument() cv.Document {
	doc := cv.NewDocument("doc-1")
	doc.Personal = cv.Personal{FullName: "Jane Byrne"}
	for i := range doc.Sections {
		switch doc.Sections[i].Type {
		case cv.SectionExperience:
			doc.Sections[i].Experience = []cv.ExperienceItem{{
				Company: "Acme", Role: "Engineer", Start: "2020-01", End: cv.Present, Bullets: []string{"Shipped X"},
			}}
		case cv.SectionSkills:
			doc.Sections[i].Skills = []string{"TypeScript", "React"}
		}
	}
	doc.SectionVisibility = map[cv.SectionType]bool{cv.SectionAwards: false, cv.SectionReferences: false}
	return doc
}

func TestScenarioRendersSameContentInEveryTemplate(t *testing.T) {
	reg := NewRegistry()
	doc := scenarioDocument()

	for _, info := range reg.List() {
		tree, err := reg.Render(doc, info.ID)
		if err != nil {
			t.Fatalf("%s: render: %v", info.ID, err)
		}

		headers := tree.FindAll(KindHeader)
		if len(headers) != 1 || !strings.Contains(headers[0].PlainText(), "Jane Byrne") {
			t.Fatalf("%s: expected header with name, got %+v", info.ID, headers)
		}

		got := tree.Sections()
		if len(got) != 2 {
			t.Fatalf("%s: expected experience and skills only, got %v", info.ID, got)
		}

		exp, ok := tree.FindSection(cv.SectionExperience)
		if !ok {
			t.Fatalf("%s: missing experience", info.ID)
		}
		if entries := exp.FindAll(KindEntry); len(entries) != 1 {
			t.Fatalf("%s: expected one entry, got %d", info.ID, len(entries))
		}
		dates := exp.FindAll(KindDate)
		if len(dates) != 1 || dates[0].Text != "2020-01 - Present" {
			t.Fatalf("%s: unexpected dates %+v", info.ID, dates)
		}

		skills, _ := tree.FindSection(cv.SectionSkills)
		lines := skills.FindAll(KindLine)
		if len(lines) != 1 || lines[0].Text != "TypeScript, React" {
			t.Fatalf("%s: unexpected skills line %+v", info.ID, lines)
		}

		text := tree.PlainText()
		for _, heading := range []string{"Education", "Certifications", "Awards", "References", "Languages"} {
			if strings.Contains(strings.ToLower(text), strings.ToLower(heading)) {
				t.Fatalf("%s: unexpected heading %q in\n%s", info.ID, heading, text)
			}
		}
	}
}

func TestRegistryHasFourTemplates(t *testing.T) {
	var ids []string
	for _, info := range NewRegistry().List() {
		ids = append(ids, info.ID)
	}
	if !reflect.DeepEqual(ids, []string{"cork", "dublin", "london", "stockholm"}) {
		t.Fatalf("unexpected templates %v", ids)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := NewRegistry().Render(cv.NewDocument("d"), "paris")
	if cv.KindFromError(err) != cv.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRenderFallsBackToDocumentTemplate(t *testing.T) {
	doc := scenarioDocument()
	doc.TemplateID = "stockholm"
	tree, err := NewRegistry().Render(doc, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if tree.Class != "cv cv-stockholm" {
		t.Fatalf("expected stockholm, got %q", tree.Class)
	}
}

func TestRegionsKeepRegistryOrder(t *testing.T) {
	doc := fullDocument()
	// storage order reversed must not matter
	for i, j := 0, len(doc.Sections)-1; i < j; i, j = i+1, j-1 {
		doc.Sections[i], doc.Sections[j] = doc.Sections[j], doc.Sections[i]
	}

	reg := NewRegistry()
	for _, id := range []string{"stockholm", "cork"} {
		tree, err := reg.Render(doc, id)
		if err != nil {
			t.Fatalf("render %s: %v", id, err)
		}
		for _, region := range tree.FindAll(KindRegion) {
			last := -1
			for _, typ := range region.Sections() {
				meta, _ := cv.DefaultRegistry().Lookup(typ)
				if meta.Order <= last {
					t.Fatalf("%s/%s: out of order %v", id, region.Class, region.Sections())
				}
				last = meta.Order
			}
		}
	}

	tree, _ := reg.Render(doc, "stockholm")
	body := tree.FindAll(KindBody)[0]
	if body.Children[0].Class != string(RegionSidebar) {
		t.Fatalf("expected stockholm sidebar on the left")
	}
	sidebar := body.Children[0].Sections()
	if !reflect.DeepEqual(sidebar, []cv.SectionType{cv.SectionEducation, cv.SectionSkills, cv.SectionCertifications, cv.SectionLanguages}) {
		t.Fatalf("unexpected stockholm sidebar %v", sidebar)
	}
}

func TestOptionalFieldsAreOmitted(t *testing.T) {
	doc := cv.NewDocument("d")
	doc.Personal = cv.Personal{FullName: "Jane Byrne", Email: "jane@example.ie"}
	for i := range doc.Sections {
		if doc.Sections[i].Type == cv.SectionEducation {
			doc.Sections[i].Education = []cv.EducationItem{{Institution: "UCD", Degree: "BA", Start: "2010-09"}}
		}
	}
	tree, err := NewRegistry().Render(doc, "dublin")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := tree.PlainText()
	if strings.Contains(text, "Grade") || strings.Contains(text, "linkedin") {
		t.Fatalf("expected optional lines to be omitted:\n%s", text)
	}
	edu, _ := tree.FindSection(cv.SectionEducation)
	if dates := edu.FindAll(KindDate); len(dates) != 1 || dates[0].Text != "2010-09" {
		t.Fatalf("unexpected dates %+v", dates)
	}
}

func TestSummaryMarkdownLite(t *testing.T) {
	nodes := summaryNodes("First line\ncontinues.\n\n- one\n- two\nAfter list.", Style{})
	if len(nodes) != 3 {
		t.Fatalf("expected paragraph, list, paragraph; got %+v", nodes)
	}
	if nodes[0].Text != "First line continues." || nodes[1].Kind != KindList || len(nodes[1].Children) != 2 || nodes[2].Text != "After list." {
		t.Fatalf("unexpected nodes %+v", nodes)
	}
}

func TestInitials(t *testing.T) {
	if got := Initials("jane mary byrne"); got != "JM" {
		t.Fatalf("unexpected initials %q", got)
	}
	if got := Initials(""); got != "" {
		t.Fatalf("expected empty initials, got %q", got)
	}
}
