package forms

import (
	"github.com/goliatone/go-cvbuilder/cv"
)

// Input types used in Field.Type.
const (
	InputText     = "text"
	InputTextArea = "textarea"
	InputEmail    = "email"
	InputPhone    = "tel"
	InputURL      = "url"
	InputMonth    = "month"
	InputSelect   = "select"
	InputList     = "list"
)

// Field describes a form input for UI builders.
type Field struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Type      string   `json:"type"`
	Required  bool     `json:"required,omitempty"`
	Options   []string `json:"options,omitempty"`
	Hint      string   `json:"hint,omitempty"`
	MinLength int      `json:"min_length,omitempty"`
	MaxLength int      `json:"max_length,omitempty"`
}

// Definition describes a section form.
type Definition struct {
	Section  cv.SectionType `json:"section"`
	Title    string         `json:"title"`
	List     bool           `json:"list"`
	MaxItems int            `json:"max_items,omitempty"`
	Fields   []Field        `json:"fields"`
}

const (
	monthHint = "YYYY-MM"
	endHint   = "YYYY-MM or Present"
	phoneHint = "+353 8X XXX XXXX or +353 1 XXX XXXX"
)

func definition(reg *cv.SectionRegistry, typ cv.SectionType, list bool, fields ...Field) Definition {
	return Definition{
		Section:  typ,
		Title:    reg.Label(typ),
		List:     list,
		MaxItems: reg.MaxItems(typ),
		Fields:   fields,
	}
}

var (
	personalFields = []Field{
		{Name: "fullName", Label: "Full name", Type: InputText, Required: true},
		{Name: "title", Label: "Professional title", Type: InputText},
		{Name: "email", Label: "Email", Type: InputEmail, Required: true},
		{Name: "phone", Label: "Phone", Type: InputPhone, Required: true, Hint: phoneHint},
		{Name: "address", Label: "Address", Type: InputText, Required: true, Hint: "Must include Dublin or Ireland"},
		{Name: "linkedin", Label: "LinkedIn", Type: InputURL},
		{Name: "website", Label: "Website", Type: InputURL},
		{Name: "workPermit", Label: "Work permit", Type: InputText},
	}
	summaryFields = []Field{
		{Name: "summary", Label: "Summary", Type: InputTextArea, Required: true, MinLength: cv.SummaryMinLength, MaxLength: cv.SummaryMaxLength, Hint: "Blank lines split paragraphs; lines starting with - become bullets"},
	}
	experienceFields = []Field{
		{Name: "company", Label: "Company", Type: InputText, Required: true},
		{Name: "role", Label: "Role", Type: InputText, Required: true},
		{Name: "location", Label: "Location", Type: InputText},
		{Name: "start", Label: "Start", Type: InputMonth, Required: true, Hint: monthHint},
		{Name: "end", Label: "End", Type: InputMonth, Hint: endHint},
		{Name: "bullets", Label: "Highlights", Type: InputList, MaxLength: cv.BulletMaxLength, Hint: "One per line"},
	}
	educationFields = []Field{
		{Name: "institution", Label: "Institution", Type: InputText, Required: true},
		{Name: "degree", Label: "Degree", Type: InputText, Required: true},
		{Name: "field", Label: "Field of study", Type: InputText},
		{Name: "start", Label: "Start", Type: InputMonth, Required: true, Hint: monthHint},
		{Name: "end", Label: "End", Type: InputMonth, Hint: endHint},
		{Name: "grade", Label: "Grade", Type: InputText},
	}
	skillFields = []Field{
		{Name: "skill", Label: "Skill", Type: InputText, Required: true, MinLength: cv.SkillMinLength, MaxLength: cv.SkillMaxLength},
	}
	certificationFields = []Field{
		{Name: "name", Label: "Name", Type: InputText, Required: true},
		{Name: "issuer", Label: "Issuer", Type: InputText, Required: true},
		{Name: "issueDate", Label: "Issued", Type: InputMonth, Required: true, Hint: monthHint},
		{Name: "expiryDate", Label: "Expires", Type: InputMonth, Hint: monthHint},
		{Name: "credentialId", Label: "Credential ID", Type: InputText},
		{Name: "url", Label: "Credential URL", Type: InputURL},
	}
	languageFields = []Field{
		{Name: "language", Label: "Language", Type: InputText, Required: true},
		{Name: "proficiency", Label: "Proficiency", Type: InputSelect, Required: true, Options: []string{
			cv.ProficiencyNative, cv.ProficiencyC2, cv.ProficiencyC1, cv.ProficiencyB2, cv.ProficiencyB1, cv.ProficiencyA2, cv.ProficiencyA1,
		}},
	}
	volunteerFields = []Field{
		{Name: "organization", Label: "Organisation", Type: InputText, Required: true},
		{Name: "role", Label: "Role", Type: InputText, Required: true},
		{Name: "start", Label: "Start", Type: InputMonth, Required: true, Hint: monthHint},
		{Name: "end", Label: "End", Type: InputMonth, Hint: endHint},
		{Name: "description", Label: "Description", Type: InputTextArea},
	}
	awardFields = []Field{
		{Name: "title", Label: "Title", Type: InputText, Required: true},
		{Name: "issuer", Label: "Issuer", Type: InputText},
		{Name: "date", Label: "Date", Type: InputMonth, Required: true, Hint: monthHint},
		{Name: "description", Label: "Description", Type: InputTextArea},
	}
	publicationFields = []Field{
		{Name: "title", Label: "Title", Type: InputText, Required: true},
		{Name: "publisher", Label: "Publisher", Type: InputText, Required: true},
		{Name: "date", Label: "Date", Type: InputMonth, Required: true, Hint: monthHint},
		{Name: "url", Label: "URL", Type: InputURL},
	}
	referenceFields = []Field{
		{Name: "mode", Label: "Presentation", Type: InputSelect, Required: true, Options: []string{string(cv.ReferencesOnRequest), string(cv.ReferencesDetailed)}},
		{Name: "name", Label: "Name", Type: InputText, Required: true, Hint: "Detailed mode only"},
		{Name: "relationship", Label: "Relationship", Type: InputText},
		{Name: "company", Label: "Company", Type: InputText},
		{Name: "email", Label: "Email", Type: InputEmail},
		{Name: "phone", Label: "Phone", Type: InputPhone, Hint: phoneHint},
	}
)
