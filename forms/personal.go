package forms

import (
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-cvbuilder/cv"
)

var personalSetters = map[string]func(*cv.Personal, string){
	"fullName":   func(p *cv.Personal, v string) { p.FullName = v },
	"title":      func(p *cv.Personal, v string) { p.Title = v },
	"email":      func(p *cv.Personal, v string) { p.Email = strings.TrimSpace(v) },
	"phone":      func(p *cv.Personal, v string) { p.Phone = strings.TrimSpace(v) },
	"address":    func(p *cv.Personal, v string) { p.Address = v },
	"linkedin":   func(p *cv.Personal, v string) { p.LinkedIn = strings.TrimSpace(v) },
	"website":    func(p *cv.Personal, v string) { p.Website = strings.TrimSpace(v) },
	"workPermit": func(p *cv.Personal, v string) { p.WorkPermit = v },
}

// PersonalForm edits the personal details.
type PersonalForm struct {
	store  *cv.Store
	def    Definition
	draft  cv.Personal
	errors Errors
}

var _ Form = (*PersonalForm)(nil)

// NewPersonalForm creates the form with the stored details as draft.
func NewPersonalForm(store *cv.Store) *PersonalForm {
	f := &PersonalForm{store: store, def: definition(registryOf(store), cv.SectionPersonal, false, personalFields...)}
	f.Load()
	return f
}

func (f *PersonalForm) Section() cv.SectionType { return cv.SectionPersonal }
func (f *PersonalForm) Definition() Definition  { return f.def }
func (f *PersonalForm) Errors() Errors          { return f.errors }
func (f *PersonalForm) Draft() cv.Personal      { return f.draft }

// Load copies the stored details into the draft.
func (f *PersonalForm) Load() {
	f.draft = f.store.Snapshot().Personal
	f.errors = nil
}

// SetDraft replaces the draft.
func (f *PersonalForm) SetDraft(p cv.Personal) {
	f.draft = p
	f.errors = nil
}

func (f *PersonalForm) SetField(name, value string) error {
	set, ok := personalSetters[name]
	if !ok {
		return unknownField(cv.SectionPersonal, name)
	}
	set(&f.draft, value)
	delete(f.errors, name)
	return nil
}

func (f *PersonalForm) Validate() Errors {
	f.errors = errorsFrom(cv.ValidatePersonal(f.draft))
	return f.errors
}

// Submit stores the draft when valid.
func (f *PersonalForm) Submit() (cv.Document, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return f.store.Snapshot(), formError(cv.SectionPersonal, errs)
	}
	doc, err := f.store.UpdatePersonal(f.draft)
	if err != nil {
		f.errors = errorsFrom(err)
		return f.store.Snapshot(), err
	}
	return doc, nil
}

func (f *PersonalForm) SubmitJSON(raw []byte) (cv.Document, error) {
	value, err := DecodePayload(cv.SectionPersonal, raw)
	if err != nil {
		f.errors = errorsFrom(err)
		return f.store.Snapshot(), err
	}
	f.draft = value.(cv.Personal)
	return f.Submit()
}

// SummaryForm edits the professional summary.
type SummaryForm struct {
	store  *cv.Store
	def    Definition
	draft  string
	errors Errors
}

var _ Form = (*SummaryForm)(nil)

// NewSummaryForm creates the form with the stored summary as draft.
func NewSummaryForm(store *cv.Store) *SummaryForm {
	f := &SummaryForm{store: store, def: definition(registryOf(store), cv.SectionSummary, false, summaryFields...)}
	f.Load()
	return f
}

func (f *SummaryForm) Section() cv.SectionType { return cv.SectionSummary }
func (f *SummaryForm) Definition() Definition  { return f.def }
func (f *SummaryForm) Errors() Errors          { return f.errors }
func (f *SummaryForm) Draft() string           { return f.draft }

func (f *SummaryForm) Load() {
	f.draft = sectionOf(f.store.Snapshot(), cv.SectionSummary).Summary
	f.errors = nil
}

// SetText replaces the draft text.
func (f *SummaryForm) SetText(text string) {
	f.draft = text
	f.errors = nil
}

func (f *SummaryForm) SetField(name, value string) error {
	if name != "summary" {
		return unknownField(cv.SectionSummary, name)
	}
	f.SetText(value)
	return nil
}

// Length counts characters in the draft.
func (f *SummaryForm) Length() int {
	return utf8.RuneCountInString(f.draft)
}

// Remaining returns how many characters may still be added.
func (f *SummaryForm) Remaining() int {
	return cv.SummaryMaxLength - f.Length()
}

func (f *SummaryForm) Validate() Errors {
	f.errors = errorsFrom(cv.ValidateSummary(f.draft))
	return f.errors
}

func (f *SummaryForm) Submit() (cv.Document, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return f.store.Snapshot(), formError(cv.SectionSummary, errs)
	}
	doc, err := f.store.UpdateSummary(f.draft)
	if err != nil {
		f.errors = errorsFrom(err)
		return f.store.Snapshot(), err
	}
	return doc, nil
}

func (f *SummaryForm) SubmitJSON(raw []byte) (cv.Document, error) {
	value, err := DecodePayload(cv.SectionSummary, raw)
	if err != nil {
		f.errors = errorsFrom(err)
		return f.store.Snapshot(), err
	}
	f.draft = value.(string)
	return f.Submit()
}
