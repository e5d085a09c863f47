package forms

import (
	"slices"
	"strings"

	"github.com/goliatone/go-cvbuilder/cv"
)

var contactSetters = map[string]func(*cv.ReferenceContact, string){
	"name":         func(c *cv.ReferenceContact, v string) { c.Name = v },
	"relationship": func(c *cv.ReferenceContact, v string) { c.Relationship = v },
	"company":      func(c *cv.ReferenceContact, v string) { c.Company = v },
	"email":        func(c *cv.ReferenceContact, v string) { c.Email = strings.TrimSpace(v) },
	"phone":        func(c *cv.ReferenceContact, v string) { c.Phone = strings.TrimSpace(v) },
}

// ReferencesForm edits the references mode and, in detailed mode, the
// list of contacts. Contacts are staged in the draft and written on
// Submit.
type ReferencesForm struct {
	store   *cv.Store
	def     Definition
	draft   cv.References
	contact cv.ReferenceContact
	errors  Errors
}

var _ Form = (*ReferencesForm)(nil)

// NewReferencesForm creates the form from the stored references.
func NewReferencesForm(store *cv.Store) *ReferencesForm {
	f := &ReferencesForm{store: store, def: definition(registryOf(store), cv.SectionReferences, false, referenceFields...)}
	f.Load()
	return f
}

func (f *ReferencesForm) Section() cv.SectionType      { return cv.SectionReferences }
func (f *ReferencesForm) Definition() Definition       { return f.def }
func (f *ReferencesForm) Errors() Errors               { return f.errors }
func (f *ReferencesForm) Draft() cv.References         { return f.draft }
func (f *ReferencesForm) Contact() cv.ReferenceContact { return f.contact }

// Load copies the stored references into the draft. An empty section
// starts in on-request mode.
func (f *ReferencesForm) Load() {
	f.draft = cv.References{Mode: cv.ReferencesOnRequest}
	if refs := sectionOf(f.store.Snapshot(), cv.SectionReferences).References; refs != nil {
		f.draft = cv.References{Mode: refs.Mode, Contacts: slices.Clone(refs.Contacts)}
	}
	f.contact = cv.ReferenceContact{}
	f.errors = nil
}

// SetMode switches between on-request and detailed.
func (f *ReferencesForm) SetMode(mode cv.ReferencesMode) {
	f.draft.Mode = mode
	delete(f.errors, "references.mode")
}

// SetField sets "mode" or a field of the contact being composed.
func (f *ReferencesForm) SetField(name, value string) error {
	if name == "mode" {
		f.SetMode(cv.ReferencesMode(value))
		return nil
	}
	set, ok := contactSetters[name]
	if !ok {
		return unknownField(cv.SectionReferences, name)
	}
	set(&f.contact, value)
	delete(f.errors, name)
	return nil
}

// AddContact validates the composed contact and stages it.
func (f *ReferencesForm) AddContact() bool {
	if errs := errorsFrom(cv.ValidateReferenceContact(f.contact)); len(errs) > 0 {
		f.errors = errs
		return false
	}
	f.draft.Contacts = append(slices.Clone(f.draft.Contacts), f.contact)
	f.contact = cv.ReferenceContact{}
	f.errors = nil
	return true
}

// RemoveContact unstages the contact at index.
func (f *ReferencesForm) RemoveContact(index int) bool {
	if index < 0 || index >= len(f.draft.Contacts) {
		return false
	}
	f.draft.Contacts = slices.Delete(slices.Clone(f.draft.Contacts), index, index+1)
	return true
}

// payload drops staged contacts in on-request mode; they are kept in the
// draft so switching back does not lose them.
func (f *ReferencesForm) payload() cv.References {
	refs := f.draft
	if refs.Mode == cv.ReferencesOnRequest {
		refs.Contacts = nil
	}
	return refs
}

func (f *ReferencesForm) Validate() Errors {
	refs := f.payload()
	f.errors = errorsFrom(cv.ValidateSection(cv.Section{Type: cv.SectionReferences, References: &refs}))
	return f.errors
}

// Submit writes the references when valid.
func (f *ReferencesForm) Submit() (cv.Document, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return f.store.Snapshot(), formError(cv.SectionReferences, errs)
	}
	doc, err := f.store.UpdateReferences(f.payload())
	if err != nil {
		f.errors = errorsFrom(err)
		return f.store.Snapshot(), err
	}
	return doc, nil
}

// Clear removes the references section content.
func (f *ReferencesForm) Clear() (cv.Document, error) {
	doc, err := f.store.ClearReferences()
	if err != nil {
		return f.store.Snapshot(), err
	}
	f.Load()
	return doc, nil
}

func (f *ReferencesForm) SubmitJSON(raw []byte) (cv.Document, error) {
	value, err := DecodePayload(cv.SectionReferences, raw)
	if err != nil {
		f.errors = errorsFrom(err)
		return f.store.Snapshot(), err
	}
	f.draft = value.(cv.References)
	return f.Submit()
}
