package forms

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-cvbuilder/cv"
)

// Set holds one form per section type, all writing to the same store.
// Its write methods are serialized so concurrent callers never observe
// each other's drafts.
type Set struct {
	Personal       *PersonalForm
	Summary        *SummaryForm
	Experience     *ExperienceForm
	Education      *ListForm[cv.EducationItem]
	Skills         *SkillsForm
	Certifications *ListForm[cv.CertificationItem]
	Languages      *ListForm[cv.LanguageItem]
	Volunteer      *ListForm[cv.VolunteerItem]
	Awards         *ListForm[cv.AwardItem]
	Publications   *ListForm[cv.PublicationItem]
	References     *ReferencesForm

	store *cv.Store
	mu    sync.Mutex
}

// NewSet builds every section form for store.
func NewSet(store *cv.Store) *Set {
	return &Set{
		Personal:       NewPersonalForm(store),
		Summary:        NewSummaryForm(store),
		Experience:     NewExperienceForm(store),
		Education:      NewEducationForm(store),
		Skills:         NewSkillsForm(store),
		Certifications: NewCertificationsForm(store),
		Languages:      NewLanguagesForm(store),
		Volunteer:      NewVolunteerForm(store),
		Awards:         NewAwardsForm(store),
		Publications:   NewPublicationsForm(store),
		References:     NewReferencesForm(store),
		store:          store,
	}
}

// Form returns the form for a section type.
func (s *Set) Form(section cv.SectionType) (Form, bool) {
	for _, f := range s.all() {
		if f.Section() == section {
			return f, true
		}
	}
	return nil, false
}

// List returns the list editor for a list section type.
func (s *Set) List(section cv.SectionType) (ListEditor, bool) {
	f, ok := s.Form(section)
	if !ok {
		return nil, false
	}
	editor, ok := f.(ListEditor)
	return editor, ok
}

// Definitions describes every form in registry order.
func (s *Set) Definitions() []Definition {
	forms := s.all()
	out := make([]Definition, 0, len(forms))
	for _, meta := range registryOf(s.store).Metas() {
		if f, ok := s.Form(meta.ID); ok {
			out = append(out, f.Definition())
		}
	}
	return out
}

// Submit decodes raw into the section's form and writes it. A non-nil
// index replaces that entry of a list section; list sections otherwise
// append.
func (s *Set) Submit(section cv.SectionType, index *int, raw []byte) (cv.Document, error) {
	form, ok := s.Form(section)
	if !ok {
		return s.store.Snapshot(), cv.NewError(cv.KindValidation, fmt.Sprintf("unknown section type %q", section), nil)
	}
	editor, isList := form.(ListEditor)
	if index != nil && !isList {
		return s.store.Snapshot(), cv.NewError(cv.KindValidation, fmt.Sprintf("section %q has no entries", section), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if isList {
		if index != nil {
			if err := editor.Edit(*index); err != nil {
				return s.store.Snapshot(), err
			}
		} else {
			editor.New()
		}
		defer editor.New()
	}
	return form.SubmitJSON(raw)
}

// Remove deletes an entry of a list section.
func (s *Set) Remove(section cv.SectionType, index int) (cv.Document, error) {
	editor, err := s.editor(section)
	if err != nil {
		return s.store.Snapshot(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return editor.Remove(index)
}

// Move reorders an entry of a list section.
func (s *Set) Move(section cv.SectionType, from, to int) (cv.Document, error) {
	editor, err := s.editor(section)
	if err != nil {
		return s.store.Snapshot(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return editor.Move(from, to)
}

// ClearReferences empties the references section.
func (s *Set) ClearReferences() (cv.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.References.Clear()
}

func (s *Set) editor(section cv.SectionType) (ListEditor, error) {
	editor, ok := s.List(section)
	if !ok {
		return nil, cv.NewError(cv.KindNotFound, fmt.Sprintf("section %q has no entries", section), nil)
	}
	return editor, nil
}

// Reload refreshes every draft from the store, e.g. after Load or Reset.
func (s *Set) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.all() {
		f.Load()
	}
}

func (s *Set) all() []Form {
	return []Form{
		s.Personal, s.Summary, s.Experience, s.Education, s.Skills, s.Certifications,
		s.Languages, s.Volunteer, s.Awards, s.Publications, s.References,
	}
}
