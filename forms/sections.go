package forms

import (
	"slices"
	"strings"

	"github.com/goliatone/go-cvbuilder/cv"
)

func registryOf(store *cv.Store) *cv.SectionRegistry {
	if store.Registry != nil {
		return store.Registry
	}
	return cv.DefaultRegistry()
}

func sectionOf(doc cv.Document, typ cv.SectionType) cv.Section {
	s, _ := doc.Section(typ)
	return s
}

func splitLines(value string) []string {
	var out []string
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ExperienceForm edits work history entries and their bullets.
type ExperienceForm struct {
	*ListForm[cv.ExperienceItem]
}

// NewExperienceForm creates the experience form.
func NewExperienceForm(store *cv.Store) *ExperienceForm {
	def := definition(registryOf(store), cv.SectionExperience, true, experienceFields...)
	return &ExperienceForm{newListForm(store, def, listOps[cv.ExperienceItem]{
		items:    func(d cv.Document) []cv.ExperienceItem { return sectionOf(d, cv.SectionExperience).Experience },
		add:      store.AddExperience,
		update:   store.UpdateExperience,
		remove:   store.RemoveExperience,
		move:     store.MoveExperience,
		validate: cv.ValidateExperienceItem,
		fields: map[string]func(*cv.ExperienceItem, string){
			"company":  func(i *cv.ExperienceItem, v string) { i.Company = v },
			"role":     func(i *cv.ExperienceItem, v string) { i.Role = v },
			"location": func(i *cv.ExperienceItem, v string) { i.Location = v },
			"start":    func(i *cv.ExperienceItem, v string) { i.Start = v },
			"end":      func(i *cv.ExperienceItem, v string) { i.End = v },
			"bullets":  func(i *cv.ExperienceItem, v string) { i.Bullets = splitLines(v) },
		},
	})}
}

// AddBullet appends a highlight to the draft.
func (f *ExperienceForm) AddBullet(text string) {
	f.draft.Bullets = append(slices.Clone(f.draft.Bullets), text)
}

// SetBullet replaces the highlight at index.
func (f *ExperienceForm) SetBullet(index int, text string) bool {
	if index < 0 || index >= len(f.draft.Bullets) {
		return false
	}
	bullets := slices.Clone(f.draft.Bullets)
	bullets[index] = text
	f.draft.Bullets = bullets
	return true
}

// RemoveBullet drops the highlight at index.
func (f *ExperienceForm) RemoveBullet(index int) bool {
	if index < 0 || index >= len(f.draft.Bullets) {
		return false
	}
	f.draft.Bullets = slices.Delete(slices.Clone(f.draft.Bullets), index, index+1)
	return true
}

// MarkCurrent sets the draft end date to Present.
func (f *ExperienceForm) MarkCurrent() {
	f.draft.End = cv.Present
}

// NewEducationForm creates the education form.
func NewEducationForm(store *cv.Store) *ListForm[cv.EducationItem] {
	def := definition(registryOf(store), cv.SectionEducation, true, educationFields...)
	return newListForm(store, def, listOps[cv.EducationItem]{
		items:    func(d cv.Document) []cv.EducationItem { return sectionOf(d, cv.SectionEducation).Education },
		add:      store.AddEducation,
		update:   store.UpdateEducation,
		remove:   store.RemoveEducation,
		move:     store.MoveEducation,
		validate: cv.ValidateEducationItem,
		fields: map[string]func(*cv.EducationItem, string){
			"institution": func(i *cv.EducationItem, v string) { i.Institution = v },
			"degree":      func(i *cv.EducationItem, v string) { i.Degree = v },
			"field":       func(i *cv.EducationItem, v string) { i.Field = v },
			"start":       func(i *cv.EducationItem, v string) { i.Start = v },
			"end":         func(i *cv.EducationItem, v string) { i.End = v },
			"grade":       func(i *cv.EducationItem, v string) { i.Grade = v },
		},
	})
}

// SkillsForm edits the skills list one label at a time.
type SkillsForm struct {
	*ListForm[string]
}

// NewSkillsForm creates the skills form.
func NewSkillsForm(store *cv.Store) *SkillsForm {
	def := definition(registryOf(store), cv.SectionSkills, true, skillFields...)
	replaceAt := func(index int, skill string) (cv.Document, error) {
		skills := slices.Clone(sectionOf(store.Snapshot(), cv.SectionSkills).Skills)
		if index < 0 || index >= len(skills) {
			return store.Snapshot(), cv.NewError(cv.KindNotFound, "skill not found", nil)
		}
		skills[index] = skill
		return store.UpdateSkills(skills)
	}
	return &SkillsForm{
		ListForm: newListForm(store, def, listOps[string]{
			items:    func(d cv.Document) []string { return sectionOf(d, cv.SectionSkills).Skills },
			add:      store.AddSkill,
			update:   replaceAt,
			remove:   store.RemoveSkill,
			move:     store.MoveSkill,
			validate: cv.ValidateSkill,
			fields: map[string]func(*string, string){
				"skill": func(s *string, v string) { *s = strings.TrimSpace(v) },
			},
		}),
	}
}

// Replace swaps the whole skills list. Comma or newline separated input
// is accepted through ParseSkills.
func (f *SkillsForm) Replace(skills []string) (cv.Document, error) {
	doc, err := f.store.UpdateSkills(skills)
	if err != nil {
		f.errors = errorsFrom(err)
		return f.store.Snapshot(), err
	}
	f.New()
	return doc, nil
}

// ParseSkills splits free text on commas and newlines.
func ParseSkills(text string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NewCertificationsForm creates the certifications form.
func NewCertificationsForm(store *cv.Store) *ListForm[cv.CertificationItem] {
	def := definition(registryOf(store), cv.SectionCertifications, true, certificationFields...)
	return newListForm(store, def, listOps[cv.CertificationItem]{
		items:    func(d cv.Document) []cv.CertificationItem { return sectionOf(d, cv.SectionCertifications).Certifications },
		add:      store.AddCertification,
		update:   store.UpdateCertification,
		remove:   store.RemoveCertification,
		move:     store.MoveCertification,
		validate: cv.ValidateCertificationItem,
		fields: map[string]func(*cv.CertificationItem, string){
			"name":         func(i *cv.CertificationItem, v string) { i.Name = v },
			"issuer":       func(i *cv.CertificationItem, v string) { i.Issuer = v },
			"issueDate":    func(i *cv.CertificationItem, v string) { i.IssueDate = v },
			"expiryDate":   func(i *cv.CertificationItem, v string) { i.ExpiryDate = v },
			"credentialId": func(i *cv.CertificationItem, v string) { i.CredentialID = v },
			"url":          func(i *cv.CertificationItem, v string) { i.URL = v },
		},
	})
}

// NewLanguagesForm creates the languages form.
func NewLanguagesForm(store *cv.Store) *ListForm[cv.LanguageItem] {
	def := definition(registryOf(store), cv.SectionLanguages, true, languageFields...)
	return newListForm(store, def, listOps[cv.LanguageItem]{
		items:    func(d cv.Document) []cv.LanguageItem { return sectionOf(d, cv.SectionLanguages).Languages },
		add:      store.AddLanguage,
		update:   store.UpdateLanguage,
		remove:   store.RemoveLanguage,
		move:     store.MoveLanguage,
		validate: cv.ValidateLanguageItem,
		fields: map[string]func(*cv.LanguageItem, string){
			"language":    func(i *cv.LanguageItem, v string) { i.Language = v },
			"proficiency": func(i *cv.LanguageItem, v string) { i.Proficiency = v },
		},
	})
}

// NewVolunteerForm creates the volunteering form.
func NewVolunteerForm(store *cv.Store) *ListForm[cv.VolunteerItem] {
	def := definition(registryOf(store), cv.SectionVolunteer, true, volunteerFields...)
	return newListForm(store, def, listOps[cv.VolunteerItem]{
		items:    func(d cv.Document) []cv.VolunteerItem { return sectionOf(d, cv.SectionVolunteer).Volunteer },
		add:      store.AddVolunteer,
		update:   store.UpdateVolunteer,
		remove:   store.RemoveVolunteer,
		move:     store.MoveVolunteer,
		validate: cv.ValidateVolunteerItem,
		fields: map[string]func(*cv.VolunteerItem, string){
			"organization": func(i *cv.VolunteerItem, v string) { i.Organization = v },
			"role":         func(i *cv.VolunteerItem, v string) { i.Role = v },
			"start":        func(i *cv.VolunteerItem, v string) { i.Start = v },
			"end":          func(i *cv.VolunteerItem, v string) { i.End = v },
			"description":  func(i *cv.VolunteerItem, v string) { i.Description = v },
		},
	})
}

// NewAwardsForm creates the awards form.
func NewAwardsForm(store *cv.Store) *ListForm[cv.AwardItem] {
	def := definition(registryOf(store), cv.SectionAwards, true, awardFields...)
	return newListForm(store, def, listOps[cv.AwardItem]{
		items:    func(d cv.Document) []cv.AwardItem { return sectionOf(d, cv.SectionAwards).Awards },
		add:      store.AddAward,
		update:   store.UpdateAward,
		remove:   store.RemoveAward,
		move:     store.MoveAward,
		validate: cv.ValidateAwardItem,
		fields: map[string]func(*cv.AwardItem, string){
			"title":       func(i *cv.AwardItem, v string) { i.Title = v },
			"issuer":      func(i *cv.AwardItem, v string) { i.Issuer = v },
			"date":        func(i *cv.AwardItem, v string) { i.Date = v },
			"description": func(i *cv.AwardItem, v string) { i.Description = v },
		},
	})
}

// NewPublicationsForm creates the publications form.
func NewPublicationsForm(store *cv.Store) *ListForm[cv.PublicationItem] {
	def := definition(registryOf(store), cv.SectionPublications, true, publicationFields...)
	return newListForm(store, def, listOps[cv.PublicationItem]{
		items:    func(d cv.Document) []cv.PublicationItem { return sectionOf(d, cv.SectionPublications).Publications },
		add:      store.AddPublication,
		update:   store.UpdatePublication,
		remove:   store.RemovePublication,
		move:     store.MovePublication,
		validate: cv.ValidatePublicationItem,
		fields: map[string]func(*cv.PublicationItem, string){
			"title":     func(i *cv.PublicationItem, v string) { i.Title = v },
			"publisher": func(i *cv.PublicationItem, v string) { i.Publisher = v },
			"date":      func(i *cv.PublicationItem, v string) { i.Date = v },
			"url":       func(i *cv.PublicationItem, v string) { i.URL = v },
		},
	})
}
