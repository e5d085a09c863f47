package cv

import (
	"fmt"
	"slices"

	errorslib "github.com/goliatone/go-errors"
)

// listField binds a list payload inside a Section.
type listField[T any] struct {
	typ   SectionType
	items func(*Section) *[]T
}

var (
	experienceList  = listField[ExperienceItem]{SectionExperience, func(s *Section) *[]ExperienceItem { return &s.Experience }}
	educationList   = listField[EducationItem]{SectionEducation, func(s *Section) *[]EducationItem { return &s.Education }}
	skillList       = listField[string]{SectionSkills, func(s *Section) *[]string { return &s.Skills }}
	certList        = listField[CertificationItem]{SectionCertifications, func(s *Section) *[]CertificationItem { return &s.Certifications }}
	languageList    = listField[LanguageItem]{SectionLanguages, func(s *Section) *[]LanguageItem { return &s.Languages }}
	volunteerList   = listField[VolunteerItem]{SectionVolunteer, func(s *Section) *[]VolunteerItem { return &s.Volunteer }}
	awardList       = listField[AwardItem]{SectionAwards, func(s *Section) *[]AwardItem { return &s.Awards }}
	publicationList = listField[PublicationItem]{SectionPublications, func(s *Section) *[]PublicationItem { return &s.Publications }}
)

func addItem[T any](s *Store, f listField[T], item T) (Document, error) {
	return s.mutate(f.typ, func(sec Section) (Section, error) {
		items := f.items(&sec)
		*items = append(*items, item)
		return sec, nil
	})
}

func updateItem[T any](s *Store, f listField[T], index int, item T) (Document, error) {
	return s.mutate(f.typ, func(sec Section) (Section, error) {
		items := f.items(&sec)
		if err := checkIndex(f.typ, index, len(*items)); err != nil {
			return sec, err
		}
		(*items)[index] = item
		return sec, nil
	})
}

func removeItem[T any](s *Store, f listField[T], index int) (Document, error) {
	return s.mutate(f.typ, func(sec Section) (Section, error) {
		items := f.items(&sec)
		if err := checkIndex(f.typ, index, len(*items)); err != nil {
			return sec, err
		}
		*items = slices.Delete(*items, index, index+1)
		return sec, nil
	})
}

func moveItem[T any](s *Store, f listField[T], from, to int) (Document, error) {
	return s.mutate(f.typ, func(sec Section) (Section, error) {
		items := f.items(&sec)
		if err := checkIndex(f.typ, from, len(*items)); err != nil {
			return sec, err
		}
		if err := checkIndex(f.typ, to, len(*items)); err != nil {
			return sec, err
		}
		item := (*items)[from]
		*items = slices.Insert(slices.Delete(*items, from, from+1), to, item)
		return sec, nil
	})
}

func checkIndex(typ SectionType, index, n int) error {
	if index < 0 || index >= n {
		return NewValidationError(fmt.Sprintf("invalid %s index", typ),
			fieldError(fmt.Sprintf("%s[%d]", typ, index), fmt.Sprintf("index out of range (0-%d)", n-1), index))
	}
	return nil
}

func fieldError(field, msg string, value any) errorslib.FieldError {
	return errorslib.FieldError{Field: field, Message: msg, Value: value}
}

// AddExperience appends an experience entry.
func (s *Store) AddExperience(item ExperienceItem) (Document, error) {
	return addItem(s, experienceList, item)
}

// UpdateExperience replaces the experience entry at index.
func (s *Store) UpdateExperience(index int, item ExperienceItem) (Document, error) {
	return updateItem(s, experienceList, index, item)
}

// RemoveExperience removes the experience entry at index.
func (s *Store) RemoveExperience(index int) (Document, error) {
	return removeItem(s, experienceList, index)
}

// MoveExperience reorders experience entries.
func (s *Store) MoveExperience(from, to int) (Document, error) {
	return moveItem(s, experienceList, from, to)
}

// AddEducation appends an education entry.
func (s *Store) AddEducation(item EducationItem) (Document, error) {
	return addItem(s, educationList, item)
}

// UpdateEducation replaces the education entry at index.
func (s *Store) UpdateEducation(index int, item EducationItem) (Document, error) {
	return updateItem(s, educationList, index, item)
}

// RemoveEducation removes the education entry at index.
func (s *Store) RemoveEducation(index int) (Document, error) {
	return removeItem(s, educationList, index)
}

// MoveEducation reorders education entries.
func (s *Store) MoveEducation(from, to int) (Document, error) {
	return moveItem(s, educationList, from, to)
}

// AddCertification appends a certification.
func (s *Store) AddCertification(item CertificationItem) (Document, error) {
	return addItem(s, certList, item)
}

// UpdateCertification replaces the certification at index.
func (s *Store) UpdateCertification(index int, item CertificationItem) (Document, error) {
	return updateItem(s, certList, index, item)
}

// RemoveCertification removes the certification at index.
func (s *Store) RemoveCertification(index int) (Document, error) {
	return removeItem(s, certList, index)
}

// MoveCertification reorders certifications.
func (s *Store) MoveCertification(from, to int) (Document, error) {
	return moveItem(s, certList, from, to)
}

// AddLanguage appends a language.
func (s *Store) AddLanguage(item LanguageItem) (Document, error) {
	return addItem(s, languageList, item)
}

// UpdateLanguage replaces the language at index.
func (s *Store) UpdateLanguage(index int, item LanguageItem) (Document, error) {
	return updateItem(s, languageList, index, item)
}

// RemoveLanguage removes the language at index.
func (s *Store) RemoveLanguage(index int) (Document, error) {
	return removeItem(s, languageList, index)
}

// MoveLanguage reorders languages.
func (s *Store) MoveLanguage(from, to int) (Document, error) {
	return moveItem(s, languageList, from, to)
}

// AddVolunteer appends a volunteer entry.
func (s *Store) AddVolunteer(item VolunteerItem) (Document, error) {
	return addItem(s, volunteerList, item)
}

// UpdateVolunteer replaces the volunteer entry at index.
func (s *Store) UpdateVolunteer(index int, item VolunteerItem) (Document, error) {
	return updateItem(s, volunteerList, index, item)
}

// RemoveVolunteer removes the volunteer entry at index.
func (s *Store) RemoveVolunteer(index int) (Document, error) {
	return removeItem(s, volunteerList, index)
}

// MoveVolunteer reorders volunteer entries.
func (s *Store) MoveVolunteer(from, to int) (Document, error) {
	return moveItem(s, volunteerList, from, to)
}

// AddAward appends an award.
func (s *Store) AddAward(item AwardItem) (Document, error) {
	return addItem(s, awardList, item)
}

// UpdateAward replaces the award at index.
func (s *Store) UpdateAward(index int, item AwardItem) (Document, error) {
	return updateItem(s, awardList, index, item)
}

// RemoveAward removes the award at index.
func (s *Store) RemoveAward(index int) (Document, error) {
	return removeItem(s, awardList, index)
}

// MoveAward reorders awards.
func (s *Store) MoveAward(from, to int) (Document, error) {
	return moveItem(s, awardList, from, to)
}

// AddPublication appends a publication.
func (s *Store) AddPublication(item PublicationItem) (Document, error) {
	return addItem(s, publicationList, item)
}

// UpdatePublication replaces the publication at index.
func (s *Store) UpdatePublication(index int, item PublicationItem) (Document, error) {
	return updateItem(s, publicationList, index, item)
}

// RemovePublication removes the publication at index.
func (s *Store) RemovePublication(index int) (Document, error) {
	return removeItem(s, publicationList, index)
}

// MovePublication reorders publications.
func (s *Store) MovePublication(from, to int) (Document, error) {
	return moveItem(s, publicationList, from, to)
}
