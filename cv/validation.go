package cv

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	errorslib "github.com/goliatone/go-errors"
)

const (
	SummaryMinLength = 50
	SummaryMaxLength = 1000
	SkillMinLength   = 2
	SkillMaxLength   = 50
	BulletMaxLength  = 300
)

var (
	monthPattern    = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	irishMobile     = regexp.MustCompile(`^\+353\s?[89]\d\s?\d{3}\s?\d{4}$`)
	irishLandline   = regexp.MustCompile(`^\+353\s?1\s?\d{3}\s?\d{4}$`)
	localityPattern = regexp.MustCompile(`(?i)\b(dublin|ireland)\b`)
)

var (
	errMonthFormat = validation.NewError("validation_month_format", "must be in YYYY-MM format")
	errEndFormat   = validation.NewError("validation_end_format", "must be in YYYY-MM format or Present")
	errEndBefore   = validation.NewError("validation_end_before_start", "end date must not be before start date")
	errExpiry      = validation.NewError("validation_expiry_after_issue", "expiry date must be after issue date")
	errPhone       = validation.NewError("validation_irish_phone", "must be an Irish number (+353 8X XXX XXXX or +353 1 XXX XXXX)")
	errLocality    = validation.NewError("validation_locality", "must include Dublin or Ireland")
)

// IsMonth reports whether value is a YYYY-MM date.
func IsMonth(value string) bool {
	return monthPattern.MatchString(value)
}

// IsIrishPhone reports whether value is an Irish mobile or Dublin landline.
func IsIrishPhone(value string) bool {
	return irishMobile.MatchString(value) || irishLandline.MatchString(value)
}

var monthRule = validation.Match(monthPattern).ErrorObject(errMonthFormat)

var phoneRule = validation.By(func(value any) error {
	phone, _ := value.(string)
	if phone == "" || IsIrishPhone(phone) {
		return nil
	}
	return errPhone
})

var localityRule = validation.By(func(value any) error {
	address, _ := value.(string)
	if address == "" || localityPattern.MatchString(address) {
		return nil
	}
	return errLocality
})

// endRule accepts an empty end, Present, or a month not before start.
func endRule(start string) validation.Rule {
	return validation.By(func(value any) error {
		end, _ := value.(string)
		if end == "" || end == Present {
			return nil
		}
		if !IsMonth(end) {
			return errEndFormat
		}
		if IsMonth(start) && end < start {
			return errEndBefore
		}
		return nil
	})
}

func expiryRule(issue string) validation.Rule {
	return validation.By(func(value any) error {
		expiry, _ := value.(string)
		if expiry == "" {
			return nil
		}
		if !IsMonth(expiry) {
			return errMonthFormat
		}
		if IsMonth(issue) && expiry <= issue {
			return errExpiry
		}
		return nil
	})
}

// ValidatePersonal validates the personal details.
func ValidatePersonal(p Personal) error {
	return asValidationError("invalid personal details", validatePersonal(p, ""))
}

// ValidateSummary validates the summary text.
func ValidateSummary(summary string) error {
	return asValidationError("invalid summary", validateSummary(summary))
}

// ValidateExperienceItem validates a single experience entry.
func ValidateExperienceItem(item ExperienceItem) error {
	return asValidationError("invalid experience entry", validateExperience(item, ""))
}

// ValidateEducationItem validates a single education entry.
func ValidateEducationItem(item EducationItem) error {
	return asValidationError("invalid education entry", validateEducation(item, ""))
}

// ValidateCertificationItem validates a single certification entry.
func ValidateCertificationItem(item CertificationItem) error {
	return asValidationError("invalid certification entry", validateCertification(item, ""))
}

// ValidateLanguageItem validates a single language entry.
func ValidateLanguageItem(item LanguageItem) error {
	return asValidationError("invalid language entry", validateLanguage(item, ""))
}

// ValidateVolunteerItem validates a single volunteer entry.
func ValidateVolunteerItem(item VolunteerItem) error {
	return asValidationError("invalid volunteer entry", validateVolunteer(item, ""))
}

// ValidateAwardItem validates a single award entry.
func ValidateAwardItem(item AwardItem) error {
	return asValidationError("invalid award entry", validateAward(item, ""))
}

// ValidatePublicationItem validates a single publication entry.
func ValidatePublicationItem(item PublicationItem) error {
	return asValidationError("invalid publication entry", validatePublication(item, ""))
}

// ValidateReferenceContact validates a single referee.
func ValidateReferenceContact(contact ReferenceContact) error {
	return asValidationError("invalid reference contact", validateContact(contact, ""))
}

// ValidateSkill validates a single skill label.
func ValidateSkill(skill string) error {
	return asValidationError("invalid skill", validateSkill(skill, "skill"))
}

// ValidateSection validates a full section payload, including capacity.
func ValidateSection(section Section) error {
	return validateSectionWith(DefaultRegistry(), section)
}

func validateSectionWith(reg *SectionRegistry, section Section) error {
	validate, ok := sectionSchemas[section.Type]
	if !ok {
		return NewError(KindValidation, fmt.Sprintf("unknown section type %q", section.Type), nil)
	}

	var fields errorslib.ValidationErrors
	if max := reg.MaxItems(section.Type); max > 0 && section.ItemCount() > max {
		fields = append(fields, errorslib.FieldError{
			Field:   string(section.Type),
			Message: fmt.Sprintf("must contain at most %d items", max),
			Value:   section.ItemCount(),
		})
	}
	fields = append(fields, validate(section)...)
	return asValidationError(fmt.Sprintf("invalid %s section", section.Type), fields)
}

// ValidateDocument validates personal details and every section.
func ValidateDocument(doc Document) error {
	var fields errorslib.ValidationErrors
	fields = append(fields, validatePersonal(doc.Personal, "personal")...)

	seen := make(map[SectionType]bool, len(doc.Sections))
	for _, section := range doc.Sections {
		if seen[section.Type] {
			fields = append(fields, errorslib.FieldError{
				Field:   "sections",
				Message: fmt.Sprintf("duplicate %s section", section.Type),
			})
			continue
		}
		seen[section.Type] = true
		if err := ValidateSection(section); err != nil {
			fields = append(fields, FieldErrors(err)...)
			if len(FieldErrors(err)) == 0 {
				fields = append(fields, errorslib.FieldError{Field: "sections", Message: err.Error()})
			}
		}
	}
	return asValidationError("invalid document", fields)
}

var sectionSchemas = map[SectionType]func(Section) errorslib.ValidationErrors{
	SectionSummary: func(s Section) errorslib.ValidationErrors {
		return prefixFields(validateSummary(s.Summary), "")
	},
	SectionExperience: func(s Section) errorslib.ValidationErrors {
		return eachItem(s.Experience, "experience", validateExperience)
	},
	SectionEducation: func(s Section) errorslib.ValidationErrors {
		return eachItem(s.Education, "education", validateEducation)
	},
	SectionSkills: func(s Section) errorslib.ValidationErrors {
		return validateSkills(s.Skills)
	},
	SectionCertifications: func(s Section) errorslib.ValidationErrors {
		return eachItem(s.Certifications, "certifications", validateCertification)
	},
	SectionLanguages: func(s Section) errorslib.ValidationErrors {
		fields := eachItem(s.Languages, "languages", validateLanguage)
		seen := make(map[string]int, len(s.Languages))
		for i, item := range s.Languages {
			key := strings.ToLower(strings.TrimSpace(item.Language))
			if prev, dup := seen[key]; dup && key != "" {
				fields = append(fields, errorslib.FieldError{
					Field:   fmt.Sprintf("languages[%d].language", i),
					Message: fmt.Sprintf("duplicates languages[%d]", prev),
					Value:   item.Language,
				})
				continue
			}
			seen[key] = i
		}
		return fields
	},
	SectionVolunteer: func(s Section) errorslib.ValidationErrors {
		return eachItem(s.Volunteer, "volunteer", validateVolunteer)
	},
	SectionAwards: func(s Section) errorslib.ValidationErrors {
		return eachItem(s.Awards, "awards", validateAward)
	},
	SectionPublications: func(s Section) errorslib.ValidationErrors {
		return eachItem(s.Publications, "publications", validatePublication)
	},
	SectionReferences: func(s Section) errorslib.ValidationErrors {
		return validateReferences(s.References)
	},
}

func validatePersonal(p Personal, prefix string) errorslib.ValidationErrors {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.FullName, validation.Required, validation.Length(2, 100)),
		validation.Field(&p.Title, validation.Length(0, 100)),
		validation.Field(&p.Email, validation.Required, is.EmailFormat),
		validation.Field(&p.Phone, validation.Required, phoneRule),
		validation.Field(&p.Address, validation.Required, validation.Length(0, 200), localityRule),
		validation.Field(&p.LinkedIn, is.URL),
		validation.Field(&p.Website, is.URL),
		validation.Field(&p.WorkPermit, validation.Length(0, 100)),
	)
	return prefixFields(fromOzzo(err), prefix)
}

func validateSummary(summary string) errorslib.ValidationErrors {
	count := utf8.RuneCountInString(strings.TrimSpace(summary))
	if count == 0 {
		return nil
	}
	if count < SummaryMinLength || count > SummaryMaxLength {
		return errorslib.ValidationErrors{{
			Field:   "summary",
			Message: fmt.Sprintf("must be between %d and %d characters", SummaryMinLength, SummaryMaxLength),
			Value:   count,
		}}
	}
	return nil
}

func validateExperience(item ExperienceItem, prefix string) errorslib.ValidationErrors {
	err := validation.ValidateStruct(&item,
		validation.Field(&item.Company, validation.Required, validation.Length(1, 120)),
		validation.Field(&item.Role, validation.Required, validation.Length(1, 120)),
		validation.Field(&item.Location, validation.Length(0, 120)),
		validation.Field(&item.Start, validation.Required, monthRule),
		validation.Field(&item.End, endRule(item.Start)),
	)
	fields := fromOzzo(err)
	for i, bullet := range item.Bullets {
		n := utf8.RuneCountInString(strings.TrimSpace(bullet))
		switch {
		case n == 0:
			fields = append(fields, errorslib.FieldError{Field: fmt.Sprintf("bullets[%d]", i), Message: "cannot be blank"})
		case n > BulletMaxLength:
			fields = append(fields, errorslib.FieldError{
				Field:   fmt.Sprintf("bullets[%d]", i),
				Message: fmt.Sprintf("must be at most %d characters", BulletMaxLength),
			})
		}
	}
	return prefixFields(fields, prefix)
}

func validateEducation(item EducationItem, prefix string) errorslib.ValidationErrors {
	err := validation.ValidateStruct(&item,
		validation.Field(&item.Institution, validation.Required, validation.Length(1, 150)),
		validation.Field(&item.Degree, validation.Required, validation.Length(1, 150)),
		validation.Field(&item.Field, validation.Length(0, 150)),
		validation.Field(&item.Start, validation.Required, monthRule),
		validation.Field(&item.End, endRule(item.Start)),
		validation.Field(&item.Grade, validation.Length(0, 50)),
	)
	return prefixFields(fromOzzo(err), prefix)
}

func validateCertification(item CertificationItem, prefix string) errorslib.ValidationErrors {
	err := validation.ValidateStruct(&item,
		validation.Field(&item.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&item.Issuer, validation.Required, validation.Length(1, 150)),
		validation.Field(&item.IssueDate, validation.Required, monthRule),
		validation.Field(&item.ExpiryDate, expiryRule(item.IssueDate)),
		validation.Field(&item.CredentialID, validation.Length(0, 100)),
		validation.Field(&item.URL, is.URL),
	)
	return prefixFields(fromOzzo(err), prefix)
}

func validateLanguage(item LanguageItem, prefix string) errorslib.ValidationErrors {
	err := validation.ValidateStruct(&item,
		validation.Field(&item.Language, validation.Required, validation.Length(2, 50)),
		validation.Field(&item.Proficiency, validation.Required, validation.In(
			ProficiencyNative, ProficiencyC2, ProficiencyC1, ProficiencyB2,
			ProficiencyB1, ProficiencyA2, ProficiencyA1,
		)),
	)
	return prefixFields(fromOzzo(err), prefix)
}

func validateVolunteer(item VolunteerItem, prefix string) errorslib.ValidationErrors {
	err := validation.ValidateStruct(&item,
		validation.Field(&item.Organization, validation.Required, validation.Length(1, 150)),
		validation.Field(&item.Role, validation.Required, validation.Length(1, 120)),
		validation.Field(&item.Start, validation.Required, monthRule),
		validation.Field(&item.End, endRule(item.Start)),
		validation.Field(&item.Description, validation.Length(0, 500)),
	)
	return prefixFields(fromOzzo(err), prefix)
}

func validateAward(item AwardItem, prefix string) errorslib.ValidationErrors {
	err := validation.ValidateStruct(&item,
		validation.Field(&item.Title, validation.Required, validation.Length(1, 150)),
		validation.Field(&item.Issuer, validation.Length(0, 150)),
		validation.Field(&item.Date, validation.Required, monthRule),
		validation.Field(&item.Description, validation.Length(0, 500)),
	)
	return prefixFields(fromOzzo(err), prefix)
}

func validatePublication(item PublicationItem, prefix string) errorslib.ValidationErrors {
	err := validation.ValidateStruct(&item,
		validation.Field(&item.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&item.Publisher, validation.Required, validation.Length(1, 150)),
		validation.Field(&item.Date, validation.Required, monthRule),
		validation.Field(&item.URL, is.URL),
	)
	return prefixFields(fromOzzo(err), prefix)
}

func validateContact(contact ReferenceContact, prefix string) errorslib.ValidationErrors {
	err := validation.ValidateStruct(&contact,
		validation.Field(&contact.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&contact.Relationship, validation.Length(0, 100)),
		validation.Field(&contact.Company, validation.Length(0, 150)),
		validation.Field(&contact.Email, is.EmailFormat),
		validation.Field(&contact.Phone, validation.Length(0, 30)),
	)
	return prefixFields(fromOzzo(err), prefix)
}

func validateSkill(skill, field string) errorslib.ValidationErrors {
	n := utf8.RuneCountInString(strings.TrimSpace(skill))
	if n < SkillMinLength || n > SkillMaxLength {
		return errorslib.ValidationErrors{{
			Field:   field,
			Message: fmt.Sprintf("must be between %d and %d characters", SkillMinLength, SkillMaxLength),
			Value:   skill,
		}}
	}
	return nil
}

func validateSkills(skills []string) errorslib.ValidationErrors {
	var fields errorslib.ValidationErrors
	seen := make(map[string]int, len(skills))
	for i, skill := range skills {
		field := fmt.Sprintf("skills[%d]", i)
		fields = append(fields, validateSkill(skill, field)...)
		key := strings.ToLower(strings.TrimSpace(skill))
		if prev, dup := seen[key]; dup {
			fields = append(fields, errorslib.FieldError{
				Field:   field,
				Message: fmt.Sprintf("duplicates skills[%d]", prev),
				Value:   skill,
			})
			continue
		}
		seen[key] = i
	}
	return fields
}

func validateReferences(refs *References) errorslib.ValidationErrors {
	if refs == nil {
		return nil
	}
	var fields errorslib.ValidationErrors
	switch refs.Mode {
	case ReferencesOnRequest:
		if len(refs.Contacts) > 0 {
			fields = append(fields, errorslib.FieldError{
				Field:   "references.contacts",
				Message: "must be empty when references are available on request",
			})
		}
	case ReferencesDetailed:
		if len(refs.Contacts) == 0 {
			fields = append(fields, errorslib.FieldError{
				Field:   "references.contacts",
				Message: "at least one contact is required for detailed references",
			})
		}
	default:
		fields = append(fields, errorslib.FieldError{
			Field:   "references.mode",
			Message: "must be on-request or detailed",
			Value:   string(refs.Mode),
		})
	}
	fields = append(fields, eachItem(refs.Contacts, "references.contacts", validateContact)...)
	return fields
}

func eachItem[T any](items []T, field string, validate func(T, string) errorslib.ValidationErrors) errorslib.ValidationErrors {
	var fields errorslib.ValidationErrors
	for i, item := range items {
		fields = append(fields, validate(item, fmt.Sprintf("%s[%d]", field, i))...)
	}
	return fields
}

func fromOzzo(err error) errorslib.ValidationErrors {
	if err == nil {
		return nil
	}
	mapped := errorslib.FromOzzoValidation(err, "validation failed")
	if len(mapped.ValidationErrors) == 0 {
		return errorslib.ValidationErrors{{Field: "", Message: err.Error()}}
	}
	fields := append(errorslib.ValidationErrors(nil), mapped.ValidationErrors...)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return fields
}

func prefixFields(fields errorslib.ValidationErrors, prefix string) errorslib.ValidationErrors {
	if prefix == "" {
		return fields
	}
	for i := range fields {
		if fields[i].Field == "" {
			fields[i].Field = prefix
			continue
		}
		fields[i].Field = prefix + "." + fields[i].Field
	}
	return fields
}

func asValidationError(msg string, fields errorslib.ValidationErrors) error {
	if len(fields) == 0 {
		return nil
	}
	return NewValidationError(msg, fields...)
}
