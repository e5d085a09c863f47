package cv

import (
	"strings"
	"testing"
)

func TestIrishPhoneFormats(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
	}{
		{"+353 87 123 4567", true},
		{"+353871234567", true},
		{"+353 99 123 4567", true},
		{"+353 1 234 5678", true},
		{"+35312345678", true},
		{"+353 21 123 4567", false},
		{"087 123 4567", false},
		{"+44 20 7946 0958", false},
		{"+353 87 123 456", false},
	}
	for _, tc := range cases {
		if got := IsIrishPhone(tc.phone); got != tc.ok {
			t.Fatalf("IsIrishPhone(%q) = %v, want %v", tc.phone, got, tc.ok)
		}
	}
}

func TestValidatePersonal(t *testing.T) {
	if err := ValidatePersonal(validPersonal()); err != nil {
		t.Fatalf("expected valid personal details, got %v", err)
	}

	p := validPersonal()
	p.Address = "221B Baker Street, London"
	requireField(t, ValidatePersonal(p), "address", "Dublin or Ireland")

	p = validPersonal()
	p.Address = "Main Street, Galway, Ireland"
	if err := ValidatePersonal(p); err != nil {
		t.Fatalf("expected Ireland token to satisfy locality, got %v", err)
	}

	p = validPersonal()
	p.Phone = "+44 20 7946 0958"
	requireField(t, ValidatePersonal(p), "phone", "Irish")

	p = validPersonal()
	p.Email = "not-an-email"
	requireField(t, ValidatePersonal(p), "email", "valid email")

	p = validPersonal()
	p.FullName = ""
	requireField(t, ValidatePersonal(p), "fullName", "blank")
}

func TestValidateSummaryBounds(t *testing.T) {
	if err := ValidateSummary(""); err != nil {
		t.Fatalf("expected empty summary to be valid, got %v", err)
	}
	requireField(t, ValidateSummary("Too short."), "summary", "between 50 and 1000")
	if err := ValidateSummary(strings.Repeat("a", 50)); err != nil {
		t.Fatalf("expected 50 characters to be valid, got %v", err)
	}
	requireField(t, ValidateSummary(strings.Repeat("a", 1001)), "summary", "between 50 and 1000")
	if err := ValidateSummary(strings.Repeat("é", 1000)); err != nil {
		t.Fatalf("expected length to count characters, got %v", err)
	}
}

func TestValidateDates(t *testing.T) {
	requireField(t, ValidateExperienceItem(ExperienceItem{Company: "A", Role: "B", Start: "2022-13"}), "start", "YYYY-MM")
	requireField(t, ValidateExperienceItem(ExperienceItem{Company: "A", Role: "B", Start: "2022-01", End: "soon"}), "end", "Present")
	requireField(t, ValidateVolunteerItem(VolunteerItem{Organization: "A", Role: "B", Start: "2022-05", End: "2022-04"}), "end", "before start")
	if err := ValidateVolunteerItem(VolunteerItem{Organization: "A", Role: "B", Start: "2022-05", End: "2022-05"}); err != nil {
		t.Fatalf("expected same month range to be valid, got %v", err)
	}
	requireField(t, ValidateAwardItem(AwardItem{Title: "Best", Date: Present}), "date", "YYYY-MM")
}

func TestValidateCertificationExpiry(t *testing.T) {
	item := CertificationItem{Name: "CKA", Issuer: "CNCF", IssueDate: "2023-04", ExpiryDate: "2023-04"}
	requireField(t, ValidateCertificationItem(item), "expiryDate", "after issue")

	item.ExpiryDate = "2026-04"
	item.URL = "https://example.org/cert/123"
	if err := ValidateCertificationItem(item); err != nil {
		t.Fatalf("expected valid certification, got %v", err)
	}
}

func TestValidateLanguageProficiency(t *testing.T) {
	requireField(t, ValidateLanguageItem(LanguageItem{Language: "Irish", Proficiency: "fluent"}), "proficiency", "valid value")
	if err := ValidateLanguageItem(LanguageItem{Language: "Irish", Proficiency: ProficiencyNative}); err != nil {
		t.Fatalf("expected native to be valid, got %v", err)
	}
}

func TestValidateReferences(t *testing.T) {
	requireField(t, ValidateSection(Section{Type: SectionReferences, References: &References{Mode: ReferencesDetailed}}), "references.contacts", "at least one")
	requireField(t, ValidateSection(Section{Type: SectionReferences, References: &References{Mode: "maybe"}}), "references.mode", "on-request or detailed")

	contacts := make([]ReferenceContact, 5)
	for i := range contacts {
		contacts[i] = ReferenceContact{Name: "Referee"}
	}
	requireField(t, ValidateSection(Section{Type: SectionReferences, References: &References{Mode: ReferencesDetailed, Contacts: contacts}}), "references", "at most 4")
	requireField(t, ValidateSection(Section{Type: SectionReferences, References: &References{
		Mode:     ReferencesDetailed,
		Contacts: []ReferenceContact{{Name: "Mary Kelly", Email: "nope"}},
	}}), "references.contacts[0].email", "valid email")
}

func TestValidateSectionUnknownType(t *testing.T) {
	if err := ValidateSection(Section{Type: "hobbies"}); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateDocumentCollectsFields(t *testing.T) {
	doc := NewDocument("doc-1")
	doc.Personal = validPersonal()
	doc = doc.WithSection(Section{Type: SectionSkills, Skills: []string{"Go", "go"}})
	doc = doc.WithSection(Section{Type: SectionSummary, Summary: "short"})

	err := ValidateDocument(doc)
	requireField(t, err, "skills[1]", "duplicates")
	requireField(t, err, "summary", "between")
}
