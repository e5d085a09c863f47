package forms

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-cvbuilder/cv"
)

func newStore() *cv.Store {
	return cv.NewStore(cv.NewDocument("doc-forms"), cv.NewMemoryPersistence(), nil)
}

func TestPersonalFormKeepsInvalidDraft(t *testing.T) {
	store := newStore()
	form := NewPersonalForm(store)

	require.NoError(t, form.SetField("fullName", "Jane Byrne"))
	require.NoError(t, form.SetField("email", "not-an-email"))
	require.NoError(t, form.SetField("phone", "+44 20 7946 0000"))
	require.NoError(t, form.SetField("address", "1 High Street, London"))

	_, err := form.Submit()
	require.Error(t, err)
	require.True(t, cv.IsValidation(err))
	require.Contains(t, form.Errors(), "email")
	require.Contains(t, form.Errors(), "phone")
	require.Contains(t, form.Errors(), "address")
	require.Equal(t, "not-an-email", form.Draft().Email)
	require.Empty(t, store.Snapshot().Personal.FullName, "invalid draft must not reach the store")
	require.False(t, store.Status().HasUnsavedChanges)

	require.NoError(t, form.SetField("email", "jane@example.ie"))
	require.NoError(t, form.SetField("phone", "+353 87 123 4567"))
	require.NoError(t, form.SetField("address", "12 Main Street, Dublin 2"))
	doc, err := form.Submit()
	require.NoError(t, err)
	require.Empty(t, form.Errors())
	require.Equal(t, "Jane Byrne", doc.Personal.FullName)
	require.True(t, store.Status().HasUnsavedChanges)
}

func TestPersonalFormUnknownField(t *testing.T) {
	err := NewPersonalForm(newStore()).SetField("age", "40")
	require.True(t, cv.IsValidation(err))
}

func TestSummaryFormCounts(t *testing.T) {
	store := newStore()
	form := NewSummaryForm(store)
	form.SetText("Too short")
	require.Equal(t, 9, form.Length())
	require.Equal(t, cv.SummaryMaxLength-9, form.Remaining())

	_, err := form.Submit()
	require.Error(t, err)
	require.Contains(t, form.Errors(), "summary")

	form.SetText("Backend engineer with eight years building payment systems in Dublin.")
	_, err = form.Submit()
	require.NoError(t, err)
	s, ok := store.Snapshot().Section(cv.SectionSummary)
	require.True(t, ok)
	require.Equal(t, form.Draft(), s.Summary)
}

func TestExperienceFormAddEditRemove(t *testing.T) {
	store := newStore()
	form := NewExperienceForm(store)

	for name, value := range map[string]string{
		"company": "Acme",
		"role":    "Engineer",
		"start":   "2021-03",
		"end":     "2020-01",
	} {
		require.NoError(t, form.SetField(name, value))
	}
	errs := form.Validate()
	require.Contains(t, errs, "end")

	form.MarkCurrent()
	form.AddBullet("Shipped the ledger service")
	form.AddBullet("Mentored two graduates")
	require.True(t, form.RemoveBullet(1))
	_, err := form.Submit()
	require.NoError(t, err)
	require.Equal(t, 1, form.Len())
	require.Equal(t, []string{"Shipped the ledger service"}, form.Items()[0].Bullets)

	require.NoError(t, form.Edit(0))
	idx, editing := form.Editing()
	require.True(t, editing)
	require.Equal(t, 0, idx)
	require.NoError(t, form.SetField("role", "Senior Engineer"))
	_, err = form.Submit()
	require.NoError(t, err)
	require.Equal(t, 1, form.Len())
	require.Equal(t, "Senior Engineer", form.Items()[0].Role)
	_, editing = form.Editing()
	require.False(t, editing)

	require.Error(t, form.Edit(3))

	_, err = form.Remove(0)
	require.NoError(t, err)
	require.Zero(t, form.Len())
}

func TestListFormMove(t *testing.T) {
	store := newStore()
	form := NewAwardsForm(store)
	for _, title := range []string{"First", "Second", "Third"} {
		form.SetDraft(cv.AwardItem{Title: title, Date: "2022-06"})
		_, err := form.Submit()
		require.NoError(t, err)
	}
	_, err := form.Move(2, 0)
	require.NoError(t, err)
	titles := []string{}
	for _, a := range form.Items() {
		titles = append(titles, a.Title)
	}
	require.Equal(t, []string{"Third", "First", "Second"}, titles)
}

func TestListFormCapacityStaysInForm(t *testing.T) {
	store := newStore()
	form := NewAwardsForm(store)
	max := store.Registry.MaxItems(cv.SectionAwards)
	for i := 0; i < max; i++ {
		form.SetDraft(cv.AwardItem{Title: fmt.Sprintf("Award %d", i), Date: "2020-01"})
		_, err := form.Submit()
		require.NoError(t, err)
	}

	form.SetDraft(cv.AwardItem{Title: "One too many", Date: "2020-01"})
	doc, err := form.Submit()
	require.True(t, cv.IsValidation(err))
	require.Equal(t, "doc-forms", doc.ID, "rejected submit returns the current document")
	awards, _ := doc.Section(cv.SectionAwards)
	require.Len(t, awards.Awards, max)
	require.Contains(t, form.Errors(), "awards")
	require.Equal(t, "One too many", form.Draft().Title)
	require.Equal(t, max, form.Len())
}

func TestSkillsForm(t *testing.T) {
	store := newStore()
	form := NewSkillsForm(store)

	require.NoError(t, form.SetField("skill", "  Go "))
	_, err := form.Submit()
	require.NoError(t, err)

	form.SetDraft("go")
	_, err = form.Submit()
	require.True(t, cv.IsValidation(err))
	require.Contains(t, form.Errors(), "skills[1]")

	form.SetDraft("x")
	require.Contains(t, form.Validate(), "skill")

	_, err = form.Replace(ParseSkills("Go, PostgreSQL\nKubernetes"))
	require.NoError(t, err)
	require.Equal(t, []string{"Go", "PostgreSQL", "Kubernetes"}, form.Items())

	require.NoError(t, form.Edit(1))
	form.SetDraft("Postgres")
	_, err = form.Submit()
	require.NoError(t, err)
	require.Equal(t, "Postgres", form.Items()[1])
}

func TestReferencesForm(t *testing.T) {
	store := newStore()
	form := NewReferencesForm(store)
	require.Equal(t, cv.ReferencesOnRequest, form.Draft().Mode)

	require.NoError(t, form.SetField("mode", string(cv.ReferencesDetailed)))
	_, err := form.Submit()
	require.True(t, cv.IsValidation(err))
	require.Contains(t, form.Errors(), "references.contacts")

	require.NoError(t, form.SetField("email", "bad"))
	require.False(t, form.AddContact())
	require.Contains(t, form.Errors(), "name")

	require.NoError(t, form.SetField("name", "Mary Murphy"))
	require.NoError(t, form.SetField("email", "mary@example.ie"))
	require.True(t, form.AddContact())
	_, err = form.Submit()
	require.NoError(t, err)

	// Switching back to on-request submits without the staged contacts.
	form.SetMode(cv.ReferencesOnRequest)
	doc, err := form.Submit()
	require.NoError(t, err)
	refs, _ := doc.Section(cv.SectionReferences)
	require.Empty(t, refs.References.Contacts)
	require.Len(t, form.Draft().Contacts, 1)

	_, err = form.Clear()
	require.NoError(t, err)
	refs, _ = store.Snapshot().Section(cv.SectionReferences)
	require.Nil(t, refs.References)
}

func TestSetDefinitionsFollowRegistry(t *testing.T) {
	set := NewSet(newStore())
	defs := set.Definitions()
	require.Len(t, defs, 11)
	require.Equal(t, cv.SectionPersonal, defs[0].Section)
	require.Equal(t, cv.SectionReferences, defs[len(defs)-1].Section)
	for _, def := range defs {
		require.NotEmpty(t, def.Fields, def.Section)
		require.NotEmpty(t, def.Title, def.Section)
	}

	_, ok := set.List(cv.SectionPersonal)
	require.False(t, ok)
	editor, ok := set.List(cv.SectionLanguages)
	require.True(t, ok)
	require.Zero(t, editor.Len())
}

func TestSetReloadAfterReset(t *testing.T) {
	store := newStore()
	set := NewSet(store)
	set.Summary.SetText("Backend engineer with eight years building payment systems in Dublin.")
	_, err := set.Summary.Submit()
	require.NoError(t, err)

	store.Reset()
	set.Reload()
	require.Empty(t, set.Summary.Draft())
}
