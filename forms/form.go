package forms

import (
	"fmt"
	"sort"

	errorslib "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cvbuilder/cv"
)

// Errors maps field names to inline messages.
type Errors map[string]string

// Fields returns the field names in sorted order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Form is implemented by every section form.
type Form interface {
	Section() cv.SectionType
	Definition() Definition
	// Load discards the draft and reloads it from the store.
	Load()
	SetField(name, value string) error
	Validate() Errors
	Errors() Errors
	// SubmitJSON decodes raw through DecodePayload, replaces the draft and
	// submits it.
	SubmitJSON(raw []byte) (cv.Document, error)
}

// ListEditor is implemented by forms over list sections.
type ListEditor interface {
	Form
	Len() int
	New()
	Edit(index int) error
	Editing() (int, bool)
	Remove(index int) (cv.Document, error)
	Move(from, to int) (cv.Document, error)
}

func errorsFrom(err error) Errors {
	fields := cv.FieldErrors(err)
	if len(fields) == 0 {
		if err == nil {
			return nil
		}
		return Errors{"": err.Error()}
	}
	out := make(Errors, len(fields))
	for _, f := range fields {
		if _, exists := out[f.Field]; !exists {
			out[f.Field] = f.Message
		}
	}
	return out
}

func unknownField(section cv.SectionType, name string) error {
	return cv.NewValidationError(
		fmt.Sprintf("unknown %s field", section),
		errorslib.FieldError{Field: name, Message: "unknown field", Value: name},
	)
}

// formError turns inline errors into the error returned by Submit.
func formError(section cv.SectionType, errs Errors) error {
	fields := make(errorslib.ValidationErrors, 0, len(errs))
	for _, name := range errs.Fields() {
		fields = append(fields, errorslib.FieldError{Field: name, Message: errs[name]})
	}
	return cv.NewValidationError(fmt.Sprintf("invalid %s form", section), fields...)
}
