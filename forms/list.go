package forms

import (
	"github.com/goliatone/go-cvbuilder/cv"
)

// listOps binds a ListForm to the store operations of one section.
type listOps[T any] struct {
	items    func(cv.Document) []T
	add      func(T) (cv.Document, error)
	update   func(int, T) (cv.Document, error)
	remove   func(int) (cv.Document, error)
	move     func(int, int) (cv.Document, error)
	validate func(T) error
	fields   map[string]func(*T, string)
}

// ListForm edits one entry of a list section at a time. A new draft is
// appended on Submit; after Edit the draft replaces the entry at that
// index.
type ListForm[T any] struct {
	section cv.SectionType
	store   *cv.Store
	def     Definition
	ops     listOps[T]

	draft   T
	editing int
	errors  Errors
}

var _ ListEditor = (*ListForm[cv.AwardItem])(nil)

func newListForm[T any](store *cv.Store, def Definition, ops listOps[T]) *ListForm[T] {
	return &ListForm[T]{section: def.Section, store: store, def: def, ops: ops, editing: -1}
}

// Section returns the section type.
func (f *ListForm[T]) Section() cv.SectionType { return f.section }

// Definition describes the form inputs.
func (f *ListForm[T]) Definition() Definition { return f.def }

// Items returns the entries currently in the store.
func (f *ListForm[T]) Items() []T {
	return f.ops.items(f.store.Snapshot())
}

// Len returns the number of stored entries.
func (f *ListForm[T]) Len() int {
	return len(f.Items())
}

// Draft returns the current draft.
func (f *ListForm[T]) Draft() T { return f.draft }

// SetDraft replaces the draft without validating it.
func (f *ListForm[T]) SetDraft(item T) {
	f.draft = item
	f.errors = nil
}

// Errors returns the errors from the last Validate or Submit.
func (f *ListForm[T]) Errors() Errors { return f.errors }

// Editing returns the index being edited, if any.
func (f *ListForm[T]) Editing() (int, bool) {
	return f.editing, f.editing >= 0
}

// New starts a blank draft for appending.
func (f *ListForm[T]) New() {
	var zero T
	f.draft = zero
	f.editing = -1
	f.errors = nil
}

// Load resets to a blank draft.
func (f *ListForm[T]) Load() { f.New() }

// Edit loads the entry at index into the draft.
func (f *ListForm[T]) Edit(index int) error {
	items := f.Items()
	if index < 0 || index >= len(items) {
		return cv.NewError(cv.KindNotFound, "entry not found", nil)
	}
	f.draft = items[index]
	f.editing = index
	f.errors = nil
	return nil
}

// SetField binds a string input to the draft.
func (f *ListForm[T]) SetField(name, value string) error {
	set, ok := f.ops.fields[name]
	if !ok {
		return unknownField(f.section, name)
	}
	set(&f.draft, value)
	delete(f.errors, name)
	return nil
}

// Validate checks the draft without touching the store.
func (f *ListForm[T]) Validate() Errors {
	f.errors = errorsFrom(f.ops.validate(f.draft))
	return f.errors
}

// Submit writes the draft when it is valid. Store-level rejections such
// as capacity limits are kept as form errors.
func (f *ListForm[T]) Submit() (cv.Document, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return f.store.Snapshot(), formError(f.section, errs)
	}
	var (
		doc cv.Document
		err error
	)
	if f.editing >= 0 {
		doc, err = f.ops.update(f.editing, f.draft)
	} else {
		doc, err = f.ops.add(f.draft)
	}
	if err != nil {
		f.errors = errorsFrom(err)
		return f.store.Snapshot(), err
	}
	f.New()
	return doc, nil
}

// SubmitJSON decodes raw into the draft and submits it.
func (f *ListForm[T]) SubmitJSON(raw []byte) (cv.Document, error) {
	value, err := DecodePayload(f.section, raw)
	if err != nil {
		f.errors = errorsFrom(err)
		return f.store.Snapshot(), err
	}
	item, ok := value.(T)
	if !ok {
		return f.store.Snapshot(), cv.NewError(cv.KindInternal, "payload type mismatch", nil)
	}
	f.draft = item
	return f.Submit()
}

// Remove deletes the entry at index. Editing state is cleared when it
// pointed at or after the removed entry.
func (f *ListForm[T]) Remove(index int) (cv.Document, error) {
	doc, err := f.ops.remove(index)
	if err != nil {
		return f.store.Snapshot(), err
	}
	if f.editing >= index {
		f.New()
	}
	return doc, nil
}

// Move reorders entries.
func (f *ListForm[T]) Move(from, to int) (cv.Document, error) {
	doc, err := f.ops.move(from, to)
	if err != nil {
		return f.store.Snapshot(), err
	}
	if f.editing >= 0 {
		f.New()
	}
	return doc, nil
}
