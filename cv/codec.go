package cv

import (
	"encoding/json"
	"fmt"

	errorslib "github.com/goliatone/go-errors"
)

// MarshalDocument encodes doc in its persisted JSON form.
func MarshalDocument(doc Document) ([]byte, error) {
	if err := checkDuplicates(doc); err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc.Normalize())
	if err != nil {
		return nil, NewError(KindInternal, "encode document", err)
	}
	return data, nil
}

// UnmarshalDocument decodes the persisted JSON form.
func UnmarshalDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, NewError(KindPersistence, fmt.Sprintf("decode document: %v", err), err)
	}
	if err := checkDuplicates(doc); err != nil {
		return Document{}, err
	}
	return doc.Normalize(), nil
}

// checkDuplicates rejects documents whose repeated sections both carry
// content, since normalizing them would drop one.
func checkDuplicates(doc Document) error {
	dups := doc.DuplicateSections()
	if len(dups) == 0 {
		return nil
	}
	fields := make([]errorslib.FieldError, 0, len(dups))
	for _, typ := range dups {
		fields = append(fields, fieldError("sections", fmt.Sprintf("duplicate %s section", typ), string(typ)))
	}
	return NewValidationError("document has duplicate sections", fields...)
}
