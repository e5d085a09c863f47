package forms

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	errorslib "github.com/goliatone/go-errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/goliatone/go-cvbuilder/cv"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemas    map[cv.SectionType]*gojsonschema.Schema
	schemaErr  error
)

func loadSchemas() (map[cv.SectionType]*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemas = make(map[cv.SectionType]*gojsonschema.Schema)
		types := append([]cv.SectionType{cv.SectionPersonal}, cv.ContentSectionTypes...)
		for _, typ := range types {
			raw, err := schemaFS.ReadFile("schemas/" + string(typ) + ".json")
			if err != nil {
				schemaErr = fmt.Errorf("read %s schema: %w", typ, err)
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				schemaErr = fmt.Errorf("compile %s schema: %w", typ, err)
				return
			}
			schemas[typ] = schema
		}
	})
	return schemas, schemaErr
}

// Schema returns the raw JSON schema for a section payload.
func Schema(section cv.SectionType) ([]byte, error) {
	raw, err := schemaFS.ReadFile("schemas/" + string(section) + ".json")
	if err != nil {
		return nil, cv.NewError(cv.KindNotFound, fmt.Sprintf("no schema for section %q", section), err)
	}
	return raw, nil
}

// DecodePayload checks raw against the section schema and decodes it into
// the section's draft type: cv.Personal, string (summary and skills),
// cv.References, or the item type of a list section.
func DecodePayload(section cv.SectionType, raw []byte) (any, error) {
	all, err := loadSchemas()
	if err != nil {
		return nil, cv.NewError(cv.KindInternal, "load payload schemas", err)
	}
	schema, ok := all[section]
	if !ok {
		return nil, cv.NewError(cv.KindValidation, fmt.Sprintf("unknown section type %q", section), nil)
	}
	if !json.Valid(raw) {
		return nil, cv.NewValidationError("malformed payload", errorslib.FieldError{Field: "", Message: "must be valid JSON"})
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, cv.NewError(cv.KindValidation, "validate payload", err)
	}
	if !result.Valid() {
		return nil, cv.NewValidationError(fmt.Sprintf("invalid %s payload", section), schemaFields(result.Errors())...)
	}

	switch section {
	case cv.SectionPersonal:
		return decodeAs[cv.Personal](raw)
	case cv.SectionSummary:
		var v struct {
			Summary string `json:"summary"`
		}
		err := json.Unmarshal(raw, &v)
		return v.Summary, err
	case cv.SectionSkills:
		var v struct {
			Skill string `json:"skill"`
		}
		err := json.Unmarshal(raw, &v)
		return strings.TrimSpace(v.Skill), err
	case cv.SectionExperience:
		return decodeAs[cv.ExperienceItem](raw)
	case cv.SectionEducation:
		return decodeAs[cv.EducationItem](raw)
	case cv.SectionCertifications:
		return decodeAs[cv.CertificationItem](raw)
	case cv.SectionLanguages:
		return decodeAs[cv.LanguageItem](raw)
	case cv.SectionVolunteer:
		return decodeAs[cv.VolunteerItem](raw)
	case cv.SectionAwards:
		return decodeAs[cv.AwardItem](raw)
	case cv.SectionPublications:
		return decodeAs[cv.PublicationItem](raw)
	case cv.SectionReferences:
		return decodeAs[cv.References](raw)
	}
	return nil, cv.NewError(cv.KindValidation, fmt.Sprintf("unknown section type %q", section), nil)
}

func decodeAs[T any](raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, cv.NewError(cv.KindValidation, "decode payload", err)
	}
	return v, nil
}

// schemaFields maps gojsonschema results onto field errors. Paths use the
// same dotted form as the cv validators ("contacts[0].email").
func schemaFields(errs []gojsonschema.ResultError) errorslib.ValidationErrors {
	out := make(errorslib.ValidationErrors, 0, len(errs))
	for _, e := range errs {
		field := strings.TrimPrefix(strings.TrimPrefix(e.Field(), "(root)"), ".")
		if prop, ok := e.Details()["property"].(string); ok && field != prop && !strings.HasSuffix(field, "."+prop) {
			field = joinPath(field, prop)
		}
		out = append(out, errorslib.FieldError{Field: indexPath(field), Message: e.Description()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func joinPath(base, prop string) string {
	if base == "" {
		return prop
	}
	return base + "." + prop
}

// indexPath rewrites "contacts.0.email" as "contacts[0].email".
func indexPath(field string) string {
	parts := strings.Split(field, ".")
	var b strings.Builder
	for i, part := range parts {
		if isIndex(part) && i > 0 {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
