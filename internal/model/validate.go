package model

import (
	"fmt"

	"github.com/quiltsoft/stitch/internal/content"
	"github.com/quiltsoft/stitch/internal/value"
)

// Finding is one validation result: an entry field that does not conform
// to the declared content model.
type Finding struct {
	EntryID     string
	ContentType string
	Field       string
	Message     string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s (%s) %s: %s", f.EntryID, f.ContentType, f.Field, f.Message)
}

// Validate checks every generic entry in a decoded document against the
// model. Entries whose content type is not declared produce a finding;
// typed entries (capability-table hits) validate through their own
// DecodeFields and are not re-checked here.
func Validate(doc *content.Document, spec *ModelSpec) []Finding {
	var findings []Finding
	for _, entry := range doc.Entries {
		findings = append(findings, validateEntry(entry, spec)...)
	}
	return findings
}

func validateEntry(entry *content.Entry, spec *ModelSpec) []Finding {
	ct, ok := spec.Lookup(entry.Sys.ContentType)
	if !ok {
		return []Finding{{
			EntryID:     entry.Sys.ID,
			ContentType: entry.Sys.ContentType,
			Field:       "-",
			Message:     "content type not declared in model",
		}}
	}

	var findings []Finding
	report := func(field, msg string) {
		findings = append(findings, Finding{
			EntryID:     entry.Sys.ID,
			ContentType: ct.ID,
			Field:       field,
			Message:     msg,
		})
	}

	declared := make(map[string]*FieldSpec, len(ct.Fields))
	for i := range ct.Fields {
		declared[ct.Fields[i].ID] = &ct.Fields[i]
	}

	for _, f := range ct.Fields {
		v, present := entry.Fields[f.ID]
		if !present {
			if f.Required {
				report(f.ID, "required field missing")
			}
			continue
		}
		if msg := checkType(v, &f); msg != "" {
			report(f.ID, msg)
		}
	}

	for name := range entry.Fields {
		if _, ok := declared[name]; !ok {
			report(name, "field not declared in model")
		}
	}

	return findings
}

// checkType verifies one field value against its declared type.
// Returns an empty string when the value conforms.
func checkType(v value.Value, f *FieldSpec) string {
	switch f.Type {
	case "Symbol", "Text", "Date":
		if _, ok := v.(value.String); !ok {
			return fmt.Sprintf("expected %s, got %s", f.Type, typeName(v))
		}
	case "Integer":
		if _, ok := v.(value.Int); !ok {
			return fmt.Sprintf("expected Integer, got %s", typeName(v))
		}
	case "Number":
		switch v.(type) {
		case value.Int, value.Float:
		default:
			return fmt.Sprintf("expected Number, got %s", typeName(v))
		}
	case "Boolean":
		if _, ok := v.(value.Bool); !ok {
			return fmt.Sprintf("expected Boolean, got %s", typeName(v))
		}
	case "Location", "Object":
		if _, ok := v.(value.Object); !ok {
			return fmt.Sprintf("expected %s, got %s", f.Type, typeName(v))
		}
	case "Link":
		link, ok := v.(value.Link)
		if !ok {
			return fmt.Sprintf("expected Link, got %s", typeName(v))
		}
		if f.LinkKind != "" && string(link.TargetKind) != f.LinkKind {
			return fmt.Sprintf("expected link to %s, got %s", f.LinkKind, link.TargetKind)
		}
	case "Array":
		list, ok := v.(value.List)
		if !ok {
			return fmt.Sprintf("expected Array, got %s", typeName(v))
		}
		member := FieldSpec{ID: f.ID, Type: f.Items, LinkKind: f.LinkKind}
		for i, elem := range list {
			if msg := checkType(elem, &member); msg != "" {
				return fmt.Sprintf("member %d: %s", i, msg)
			}
		}
	}
	return ""
}

func typeName(v value.Value) string {
	switch val := v.(type) {
	case value.Null:
		return "null"
	case value.Bool:
		return "Boolean"
	case value.Int:
		return "Integer"
	case value.Float:
		return "Number"
	case value.String:
		return "Text"
	case value.List:
		return "Array"
	case value.Object:
		return "Object"
	case value.Link:
		return fmt.Sprintf("Link[%s]", val.TargetKind)
	case value.FileMeta:
		return "File"
	default:
		return fmt.Sprintf("%T", v)
	}
}
