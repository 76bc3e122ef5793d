// Package model compiles a CUE content-model declaration and validates
// decoded documents against it.
//
// A model declares the content types a space may carry and the shape of
// their fields:
//
//	contentTypes: {
//		post: {
//			name: "Blog Post"
//			fields: {
//				title:   {type: "Symbol", required: true}
//				hero:    {type: "Link", linkKind: "Asset"}
//				related: {type: "Array", items: "Link", linkKind: "Entry"}
//			}
//		}
//	}
package model

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
)

// ValidFieldTypes defines the allowed field type strings.
var ValidFieldTypes = map[string]bool{
	"Symbol":   true,
	"Text":     true,
	"Integer":  true,
	"Number":   true,
	"Boolean":  true,
	"Date":     true,
	"Location": true,
	"Object":   true,
	"Link":     true,
	"Array":    true,
}

// ModelSpec is a compiled content model.
type ModelSpec struct {
	Types []ContentTypeSpec
}

// ContentTypeSpec describes one content type's declared shape.
type ContentTypeSpec struct {
	ID     string
	Name   string
	Fields []FieldSpec
}

// FieldSpec describes one declared field.
type FieldSpec struct {
	ID       string
	Type     string
	Required bool
	LinkKind string // for Link fields (and Array-of-Link items): "Entry" or "Asset"
	Items    string // for Array fields: the member type
}

// CompileError is a model compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadModel reads and compiles a CUE model file.
func LoadModel(path string) (*ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return CompileModel(v)
}

// CompileModel parses a CUE value into a ModelSpec.
// The value must carry a "contentTypes" struct.
func CompileModel(v cue.Value) (*ModelSpec, error) {
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile model: %w", err)
	}

	typesVal := v.LookupPath(cue.ParsePath("contentTypes"))
	if !typesVal.Exists() {
		return nil, &CompileError{
			Field:   "contentTypes",
			Message: "contentTypes is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("compile model: %w", err)
	}

	spec := &ModelSpec{}
	for iter.Next() {
		ct, err := compileContentType(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Types = append(spec.Types, *ct)
	}
	if len(spec.Types) == 0 {
		return nil, &CompileError{
			Field:   "contentTypes",
			Message: "at least one content type is required",
			Pos:     typesVal.Pos(),
		}
	}
	return spec, nil
}

// Lookup returns the spec for a content-type tag.
func (m *ModelSpec) Lookup(tag string) (*ContentTypeSpec, bool) {
	for i := range m.Types {
		if m.Types[i].ID == tag {
			return &m.Types[i], true
		}
	}
	return nil, false
}

func compileContentType(id string, v cue.Value) (*ContentTypeSpec, error) {
	ct := &ContentTypeSpec{ID: id}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, &CompileError{Field: id + ".name", Message: "name must be a string", Pos: nameVal.Pos()}
		}
		ct.Name = name
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{Field: id, Message: "fields is required", Pos: v.Pos()}
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("compile content type %q: %w", id, err)
	}
	for iter.Next() {
		f, err := compileField(id, iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		ct.Fields = append(ct.Fields, *f)
	}
	if len(ct.Fields) == 0 {
		return nil, &CompileError{Field: id + ".fields", Message: "at least one field is required", Pos: fieldsVal.Pos()}
	}
	return ct, nil
}

func compileField(typeID, fieldID string, v cue.Value) (*FieldSpec, error) {
	path := typeID + ".fields." + fieldID
	f := &FieldSpec{ID: fieldID}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return nil, &CompileError{Field: path, Message: "type is required", Pos: v.Pos()}
	}
	typ, err := typeVal.String()
	if err != nil {
		return nil, &CompileError{Field: path + ".type", Message: "type must be a string", Pos: typeVal.Pos()}
	}
	if !ValidFieldTypes[typ] {
		return nil, &CompileError{
			Field:   path + ".type",
			Message: fmt.Sprintf("invalid type %q", typ),
			Pos:     typeVal.Pos(),
		}
	}
	f.Type = typ

	if reqVal := v.LookupPath(cue.ParsePath("required")); reqVal.Exists() {
		req, err := reqVal.Bool()
		if err != nil {
			return nil, &CompileError{Field: path + ".required", Message: "required must be a bool", Pos: reqVal.Pos()}
		}
		f.Required = req
	}

	if linkVal := v.LookupPath(cue.ParsePath("linkKind")); linkVal.Exists() {
		lk, err := linkVal.String()
		if err != nil || (lk != "Entry" && lk != "Asset") {
			return nil, &CompileError{Field: path + ".linkKind", Message: `linkKind must be "Entry" or "Asset"`, Pos: linkVal.Pos()}
		}
		f.LinkKind = lk
	}

	if itemsVal := v.LookupPath(cue.ParsePath("items")); itemsVal.Exists() {
		items, err := itemsVal.String()
		if err != nil || !ValidFieldTypes[items] || items == "Array" {
			return nil, &CompileError{Field: path + ".items", Message: "items must be a non-array field type", Pos: itemsVal.Pos()}
		}
		f.Items = items
	}

	if f.Type == "Array" && f.Items == "" {
		return nil, &CompileError{Field: path, Message: "Array fields require items", Pos: v.Pos()}
	}

	return f, nil
}
