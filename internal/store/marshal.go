package store

import (
	"fmt"

	"github.com/quiltsoft/stitch/internal/content"
	"github.com/quiltsoft/stitch/internal/value"
)

// marshalEntryFields serializes an entry's dynamic fields to canonical
// JSON. Link placeholders serialize in their wire shape, so a stored row
// re-decodes through the same path as a fresh document.
func marshalEntryFields(entry *content.Entry) (string, error) {
	if entry.Fields == nil {
		return "{}", nil
	}
	data, err := value.MarshalCanonical(entry.Fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields for entry %q: %w", entry.Sys.ID, err)
	}
	return string(data), nil
}

// marshalAssetFields rebuilds an asset's wire field object and serializes
// it canonically.
func marshalAssetFields(asset *content.Asset) (string, error) {
	fields := value.Object{}
	if asset.Title != "" {
		fields["title"] = value.String(asset.Title)
	}
	if asset.Description != "" {
		fields["description"] = value.String(asset.Description)
	}
	if asset.File != (value.FileMeta{}) {
		fields["file"] = asset.File
	}
	data, err := value.MarshalCanonical(fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields for asset %q: %w", asset.Sys.ID, err)
	}
	return string(data), nil
}

// unmarshalFields parses a stored canonical JSON payload back into a
// dynamic field object.
func unmarshalFields(data string) (value.Object, error) {
	if data == "" || data == "{}" {
		return value.Object{}, nil
	}
	v, err := value.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	obj, ok := v.(value.Object)
	if !ok {
		return nil, fmt.Errorf("unmarshal fields: expected object, got %T", v)
	}
	return obj, nil
}
