package content

import (
	"github.com/quiltsoft/stitch/internal/identity"
	"github.com/quiltsoft/stitch/internal/value"
)

// Asset is a decoded media resource record.
type Asset struct {
	Sys         Sys
	Title       string
	Description string
	File        value.FileMeta
}

// IdentityKey implements resolve.Entity.
func (a *Asset) IdentityKey() identity.Key {
	return a.Sys.Key()
}

// decodeAsset builds an Asset from decoded dynamic fields.
// Unknown fields are ignored; assets carry a fixed shape on the wire.
func decodeAsset(sys Sys, fields value.Object) *Asset {
	a := &Asset{Sys: sys}
	if title, ok := fields["title"].(value.String); ok {
		a.Title = string(title)
	}
	if desc, ok := fields["description"].(value.String); ok {
		a.Description = string(desc)
	}
	if file, ok := fields["file"].(value.FileMeta); ok {
		a.File = file
	}
	return a
}

// Deleted is a tombstone record for an entry or asset removed from the
// space. Tombstones cache under their own deleted kind so that a live
// link never resolves to one.
type Deleted struct {
	Sys Sys
}

// IdentityKey implements resolve.Entity.
func (d *Deleted) IdentityKey() identity.Key {
	return d.Sys.Key()
}
