package identity

import "fmt"

// Kind classifies an entity within a delivery document.
// The string values match the "sys.type" (and "sys.linkType") tags on the
// wire, so a Kind can be parsed straight out of system metadata.
type Kind string

const (
	KindEntry        Kind = "Entry"
	KindAsset        Kind = "Asset"
	KindDeletedEntry Kind = "DeletedEntry"
	KindDeletedAsset Kind = "DeletedAsset"
	KindContentType  Kind = "ContentType"
	KindLink         Kind = "Link"
)

// ValidKinds defines the entity kinds a document may carry.
var ValidKinds = map[Kind]bool{
	KindEntry:        true,
	KindAsset:        true,
	KindDeletedEntry: true,
	KindDeletedAsset: true,
	KindContentType:  true,
	KindLink:         true,
}

// ParseKind converts a wire tag into a Kind.
// Returns an error for tags outside the known set so that malformed
// system metadata fails the enclosing entity's decode, not the batch.
func ParseKind(tag string) (Kind, error) {
	k := Kind(tag)
	if !ValidKinds[k] {
		return "", fmt.Errorf("unknown entity kind %q", tag)
	}
	return k, nil
}

// Deleted reports whether the kind marks a tombstone record.
func (k Kind) Deleted() bool {
	return k == KindDeletedEntry || k == KindDeletedAsset
}

// Target maps a link kind to the kind it resolves against in the cache.
// Deleted kinds collapse onto their live counterparts: a link can only
// ever point at an Entry or an Asset.
func (k Kind) Target() Kind {
	switch k {
	case KindDeletedEntry:
		return KindEntry
	case KindDeletedAsset:
		return KindAsset
	default:
		return k
	}
}
