package identity

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/language"
)

// Key is the composite identity of a decoded entity within one document:
// (kind, id, locale). Locale is part of identity because multi-locale
// documents materialize the same logical entry once per locale.
//
// Key is a pure value type. Deriving a key has no hidden state: equal
// inputs always produce equal keys.
type Key struct {
	Kind   Kind
	ID     string
	Locale string // empty when the document carries no locale
}

// NewKey builds a Key, canonicalizing the locale tag so that spelling
// variants of the same BCP 47 tag ("en-us", "en-US") collapse onto one
// identity.
func NewKey(kind Kind, id, locale string) Key {
	return Key{Kind: kind, ID: id, Locale: CanonicalLocale(locale)}
}

// WithoutLocale returns the locale-less variant of the key.
// Used as the fallback lookup for documents decoded without a locale view.
func (k Key) WithoutLocale() Key {
	k.Locale = ""
	return k
}

// String renders the canonical cache-key form: "kind_id" or
// "kind_id_locale". The underscore join mirrors the wire convention of
// identifiers never containing underscores of their own meaning; the kind
// prefix keeps an entry and an asset with the same id distinct.
func (k Key) String() string {
	s := string(k.Kind) + "_" + k.ID
	if k.Locale != "" {
		s += "_" + k.Locale
	}
	return s
}

// CanonicalLocale normalizes a BCP 47 locale tag.
// Unparseable tags pass through unchanged: locale bookkeeping is owned by
// the caller, and an exotic tag must still produce a stable key.
func CanonicalLocale(locale string) string {
	if locale == "" {
		return ""
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	return tag.String()
}

// Domain prefix for composite array keys. The version suffix allows the
// derivation to change without colliding with keys hashed under the old
// scheme.
const domainArrayKey = "stitch/arraykey/v1"

// ArrayKey derives a single registry key from an ordered list of target
// identities. The derivation is order-sensitive: the same identities in a
// different order hash to a different key, because link arrays must be
// delivered in registration order.
//
// Format: SHA256(domain + 0x00 + key1 + 0x00 + key2 + 0x00 + ...).
// The null separator prevents boundary ambiguity between member keys.
func ArrayKey(targets []Key) string {
	h := sha256.New()
	h.Write([]byte(domainArrayKey))
	for _, t := range targets {
		h.Write([]byte{0x00})
		h.Write([]byte(t.String()))
	}
	return hex.EncodeToString(h.Sum(nil))
}
