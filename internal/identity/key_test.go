package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey_Deterministic(t *testing.T) {
	a := NewKey(KindEntry, "e1", "en-US")
	b := NewKey(KindEntry, "e1", "en-US")
	assert.Equal(t, a, b, "equal inputs must yield equal keys")
	assert.Equal(t, a.String(), b.String())
}

func TestKey_String(t *testing.T) {
	testCases := []struct {
		name   string
		key    Key
		expect string
	}{
		{"entry without locale", NewKey(KindEntry, "e1", ""), "Entry_e1"},
		{"entry with locale", NewKey(KindEntry, "e1", "en-US"), "Entry_e1_en-US"},
		{"asset", NewKey(KindAsset, "a1", ""), "Asset_a1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.key.String())
		})
	}
}

func TestKey_KindDisambiguates(t *testing.T) {
	entry := NewKey(KindEntry, "shared", "")
	asset := NewKey(KindAsset, "shared", "")
	assert.NotEqual(t, entry.String(), asset.String(),
		"entry and asset with the same id must stay distinct")
}

func TestKey_LocaleIsPartOfIdentity(t *testing.T) {
	en := NewKey(KindEntry, "e1", "en-US")
	de := NewKey(KindEntry, "e1", "de-DE")
	assert.NotEqual(t, en.String(), de.String())
}

func TestCanonicalLocale(t *testing.T) {
	testCases := []struct {
		name   string
		in     string
		expect string
	}{
		{"already canonical", "en-US", "en-US"},
		{"lowercased region", "en-us", "en-US"},
		{"uppercased language", "EN-US", "en-US"},
		{"empty", "", ""},
		{"unparseable passes through", "not a locale!", "not a locale!"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, CanonicalLocale(tc.in))
		})
	}
}

func TestWithoutLocale(t *testing.T) {
	k := NewKey(KindEntry, "e1", "en-US")
	bare := k.WithoutLocale()
	assert.Equal(t, "Entry_e1", bare.String())
	assert.Equal(t, "en-US", k.Locale, "receiver must not be mutated")
}

func TestArrayKey_OrderSensitive(t *testing.T) {
	k1 := NewKey(KindEntry, "e1", "")
	k2 := NewKey(KindEntry, "e2", "")

	forward := ArrayKey([]Key{k1, k2})
	reverse := ArrayKey([]Key{k2, k1})

	assert.NotEqual(t, forward, reverse,
		"same identities in different order must hash differently")
	assert.Equal(t, forward, ArrayKey([]Key{k1, k2}), "derivation is deterministic")
}

func TestArrayKey_BoundaryUnambiguous(t *testing.T) {
	// "Entry_a" + "b" vs "Entry_ab" must not collide: the null separator
	// keeps member boundaries out of band.
	a := ArrayKey([]Key{NewKey(KindEntry, "a", ""), NewKey(KindEntry, "b", "")})
	b := ArrayKey([]Key{NewKey(KindEntry, "a_Entry_b", "")})
	assert.NotEqual(t, a, b)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Entry")
	require.NoError(t, err)
	assert.Equal(t, KindEntry, k)

	_, err = ParseKind("Widget")
	assert.Error(t, err)
}

func TestKind_Target(t *testing.T) {
	assert.Equal(t, KindEntry, KindDeletedEntry.Target())
	assert.Equal(t, KindAsset, KindDeletedAsset.Target())
	assert.Equal(t, KindEntry, KindEntry.Target())
}
