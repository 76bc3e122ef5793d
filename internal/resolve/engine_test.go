package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltsoft/stitch/internal/identity"
)

// stub is a minimal cached entity for engine tests.
type stub struct {
	key identity.Key
}

func (s *stub) IdentityKey() identity.Key { return s.key }

func entryStub(id string) *stub {
	return &stub{key: identity.NewKey(identity.KindEntry, id, "")}
}

func assetStub(id string) *stub {
	return &stub{key: identity.NewKey(identity.KindAsset, id, "")}
}

func TestCacheEntity_GetReturnsCached(t *testing.T) {
	e := NewEngine()
	ent := entryStub("e1")
	e.CacheEntity(ent)

	got, ok := e.Get(ent.IdentityKey())
	require.True(t, ok)
	assert.Same(t, ent, got, "Get must return the exact cached entity")
}

func TestGet_AbsentIsNotAnError(t *testing.T) {
	e := NewEngine()
	_, ok := e.Get(identity.NewKey(identity.KindEntry, "missing", ""))
	assert.False(t, ok)
}

func TestGet_LocaleFallback(t *testing.T) {
	e := NewEngine()
	ent := entryStub("e1") // cached without locale
	e.CacheEntity(ent)

	got, ok := e.Get(identity.NewKey(identity.KindEntry, "e1", "en-US"))
	require.True(t, ok)
	assert.Same(t, ent, got)
}

func TestCacheEntity_DuplicateLastWriteWins(t *testing.T) {
	e := NewEngine()
	first := entryStub("e1")
	second := entryStub("e1")
	e.CacheEntity(first)
	e.CacheEntity(second)

	got, ok := e.Get(first.IdentityKey())
	require.True(t, ok)
	assert.Same(t, second, got)

	report := e.Churn()
	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, first.IdentityKey(), report.Duplicates[0])
}

func TestRegisterSingle_ResolvedTarget(t *testing.T) {
	e := NewEngine()
	asset := assetStub("a1")
	e.CacheEntity(asset)

	var got Entity
	var found bool
	invocations := 0
	e.RegisterSingle(asset.IdentityKey(), func(ent Entity, ok bool) {
		invocations++
		got, found = ent, ok
	})

	report := e.Churn()

	assert.Equal(t, 1, invocations, "exactly one invocation per registration")
	require.True(t, found)
	assert.Same(t, asset, got)
	assert.Equal(t, 1, report.Resolved)
	assert.True(t, report.Clean())
}

func TestRegisterSingle_AbsentTargetDeliversExplicitSignal(t *testing.T) {
	e := NewEngine()

	invoked := false
	target := identity.NewKey(identity.KindEntry, "ghost", "")
	e.RegisterSingle(target, func(ent Entity, ok bool) {
		invoked = true
		assert.Nil(t, ent)
		assert.False(t, ok)
	})

	report := e.Churn()

	assert.True(t, invoked, "absent targets must never be silently skipped")
	assert.Equal(t, 1, report.Unresolved)
	require.Len(t, report.Missing, 1)
	assert.Equal(t, target, report.Missing[0])
}

func TestRegisterSingle_SharedKeyFiresInRegistrationOrder(t *testing.T) {
	e := NewEngine()
	asset := assetStub("a1")
	e.CacheEntity(asset)

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		e.RegisterSingle(asset.IdentityKey(), func(Entity, bool) {
			order = append(order, i)
		})
	}

	e.Churn()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRegisterArray_OrderPreservingLengthReducing(t *testing.T) {
	e := NewEngine()
	e1 := entryStub("e1")
	e3 := entryStub("e3")
	e.CacheEntity(e1)
	e.CacheEntity(e3)

	targets := []identity.Key{
		identity.NewKey(identity.KindEntry, "e1", ""),
		identity.NewKey(identity.KindEntry, "e2", ""), // not cached
		identity.NewKey(identity.KindEntry, "e3", ""),
	}

	var got []Entity
	e.RegisterArray(targets, func(ents []Entity) { got = ents })

	report := e.Churn()

	require.Len(t, got, 2, "absent member drops, array shortens")
	assert.Same(t, e1, got[0])
	assert.Same(t, e3, got[1])
	assert.Len(t, report.Truncated, 1)
	require.Len(t, report.Missing, 1)
	assert.Equal(t, "e2", report.Missing[0].ID)
}

func TestRegisterArray_SingleMemberCached(t *testing.T) {
	e := NewEngine()
	e1 := entryStub("e1")
	e.CacheEntity(e1)

	targets := []identity.Key{
		identity.NewKey(identity.KindEntry, "e1", ""),
		identity.NewKey(identity.KindEntry, "e2", ""),
	}

	var got []Entity
	e.RegisterArray(targets, func(ents []Entity) { got = ents })
	e.Churn()

	require.Len(t, got, 1, "partial resolution is not an error")
	assert.Same(t, e1, got[0])
}

func TestChurn_SecondChurnIsNoOp(t *testing.T) {
	e := NewEngine()
	asset := assetStub("a1")
	e.CacheEntity(asset)

	invocations := 0
	e.RegisterSingle(asset.IdentityKey(), func(Entity, bool) { invocations++ })

	e.Churn()
	assert.Equal(t, 1, invocations)
	assert.Equal(t, 0, e.Len(), "cache cleared at end of churn")

	report := e.Churn()
	assert.Equal(t, 1, invocations, "second churn invokes no callbacks")
	assert.Equal(t, 0, report.Resolved)
	assert.True(t, report.Clean())
}

func TestChurn_ClearsCacheForNextDocument(t *testing.T) {
	e := NewEngine()
	asset := assetStub("a1")
	e.CacheEntity(asset)
	e.Churn()

	_, ok := e.Get(asset.IdentityKey())
	assert.False(t, ok, "previous document's entities must not leak")
}

// linked models an entry whose field references another entity, assigned
// via a registered closure over the field slot.
type linked struct {
	key identity.Key
	ref Entity
}

func (l *linked) IdentityKey() identity.Key { return l.key }

func TestChurn_CyclicReferences(t *testing.T) {
	// A links to B and B links to A. Decode order must not matter and no
	// recursion may occur: registration defers all assignment to churn.
	decodeOrders := [][2]string{{"a", "b"}, {"b", "a"}}

	for _, order := range decodeOrders {
		t.Run(order[0]+" then "+order[1], func(t *testing.T) {
			e := NewEngine()

			entities := map[string]*linked{
				"a": {key: identity.NewKey(identity.KindEntry, "a", "")},
				"b": {key: identity.NewKey(identity.KindEntry, "b", "")},
			}
			peers := map[string]string{"a": "b", "b": "a"}

			for _, id := range order {
				ent := entities[id]
				peer := identity.NewKey(identity.KindEntry, peers[id], "")
				e.RegisterSingle(peer, func(target Entity, ok bool) {
					if ok {
						ent.ref = target
					}
				})
				e.CacheEntity(ent)
			}

			report := e.Churn()

			assert.Same(t, entities["b"], entities["a"].ref, "a must resolve to b")
			assert.Same(t, entities["a"], entities["b"].ref, "b must resolve to a")
			assert.True(t, report.Clean())
		})
	}
}

func TestChurn_ConcreteAssetScenario(t *testing.T) {
	e := NewEngine()
	asset := assetStub("a1")
	e.CacheEntity(asset)

	invocations := 0
	var got Entity
	e.RegisterSingle(identity.NewKey(identity.KindAsset, "a1", ""), func(ent Entity, ok bool) {
		invocations++
		require.True(t, ok)
		got = ent
	})

	e.Churn()
	assert.Equal(t, 1, invocations)
	assert.Same(t, asset, got)

	// Cache is empty now; a second churn invokes nothing.
	e.Churn()
	assert.Equal(t, 1, invocations)
	assert.Equal(t, 0, e.Len())
}

func TestRegisterArray_DistinctOrdersAreDistinctKeys(t *testing.T) {
	e := NewEngine()
	e1 := entryStub("e1")
	e2 := entryStub("e2")
	e.CacheEntity(e1)
	e.CacheEntity(e2)

	k1 := identity.NewKey(identity.KindEntry, "e1", "")
	k2 := identity.NewKey(identity.KindEntry, "e2", "")

	var forward, reverse []Entity
	e.RegisterArray([]identity.Key{k1, k2}, func(ents []Entity) { forward = ents })
	e.RegisterArray([]identity.Key{k2, k1}, func(ents []Entity) { reverse = ents })

	e.Churn()

	require.Len(t, forward, 2)
	require.Len(t, reverse, 2)
	assert.Same(t, e1, forward[0])
	assert.Same(t, e2, reverse[0])
}
