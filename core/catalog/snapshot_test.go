package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newVariant(role Role, path string, mtime int64, optimized bool) *Variant {
	return &Variant{
		Role:           role,
		Status:         role.Status(),
		Path:           path,
		FileSize:       100,
		LastWriteTicks: mtime,
		Meta: &Metadata{
			CreatorName: "Acme",
			PackageName: "Outfit",
			Version:     3,
			Optimized:   optimized,
			Contents:    []string{"Custom/Clothing/Acme/dress.vam"},
			Categories:  []string{"Clothing"},
		},
		ContentHash: 7,
	}
}

func finalize(vs ...*Variant) *Snapshot {
	snap := NewSnapshot("Acme.Outfit.3")
	for _, v := range vs {
		snap.AddOrUpdateVariant(v)
	}
	snap.FinalizeVariants()
	return snap
}

func TestOrderingLaw(t *testing.T) {
	tests := []struct {
		name   string
		first  *Variant
		second *Variant
	}{
		{
			name:   "optimized beats unoptimized",
			first:  newVariant(RoleArchived, "/b/x.var", 2, true),
			second: newVariant(RoleLoaded, "/a/x.var", 1, false),
		},
		{
			name:   "loaded beats available",
			first:  newVariant(RoleLoaded, "/z/x.var", 2, false),
			second: newVariant(RoleAvailable, "/a/x.var", 1, false),
		},
		{
			name:   "available beats archived",
			first:  newVariant(RoleAvailable, "/z/x.var", 2, false),
			second: newVariant(RoleArchived, "/a/x.var", 1, false),
		},
		{
			name:   "path breaks role ties case-insensitively",
			first:  newVariant(RoleAvailable, "/A/x.var", 9, false),
			second: newVariant(RoleAvailable, "/b/x.var", 1, false),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Insert in both orders; the result must not depend on it.
			snap := finalize(tt.first, tt.second)
			assert.Equal(t, tt.first.Path, snap.Preferred().Path)
			snap = finalize(tt.second, tt.first)
			assert.Equal(t, tt.first.Path, snap.Preferred().Path)
		})
	}
}

func TestOrderingLawWriteTimeTieBreak(t *testing.T) {
	// Two variants identical in every ranked dimension except the
	// write time cannot coexist in one snapshot (they would share a
	// path key), so the comparator is checked directly.
	older := newVariant(RoleAvailable, "/same/x.var", 1, false)
	newer := newVariant(RoleAvailable, "/same/x.var", 5, false)

	assert.True(t, variantLess(older, newer))
	assert.False(t, variantLess(newer, older))
}

func TestDuplicateLawMultipleActive(t *testing.T) {
	loaded := newVariant(RoleLoaded, "/loaded/x.var", 1, false)
	available := newVariant(RoleAvailable, "/avail/x.var", 2, false)
	archived := newVariant(RoleArchived, "/ArchivedPackages/x.var", 3, false)

	snap := finalize(loaded, available, archived)

	for _, v := range snap.Variants() {
		switch v.Role {
		case RoleArchived:
			assert.False(t, v.Meta.IsDuplicate)
			assert.Equal(t, StatusArchived, v.Meta.Status)
			assert.Equal(t, 2, v.Meta.DuplicateLocationCount)
		default:
			assert.True(t, v.Meta.IsDuplicate)
			assert.Equal(t, StatusDuplicate, v.Meta.Status)
			assert.Equal(t, 2, v.Meta.DuplicateLocationCount)
		}
	}
}

func TestDuplicateLawSingleActive(t *testing.T) {
	available := newVariant(RoleAvailable, "/avail/x.var", 1, false)
	snap := finalize(available)

	v := snap.Preferred()
	assert.False(t, v.Meta.IsDuplicate)
	assert.Equal(t, StatusAvailable, v.Meta.Status)
	assert.Equal(t, 1, v.Meta.DuplicateLocationCount)
}

func TestDuplicateLawArchivedOnly(t *testing.T) {
	archived := newVariant(RoleArchived, "/ArchivedPackages/x.var", 1, false)
	snap := finalize(archived)

	v := snap.Preferred()
	assert.False(t, v.Meta.IsDuplicate)
	assert.Equal(t, StatusArchived, v.Meta.Status)
	assert.Equal(t, 1, v.Meta.DuplicateLocationCount)
}

func TestFinalizeDoesNotMutateOriginalMetadata(t *testing.T) {
	loaded := newVariant(RoleLoaded, "/loaded/x.var", 1, false)
	available := newVariant(RoleAvailable, "/avail/x.var", 2, false)
	original := loaded.Meta

	finalize(loaded, available)

	// The pre-finalize record must be untouched; flags land on clones.
	assert.False(t, original.IsDuplicate)
	assert.Equal(t, Status(""), original.Status)
}

func TestMaterializeSuffixAssignment(t *testing.T) {
	store := NewStore()
	snap := finalize(
		newVariant(RoleLoaded, "/loaded/x.var", 1, false),
		newVariant(RoleAvailable, "/a/x.var", 2, false),
		newVariant(RoleAvailable, "/b/x.var", 3, false),
		newVariant(RoleArchived, "/ArchivedPackages/a/x.var", 4, false),
		newVariant(RoleArchived, "/ArchivedPackages/b/x.var", 5, false),
	)
	snap.Materialize(store)

	assert.ElementsMatch(t, []string{
		"Acme.Outfit.3",
		"Acme.Outfit.3#available",
		"Acme.Outfit.3#available2",
		"Acme.Outfit.3#archived",
		"Acme.Outfit.3#archived2",
	}, store.Keys())
	assert.ElementsMatch(t, snap.MaterializedKeys(), store.Keys())

	preferred, ok := store.Get("Acme.Outfit.3")
	assert.True(t, ok)
	assert.Equal(t, "/loaded/x.var", preferred.Path)

	// Suffix numbering follows the deterministic variant order.
	first, _ := store.Get("Acme.Outfit.3#available")
	second, _ := store.Get("Acme.Outfit.3#available2")
	assert.Equal(t, "/a/x.var", first.Path)
	assert.Equal(t, "/b/x.var", second.Path)
}

func TestRemoveMaterializedKeys(t *testing.T) {
	store := NewStore()
	store.Put("Unrelated.Pack.1", &Metadata{})

	snap := finalize(
		newVariant(RoleLoaded, "/loaded/x.var", 1, false),
		newVariant(RoleAvailable, "/a/x.var", 2, false),
	)
	snap.Materialize(store)
	assert.Equal(t, 3, store.Len())

	snap.RemoveMaterializedKeys(store)
	assert.Equal(t, []string{"Unrelated.Pack.1"}, store.Keys())
	assert.Empty(t, snap.MaterializedKeys())
}

func TestEmptySnapshotHasNoPreferredVariant(t *testing.T) {
	snap := NewSnapshot("Acme.Outfit.3")
	snap.FinalizeVariants()
	assert.Nil(t, snap.Preferred())

	store := NewStore()
	snap.Materialize(store)
	assert.Equal(t, 0, store.Len())
}

func TestBeginRebuildMovesGenerations(t *testing.T) {
	snap := NewSnapshot("Acme.Outfit.3")
	v := newVariant(RoleLoaded, "/loaded/x.var", 1, false)
	snap.AddOrUpdateVariant(v)

	snap.BeginRebuild()
	assert.Equal(t, 0, snap.VariantCount())

	prev, ok := snap.PreviousVariant("/loaded/x.var")
	assert.True(t, ok)
	assert.Equal(t, v, prev)

	// A second rebuild discards the untouched previous generation.
	snap.BeginRebuild()
	_, ok = snap.PreviousVariant("/loaded/x.var")
	assert.False(t, ok)
}
