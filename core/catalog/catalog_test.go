package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"var-manager/core/cache"
	"var-manager/core/catalog"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestCatalog(t *testing.T, store *cache.Store) *catalog.Catalog {
	t.Helper()
	var metaCache catalog.MetadataCache
	if store != nil {
		metaCache = store
	}
	parser := catalog.NewParser(metaCache, nil, zap.NewNop())
	return catalog.New(parser, metaCache, zap.NewNop(), 2)
}

func outfitEntries() map[string]string {
	return map[string]string{
		"meta.json":                      `{"creatorName": "Acme", "packageName": "Outfit"}`,
		"Custom/Clothing/Acme/dress.vam": "{}",
	}
}

func TestResyncDuplicateAcrossRoles(t *testing.T) {
	dir := t.TempDir()
	loaded := writeArchive(t, filepath.Join(dir, "AddonPackages"), "Acme.Outfit.3.var", outfitEntries())
	available := writeArchive(t, filepath.Join(dir, "library"), "Acme.Outfit.3.var", outfitEntries())

	c := newTestCatalog(t, nil)
	stats, err := c.Resync(context.Background(), []string{loaded}, []string{available})
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Packages)
	assert.Equal(t, 2, stats.Variants)

	// The loaded copy wins the canonical key; the available copy gets a
	// role-suffixed key. Both active copies carry the duplicate flags.
	canonical, ok := c.Store().Get("Acme.Outfit.3")
	assert.True(t, ok)
	assert.True(t, canonical.IsDuplicate)
	assert.Equal(t, 2, canonical.DuplicateLocationCount)
	assert.Equal(t, catalog.StatusDuplicate, canonical.Status)
	assert.Equal(t, loaded, canonical.Path)

	secondary, ok := c.Store().Get("Acme.Outfit.3#available")
	assert.True(t, ok)
	assert.True(t, secondary.IsDuplicate)
	assert.Equal(t, 2, secondary.DuplicateLocationCount)
	assert.Equal(t, available, secondary.Path)

	assert.Equal(t, []string{"Acme.Outfit.3", "Acme.Outfit.3#available"}, c.Store().Keys())
}

func TestResyncArchivedOnlyPackage(t *testing.T) {
	dir := t.TempDir()
	archived := writeArchive(t, filepath.Join(dir, "ArchivedPackages"), "Acme.Outfit.3.var", outfitEntries())

	c := newTestCatalog(t, nil)
	_, err := c.Resync(context.Background(), nil, []string{archived})
	assert.NoError(t, err)

	meta, ok := c.Store().Get("Acme.Outfit.3")
	assert.True(t, ok)
	assert.Equal(t, catalog.StatusArchived, meta.Status)
	assert.False(t, meta.IsDuplicate)
	assert.Equal(t, 1, meta.DuplicateLocationCount)
}

func TestResyncIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	cacheStore := newTestCache(t)
	loaded := writeArchive(t, filepath.Join(dir, "AddonPackages"), "Acme.Outfit.3.var", outfitEntries())
	available := writeArchive(t, filepath.Join(dir, "library"), "Acme.Beach.2.var", map[string]string{
		"Saves/scene/beach.json": "{}",
	})

	c := newTestCatalog(t, cacheStore)
	first, err := c.Resync(context.Background(), []string{loaded}, []string{available})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), first.Parsed)
	firstKeys := c.Store().Keys()

	second, err := c.Resync(context.Background(), []string{loaded}, []string{available})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), second.Parsed)
	assert.Equal(t, int64(2), second.FastPathReuses)
	assert.Equal(t, firstKeys, c.Store().Keys())
}

func TestResyncSweepsDeletedPackages(t *testing.T) {
	dir := t.TempDir()
	keep := writeArchive(t, filepath.Join(dir, "library"), "Acme.Outfit.3.var", outfitEntries())
	gone := writeArchive(t, filepath.Join(dir, "library"), "Acme.Beach.2.var", map[string]string{
		"Saves/scene/beach.json": "{}",
	})

	c := newTestCatalog(t, nil)
	_, err := c.Resync(context.Background(), nil, []string{keep, gone})
	assert.NoError(t, err)
	assert.Len(t, c.Store().Keys(), 2)

	stats, err := c.Resync(context.Background(), nil, []string{keep})
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Removed)
	assert.Equal(t, 1, stats.Packages)
	assert.Equal(t, []string{"Acme.Outfit.3"}, c.Store().Keys())

	_, ok := c.Snapshot("Acme.Beach.2")
	assert.False(t, ok)
}

func TestResyncMarksOldVersions(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "library")
	paths := []string{
		writeArchive(t, lib, "Acme.Outfit.2.var", outfitEntries()),
		writeArchive(t, lib, "Acme.Outfit.5.var", outfitEntries()),
		writeArchive(t, lib, "Acme.Outfit.3.var", outfitEntries()),
	}
	// A corrupted higher version must not raise the latest version.
	broken := filepath.Join(lib, "Acme.Outfit.9.var")
	assert.NoError(t, os.WriteFile(broken, []byte("not a zip"), 0o644))
	paths = append(paths, broken)

	c := newTestCatalog(t, nil)
	_, err := c.Resync(context.Background(), nil, paths)
	assert.NoError(t, err)

	tests := []struct {
		key    string
		old    bool
		latest int
	}{
		{"Acme.Outfit.2", true, 5},
		{"Acme.Outfit.3", true, 5},
		{"Acme.Outfit.5", false, 5},
	}
	for _, tt := range tests {
		meta, ok := c.Store().Get(tt.key)
		assert.True(t, ok, tt.key)
		assert.Equal(t, tt.old, meta.IsOldVersion, tt.key)
		assert.Equal(t, tt.latest, meta.LatestVersionNumber, tt.key)
	}

	corrupt, ok := c.Store().Get("Acme.Outfit.9")
	assert.True(t, ok)
	assert.True(t, corrupt.IsCorrupted)
	assert.False(t, corrupt.IsOldVersion)
}

func TestResyncSingletonIsNeverOld(t *testing.T) {
	dir := t.TempDir()
	only := writeArchive(t, filepath.Join(dir, "library"), "Acme.Outfit.3.var", outfitEntries())

	c := newTestCatalog(t, nil)
	_, err := c.Resync(context.Background(), nil, []string{only})
	assert.NoError(t, err)

	meta, _ := c.Store().Get("Acme.Outfit.3")
	assert.False(t, meta.IsOldVersion)
	assert.Equal(t, 3, meta.LatestVersionNumber)
}

func TestResyncCancellation(t *testing.T) {
	dir := t.TempDir()
	path := writeArchive(t, filepath.Join(dir, "library"), "Acme.Outfit.3.var", outfitEntries())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCatalog(t, nil)
	_, err := c.Resync(ctx, nil, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRefreshPackageAfterDelete(t *testing.T) {
	dir := t.TempDir()
	first := writeArchive(t, filepath.Join(dir, "library"), "Acme.Outfit.3.var", outfitEntries())
	second := writeArchive(t, filepath.Join(dir, "mirror"), "Acme.Outfit.3.var", outfitEntries())

	c := newTestCatalog(t, nil)
	_, err := c.Resync(context.Background(), nil, []string{first, second})
	assert.NoError(t, err)
	meta, _ := c.Store().Get("Acme.Outfit.3")
	assert.True(t, meta.IsDuplicate)

	assert.NoError(t, os.Remove(second))
	stats, err := c.RefreshPackage(context.Background(), "Acme.Outfit.3", second)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Variants)

	meta, ok := c.Store().Get("Acme.Outfit.3")
	assert.True(t, ok)
	assert.False(t, meta.IsDuplicate)
	assert.Equal(t, catalog.StatusAvailable, meta.Status)
	_, ok = c.Store().Get("Acme.Outfit.3#available")
	assert.False(t, ok)
}

func TestRefreshPackageDiscoversArchivedFile(t *testing.T) {
	dir := t.TempDir()
	archived := writeArchive(t, filepath.Join(dir, "ArchivedPackages"), "Acme.Outfit.3.var", outfitEntries())

	c := newTestCatalog(t, nil)
	stats, err := c.RefreshPackage(context.Background(), "Acme.Outfit.3", archived)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Packages)

	meta, ok := c.Store().Get("Acme.Outfit.3")
	assert.True(t, ok)
	assert.Equal(t, catalog.StatusArchived, meta.Status)
}

func TestRefreshPackageRemovesEmptySnapshot(t *testing.T) {
	dir := t.TempDir()
	only := writeArchive(t, filepath.Join(dir, "library"), "Acme.Outfit.3.var", outfitEntries())

	c := newTestCatalog(t, nil)
	_, err := c.Resync(context.Background(), nil, []string{only})
	assert.NoError(t, err)

	assert.NoError(t, os.Remove(only))
	stats, err := c.RefreshPackage(context.Background(), "Acme.Outfit.3", only)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Removed)
	assert.Empty(t, c.Store().Keys())

	_, ok := c.Snapshot("Acme.Outfit.3")
	assert.False(t, ok)
}

func TestRefreshPackageRequiresArguments(t *testing.T) {
	c := newTestCatalog(t, nil)
	_, err := c.RefreshPackage(context.Background(), "", "/some/path.var")
	assert.ErrorIs(t, err, catalog.ErrMissingArgument)
	_, err = c.RefreshPackage(context.Background(), "Acme.Outfit.3", "")
	assert.ErrorIs(t, err, catalog.ErrMissingArgument)
}

func TestInvalidateRemovesKeysAndCacheRows(t *testing.T) {
	dir := t.TempDir()
	cacheStore := newTestCache(t)
	only := writeArchive(t, filepath.Join(dir, "library"), "Acme.Outfit.3.var", outfitEntries())

	c := newTestCatalog(t, cacheStore)
	_, err := c.Resync(context.Background(), nil, []string{only})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), cacheStore.Count())

	assert.NoError(t, c.Invalidate("Acme.Outfit.3"))
	assert.Empty(t, c.Store().Keys())
	assert.Equal(t, int64(0), cacheStore.Count())

	_, ok := c.Snapshot("Acme.Outfit.3")
	assert.False(t, ok)

	assert.ErrorIs(t, c.Invalidate(""), catalog.ErrMissingArgument)
}

func TestResyncServesSecondRunFromPersistentCache(t *testing.T) {
	dir := t.TempDir()
	cacheStore := newTestCache(t)
	only := writeArchive(t, filepath.Join(dir, "library"), "Acme.Outfit.3.var", outfitEntries())

	first := newTestCatalog(t, cacheStore)
	_, err := first.Resync(context.Background(), nil, []string{only})
	assert.NoError(t, err)

	// A fresh catalog has no previous generation, so the fast path
	// cannot help; the persistent cache must.
	second := newTestCatalog(t, cacheStore)
	stats, err := second.Resync(context.Background(), nil, []string{only})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), stats.Parsed)
	assert.Equal(t, int64(1), stats.CacheHits)
}
