package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"var-manager/core/archive"
	"var-manager/core/retry"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// manifestName is the package manifest entry, stored at archive root.
const manifestName = "meta.json"

// manifestSizeLimit bounds manifest reads; anything larger is garbage.
const manifestSizeLimit = 8 << 20

// MetadataCache is the persistent parse-result store consulted before
// any archive is opened. Implementations must treat their own failures
// as misses; the parser never sees a cache error.
type MetadataCache interface {
	Get(filename string, size, mtimeTicks int64) (payload []byte, contentHash uint64, ok bool)
	Put(filename string, size, mtimeTicks int64, packageBase string, payload []byte, contentHash uint64)
	Remove(packageBase string)
}

// ParserStats are cumulative counters since parser construction.
type ParserStats struct {
	// Parsed counts full archive parses (cache misses).
	Parsed int64
	// CacheHits counts results served from the persistent cache.
	CacheHits int64
	// Corrupted counts records downgraded by a failure.
	Corrupted int64
	// Skipped counts files skipped for the cycle (read access denied).
	Skipped int64
}

// Parser extracts identity, content and classification metadata from
// one package archive at a time. It is safe for concurrent use across
// distinct files.
type Parser struct {
	cache     MetadataCache
	validator Validator
	log       *zap.Logger

	// Open opens package archives. Replaceable for tests and for
	// alternative container formats.
	Open archive.Opener
	// Access arbitrates reads against external writers. Denial means
	// the file is skipped for this scan cycle.
	Access archive.AccessCoordinator
	// Retry is the transient-failure policy applied to stats and
	// archive opens. Format errors are permanent and never retried.
	Retry retry.Policy

	parsed    atomic.Int64
	cacheHits atomic.Int64
	corrupted atomic.Int64
	skipped   atomic.Int64
}

// NewParser creates a Parser. cache may be nil (every file is a miss);
// validator and log default to StandardValidator and a nop logger.
func NewParser(cache MetadataCache, validator Validator, log *zap.Logger) *Parser {
	if validator == nil {
		validator = StandardValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	policy := retry.Default()
	policy.Retryable = func(err error) bool {
		return !errors.Is(err, archive.ErrFormat)
	}
	return &Parser{
		cache:     cache,
		validator: validator,
		log:       log,
		Open:      archive.OpenZip,
		Access:    archive.OpenAccess{},
		Retry:     policy,
	}
}

// Stats returns the cumulative counters.
func (p *Parser) Stats() ParserStats {
	return ParserStats{
		Parsed:    p.parsed.Load(),
		CacheHits: p.cacheHits.Load(),
		Corrupted: p.corrupted.Load(),
		Skipped:   p.skipped.Load(),
	}
}

// Parse extracts the metadata record and content hash for one package
// archive. It never fails: every failure mode degrades into a
// corrupted-but-identifiable record with contentHash 0 (the reserved
// "never cache this" value). A nil record means the file must be
// skipped this cycle because read access was denied to an external
// writer.
func (p *Parser) Parse(ctx context.Context, filePath string) (*Metadata, uint64) {
	filename := filepath.Base(filePath)
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	parsed := ParsePackageBase(base)

	var info os.FileInfo
	err := p.Retry.Do(ctx, func() error {
		fi, statErr := os.Stat(filePath)
		if statErr != nil {
			return statErr
		}
		info = fi
		return nil
	})
	if err != nil {
		p.corrupted.Add(1)
		return p.corruptedRecord(filePath, parsed, "file not accessible: "+err.Error()), 0
	}
	size := info.Size()
	mtime := info.ModTime().UnixNano()

	if meta, hash, ok := p.fromCache(filename, filePath, size, mtime); ok {
		return meta, hash
	}

	release, err := p.Access.AcquireRead(filePath)
	if err != nil {
		p.skipped.Add(1)
		p.log.Debug("Read access denied, skipping file this cycle",
			zap.String("path", filePath))
		return nil, 0
	}
	defer release()

	var reader archive.Reader
	err = p.Retry.Do(ctx, func() error {
		r, openErr := p.Open(filePath)
		if openErr != nil {
			return openErr
		}
		reader = r
		return nil
	})
	if err != nil {
		p.corrupted.Add(1)
		m := p.corruptedRecord(filePath, parsed, "unreadable archive: "+err.Error())
		m.FileSize = size
		m.LastWriteTicks = mtime
		return m, 0
	}
	defer reader.Close()

	contents, manifestRaw, readErr := p.scanEntries(reader)
	if readErr != nil {
		p.corrupted.Add(1)
		m := p.corruptedRecord(filePath, parsed, "corrupt archive entry: "+readErr.Error())
		m.FileSize = size
		m.LastWriteTicks = mtime
		return m, 0
	}

	meta := &Metadata{
		Path:           filePath,
		FileSize:       size,
		LastWriteTicks: mtime,
		Contents:       contents,
	}
	if manifestRaw != nil {
		p.applyManifest(meta, manifestRaw, filePath)
	}

	// The filename is authoritative: it backfills a blank manifest
	// identity, and its version always wins over the manifest's.
	if strings.TrimSpace(meta.CreatorName) == "" {
		meta.CreatorName = parsed.Creator
	}
	if strings.TrimSpace(meta.PackageName) == "" {
		meta.PackageName = parsed.Name
	}
	if parsed.HasVersion {
		meta.Version = parsed.Version
	}

	meta.Categories, meta.CategoryCounts = detectCategories(base, contents)

	damaged, reason := p.validator.Validate(meta)
	meta.IsDamaged = damaged
	meta.DamageReason = reason

	hash := contentHash(manifestRaw, contents)

	p.parsed.Add(1)
	if p.cache != nil {
		if payload, marshalErr := json.Marshal(meta); marshalErr == nil {
			p.cache.Put(filename, size, mtime, base, payload, hash)
		}
	}
	return meta, hash
}

// fromCache serves a previously parsed record, re-running only the
// cheap steps that may legitimately change between runs: morph-pack
// re-classification and integrity validation.
func (p *Parser) fromCache(filename, filePath string, size, mtime int64) (*Metadata, uint64, bool) {
	if p.cache == nil {
		return nil, 0, false
	}
	payload, hash, ok := p.cache.Get(filename, size, mtime)
	if !ok {
		return nil, 0, false
	}
	var meta Metadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		p.log.Debug("Undecodable cache payload, reparsing",
			zap.String("filename", filename), zap.Error(err))
		return nil, 0, false
	}

	meta.Path = filePath
	meta.FileSize = size
	meta.LastWriteTicks = mtime
	if meta.HasCategory(CategoryMorphs) || meta.HasCategory(CategoryMorphPack) {
		reclassifyMorphs(&meta)
	}
	damaged, reason := p.validator.Validate(&meta)
	meta.IsDamaged = damaged
	meta.DamageReason = reason

	p.cacheHits.Add(1)
	return &meta, hash, true
}

// reclassifyMorphs re-applies the morph-pack threshold to a cached
// record; the threshold is policy and may differ from the one in
// effect when the record was parsed.
func reclassifyMorphs(m *Metadata) {
	count := m.CategoryCounts[CategoryMorphs] + m.CategoryCounts[CategoryMorphPack]
	if count == 0 {
		return
	}
	category := CategoryMorphs
	if count >= morphPackThreshold {
		category = CategoryMorphPack
	}
	for i, c := range m.Categories {
		if c == CategoryMorphs || c == CategoryMorphPack {
			m.Categories[i] = category
		}
	}
	m.CategoryCounts = map[string]int{category: count}
}

// scanEntries enumerates every archive entry exactly once, producing
// the filtered content list and the raw manifest bytes if present.
func (p *Parser) scanEntries(reader archive.Reader) ([]string, []byte, error) {
	entries := reader.Entries()
	contents := make([]string, 0, len(entries))
	var manifestRaw []byte

	for _, e := range entries {
		if e.IsDir {
			continue
		}
		name := path.Clean(strings.ReplaceAll(e.Name, "\\", "/"))
		lower := strings.ToLower(name)

		if lower == manifestName {
			rc, err := reader.Open(e.Name)
			if err != nil {
				return nil, nil, err
			}
			data, err := io.ReadAll(io.LimitReader(rc, manifestSizeLimit))
			rc.Close()
			if err != nil {
				return nil, nil, err
			}
			manifestRaw = data
			continue
		}

		if isExcludedEntry(lower) || !isContentEntry(lower) {
			continue
		}
		contents = append(contents, name)
	}
	return contents, manifestRaw, nil
}

// applyManifest folds manifest fields into the record. A malformed
// manifest is not an error: identity falls back to the filename and
// categories to content detection.
func (p *Parser) applyManifest(meta *Metadata, raw []byte, filePath string) {
	doc, err := decodeJSON(raw)
	if err != nil || !doc.isObject() {
		p.log.Debug("Malformed manifest, falling back to filename identity",
			zap.String("path", filePath), zap.Error(err))
		return
	}

	if v, ok := doc.field("creatorName"); ok {
		meta.CreatorName = strings.TrimSpace(v.asString())
	}
	if v, ok := doc.field("packageName"); ok {
		meta.PackageName = strings.TrimSpace(v.asString())
	}
	if v, ok := doc.field("description"); ok {
		meta.Description = v.asString()
	}
	if v, ok := doc.field("licenseType"); ok {
		meta.LicenseType = v.asString()
	}
	if v, ok := doc.field("version"); ok {
		meta.Version = v.asInt()
	}
	if v, ok := doc.field("optimized"); ok {
		meta.Optimized = v.asBool()
	}
	meta.PreloadMorphs = findPreloadMorphs(doc)
	meta.Dependencies = collectDependencies(doc)
	meta.Tags = parseTags(doc)
}

// findPreloadMorphs looks for the preloadMorphs flag at the manifest
// root or nested one level down inside any option object.
func findPreloadMorphs(doc jsonValue) bool {
	if v, ok := doc.field("preloadMorphs"); ok {
		return v.asBool()
	}
	for _, key := range doc.keys() {
		child, _ := doc.field(key)
		if !child.isObject() {
			continue
		}
		if v, ok := child.field("preloadMorphs"); ok {
			return v.asBool()
		}
	}
	return false
}

// collectDependencies walks the manifest dependency field in every
// shape producers emit: an array of names, an array of objects carrying
// name/packageName/package keys, or an object whose property names are
// themselves the dependency names. Nested "dependencies" fields are
// followed recursively.
func collectDependencies(doc jsonValue) []string {
	deps, ok := doc.field("dependencies")
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var ordered []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		ordered = append(ordered, name)
	}

	var walk func(v jsonValue)
	walk = func(v jsonValue) {
		switch {
		case v.isString():
			add(v.asString())
		case v.isArray():
			for _, item := range v.items() {
				if item.isString() {
					add(item.asString())
					continue
				}
				if !item.isObject() {
					continue
				}
				for _, key := range []string{"name", "packageName", "package"} {
					if f, ok := item.field(key); ok && f.isString() {
						add(f.asString())
						break
					}
				}
				if nested, ok := item.field("dependencies"); ok {
					walk(nested)
				}
			}
		case v.isObject():
			for _, name := range v.keys() {
				add(name)
				child, _ := v.field(name)
				if !child.isObject() {
					continue
				}
				if nested, ok := child.field("dependencies"); ok {
					walk(nested)
				}
			}
		}
	}
	walk(deps)
	return ordered
}

// parseTags accepts both a string array and a comma-separated string.
func parseTags(doc jsonValue) []string {
	v, ok := doc.field("tags")
	if !ok {
		return nil
	}

	var raw []string
	switch {
	case v.isArray():
		for _, item := range v.items() {
			raw = append(raw, item.asString())
		}
	case v.isString():
		raw = strings.Split(v.asString(), ",")
	}

	var tags []string
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (p *Parser) corruptedRecord(filePath string, parsed ParsedName, reason string) *Metadata {
	return &Metadata{
		CreatorName:  parsed.Creator,
		PackageName:  parsed.Name,
		Version:      parsed.Version,
		Path:         filePath,
		Categories:   []string{CategoryUnknown},
		IsCorrupted:  true,
		IsDamaged:    true,
		DamageReason: reason,
	}
}

// contentHash derives the nonzero fast-path identity of a readable
// archive: the manifest hash when present, otherwise a hash of the
// sorted entry listing so manifest-less packages still get fast-path
// reuse on later scans.
func contentHash(manifestRaw []byte, contents []string) uint64 {
	var h uint64
	if manifestRaw != nil {
		h = xxhash.Sum64(manifestRaw)
	} else {
		sorted := make([]string, len(contents))
		copy(sorted, contents)
		sort.Strings(sorted)
		h = xxhash.Sum64String(strings.Join(sorted, "\n"))
	}
	if h == 0 {
		h = 1
	}
	return h
}

func isExcludedEntry(lower string) bool {
	base := path.Base(lower)
	if strings.HasPrefix(base, "readme") || strings.HasPrefix(base, "license") {
		return true
	}
	if strings.Contains(lower, "screenshot") {
		return true
	}
	if strings.HasPrefix(lower, ".git/") || strings.Contains(lower, "/.git/") {
		return true
	}
	return false
}

func isContentEntry(lower string) bool {
	return strings.HasPrefix(lower, "saves/") || strings.HasPrefix(lower, "custom/")
}
