package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// Snapshot aggregates every known variant of one package base across
// scan generations. Lifecycle: BeginRebuild moves the current
// generation aside, AddOrUpdateVariant fills the new one,
// FinalizeVariants resolves ordering and duplicate flags, Materialize
// publishes into the shared store, RemoveMaterializedKeys reverses the
// publication. A snapshot left untouched by a full rebuild pass is
// garbage and must be torn down by its owner.
type Snapshot struct {
	PackageBase string

	current  map[string]*Variant
	previous map[string]*Variant
	// ordered is the Finalize output, preferred variant first.
	ordered      []*Variant
	preferred    *Variant
	materialized []string
}

// NewSnapshot creates an empty snapshot for a package base.
func NewSnapshot(packageBase string) *Snapshot {
	return &Snapshot{
		PackageBase: packageBase,
		current:     make(map[string]*Variant),
	}
}

// BeginRebuild moves the current generation to previous (read-only for
// fast-path lookups during the rebuild) and starts an empty one.
func (s *Snapshot) BeginRebuild() {
	s.previous = s.current
	s.current = make(map[string]*Variant, len(s.previous))
	s.ordered = nil
	s.preferred = nil
}

// PreviousVariant returns the prior-generation variant at the given
// path, if any.
func (s *Snapshot) PreviousVariant(path string) (*Variant, bool) {
	v, ok := s.previous[normalizePath(path)]
	return v, ok
}

// PreviousPaths returns the original paths of the prior generation's
// variants, used by single-package refresh to clone the untouched ones.
func (s *Snapshot) PreviousPaths() []string {
	paths := make([]string, 0, len(s.previous))
	for _, v := range s.previous {
		paths = append(paths, v.Path)
	}
	sort.Strings(paths)
	return paths
}

// AddOrUpdateVariant inserts a variant into the current generation,
// keyed by its normalized absolute path.
func (s *Snapshot) AddOrUpdateVariant(v *Variant) {
	s.current[normalizePath(v.Path)] = v
}

// VariantCount returns the size of the current generation.
func (s *Snapshot) VariantCount() int {
	return len(s.current)
}

// Preferred returns the variant chosen by FinalizeVariants, or nil
// before finalization or for an empty snapshot.
func (s *Snapshot) Preferred() *Variant {
	return s.preferred
}

// Variants returns the finalized ordering, preferred first.
func (s *Snapshot) Variants() []*Variant {
	return s.ordered
}

// variantLess is the product's variant ordering law. The first variant
// under this order is the package's canonical identity.
func variantLess(a, b *Variant) bool {
	ao := a.Meta != nil && a.Meta.Optimized
	bo := b.Meta != nil && b.Meta.Optimized
	if ao != bo {
		return ao
	}
	if a.Role != b.Role {
		return a.Role < b.Role
	}
	ap, bp := strings.ToLower(a.Path), strings.ToLower(b.Path)
	if ap != bp {
		return ap < bp
	}
	return a.LastWriteTicks < b.LastWriteTicks
}

// FinalizeVariants resolves the current generation: it orders variants
// by the product's tie-break law, picks the preferred variant, and
// assigns duplicate flags and statuses on cloned records.
//
// Ordering law, applied in sequence:
//  1. optimized flag, optimized variants first
//  2. role priority: Loaded < Available < Archived
//  3. path, ordinal case-insensitive ascending
//  4. last write ticks ascending
func (s *Snapshot) FinalizeVariants() {
	ordered := make([]*Variant, 0, len(s.current))
	for _, v := range s.current {
		ordered = append(ordered, v)
	}

	sort.Slice(ordered, func(i, j int) bool {
		return variantLess(ordered[i], ordered[j])
	})

	activeCount := 0
	for _, v := range ordered {
		if v.Role != RoleArchived {
			activeCount++
		}
	}

	for _, v := range ordered {
		variant := v
		if variant.Meta == nil {
			variant.Meta = &Metadata{}
		}
		switch {
		case variant.Role == RoleArchived:
			// Archived variants are never duplicates, but they still
			// report how many active copies exist.
			variant.Meta = variant.Meta.CloneWith(func(m *Metadata) {
				m.IsDuplicate = false
				m.DuplicateLocationCount = max(1, activeCount)
				m.Status = StatusArchived
			})
		case activeCount > 1:
			variant.Meta = variant.Meta.CloneWith(func(m *Metadata) {
				m.IsDuplicate = true
				m.DuplicateLocationCount = activeCount
				m.Status = StatusDuplicate
			})
		default:
			variant.Meta = variant.Meta.CloneWith(func(m *Metadata) {
				m.IsDuplicate = false
				m.DuplicateLocationCount = 1
				m.Status = variant.Role.Status()
			})
		}
		variant.Status = variant.Meta.Status
	}

	s.ordered = ordered
	if len(ordered) > 0 {
		s.preferred = ordered[0]
	} else {
		s.preferred = nil
	}
}

// Materialize publishes the finalized variants: the preferred one under
// the canonical package-base key, every other under a role-suffixed key
// from a per-role counter. The published keys are recorded so
// RemoveMaterializedKeys can reverse the publication exactly.
func (s *Snapshot) Materialize(store *Store) {
	s.materialized = s.materialized[:0]
	if s.preferred == nil {
		return
	}

	store.Put(s.PackageBase, s.preferred.Meta)
	s.materialized = append(s.materialized, s.PackageBase)

	roleCounts := make(map[Role]int)
	for _, v := range s.ordered {
		if v == s.preferred {
			continue
		}
		roleCounts[v.Role]++
		key := s.PackageBase + "#" + v.Role.String()
		if n := roleCounts[v.Role]; n > 1 {
			key += strconv.Itoa(n)
		}
		store.Put(key, v.Meta)
		s.materialized = append(s.materialized, key)
	}
}

// MaterializedKeys returns the keys currently owned by this snapshot.
func (s *Snapshot) MaterializedKeys() []string {
	return s.materialized
}

// RemoveMaterializedKeys deletes exactly the keys this snapshot
// published. Called before every rebuild and on garbage collection.
func (s *Snapshot) RemoveMaterializedKeys(store *Store) {
	for _, key := range s.materialized {
		store.Delete(key)
	}
	s.materialized = s.materialized[:0]
}
