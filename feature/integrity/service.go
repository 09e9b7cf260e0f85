package integrity

import (
	"context"
	"sort"
	"strings"

	"var-manager/core/cache"
	"var-manager/core/catalog"

	"go.uber.org/zap"
)

// Problem is one flagged package in the report.
type Problem struct {
	Key    string `json:"key"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// DependencyGap lists the dependencies a package declares but the
// catalog cannot resolve.
type DependencyGap struct {
	Key     string   `json:"key"`
	Missing []string `json:"missing"`
}

// CacheStats summarizes the persistent metadata cache.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Rows   int64 `json:"rows"`
}

// Report is the full catalog health report.
type Report struct {
	TotalPackages       int             `json:"totalPackages"`
	Corrupted           []Problem       `json:"corrupted"`
	Damaged             []Problem       `json:"damaged"`
	MissingDependencies []DependencyGap `json:"missingDependencies"`
	DuplicateKeys       []string        `json:"duplicateKeys"`
	OldVersions         int             `json:"oldVersions"`
}

// Service builds integrity reports over the published catalog.
type Service struct {
	store  *catalog.Store
	cache  *cache.Store
	logger *zap.Logger
}

// NewService creates a new integrity service. cache may be nil when the
// persistent cache is disabled.
func NewService(store *catalog.Store, cacheStore *cache.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cacheStore,
		logger: logger,
	}
}

// BuildReport walks every published record and collects corruption,
// damage, unresolved dependencies and duplicate information.
func (s *Service) BuildReport(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := s.store.Items()
	report := &Report{TotalPackages: len(items)}

	providers := buildProviderIndex(items)

	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		meta := items[key]
		switch {
		case meta.IsCorrupted:
			report.Corrupted = append(report.Corrupted, Problem{
				Key:    key,
				Path:   meta.Path,
				Reason: meta.DamageReason,
			})
		case meta.IsDamaged:
			report.Damaged = append(report.Damaged, Problem{
				Key:    key,
				Path:   meta.Path,
				Reason: meta.DamageReason,
			})
		}

		if meta.IsDuplicate {
			report.DuplicateKeys = append(report.DuplicateKeys, key)
		}
		if meta.IsOldVersion {
			report.OldVersions++
		}

		// Suffixed keys repeat the canonical record's dependency list;
		// checking them again would only duplicate the findings.
		if strings.Contains(key, "#") || meta.IsCorrupted {
			continue
		}
		if missing := providers.missingFor(meta.Dependencies); len(missing) > 0 {
			report.MissingDependencies = append(report.MissingDependencies, DependencyGap{
				Key:     key,
				Missing: missing,
			})
		}
	}

	s.logger.Info("Integrity report built",
		zap.Int("packages", report.TotalPackages),
		zap.Int("corrupted", len(report.Corrupted)),
		zap.Int("damaged", len(report.Damaged)),
		zap.Int("dependency_gaps", len(report.MissingDependencies)))
	return report, nil
}

// CacheStats returns hit/miss counters and the row count of the
// persistent cache, or zeros when the cache is disabled.
func (s *Service) CacheStats() CacheStats {
	if s.cache == nil {
		return CacheStats{}
	}
	return CacheStats{
		Hits:   s.cache.Hits(),
		Misses: s.cache.Misses(),
		Rows:   s.cache.Count(),
	}
}

// providerIndex resolves dependency references against the published
// catalog: exact package bases, and (creator, name) groups for
// references like "Acme.Outfit.latest" that accept any version.
type providerIndex struct {
	exact  map[string]bool
	groups map[string]bool
}

func buildProviderIndex(items map[string]*catalog.Metadata) providerIndex {
	idx := providerIndex{
		exact:  make(map[string]bool),
		groups: make(map[string]bool),
	}
	for key, meta := range items {
		if strings.Contains(key, "#") {
			continue
		}
		idx.exact[strings.ToLower(key)] = true
		group := strings.ToLower(meta.CreatorName + "." + meta.PackageName)
		idx.groups[group] = true
	}
	return idx
}

func (idx providerIndex) resolves(dep string) bool {
	lower := strings.ToLower(strings.TrimSpace(dep))
	if lower == "" {
		return true
	}
	if idx.exact[lower] {
		return true
	}
	// Strip the version segment; a non-numeric version such as "latest"
	// matches any published version of the same creator and name.
	if i := strings.LastIndex(lower, "."); i > 0 {
		return idx.groups[lower[:i]]
	}
	return false
}

func (idx providerIndex) missingFor(deps []string) []string {
	var missing []string
	for _, dep := range deps {
		if !idx.resolves(dep) {
			missing = append(missing, dep)
		}
	}
	return missing
}
