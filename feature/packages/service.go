package packages

import (
	"context"
	"sort"
	"strings"

	"var-manager/core/catalog"

	"go.uber.org/zap"
)

// Service exposes catalog operations to the HTTP layer.
type Service struct {
	catalog *catalog.Catalog
	scan    catalog.Config
	logger  *zap.Logger
}

// NewService creates a new packages service.
func NewService(cat *catalog.Catalog, scan catalog.Config, logger *zap.Logger) *Service {
	return &Service{
		catalog: cat,
		scan:    scan,
		logger:  logger,
	}
}

// Entry is one published record with the key it is published under.
type Entry struct {
	Key  string            `json:"key"`
	Meta *catalog.Metadata `json:"metadata"`
}

// ListFilter narrows a package listing. Empty fields match everything.
type ListFilter struct {
	Creator        string
	Category       string
	Status         string
	Query          string
	DuplicatesOnly bool
	OldOnly        bool
}

// List returns the published records matching the filter, sorted by
// key.
func (s *Service) List(filter ListFilter) []Entry {
	items := s.catalog.Store().Items()
	entries := make([]Entry, 0, len(items))
	for key, meta := range items {
		if !filter.matches(key, meta) {
			continue
		}
		entries = append(entries, Entry{Key: key, Meta: meta})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Get returns the record published under key.
func (s *Service) Get(key string) (*catalog.Metadata, bool) {
	return s.catalog.Store().Get(key)
}

// Resync discovers every package archive in the configured folders and
// rebuilds the whole catalog.
func (s *Service) Resync(ctx context.Context) (catalog.Stats, error) {
	loaded, other := catalog.DiscoverPaths(s.scan.LoadedDir, s.scan.AvailableDirList())
	return s.catalog.Resync(ctx, loaded, other)
}

// Refresh rebuilds a single package after an external change to one of
// its files.
func (s *Service) Refresh(ctx context.Context, packageBase, changedPath string) (catalog.Stats, error) {
	return s.catalog.RefreshPackage(ctx, packageBase, changedPath)
}

// Invalidate removes a package from the catalog and the persistent
// cache ahead of an external delete or move.
func (s *Service) Invalidate(packageBase string) error {
	return s.catalog.Invalidate(packageBase)
}

// LastStats returns the statistics of the most recent pass.
func (s *Service) LastStats() catalog.Stats {
	return s.catalog.LastStats()
}

func (f ListFilter) matches(key string, meta *catalog.Metadata) bool {
	if f.Creator != "" && !strings.EqualFold(meta.CreatorName, f.Creator) {
		return false
	}
	if f.Category != "" && !meta.HasCategory(f.Category) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(string(meta.Status), f.Status) {
		return false
	}
	if f.DuplicatesOnly && !meta.IsDuplicate {
		return false
	}
	if f.OldOnly && !meta.IsOldVersion {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(key), q) &&
			!strings.Contains(strings.ToLower(meta.Description), q) &&
			!containsFold(meta.Tags, q) {
			return false
		}
	}
	return true
}

func containsFold(values []string, lowered string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), lowered) {
			return true
		}
	}
	return false
}
