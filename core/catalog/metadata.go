package catalog

import (
	"fmt"
	"slices"
)

// Metadata is the published record for one package variant: identity,
// content, classification, and resolution flags.
//
// Records are immutable by convention once they reach the shared store.
// Anything that needs to change a published or cached record works on a
// Clone (or CloneWith), never in place, so that concurrent readers and
// the persistent cache always see consistent values.
type Metadata struct {
	CreatorName string `json:"creatorName"`
	PackageName string `json:"packageName"`
	Version     int    `json:"version"`

	Description   string `json:"description,omitempty"`
	LicenseType   string `json:"licenseType,omitempty"`
	PreloadMorphs bool   `json:"preloadMorphs,omitempty"`
	// Optimized marks a variant produced by the external repackaging
	// tool; optimized variants win variant resolution ties.
	Optimized bool `json:"optimized,omitempty"`

	Contents       []string       `json:"contents,omitempty"`
	Categories     []string       `json:"categories"`
	Dependencies   []string       `json:"dependencies,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	CategoryCounts map[string]int `json:"categoryCounts,omitempty"`

	Path           string `json:"path"`
	FileSize       int64  `json:"fileSize"`
	LastWriteTicks int64  `json:"lastWriteTicks"`
	Status         Status `json:"status"`

	IsDuplicate            bool `json:"isDuplicate"`
	DuplicateLocationCount int  `json:"duplicateLocationCount"`

	IsOldVersion        bool `json:"isOldVersion"`
	LatestVersionNumber int  `json:"latestVersionNumber"`

	IsCorrupted  bool   `json:"isCorrupted"`
	IsDamaged    bool   `json:"isDamaged"`
	DamageReason string `json:"damageReason,omitempty"`
}

// PackageBase returns the canonical identity string Creator.Name.Version.
func (m *Metadata) PackageBase() string {
	return fmt.Sprintf("%s.%s.%d", m.CreatorName, m.PackageName, m.Version)
}

// HasCategory reports whether the record carries the given category.
func (m *Metadata) HasCategory(name string) bool {
	return slices.Contains(m.Categories, name)
}

// Clone returns a deep copy. Slices and the count map are copied so the
// clone shares no mutable state with the original.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	c := *m
	c.Contents = slices.Clone(m.Contents)
	c.Categories = slices.Clone(m.Categories)
	c.Dependencies = slices.Clone(m.Dependencies)
	c.Tags = slices.Clone(m.Tags)
	if m.CategoryCounts != nil {
		c.CategoryCounts = make(map[string]int, len(m.CategoryCounts))
		for k, v := range m.CategoryCounts {
			c.CategoryCounts[k] = v
		}
	}
	return &c
}

// CloneWith returns a deep copy with the patch applied, the structural
// "copy with field X changed" form used everywhere a published record
// needs one field adjusted.
func (m *Metadata) CloneWith(patch func(*Metadata)) *Metadata {
	c := m.Clone()
	patch(c)
	return c
}
