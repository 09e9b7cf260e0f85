package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ArchivedSegment is the folder name that marks a package path as
// belonging to the archived role.
const ArchivedSegment = "ArchivedPackages"

// BuildDescriptors turns raw file lists into role-tagged, sorted
// descriptors. Paths in loadedPaths get the loaded role; paths in
// otherPaths are archived when an ArchivedPackages segment appears in
// the path, available otherwise. Files that cannot be stat'd are
// silently dropped: an inaccessible file is not an error at this stage,
// it simply does not exist for this scan cycle.
//
// The output order (packageBase, role priority, path, lastWriteTicks)
// is relied upon downstream for deterministic suffix assignment.
func BuildDescriptors(loadedPaths, otherPaths []string) []Descriptor {
	descriptors := make([]Descriptor, 0, len(loadedPaths)+len(otherPaths))

	for _, path := range loadedPaths {
		if d, ok := describe(path, RoleLoaded); ok {
			descriptors = append(descriptors, d)
		}
	}
	for _, path := range otherPaths {
		role := RoleAvailable
		if hasPathSegment(path, ArchivedSegment) {
			role = RoleArchived
		}
		if d, ok := describe(path, role); ok {
			descriptors = append(descriptors, d)
		}
	}

	sort.Slice(descriptors, func(i, j int) bool {
		a, b := descriptors[i], descriptors[j]
		if a.PackageBase != b.PackageBase {
			return a.PackageBase < b.PackageBase
		}
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.LastWriteTicks < b.LastWriteTicks
	})

	return descriptors
}

func describe(path string, role Role) (Descriptor, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Descriptor{}, false
	}

	name := filepath.Base(path)
	base := strings.TrimSuffix(name, filepath.Ext(name))

	return Descriptor{
		PackageBase:    base,
		Role:           role,
		Status:         role.Status(),
		Path:           path,
		FileSize:       info.Size(),
		LastWriteTicks: info.ModTime().UnixNano(),
	}, true
}

// hasPathSegment reports whether any path component equals segment,
// compared case-insensitively across both separator styles.
func hasPathSegment(path, segment string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, part := range strings.Split(normalized, "/") {
		if strings.EqualFold(part, segment) {
			return true
		}
	}
	return false
}

// normalizePath produces the unique map key for a variant path:
// absolute, cleaned, forward-slash, case-folded.
func normalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return strings.ToLower(filepath.ToSlash(abs))
}
