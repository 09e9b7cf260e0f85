package catalog

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ParsedName is the identity derived from a package filename. The
// naming convention "Creator.PackageName.Version.var" is ground truth:
// the creator is the first dot-separated segment, the version is the
// final all-digit segment, and everything between is the package name
// (which may itself contain dots).
type ParsedName struct {
	Creator string
	Name    string
	Version int
	// OK reports whether the filename carried a usable identity.
	OK bool
	// HasVersion reports whether a numeric version was present; a
	// filename version always overrides any manifest version.
	HasVersion bool
}

var strictNamePattern = regexp.MustCompile(`^([^.]+)\.(.+)\.([0-9]+)$`)

// ParsePackageBase extracts identity from a package base (filename
// without extension). When the strict Creator.Name.Version pattern
// fails, a looser fallback still honors a numeric trailing segment.
func ParsePackageBase(base string) ParsedName {
	if m := strictNamePattern.FindStringSubmatch(base); m != nil {
		version, err := strconv.Atoi(m[3])
		if err == nil {
			return ParsedName{
				Creator:    m[1],
				Name:       m[2],
				Version:    version,
				OK:         true,
				HasVersion: true,
			}
		}
	}

	// Loose fallback: trailing pre-extension segment is numeric but
	// the leading portion does not split into creator and name.
	segments := strings.Split(base, ".")
	if len(segments) >= 2 {
		last := segments[len(segments)-1]
		if version, err := strconv.Atoi(last); err == nil {
			return ParsedName{
				Name:       strings.Join(segments[:len(segments)-1], "."),
				Version:    version,
				OK:         true,
				HasVersion: true,
			}
		}
	}

	return ParsedName{Name: base}
}

// ParsePackagePath is ParsePackageBase applied to a full file path.
func ParsePackagePath(path string) ParsedName {
	name := filepath.Base(path)
	return ParsePackageBase(strings.TrimSuffix(name, filepath.Ext(name)))
}
