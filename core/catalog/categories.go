package catalog

import (
	"path"
	"strings"
)

// Well-known category names.
const (
	CategoryUnknown   = "Unknown"
	CategoryMorphs    = "Morphs"
	CategoryMorphPack = "Morph Pack"
)

// morphPackThreshold is the morph count at which a pure morph archive
// is classified as a pack rather than loose morphs.
const morphPackThreshold = 10

// categoryScanLimit caps how many content paths are examined during
// category detection. Counting still covers every file; detection does
// not need to, and huge scene archives would pay for nothing.
const categoryScanLimit = 100

// categoryRule classifies content paths by directory prefix and
// extension. Rules are ordered; all matching rules contribute to the
// category set.
type categoryRule struct {
	Name     string
	prefixes []string
	exts     []string
	// folderDedup counts distinct parent folders instead of files:
	// an asset bundle or plugin ships many files but is one item.
	folderDedup bool
}

var categoryRules = []categoryRule{
	{Name: "Scenes", prefixes: []string{"saves/scene"}, exts: []string{".json"}},
	{Name: "Poses", prefixes: []string{"custom/atom/person/pose", "saves/person/pose"}, exts: []string{".json", ".vap"}},
	{Name: "Clothing", prefixes: []string{"custom/clothing"}, exts: []string{".vam", ".vaj", ".vab", ".vap"}},
	{Name: "Hair", prefixes: []string{"custom/hair"}, exts: []string{".vam", ".vaj", ".vab", ".vap"}},
	{Name: "Looks", prefixes: []string{"custom/atom/person/appearance", "saves/person/appearance"}, exts: []string{".json", ".vap"}},
	{Name: "Assets", prefixes: []string{"custom/assets"}, exts: []string{".assetbundle", ".scene"}, folderDedup: true},
	{Name: "Scripts", prefixes: []string{"custom/scripts"}, exts: []string{".cs"}, folderDedup: true},
	{Name: "Plugins", prefixes: []string{"custom/scripts"}, exts: []string{".cslist", ".dll"}, folderDedup: true},
	{Name: "SubScenes", prefixes: []string{"custom/subscene"}, exts: []string{".json", ".vap"}},
	{Name: "Skin", prefixes: []string{"custom/atom/person/skin"}},
	{Name: "Textures", prefixes: []string{"custom/atom/person/textures", "custom/textures"}, exts: []string{".jpg", ".png", ".tif", ".tga"}},
}

// filenameKeywords is the last-resort classification applied to the
// package base when no content path matched any rule.
var filenameKeywords = []struct {
	keyword  string
	category string
}{
	{"scene", "Scenes"},
	{"pose", "Poses"},
	{"cloth", "Clothing"},
	{"outfit", "Clothing"},
	{"hair", "Hair"},
	{"look", "Looks"},
	{"morph", CategoryMorphs},
	{"asset", "Assets"},
	{"script", "Scripts"},
	{"plugin", "Plugins"},
	{"texture", "Textures"},
	{"skin", "Skin"},
}

func (r categoryRule) matches(lower string) bool {
	var hit bool
	for _, p := range r.prefixes {
		if strings.HasPrefix(lower, p) {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}
	if len(r.exts) == 0 {
		return true
	}
	ext := path.Ext(lower)
	for _, e := range r.exts {
		if ext == e {
			return true
		}
	}
	return false
}

// morph file extensions, always under a morphs directory.
var morphExts = map[string]bool{".vmi": true, ".vmb": true, ".dsf": true}

func isMorphFile(lower string) bool {
	if !morphExts[path.Ext(lower)] {
		return false
	}
	return strings.Contains(lower, "/morphs/") || strings.HasPrefix(lower, "morphs/")
}

// classifyMorphAsset reports whether every content file is a morph file
// and how many there are. Such archives short-circuit general category
// detection.
func classifyMorphAsset(contents []string) (count int, isMorphAsset bool) {
	if len(contents) == 0 {
		return 0, false
	}
	for _, c := range contents {
		if !isMorphFile(strings.ToLower(path.Clean(strings.ReplaceAll(c, "\\", "/")))) {
			return 0, false
		}
		count++
	}
	return count, true
}

// detectCategories computes the category set and per-category counts
// for a package. packageBase feeds the filename-keyword fallback.
func detectCategories(packageBase string, contents []string) ([]string, map[string]int) {
	lowered := make([]string, len(contents))
	for i, c := range contents {
		lowered[i] = strings.ToLower(path.Clean(strings.ReplaceAll(c, "\\", "/")))
	}

	// Morph assets bypass the general rules entirely.
	if count, ok := classifyMorphAsset(contents); ok {
		category := CategoryMorphs
		if count >= morphPackThreshold {
			category = CategoryMorphPack
		}
		return []string{category}, map[string]int{category: count}
	}

	var categories []string
	seen := make(map[string]bool)
	limit := len(lowered)
	if limit > categoryScanLimit {
		limit = categoryScanLimit
	}
	for _, rule := range categoryRules {
		for _, c := range lowered[:limit] {
			if rule.matches(c) {
				if !seen[rule.Name] {
					seen[rule.Name] = true
					categories = append(categories, rule.Name)
				}
				break
			}
		}
	}

	if len(categories) == 0 {
		lowerBase := strings.ToLower(packageBase)
		for _, fk := range filenameKeywords {
			if strings.Contains(lowerBase, fk.keyword) {
				categories = append(categories, fk.category)
				break
			}
		}
	}

	if len(categories) == 0 {
		return []string{CategoryUnknown}, nil
	}

	return categories, countCategories(lowered)
}

// countCategories tallies matching files per rule across the full
// content list, deduplicating by parent folder where the rule says one
// folder is one item.
func countCategories(lowered []string) map[string]int {
	counts := make(map[string]int)
	for _, rule := range categoryRules {
		if rule.folderDedup {
			folders := make(map[string]bool)
			for _, c := range lowered {
				if rule.matches(c) {
					folders[path.Dir(c)] = true
				}
			}
			if len(folders) > 0 {
				counts[rule.Name] = len(folders)
			}
			continue
		}
		n := 0
		for _, c := range lowered {
			if rule.matches(c) {
				n++
			}
		}
		if n > 0 {
			counts[rule.Name] = n
		}
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}
