package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCategoriesFromContent(t *testing.T) {
	tests := []struct {
		name     string
		contents []string
		want     []string
	}{
		{
			name:     "scene archive",
			contents: []string{"Saves/scene/beach.json", "Saves/scene/beach.jpg"},
			want:     []string{"Scenes"},
		},
		{
			name:     "clothing archive",
			contents: []string{"Custom/Clothing/Female/Acme/dress.vam", "Custom/Clothing/Female/Acme/dress.vab"},
			want:     []string{"Clothing"},
		},
		{
			name: "mixed scene and assets",
			contents: []string{
				"Saves/scene/club.json",
				"Custom/Assets/Acme/props.assetbundle",
			},
			want: []string{"Scenes", "Assets"},
		},
		{
			name:     "nothing recognized",
			contents: []string{"Custom/Sounds/beep.wav"},
			want:     []string{"Unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categories, _ := detectCategories("Acme.Thing.1", tt.contents)
			assert.Equal(t, tt.want, categories)
		})
	}
}

func TestMorphAssetShortCircuit(t *testing.T) {
	morphs := func(n int) []string {
		var contents []string
		for i := 0; i < n; i++ {
			contents = append(contents, fmt.Sprintf("Custom/Atom/Person/Morphs/female/m%d.vmi", i))
		}
		return contents
	}

	t.Run("below threshold is Morphs", func(t *testing.T) {
		categories, counts := detectCategories("Acme.Faces.1", morphs(3))
		assert.Equal(t, []string{CategoryMorphs}, categories)
		assert.Equal(t, 3, counts[CategoryMorphs])
	})

	t.Run("at threshold is Morph Pack", func(t *testing.T) {
		categories, counts := detectCategories("Acme.Faces.1", morphs(10))
		assert.Equal(t, []string{CategoryMorphPack}, categories)
		assert.Equal(t, 10, counts[CategoryMorphPack])
	})

	t.Run("non-morph file disables short circuit", func(t *testing.T) {
		contents := append(morphs(12), "Saves/scene/demo.json")
		categories, _ := detectCategories("Acme.Faces.1", contents)
		assert.NotContains(t, categories, CategoryMorphPack)
		assert.Contains(t, categories, "Scenes")
	})
}

func TestFilenameKeywordFallback(t *testing.T) {
	categories, _ := detectCategories("Acme.SummerOutfit.2", []string{"Custom/Misc/whatever.bin"})
	assert.Equal(t, []string{"Clothing"}, categories)
}

func TestFolderDedupCounts(t *testing.T) {
	contents := []string{
		"Custom/Scripts/Acme/PluginA/main.cs",
		"Custom/Scripts/Acme/PluginA/helper.cs",
		"Custom/Scripts/Acme/PluginB/main.cs",
		"Saves/scene/one.json",
		"Saves/scene/two.json",
	}
	categories, counts := detectCategories("Acme.Bundle.1", contents)
	assert.Contains(t, categories, "Scripts")
	assert.Contains(t, categories, "Scenes")

	// Two distinct script folders, counted by folder not by file.
	assert.Equal(t, 2, counts["Scripts"])
	assert.Equal(t, 2, counts["Scenes"])
}
