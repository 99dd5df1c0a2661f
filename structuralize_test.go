package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCatalog assembles a Catalog/Pages/Kids tree directly against an
// ObjStore, bypassing the tokenizer/lexer, to exercise Structuralize in
// isolation from parsing.
func buildCatalog(store *ObjStore) *Dictionary {
	resources := store.createObject(newDictionary()).(*Dictionary)
	resources.set("Font", &Name{Value: "F1"})

	mediaBox := store.createObject(&Array{Children: []Object{
		&Integer{Value: 0}, &Integer{Value: 0}, &Integer{Value: 612}, &Integer{Value: 792},
	}}).(*Array)

	pages := store.createObject(newDictionary()).(*Dictionary)
	pages.set("Type", &Name{Value: "Pages"})
	pages.set("Resources", resources)
	pages.set("MediaBox", mediaBox)

	page1 := store.createObject(newDictionary()).(*Dictionary)
	page1.set("Type", &Name{Value: "Page"})
	page1.set("Contents", &Bytes{Value: []byte("q Q")})

	page2 := store.createObject(newDictionary()).(*Dictionary)
	page2.set("Type", &Name{Value: "Page"})
	page2.set("Contents", &Bytes{Value: []byte("q Q")})
	page2.set("Rotate", &Integer{Value: 90})

	pages.set("Kids", &Array{Children: []Object{page1, page2}})

	catalog := store.createObject(newDictionary()).(*Dictionary)
	catalog.set("Type", &Name{Value: "Catalog"})
	catalog.set("Pages", pages)
	store.catalog = catalog
	return catalog
}

func TestStructuralizeInheritsResourcesAndMediaBox(t *testing.T) {
	store := newObjStore()
	buildCatalog(store)

	tree, warnings := Structuralize(store)
	assert.Empty(t, warnings)
	require.Len(t, tree.Pages, 2)

	for _, p := range tree.Pages {
		require.NotNil(t, p.Resources)
		assert.Equal(t, "F1", NameValue(p.Resources.Get("Font")))
		require.NotNil(t, p.MediaBox)
		assert.Len(t, p.MediaBox.Children, 4)
	}
	assert.False(t, tree.Pages[0].HasRotate)
	assert.True(t, tree.Pages[1].HasRotate)
	assert.EqualValues(t, 90, tree.Pages[1].Rotate)
}

func TestStructuralizeVersionOverride(t *testing.T) {
	store := newObjStore()
	catalog := buildCatalog(store)
	catalog.set("Version", &Name{Value: "1.7"})

	tree, _ := Structuralize(store)
	assert.Equal(t, "1.7", tree.Version)
}

func TestStructuralizeMissingCatalog(t *testing.T) {
	store := newObjStore()
	tree, warnings := Structuralize(store)
	assert.NotEmpty(t, warnings)
	assert.Empty(t, tree.Pages)
}

func TestBuildOutlineWalksFirstNextChain(t *testing.T) {
	store := newObjStore()
	catalog := buildCatalog(store)

	leaf2 := store.createObject(newDictionary()).(*Dictionary)
	leaf2.set("Title", &Text{Value: "Chapter 2"})

	leaf1 := store.createObject(newDictionary()).(*Dictionary)
	leaf1.set("Title", &Text{Value: "Chapter 1"})
	leaf1.set("Next", leaf2)

	outlines := store.createObject(newDictionary()).(*Dictionary)
	outlines.set("Title", &Text{Value: "Root"})
	outlines.set("First", leaf1)
	catalog.set("Outlines", outlines)

	tree, _ := Structuralize(store)
	require.NotNil(t, tree.Outline)
	assert.Equal(t, "Root", tree.Outline.Title)
	require.Len(t, tree.Outline.Children, 2)
	assert.Equal(t, "Chapter 1", tree.Outline.Children[0].Title)
	assert.Equal(t, "Chapter 2", tree.Outline.Children[1].Title)
}

func TestIsPageNodeByContentsWithoutType(t *testing.T) {
	dict := newDictionary()
	dict.set("Contents", &Bytes{Value: []byte("x")})
	assert.True(t, isPageNode(dict))
}
