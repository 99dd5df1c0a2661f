// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Document structuralizer: a thin downstream consumer that walks
// Catalog -> Pages, propagating inheritable attributes. Operator
// execution against content streams (graphics state, text, paths) is
// out of scope here; this only builds the page tree and outline.

package pdf

// PageNode is one leaf of the page tree: a node is a page if its
// Type is /Page, or failing that, if its merged dictionary carries a
// Contents entry.
type PageNode struct {
	Dict      *Dictionary
	Resources *Dictionary
	MediaBox  *Array
	CropBox   *Array
	Rotate    int64
	HasRotate bool
	Contents  Object
}

// OutlineNode is one entry in the document outline (bookmark) tree.
type OutlineNode struct {
	Title    string
	Children []*OutlineNode
}

// PageTree is the structuralizer's result.
type PageTree struct {
	Pages   []*PageNode
	Outline *OutlineNode
	Version string // catalog Version override, if present
}

// inherited carries the four inheritable page attributes down the
// tree: Resources, MediaBox, CropBox, and Rotate.
type inherited struct {
	resources *Dictionary
	mediaBox  *Array
	cropBox   *Array
	rotate    int64
	hasRotate bool
}

// Structuralize walks store's resolved Catalog, building a PageTree.
// It is a best-effort consumer of the core engine: a missing or
// malformed Catalog/Pages tree yields an empty PageTree plus warnings,
// never a fatal error.
func Structuralize(store *ObjStore) (*PageTree, []*Warning) {
	tree := &PageTree{}
	catalog := store.Catalog()
	if catalog == nil {
		return tree, []*Warning{newWarning(CodeMissingRef, "no Catalog resolved; structuralizer has nothing to walk", nil)}
	}

	if v := NameValue(DictGet(catalog, "Version")); v != "" {
		tree.Version = v
	}

	var warnings []*Warning
	visited := make(map[uint64]bool)

	pagesRoot, _ := DictGet(catalog, "Pages").(*Dictionary)
	if pagesRoot != nil {
		walkPages(pagesRoot, inherited{}, visited, &tree.Pages, &warnings)
	} else {
		warnings = append(warnings, newWarning(CodeMissingRef, "Catalog has no Pages dictionary", nil))
	}

	if outlines, ok := DictGet(catalog, "Outlines").(*Dictionary); ok {
		tree.Outline = buildOutline(outlines, make(map[uint64]bool))
	}

	return tree, warnings
}

// walkPages implements the Pages/Kids recursion, collecting every
// page reachable from dict rather than stopping at the first match.
func walkPages(dict *Dictionary, parent inherited, visited map[uint64]bool, out *[]*PageNode, warnings *[]*Warning) {
	if dict == nil || visited[dict.UID()] {
		return
	}
	visited[dict.UID()] = true

	cur := mergeInherited(dict, parent)

	if isPageNode(dict) {
		*out = append(*out, &PageNode{
			Dict:      dict,
			Resources: cur.resources,
			MediaBox:  cur.mediaBox,
			CropBox:   cur.cropBox,
			Rotate:    cur.rotate,
			HasRotate: cur.hasRotate,
			Contents:  DictGet(dict, "Contents"),
		})
		return
	}

	kids, ok := DictGet(dict, "Kids").(*Array)
	if !ok {
		*warnings = append(*warnings, newWarning(CodeMissingRef, "Pages node without Kids or Contents", nil))
		return
	}
	for _, kid := range kids.Children {
		if ref, ok := kid.(*Ref); ok {
			kid = ref.Deref()
		}
		kidDict, ok := kid.(*Dictionary)
		if !ok {
			*warnings = append(*warnings, newWarning(CodeMissingRef, "Kids entry did not resolve to a Dictionary", nil))
			continue
		}
		walkPages(kidDict, cur, visited, out, warnings)
	}
}

// isPageNode reports whether dict is a page node rather than an
// intermediate Pages node.
func isPageNode(dict *Dictionary) bool {
	if NameValue(DictGet(dict, "Type")) == "Page" {
		return true
	}
	return dict.Get("Contents") != nil
}

// mergeInherited overlays dict's own inheritable entries (if present)
// over parent's. Carried top-down during the single tree walk rather
// than chased back to the root lazily per page.
func mergeInherited(dict *Dictionary, parent inherited) inherited {
	cur := parent
	if v, ok := DictGet(dict, "Resources").(*Dictionary); ok {
		cur.resources = v
	}
	if v, ok := DictGet(dict, "MediaBox").(*Array); ok {
		cur.mediaBox = v
	}
	if v, ok := DictGet(dict, "CropBox").(*Array); ok {
		cur.cropBox = v
	}
	if v, ok := IntegerValue(DictGet(dict, "Rotate")); ok {
		cur.rotate, cur.hasRotate = v, true
	}
	return cur
}

// buildOutline walks the First/Next outline chain recursively, with a
// visited set guarding against cycles.
func buildOutline(entry *Dictionary, visited map[uint64]bool) *OutlineNode {
	if entry == nil || visited[entry.UID()] {
		return nil
	}
	visited[entry.UID()] = true

	node := &OutlineNode{Title: textValue(DictGet(entry, "Title"))}
	child, _ := DictGet(entry, "First").(*Dictionary)
	for child != nil {
		if c := buildOutline(child, visited); c != nil {
			node.Children = append(node.Children, c)
		}
		child, _ = DictGet(child, "Next").(*Dictionary)
	}
	return node
}

func textValue(obj Object) string {
	switch t := obj.(type) {
	case *Text:
		return t.Value
	case *Bytes:
		return string(t.Value)
	default:
		return ""
	}
}
