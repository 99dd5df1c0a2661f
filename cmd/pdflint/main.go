// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pdflint loads a PDF through the parser and reports its version,
// warnings, and (optionally) a depth-limited dump of its object tree.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	pdf "github.com/kjhall/pdfgraph"
)

func main() {
	var (
		depth     = flag.Int("depth", 2, "object tree dump depth (0 disables the dump)")
		dedupe    = flag.Bool("dedupe-warnings", true, "collapse repeated warning codes into one line with a count")
		abortWarn = flag.Bool("abort-on-warning", false, "stop the parse at the first phase that raises a warning")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: pdflint [flags] file.pdf\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	doc, err := pdf.LoadDocumentFromFile(path, pdf.ParserOptions{AbortOnWarning: *abortWarn})
	if err != nil {
		log.Fatalf("pdflint: %s: %v", path, err)
	}

	fmt.Printf("%s: PDF version %s\n", path, doc.Store.PDFVersion())

	warnings := append(append([]*pdf.Warning(nil), doc.ParserWarnings...), doc.StructuralizerWarnings...)
	reportWarnings(warnings, *dedupe)

	if doc.Structure != nil {
		fmt.Printf("pages: %d\n", len(doc.Structure.Pages))
		if doc.Structure.Version != "" {
			fmt.Printf("catalog version override: %s\n", doc.Structure.Version)
		}
		if doc.Structure.Outline != nil {
			fmt.Printf("outline root: %q\n", doc.Structure.Outline.Title)
		}
	}

	if *depth > 0 {
		dumpTree(doc.Store.Root(), 0, *depth)
	}
}

func reportWarnings(warnings []*pdf.Warning, dedupe bool) {
	fmt.Printf("warnings: %d\n", len(warnings))
	if !dedupe {
		for _, w := range warnings {
			fmt.Printf("  %s\n", w.Error())
		}
		return
	}

	order := make([]pdf.Code, 0)
	counts := make(map[pdf.Code]int)
	samples := make(map[pdf.Code]*pdf.Warning)
	for _, w := range warnings {
		if counts[w.Code] == 0 {
			order = append(order, w.Code)
			samples[w.Code] = w
		}
		counts[w.Code]++
	}
	for _, code := range order {
		fmt.Printf("  [x%d] %s\n", counts[code], samples[code].Error())
	}
}

// dumpTree prints an indented outline of the object tree rooted at obj,
// stopping at maxDepth.
func dumpTree(obj pdf.Object, level, maxDepth int) {
	if obj == nil || level > maxDepth {
		return
	}
	fmt.Printf("%s#%d %s\n", indent(level), obj.UID(), obj.Kind())

	switch o := obj.(type) {
	case *pdf.Root:
		for _, t := range o.Tables {
			dumpTree(t, level+1, maxDepth)
		}
	case *pdf.Table:
		for _, c := range o.Children {
			dumpTree(c, level+1, maxDepth)
		}
	case *pdf.Array:
		for _, c := range o.Children {
			dumpTree(c, level+1, maxDepth)
		}
	case *pdf.Content:
		for _, c := range o.Children {
			dumpTree(c, level+1, maxDepth)
		}
	case *pdf.Dictionary:
		for _, k := range o.Keys {
			fmt.Printf("%s%s:\n", indent(level+1), k)
			dumpTree(o.Children[k], level+2, maxDepth)
		}
	case *pdf.Indirect:
		dumpTree(o.Direct, level+1, maxDepth)
	case *pdf.Stream:
		dumpTree(o.Dictionary, level+1, maxDepth)
	}
}

func indent(level int) string {
	b := make([]byte, level*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
