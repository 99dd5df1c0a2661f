// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Parser orchestrator: drives the Tokenizer/Lexer pipeline through
// eight phases — header check, body parse, reference resolution
// (x2), stream classification, stream decode+sub-parse, catalog
// resolution, missing-ref reporting.

package pdf

import (
	"os"
	"regexp"
)

var headerRegex = regexp.MustCompile(`^%PDF-(\d+\.\d+)[\r\n]+`)

// ParserOptions configures one LoadDocument* run.
type ParserOptions struct {
	AbortOnWarning bool
	OnToken        func(*Token)
	OnLexer        func(Object, []*Warning)
}

// Document is the result of a run: the populated store, the parse
// warnings, and the page tree with its own warnings. Structure is nil
// when AbortOnWarning ended the run before the structuralizer.
type Document struct {
	Store                   *ObjStore
	ParserWarnings          []*Warning
	Structure               *PageTree
	StructuralizerWarnings  []*Warning
}

// LoadDocumentFromArray runs the full pipeline over an in-memory byte
// slice.
func LoadDocumentFromArray(data []byte, opts ParserOptions) (*Document, error) {
	r := NewMemoryReader(data)
	ro := NewMemoryOffsetReader(data)
	return LoadDocumentFromReader(r, ro, opts)
}

// LoadDocumentFromReader runs the full pipeline over a caller-supplied
// reader pair.
func LoadDocumentFromReader(r SequentialReader, ro OffsetReader, opts ParserOptions) (*Document, error) {
	store := newObjStore()
	doc := &Document{Store: store}

	if err := parseHeader(store, r); err != nil {
		return nil, err
	}

	bodyWarnings := parseBody(store, r, opts)
	doc.ParserWarnings = append(doc.ParserWarnings, bodyWarnings...)
	if opts.AbortOnWarning && len(bodyWarnings) > 0 {
		return doc, nil
	}

	resolveRefs(store)

	classifyStreams(store)

	streamWarnings := decodeAndSubParseStreams(store, ro)
	doc.ParserWarnings = append(doc.ParserWarnings, streamWarnings...)
	if opts.AbortOnWarning && len(streamWarnings) > 0 {
		return doc, nil
	}

	resolveRefs(store)

	resolveCatalog(store)

	missingWarnings := reportMissingRefs(store)
	doc.ParserWarnings = append(doc.ParserWarnings, missingWarnings...)

	structure, structWarnings := Structuralize(store)
	doc.Structure = structure
	doc.StructuralizerWarnings = structWarnings

	return doc, nil
}

// LoadDocumentFromFile opens path, pairs a chunk-buffered sequential
// reader with a file-backed offset reader, and ensures the handle is
// closed on both success and error paths.
func LoadDocumentFromFile(path string, opts ParserOptions) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := NewFileReader(f)
	if err != nil {
		return nil, err
	}
	ro := NewFileOffsetReader(f)
	return LoadDocumentFromReader(r, ro, opts)
}

// parseHeader implements phase 1: validate and record the %PDF-M.N
// header.
func parseHeader(store *ObjStore, r SequentialReader) error {
	if r.Length() < 255 {
		return fatalf(CodeNotPDFFilesize, "file too small to be a valid PDF (%d bytes)", r.Length())
	}
	head := r.ReadArray(20, false)
	m := headerRegex.FindSubmatch(head)
	if m == nil {
		return fatalf(CodeNotPDFInvalidHeader, "missing %%PDF-M.N header")
	}
	store.pdfVersion = string(m[1])
	return nil
}

// parseBody implements phase 2: drive Tokenizer -> Lexer to EOF,
// invoking the caller's onToken/onLexer callbacks in token order.
func parseBody(store *ObjStore, r SequentialReader, opts ParserOptions) []*Warning {
	var warnings []*Warning
	if store.pdfVersion != "" && !supportedVersions[store.pdfVersion] {
		warnings = append(warnings, newWarning(CodeUnsupportedVersion, "unsupported PDF version", map[string]interface{}{"version": store.pdfVersion}))
	}

	tz := NewTokenizer(r)
	lx := NewLexer(store)
	for {
		tok, ok := tz.Next()
		if !ok {
			break
		}
		if opts.OnToken != nil {
			opts.OnToken(tok)
		}
		produced, warns := lx.PushToken(tok)
		if opts.OnLexer != nil {
			opts.OnLexer(produced, warns)
		}
		warnings = append(warnings, warns...)
	}
	return warnings
}

// resolveRefs implements phases 3 and 6: look up every Ref's
// identifier in store.indirects and attach the Indirect if found.
func resolveRefs(store *ObjStore) {
	for _, ref := range store.refs {
		if ind, ok := store.Indirect(ref.Identifier); ok {
			ref.Indirect = ind
		}
	}
}

// classifyStreams implements phase 4.
func classifyStreams(store *ObjStore) {
	for _, strm := range store.streams {
		typ := NameValue(DictGet(strm.Dictionary, "Type"))
		subtype := NameValue(DictGet(strm.Dictionary, "Subtype"))
		if subtype == "" {
			subtype = NameValue(DictGet(strm.Dictionary, "S"))
		}
		if typ == "" && (subtype == "Form" || subtype == "Image") {
			typ = "XObject"
		}
		combined := typ
		if subtype != "" {
			if combined == "" {
				combined = subtype
			} else {
				combined = combined + "/" + subtype
			}
		}
		strm.StreamType = combined
	}
}

// decodeAndSubParseStreams implements phase 5.
func decodeAndSubParseStreams(store *ObjStore, ro OffsetReader) []*Warning {
	var warnings []*Warning
	for _, strm := range store.streams {
		if !strm.HasSource {
			continue
		}
		if DictGet(strm.Dictionary, "F") != nil {
			warnings = append(warnings, newWarning(CodeExternalFile, "external-file streams are not supported", nil))
		}

		start, end := strm.SourceStart, strm.SourceEnd
		if declared, ok := IntegerValue(DictGet(strm.Dictionary, "Length")); ok {
			actual := end - start
			diff := declared - actual
			if diff < 0 {
				diff = -diff
			}
			if diff > 2 {
				warnings = append(warnings, newWarning(CodeLengthMismatch, "stream Length disagrees with body size", map[string]interface{}{"declared": declared, "actual": actual}))
			}
			end = start + declared
		}

		raw := ro.ReadArray(start, end)
		decoded, filterWarnings := decodeStreamFilters(strm, raw)
		warnings = append(warnings, filterWarnings...)

		switch strm.StreamType {
		case "Content", "XObject/Form":
			strm.Direct = parseContentBody(store, decoded)
		case "XObject/Image":
			strm.Direct = store.createObject(&Bytes{Value: decoded})
		case "ObjStm":
			warnings = append(warnings, expandObjectStream(store, strm, decoded)...)
		case "XRef":
			xr, warn := decodeXrefStream(strm.Dictionary, decoded)
			if warn != nil {
				warnings = append(warnings, warn)
			}
			if xr != nil {
				store.createObject(xr)
				xr.setParent(strm.UID())
				strm.Direct = xr
				if table := findEnclosingTable(store, strm); table != nil {
					table.XrefObj = strm
					table.XrefTable = xr
				}
			}
		default:
			strm.Direct = store.createObject(&Bytes{Value: decoded})
		}
	}
	return warnings
}

// parseContentBody sub-parses a decoded Content/XObject-Form payload
// into a flat operator/operand tree, reusing the Tokenizer/Lexer
// machinery with the parent stack seeded at a Content container
// instead of a Table.
func parseContentBody(store *ObjStore, data []byte) *Content {
	content := store.createObject(&Content{}).(*Content)
	lx := NewSubLexer(store, content)
	tz := NewTokenizer(NewMemoryReader(data))
	for {
		tok, ok := tz.Next()
		if !ok {
			break
		}
		lx.PushToken(tok)
	}
	return content
}

// findEnclosingTable walks parent pointers up from obj until a Table
// is found.
func findEnclosingTable(store *ObjStore, obj Object) *Table {
	uid := obj.Parent()
	for uid != 0 {
		o, ok := store.Object(uid)
		if !ok {
			return nil
		}
		if t, ok := o.(*Table); ok {
			return t
		}
		uid = o.Parent()
	}
	return nil
}

// resolveCatalog implements phase 7: prefer each Table's trailer Root,
// falling back to an XRef stream's own dictionary Root.
func resolveCatalog(store *ObjStore) {
	for _, table := range store.root.Tables {
		if table.Trailer != nil {
			if cat, ok := DictGet(table.Trailer, "Root").(*Dictionary); ok {
				store.catalog = cat
				return
			}
		}
		if table.XrefObj != nil {
			if cat, ok := DictGet(table.XrefObj.Dictionary, "Root").(*Dictionary); ok {
				store.catalog = cat
				return
			}
		}
	}
}

// reportMissingRefs implements phase 8.
func reportMissingRefs(store *ObjStore) []*Warning {
	var warnings []*Warning
	for _, ref := range store.refs {
		if ref.Indirect == nil {
			warnings = append(warnings, newWarning(CodeMissingRef, "reference to unknown indirect object", map[string]interface{}{"identifier": ref.Identifier.String()}))
		}
	}
	return warnings
}
