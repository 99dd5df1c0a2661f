// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Token sequence -> object tree, built around an explicit parent stack
// instead of recursive descent so the orchestrator can feed it tokens
// one at a time rather than handing it a whole buffer up front.

package pdf

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// frame is one entry on the Lexer's parent stack: the container being
// filled, plus that container's own key/value alternation state if it
// is a Dictionary.
type frame struct {
	obj           Object
	pendingKey    string
	hasPendingKey bool
}

// Lexer turns a Token sequence into an object tree.
type Lexer struct {
	store *ObjStore
	stack []*frame

	pendingXref    *Token
	pendingTrailer bool

	warnings []*Warning
}

// NewLexer seeds the stack with the store's Root, for parsing a whole
// document body.
func NewLexer(store *ObjStore) *Lexer {
	l := &Lexer{store: store}
	l.push(store.root)
	return l
}

// NewSubLexer seeds the stack with an already-created container
// instead of Root — used by the orchestrator's sub-parses: a Content
// stream body, or an Indirect being re-materialized during
// object-stream expansion.
func NewSubLexer(store *ObjStore, parent Object) *Lexer {
	l := &Lexer{store: store}
	l.push(parent)
	return l
}

func (l *Lexer) push(obj Object) { l.stack = append(l.stack, &frame{obj: obj}) }

func (l *Lexer) warn(w *Warning) { l.warnings = append(l.warnings, w) }

// PushToken feeds one Token to the lexer, returning the Object it
// produced (nil for space/xref/trailer bookkeeping tokens) and any
// warnings raised while processing it.
func (l *Lexer) PushToken(tok *Token) (Object, []*Warning) {
	l.warnings = nil
	if tok.Warning != nil {
		l.warn(tok.Warning)
	}

	var produced Object
	switch tok.Kind {
	case TokSpace:
		// ignored; carries no object content of its own

	case TokComment:
		produced = l.insert(l.store.createObject(&Comment{Value: tok.Name}))
	case TokJunk:
		produced = l.insert(l.store.createObject(&Junk{Value: tok.Name}))
	case TokNull:
		produced = l.insert(l.store.createObject(&Null{}))
	case TokBoolean:
		produced = l.insert(l.store.createObject(&Boolean{Value: tok.Bool}))
	case TokInteger:
		produced = l.insert(l.store.createObject(&Integer{Value: tok.Int}))
	case TokReal:
		produced = l.insert(l.store.createObject(&Real{Value: tok.Real}))
	case TokName:
		produced = l.insert(l.store.createObject(&Name{Value: tok.Name}))
	case TokOp:
		produced = l.insert(l.store.createObject(&Op{Value: tok.Name}))

	case TokString:
		produced = l.insert(l.store.createObject(classifyString(tok.Bytes, TokString)))
	case TokHexString:
		produced = l.insert(l.store.createObject(classifyString(tok.Bytes, TokHexString)))

	case TokArrayStart:
		arr := l.store.createObject(&Array{}).(*Array)
		produced = l.insert(arr)
		l.push(arr)
	case TokArrayEnd:
		l.closeContainer(KindArray, tok)

	case TokDictStart:
		produced = l.openDict()
	case TokDictEnd:
		l.closeContainer(KindDictionary, tok)

	case TokIndirectStart:
		ind := l.store.createObject(&Indirect{Identifier: tok.Ident}).(*Indirect)
		l.store.registerIndirect(ind)
		produced = l.insert(ind)
		l.push(ind)
	case TokIndirectEnd:
		l.closeContainer(KindIndirect, tok)

	case TokRef:
		ref := l.store.createObject(&Ref{Identifier: tok.Ident}).(*Ref)
		produced = l.insert(ref)
		l.store.refs = append(l.store.refs, ref)

	case TokStream:
		produced = l.attachStream(tok)

	case TokXref:
		l.pendingXref = tok

	case TokTrailer:
		l.pendingTrailer = true

	case TokEOF:
		produced = l.closeRevision(tok)
	}

	if len(l.warnings) == 0 {
		return produced, nil
	}
	return produced, append([]*Warning(nil), l.warnings...)
}

// insert places child into the current top-of-stack container,
// dispatching on the parent's concrete type, and returns child
// unchanged so callers can use it as the token's "produced" object.
func (l *Lexer) insert(child Object) Object {
	if len(l.stack) == 0 {
		return child
	}
	top := l.stack[len(l.stack)-1]
	switch p := top.obj.(type) {
	case *Root:
		table := l.store.createObject(&Table{}).(*Table)
		p.Tables = append(p.Tables, table)
		table.setParent(p.UID())
		l.push(table)
		return l.insert(child)

	case *Array:
		p.Children = append(p.Children, child)
		child.setParent(p.UID())

	case *Content:
		p.Children = append(p.Children, child)
		child.setParent(p.UID())

	case *Table:
		p.Children = append(p.Children, child)
		child.setParent(p.UID())

	case *Dictionary:
		if !top.hasPendingKey {
			key, isName, isScalar := scalarKeyString(child)
			if !isScalar {
				l.warn(newWarning(CodeLexerInvalidKey, "non-scalar used as dictionary key", map[string]interface{}{"kind": child.Kind().String()}))
				top.pendingKey, top.hasPendingKey = "", true
				return child
			}
			if !isName {
				code := Code("lexer:invalid_token:" + strings.ToLower(child.Kind().String()) + ":invalid_key")
				l.warn(newWarning(code, "non-name scalar used as dictionary key", map[string]interface{}{"kind": child.Kind().String()}))
			}
			top.pendingKey, top.hasPendingKey = key, true
		} else {
			p.set(top.pendingKey, child)
			child.setParent(p.UID())
			top.pendingKey, top.hasPendingKey = "", false
		}

	case *Indirect:
		if p.Direct == nil {
			p.Direct = child
			child.setParent(p.UID())
		} else {
			l.warn(newWarning(CodeLexerMultipleChild, "indirect object already has a direct child", nil))
		}

	default:
		l.warn(newWarning(CodeLexerInvalidParent, "invalid insertion parent "+top.obj.Kind().String(), nil))
	}
	return child
}

// scalarKeyString reports the string a scalar object would contribute
// as a dictionary key, and whether it was actually a Name (the only
// valid PDF key type — anything else still yields a best-effort key
// string but is reported via a kind-specific invalid_key warning).
func scalarKeyString(obj Object) (key string, isName bool, isScalar bool) {
	switch o := obj.(type) {
	case *Name:
		return o.Value, true, true
	case *Integer:
		return strconv.FormatInt(o.Value, 10), false, true
	case *Real:
		return strconv.FormatFloat(o.Value, 'g', -1, 64), false, true
	case *Boolean:
		return strconv.FormatBool(o.Value), false, true
	case *Text:
		return o.Value, false, true
	case *Bytes:
		return string(o.Value), false, true
	case *Date:
		return o.Raw, false, true
	case *Comment:
		return o.Value, false, true
	case *Junk:
		return o.Value, false, true
	case *Op:
		return o.Value, false, true
	case *Null:
		return "", false, true
	default:
		return "", false, false
	}
}

// openDict handles dict_start, including the trailer special case:
// the dictionary following a trailer token becomes Table.Trailer
// directly instead of an ordinary child of Table.Children.
func (l *Lexer) openDict() Object {
	dict := l.store.createObject(newDictionary()).(*Dictionary)
	if l.pendingTrailer && len(l.stack) > 0 {
		top := l.stack[len(l.stack)-1]
		if _, isRoot := top.obj.(*Root); isRoot {
			// No object has been inserted yet this revision, so the
			// Table hasn't been lazily created under Root — do it now
			// rather than letting the trailer fall through to insert()
			// and land as an ordinary Table child.
			table := l.store.createObject(&Table{}).(*Table)
			root := top.obj.(*Root)
			root.Tables = append(root.Tables, table)
			table.setParent(root.UID())
			l.push(table)
			top = l.stack[len(l.stack)-1]
		}
		if table, ok := top.obj.(*Table); ok {
			table.Trailer = dict
			dict.setParent(table.UID())
			l.pendingTrailer = false
			l.push(dict)
			return dict
		}
	}
	l.insert(dict)
	l.push(dict)
	return dict
}

// closeContainer implements the mismatched-end recovery policy: pop
// until a matching parent is found or the stack is empty, emitting a
// missing_end warning for every frame closed along the way.
func (l *Lexer) closeContainer(expected ObjectKind, tok *Token) {
	if len(l.stack) == 0 {
		l.warn(newWarning(CodeLexerMissingStart, "no open "+expected.String()+" to close", map[string]interface{}{"offset": tok.Start}))
		return
	}
	for len(l.stack) > 0 {
		top := l.stack[len(l.stack)-1]
		if top.obj.Kind() == expected {
			l.stack = l.stack[:len(l.stack)-1]
			return
		}
		l.warn(newWarning(CodeLexerMissingEnd, "unclosed "+top.obj.Kind().String()+" implicitly closed", map[string]interface{}{"offset": tok.Start}))
		l.stack = l.stack[:len(l.stack)-1]
	}
	l.warn(newWarning(CodeLexerMissingStart, "no matching "+expected.String()+" on stack", map[string]interface{}{"offset": tok.Start}))
}

// attachStream handles the stream token: the parent must be an
// Indirect whose current Direct is a Dictionary; that dictionary is
// detached and wrapped into a new Stream, which becomes the
// Indirect's Direct in its place.
func (l *Lexer) attachStream(tok *Token) Object {
	if len(l.stack) == 0 {
		l.warn(newWarning(CodeInvalidStreamParent, "stream token with empty parent stack", map[string]interface{}{"offset": tok.Start}))
		return nil
	}
	top := l.stack[len(l.stack)-1]
	ind, ok := top.obj.(*Indirect)
	if !ok {
		l.warn(newWarning(CodeInvalidStreamParent, "stream token outside an indirect object", map[string]interface{}{"offset": tok.Start}))
		return nil
	}
	dict, ok := ind.Direct.(*Dictionary)
	if !ok {
		l.warn(newWarning(CodeInvalidStreamParent, "stream token without a preceding dictionary", map[string]interface{}{"offset": tok.Start}))
		return nil
	}
	strm := l.store.createObject(&Stream{
		Dictionary:  dict,
		SourceStart: tok.StreamStart,
		SourceEnd:   tok.StreamEnd,
		HasSource:   true,
	}).(*Stream)
	dict.setParent(strm.UID())
	ind.Direct = strm
	strm.setParent(ind.UID())
	l.store.streams = append(l.store.streams, strm)
	return strm
}

// closeRevision handles the eof token: pop until a Table, attach the
// pending xref/trailer/startxref, then open a fresh Table at Root in
// case another revision follows.
func (l *Lexer) closeRevision(tok *Token) Object {
	var table *Table
	for len(l.stack) > 0 {
		top := l.stack[len(l.stack)-1]
		if t, ok := top.obj.(*Table); ok {
			table = t
			l.stack = l.stack[:len(l.stack)-1]
			break
		}
		if _, isRoot := top.obj.(*Root); isRoot {
			break
		}
		l.warn(newWarning(CodeLexerMissingEnd, "unclosed "+top.obj.Kind().String()+" at end of revision", map[string]interface{}{"offset": tok.Start}))
		l.stack = l.stack[:len(l.stack)-1]
	}
	if table == nil {
		table = l.store.createObject(&Table{}).(*Table)
		l.store.root.Tables = append(l.store.root.Tables, table)
		table.setParent(l.store.root.UID())
	}

	if l.pendingXref != nil {
		xr := l.store.createObject(buildClassicalXref(l.pendingXref)).(*Xref)
		xr.setParent(table.UID())
		table.XrefTable = xr
	}
	table.Startxref, table.HasStartxref = tok.EOFOffset, true
	l.pendingXref = nil
	l.pendingTrailer = false

	newTable := l.store.createObject(&Table{}).(*Table)
	l.store.root.Tables = append(l.store.root.Tables, newTable)
	newTable.setParent(l.store.root.UID())
	l.push(newTable)

	return table
}

// buildClassicalXref converts a raw "xref" Token's XrefLines into
// typed entries; the third field's type character ('f' or 'n')
// decides free vs in-use.
func buildClassicalXref(tok *Token) *Xref {
	xr := &Xref{Subsections: tok.XrefSubsections}
	for _, line := range tok.XrefLines {
		switch line.TypeChar {
		case 'f':
			xr.ObjTable = append(xr.ObjTable, XrefEntry{Type: XrefFree, NextFree: uint32(line.Field1), ReuseGen: uint16(line.Field2)})
		case 'n':
			xr.ObjTable = append(xr.ObjTable, XrefEntry{Type: XrefInUse, Offset: int64(line.Field1), Gen: uint16(line.Field2)})
		}
	}
	return xr
}

// ---- string classification ----

func classifyString(raw []byte, fromKind TokenKind) Object {
	if bytes.HasPrefix(raw, dateSniff) {
		if d, ok := parseDate(raw); ok {
			return d
		}
	}
	if bytes.HasPrefix(raw, utf8Sniff) {
		return &Text{Value: string(raw[len(utf8Sniff):]), Encoding: EncodingUTF8, TokenKind: fromKind}
	}
	if bytes.HasPrefix(raw, utf16Sniff) {
		return &Text{Value: decodeUTF16BE(raw[len(utf16Sniff):]), Encoding: EncodingUTF16BE, TokenKind: fromKind}
	}
	if fromKind == TokHexString {
		return &Bytes{Value: raw}
	}
	return &Text{Value: decodePDFDocEncoding(raw), Encoding: EncodingPDFDoc, TokenKind: fromKind}
}

func parseDate(raw []byte) (*Date, bool) {
	m := dateRegex.FindStringSubmatch(string(bytes.TrimPrefix(raw, dateSniff)))
	if m == nil {
		return nil, false
	}
	d := &Date{Raw: string(raw), Month: 1, Day: 1}
	d.Year = atoiDefault(m[1], 0)
	if m[2] != "" {
		d.Month = atoiDefault(m[2], 1)
	}
	if m[3] != "" {
		d.Day = atoiDefault(m[3], 1)
	}
	if m[4] != "" {
		d.Hour = atoiDefault(m[4], 0)
	}
	if m[5] != "" {
		d.Minute = atoiDefault(m[5], 0)
	}
	if m[6] != "" {
		d.Second = atoiDefault(m[6], 0)
	}
	if m[7] != "" {
		d.TZSign = m[7][0]
	}
	if m[8] != "" {
		d.TZHour = atoiDefault(m[8], 0)
	}
	if m[9] != "" {
		d.TZMinute = atoiDefault(m[9], 0)
	}
	return d, true
}

func atoiDefault(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// decodeUTF16BE delegates to golang.org/x/text/encoding/unicode for
// UTF-16BE text strings (PDF's encoding for non-ASCII Text objects).
func decodeUTF16BE(b []byte) string {
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func decodePDFDocEncoding(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		if r, ok := pdfDocEncodingMap[b]; ok {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(rune(b))
		}
	}
	return sb.String()
}
