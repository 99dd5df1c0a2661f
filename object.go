// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import "fmt"

// ObjectKind tags the concrete variant held by an Object.
type ObjectKind int

const (
	KindNull ObjectKind = iota
	KindBoolean
	KindInteger
	KindReal
	KindName
	KindText
	KindBytes
	KindDate
	KindComment
	KindJunk
	KindOp
	KindArray
	KindDictionary
	KindContent
	KindRoot
	KindTable
	KindIndirect
	KindRef
	KindStream
	KindXref
)

func (k ObjectKind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindReal:
		return "Real"
	case KindName:
		return "Name"
	case KindText:
		return "Text"
	case KindBytes:
		return "Bytes"
	case KindDate:
		return "Date"
	case KindComment:
		return "Comment"
	case KindJunk:
		return "Junk"
	case KindOp:
		return "Op"
	case KindArray:
		return "Array"
	case KindDictionary:
		return "Dictionary"
	case KindContent:
		return "Content"
	case KindRoot:
		return "Root"
	case KindTable:
		return "Table"
	case KindIndirect:
		return "Indirect"
	case KindRef:
		return "Ref"
	case KindStream:
		return "Stream"
	case KindXref:
		return "Xref"
	}
	return "Unknown"
}

// Identifier is the (object number, generation) pair that names an
// indirect object. Num/Gen are int64 (rather than the tighter
// uint32/uint16 the binary xref encoding ultimately needs) so that the
// tokenizer's composition-failure sentinel {num:-1, gen:-1} is
// representable without a separate "valid" flag.
type Identifier struct {
	Num int64
	Gen int64
}

func (id Identifier) String() string {
	return fmt.Sprintf("%d/%d", id.Num, id.Gen)
}

// Valid reports whether the identifier was composed from two real
// integer tokens (as opposed to the tokenizer's -1/-1 fallback).
func (id Identifier) Valid() bool {
	return id.Num >= 0 && id.Gen >= 0
}

// Object is the common capability every node in the object tree
// implements: a UID assigned at creation, a non-owning parent handle,
// and its variant Kind. Containers and scalars differ in storage, not
// in a base class — Object is a thin shared header, not a superclass.
type Object interface {
	Kind() ObjectKind
	UID() uint64
	Parent() uint64
	setParent(uid uint64)
}

type header struct {
	uid    uint64
	parent uint64 // 0 means "no parent"; UIDs are assigned starting at 1
}

func (h *header) UID() uint64         { return h.uid }
func (h *header) Parent() uint64      { return h.parent }
func (h *header) setParent(uid uint64) { h.parent = uid }

// ---- scalars ----

type Null struct{ header }

func (*Null) Kind() ObjectKind { return KindNull }

type Boolean struct {
	header
	Value bool
}

func (*Boolean) Kind() ObjectKind { return KindBoolean }

type Integer struct {
	header
	Value int64
}

func (*Integer) Kind() ObjectKind { return KindInteger }

type Real struct {
	header
	Value float64
}

func (*Real) Kind() ObjectKind { return KindReal }

type Name struct {
	header
	Value string
}

func (*Name) Kind() ObjectKind { return KindName }

// TextEncoding tags how a Text object's Value was decoded from the
// underlying string/hexstring token.
type TextEncoding int

const (
	EncodingPDFDoc TextEncoding = iota
	EncodingUTF8
	EncodingUTF16BE
)

func (e TextEncoding) String() string {
	switch e {
	case EncodingPDFDoc:
		return "pdf"
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF16BE:
		return "utf-16be"
	}
	return "unknown"
}

type Text struct {
	header
	Value     string
	Encoding  TextEncoding
	TokenKind TokenKind
}

func (*Text) Kind() ObjectKind { return KindText }

type Bytes struct {
	header
	Value []byte
}

func (*Bytes) Kind() ObjectKind { return KindBytes }

// Date holds a parsed PDF date string.
type Date struct {
	header
	Year, Month, Day       int
	Hour, Minute, Second   int
	TZSign                 byte // '+', '-', 'Z', or 0 if absent
	TZHour, TZMinute       int
	Raw                    string
}

func (*Date) Kind() ObjectKind { return KindDate }

type Comment struct {
	header
	Value string
}

func (*Comment) Kind() ObjectKind { return KindComment }

type Junk struct {
	header
	Value string
}

func (*Junk) Kind() ObjectKind { return KindJunk }

type Op struct {
	header
	Value string
}

func (*Op) Kind() ObjectKind { return KindOp }

// ---- containers ----

type Array struct {
	header
	Children []Object
}

func (*Array) Kind() ObjectKind { return KindArray }

// Dictionary preserves key insertion order, so a document that is
// parsed and re-serialized keeps the same key ordering it started
// with for names that appeared exactly once.
type Dictionary struct {
	header
	Keys     []string
	Children map[string]Object
}

func newDictionary() *Dictionary {
	return &Dictionary{Children: make(map[string]Object)}
}

func (*Dictionary) Kind() ObjectKind { return KindDictionary }

func (d *Dictionary) Get(key string) Object {
	return d.Children[key]
}

func (d *Dictionary) set(key string, obj Object) {
	if _, exists := d.Children[key]; !exists {
		d.Keys = append(d.Keys, key)
	}
	d.Children[key] = obj
}

// Content is the flat operator/operand sequence produced by parsing a
// content-stream body. It is not executed by this module — there is
// no graphics-state machine here, only the parsed operator/operand
// tree.
type Content struct {
	header
	Children []Object
}

func (*Content) Kind() ObjectKind { return KindContent }

// Root holds one Table per revision (incremental update) encountered.
type Root struct {
	header
	Tables []*Table
}

func (*Root) Kind() ObjectKind { return KindRoot }

// Table is one body + optional xref/trailer, i.e. one revision.
type Table struct {
	header
	Children   []Object
	XrefTable  *Xref // classical xref table, or the decoded index of an XRef stream, if this revision had one
	XrefObj    *Stream
	Trailer    *Dictionary
	Startxref  int64
	HasStartxref bool
}

func (*Table) Kind() ObjectKind { return KindTable }

// Indirect is a numbered, generation-tagged top-level object
// (`N G obj ... endobj`).
type Indirect struct {
	header
	Identifier Identifier
	Direct     Object
}

func (*Indirect) Kind() ObjectKind { return KindIndirect }

// Ref is the expression `N G R`. Its Indirect pointer is resolved in a
// later pass; Ref does not own the Indirect it points to, so the
// object graph's cycles (a Page pointing back to its Parent, etc.)
// are non-owning and collectible.
type Ref struct {
	header
	Identifier Identifier
	Indirect   *Indirect
}

func (*Ref) Kind() ObjectKind { return KindRef }

// Stream couples a dictionary with an opaque byte range in the source
// and, after classification+decode, a Direct child.
type Stream struct {
	header
	Dictionary     *Dictionary
	SourceStart    int64
	SourceEnd      int64
	HasSource      bool
	StreamType     string
	Direct         Object // Content, Bytes, or *Xref after decode (a failed filter chain still yields an empty Content/Bytes); unset for ObjStm streams and for XRef streams that failed to decode
}

func (*Stream) Kind() ObjectKind { return KindStream }

// XrefEntryType distinguishes the three entry encodings a
// cross-reference table can use, classical or stream-encoded.
type XrefEntryType int

const (
	XrefFree XrefEntryType = iota
	XrefInUse
	XrefCompressed
	XrefOther
)

type XrefEntry struct {
	Type XrefEntryType

	// Free
	NextFree uint32
	ReuseGen uint16

	// InUse
	Offset int64
	Gen    uint16

	// Compressed
	StreamNum     uint32
	IndexInStream uint32

	// Other
	Fields []uint64
}

type XrefSubsection struct {
	StartNum uint32
	Count    uint32
}

// Xref is the decoded cross-reference index — built either from the
// classical tabular `xref` syntax or from an XRef stream.
type Xref struct {
	header
	Widths      [3]int
	Subsections []XrefSubsection
	ObjTable    []XrefEntry
}

func (*Xref) Kind() ObjectKind { return KindXref }

// ---- store ----

// ObjStore is the single-arena owner of every Object created during a
// parse. It is single-owner and not safe to share across goroutines
// during a run.
type ObjStore struct {
	nextUID    uint64
	objects    map[uint64]Object
	indirects  map[Identifier]*Indirect
	refs       []*Ref
	streams    []*Stream
	root       *Root
	catalog    *Dictionary
	pdfVersion string
}

func newObjStore() *ObjStore {
	s := &ObjStore{
		objects:   make(map[uint64]Object),
		indirects: make(map[Identifier]*Indirect),
	}
	s.root = s.createObject(&Root{}).(*Root)
	return s
}

// createObject assigns the next UID and registers obj in the store.
// UID assignment is strictly monotonic, so object creation order
// equals token order.
func (s *ObjStore) createObject(obj Object) Object {
	s.nextUID++
	uid := s.nextUID
	switch o := obj.(type) {
	case *Null:
		o.uid = uid
	case *Boolean:
		o.uid = uid
	case *Integer:
		o.uid = uid
	case *Real:
		o.uid = uid
	case *Name:
		o.uid = uid
	case *Text:
		o.uid = uid
	case *Bytes:
		o.uid = uid
	case *Date:
		o.uid = uid
	case *Comment:
		o.uid = uid
	case *Junk:
		o.uid = uid
	case *Op:
		o.uid = uid
	case *Array:
		o.uid = uid
	case *Dictionary:
		o.uid = uid
	case *Content:
		o.uid = uid
	case *Root:
		o.uid = uid
	case *Table:
		o.uid = uid
	case *Indirect:
		o.uid = uid
	case *Ref:
		o.uid = uid
	case *Stream:
		o.uid = uid
	case *Xref:
		o.uid = uid
	default:
		panic(fmt.Sprintf("pdf: createObject: unhandled object type %T", obj))
	}
	s.objects[uid] = obj
	return obj
}

// Object looks up an object by UID. Used by callers (e.g. the
// structuralizer) to walk the tree without depending on concrete
// container types.
func (s *ObjStore) Object(uid uint64) (Object, bool) {
	o, ok := s.objects[uid]
	return o, ok
}

// Indirect returns the current Indirect registered for identifier, if
// any. A later redefinition of the same identifier overwrites only
// this index, not any Indirect some other object already holds a
// pointer to.
func (s *ObjStore) Indirect(id Identifier) (*Indirect, bool) {
	ind, ok := s.indirects[id]
	return ind, ok
}

func (s *ObjStore) registerIndirect(ind *Indirect) {
	s.indirects[ind.Identifier] = ind
}

// Catalog returns the resolved Catalog dictionary, if phase 7 of the
// orchestrator found one.
func (s *ObjStore) Catalog() *Dictionary { return s.catalog }

// PDFVersion returns the header version string ("1.4", "2.0", ...).
func (s *ObjStore) PDFVersion() string { return s.pdfVersion }

// Root returns the Root container (one Table per revision).
func (s *ObjStore) Root() *Root { return s.root }

// Deref follows a Ref to its resolved direct object, or nil if
// unresolved.
func (r *Ref) Deref() Object {
	if r.Indirect == nil {
		return nil
	}
	return r.Indirect.Direct
}

// DictGet resolves obj.Key, dereferencing through Ref if necessary —
// the convenience accessor callers that walk a resolved tree rely on
// instead of checking for *Ref at every site.
func DictGet(d *Dictionary, key string) Object {
	if d == nil {
		return nil
	}
	o := d.Get(key)
	if ref, ok := o.(*Ref); ok {
		return ref.Deref()
	}
	return o
}

// NameValue extracts a Name's string payload, or "" if obj isn't a
// Name (after Ref resolution).
func NameValue(obj Object) string {
	if ref, ok := obj.(*Ref); ok {
		obj = ref.Deref()
	}
	if n, ok := obj.(*Name); ok {
		return n.Value
	}
	return ""
}

// IntegerValue extracts an Integer's payload, or (0, false).
func IntegerValue(obj Object) (int64, bool) {
	if ref, ok := obj.(*Ref); ok {
		obj = ref.Deref()
	}
	if n, ok := obj.(*Integer); ok {
		return n.Value, true
	}
	return 0, false
}
