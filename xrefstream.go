// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Cross-reference stream decoding: a /Type /XRef stream whose decoded
// body is a flat array of fixed-width W[0]/W[1]/W[2] big-endian fields
// per entry, indexed per the Index array.

package pdf

// decodeXrefStream turns a decoded (post-Flate) XRef stream body into
// an Xref object, using the stream's own Dictionary for W/Index/Size.
func decodeXrefStream(dict *Dictionary, decoded []byte) (*Xref, *Warning) {
	w, warn := xrefWidths(dict)
	if warn != nil {
		return nil, warn
	}
	size := dictInt(dict, "Size", 0)
	subsections := xrefIndex(dict, size)

	entryWidth := w[0] + w[1] + w[2]
	if entryWidth == 0 {
		return nil, newWarning(CodeDecoderFilterError, "xref stream W array sums to zero", nil)
	}

	xr := &Xref{Widths: w, Subsections: subsections}
	pos := 0
	for _, sub := range subsections {
		for i := uint32(0); i < sub.Count; i++ {
			if pos+entryWidth > len(decoded) {
				return xr, newWarning(CodeLengthMismatch, "xref stream ends before Index count is satisfied", map[string]interface{}{"subsection": sub})
			}
			f1 := decodeBigEndian(decoded[pos : pos+w[0]])
			f2 := decodeBigEndian(decoded[pos+w[0] : pos+w[0]+w[1]])
			f3 := decodeBigEndian(decoded[pos+w[0]+w[1] : pos+entryWidth])
			pos += entryWidth

			typ := f1
			if w[0] == 0 {
				typ = 1 // PDF 32000-1 Table 18: W[0]==0 means every entry defaults to type 1
			}
			switch typ {
			case 0:
				xr.ObjTable = append(xr.ObjTable, XrefEntry{Type: XrefFree, NextFree: uint32(f2), ReuseGen: uint16(f3)})
			case 1:
				xr.ObjTable = append(xr.ObjTable, XrefEntry{Type: XrefInUse, Offset: int64(f2), Gen: uint16(f3)})
			case 2:
				xr.ObjTable = append(xr.ObjTable, XrefEntry{Type: XrefCompressed, StreamNum: uint32(f2), IndexInStream: uint32(f3)})
			default:
				xr.ObjTable = append(xr.ObjTable, XrefEntry{Type: XrefOther, Fields: []uint64{f1, f2, f3}})
			}
		}
	}
	return xr, nil
}

func xrefWidths(dict *Dictionary) ([3]int, *Warning) {
	arr, ok := DictGet(dict, "W").(*Array)
	if !ok || len(arr.Children) < 3 {
		return [3]int{}, newWarning(CodeDecoderFilterError, "xref stream missing W array", nil)
	}
	var w [3]int
	for i := 0; i < 3; i++ {
		v, _ := IntegerValue(arr.Children[i])
		w[i] = int(v)
	}
	return w, nil
}

// xrefIndex extracts the Index array as start/count pairs, defaulting
// to a single [0, Size] subsection when Index is absent.
func xrefIndex(dict *Dictionary, size int) []XrefSubsection {
	arr, ok := DictGet(dict, "Index").(*Array)
	if !ok {
		return []XrefSubsection{{StartNum: 0, Count: uint32(size)}}
	}
	var out []XrefSubsection
	for i := 0; i+1 < len(arr.Children); i += 2 {
		start, _ := IntegerValue(arr.Children[i])
		count, _ := IntegerValue(arr.Children[i+1])
		out = append(out, XrefSubsection{StartNum: uint32(start), Count: uint32(count)})
	}
	return out
}

func decodeBigEndian(b []byte) uint64 {
	var x uint64
	for _, c := range b {
		x = x<<8 | uint64(c)
	}
	return x
}
