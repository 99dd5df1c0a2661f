// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Object stream expansion: an ObjStm's decoded body is N (id,
// relative-offset) header pairs followed by First-anchored object
// bodies, re-tokenized and re-lexed in place.

package pdf

// expandObjectStream parses a decoded ObjStm body into N indirect
// objects and registers them in store, returning any warnings raised
// along the way. strm.Dictionary must carry N and First.
func expandObjectStream(store *ObjStore, strm *Stream, decoded []byte) []*Warning {
	n := dictInt(strm.Dictionary, "N", 0)
	first := dictInt(strm.Dictionary, "First", 0)
	if n <= 0 || first <= 0 || first > len(decoded) {
		return []*Warning{newWarning(CodeStreamDecodeError, "object stream missing or invalid N/First", map[string]interface{}{"n": n, "first": first})}
	}

	header := NewTokenizer(NewMemoryReader(decoded[:first]))
	type entry struct {
		num, offset int64
	}
	var entries []entry
	for len(entries) < n {
		idTok, ok := header.Next()
		if !ok {
			break
		}
		if idTok.Kind == TokSpace {
			continue
		}
		offTok, ok := header.Next()
		for ok && offTok.Kind == TokSpace {
			offTok, ok = header.Next()
		}
		if !ok || idTok.Kind != TokInteger || offTok.Kind != TokInteger {
			return []*Warning{newWarning(CodeStreamDecodeError, "malformed object stream header pair", nil)}
		}
		entries = append(entries, entry{num: idTok.Int, offset: offTok.Int})
	}

	var warnings []*Warning
	body := decoded[first:]
	for i, e := range entries {
		start := int(e.offset)
		end := len(body)
		if i+1 < len(entries) {
			end = int(entries[i+1].offset)
		}
		if start < 0 || start > len(body) || end > len(body) || start > end {
			warnings = append(warnings, newWarning(CodeStreamDecodeError, "object stream entry offset out of range", map[string]interface{}{"obj": e.num}))
			continue
		}

		id := Identifier{Num: e.num, Gen: 0}
		ind, existing := store.Indirect(id)
		if !existing {
			ind = store.createObject(&Indirect{Identifier: id}).(*Indirect)
			store.registerIndirect(ind)
		}

		sub := NewSubLexer(store, ind)
		tz := NewTokenizer(NewMemoryReader(body[start:end]))
		for {
			tok, ok := tz.Next()
			if !ok {
				break
			}
			_, warns := sub.PushToken(tok)
			warnings = append(warnings, warns...)
		}
	}
	return warnings
}
