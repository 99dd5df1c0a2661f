// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import "regexp"

// byteSet is a memoized 256-entry membership set so the tokenizer and
// lexer can share one table per character class instead of branching
// on individual bytes.
type byteSet [256]bool

func newByteSet(members ...byte) byteSet {
	var s byteSet
	for _, b := range members {
		s[b] = true
	}
	return s
}

func newByteRangeSet(ranges ...[2]byte) byteSet {
	var s byteSet
	for _, r := range ranges {
		for b := int(r[0]); b <= int(r[1]); b++ {
			s[b] = true
		}
	}
	return s
}

func (s byteSet) has(b byte) bool { return s[b] }

func (s byteSet) union(other byteSet) byteSet {
	var out byteSet
	for i := range out {
		out[i] = s[i] || other[i]
	}
	return out
}

func (s byteSet) minus(other byteSet) byteSet {
	var out byteSet
	for i := range out {
		out[i] = s[i] && !other[i]
	}
	return out
}

var (
	spaceSet = newByteSet(0, 9, 10, 12, 13, 32)
	eolSet   = newByteSet(10, 13)
	gtSet    = newByteSet('>')
	digitSet = newByteRangeSet([2]byte{'0', '9'})
	numberSet = digitSet.union(newByteSet('+', '-', '.'))
	keywordSet = newByteRangeSet([2]byte{'a', 'z'}, [2]byte{'A', 'Z'})
	// nameSet is printable ASCII '!'..'~' minus the PDF delimiters.
	nameSet = newByteRangeSet([2]byte{'!', '~'}).minus(newByteSet('%', '(', ')', '/', '[', ']', '<', '>'))
	stringParenSet   = newByteSet('(', ')', '\\')
	endstreamSentinel = eolSet.union(newByteSet('e'))
)

// Sniff prefixes used to classify a raw string/hexstring payload
// before falling back to PDFDocEncoding.
var (
	dateSniff   = []byte{0x44, 0x3a} // "D:"
	utf8Sniff   = []byte{0xEF, 0xBB, 0xBF}
	utf16Sniff  = []byte{0xFE, 0xFF}
)

// dateRegex matches the body of a PDF date string after its "D:"
// prefix: YYYYMMDDHHmmSSOHH'mm'
var dateRegex = regexp.MustCompile(`^(\d{4})(\d{2})?(\d{2})?(\d{2})?(\d{2})?(\d{2})?([+\-Z])?(\d{2})?'?(\d{2})?'?$`)

// pdfDocEncodingMap holds the 43 code points where PDFDocEncoding
// deviates from Latin-1 (the rest of the 8-bit space maps identically).
// Source: PDF 32000-1:2008 Annex D.2.
var pdfDocEncodingMap = map[byte]rune{
	0x18: 0x02D8, // breve
	0x19: 0x02C7, // caron
	0x1A: 0x02C6, // modifier letter circumflex accent
	0x1B: 0x02D9, // dot above
	0x1C: 0x02DD, // double acute accent
	0x1D: 0x02DB, // ogonek
	0x1E: 0x02DA, // ring above
	0x1F: 0x02DC, // small tilde
	0x7F: 0xFFFD, // undefined
	0x80: 0x2022, // bullet
	0x81: 0x2020, // dagger
	0x82: 0x2021, // double dagger
	0x83: 0x2026, // ellipsis
	0x84: 0x2014, // em dash
	0x85: 0x2013, // en dash
	0x86: 0x0192, // florin
	0x87: 0x2044, // fraction slash
	0x88: 0x2039, // single left angle quote
	0x89: 0x203A, // single right angle quote
	0x8A: 0x2212, // minus
	0x8B: 0x2030, // per mille
	0x8C: 0x201E, // double low-9 quote
	0x8D: 0x201C, // left double quote
	0x8E: 0x201D, // right double quote
	0x8F: 0x2018, // left single quote
	0x90: 0x2019, // right single quote
	0x91: 0x201A, // single low-9 quote
	0x92: 0x2122, // trademark
	0x93: 0xFB01, // fi ligature
	0x94: 0xFB02, // fl ligature
	0x95: 0x0141, // Lslash
	0x96: 0x0152, // OE
	0x97: 0x0160, // Scaron
	0x98: 0x0178, // Ydieresis
	0x99: 0x017D, // Zcaron
	0x9A: 0x0131, // dotlessi
	0x9B: 0x0142, // lslash
	0x9C: 0x0153, // oe
	0x9D: 0x0161, // scaron
	0x9E: 0x017E, // zcaron
	0x9F: 0xFFFD, // undefined
	0xA0: 0x20AC, // euro
	0xAD: 0xFFFD, // undefined
}

// supportedVersions is the set of PDF header version strings this
// engine recognizes without a warning.
var supportedVersions = map[string]bool{
	"1.0": true, "1.1": true, "1.2": true, "1.3": true, "1.4": true,
	"1.5": true, "1.6": true, "1.7": true, "2.0": true,
}
