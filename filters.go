// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Stream filter decoding: Flate/ASCIIHex/ASCII85/RunLength/LZW, plus
// the PNG and TIFF predictors layered on top of Flate/LZW output.

package pdf

import (
	"bytes"
	"compress/lzw"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"io"
)

// decodeFilter applies one named filter to data, returning the decoded
// bytes or a warning. parms carries that filter's DecodeParms
// dictionary, if any.
func decodeFilter(name string, data []byte, parms *Dictionary) ([]byte, *Warning) {
	switch name {
	case "FlateDecode", "Fl":
		return decodeFlate(data, parms)
	case "ASCIIHexDecode", "AHx":
		return decodeASCIIHex(data), nil
	case "ASCII85Decode", "A85":
		return decodeASCII85(data), nil
	case "RunLengthDecode", "RL":
		return decodeRunLength(data), nil
	case "LZWDecode", "LZW":
		return decodeLZW(data, parms)
	default:
		return nil, newWarning(CodeDecoderUnimplementedFilter, "unimplemented stream filter", map[string]interface{}{"filter": name})
	}
}

// decodeFlate delegates to compress/zlib.
func decodeFlate(data []byte, parms *Dictionary) ([]byte, *Warning) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, wrapWarning(CodeDecoderFilterError, "flate: bad header", err, nil)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil && len(out) == 0 {
		return nil, wrapWarning(CodeDecoderFilterError, "flate: decode failed", err, nil)
	}
	return applyPredictor(out, parms)
}

func decodeASCIIHex(data []byte) []byte {
	end := bytes.IndexByte(data, '>')
	if end >= 0 {
		data = data[:end]
	}
	clean := make([]byte, 0, len(data))
	for _, b := range data {
		if !spaceSet.has(b) {
			clean = append(clean, b)
		}
	}
	if len(clean)%2 == 1 {
		clean = append(clean, '0')
	}
	out := make([]byte, hex.DecodedLen(len(clean)))
	n, _ := hex.Decode(out, clean)
	return out[:n]
}

// decodeASCII85 delegates to encoding/ascii85.
func decodeASCII85(data []byte) []byte {
	if end := bytes.Index(data, []byte("~>")); end >= 0 {
		data = data[:end]
	}
	out := make([]byte, len(data))
	n, _, err := ascii85.Decode(out, data, true)
	if err != nil {
		// best effort: return whatever decoded before the error
		return out[:n]
	}
	return out[:n]
}

// decodeRunLength implements PDF 32000-1:2008 7.4.5's byte-oriented
// RLE: a length byte 0-127 copies the next length+1 literal bytes, a
// length byte 129-255 repeats the next single byte 257-length times,
// and 128 marks EOD.
func decodeRunLength(data []byte) []byte {
	var out []byte
	i := 0
	for i < len(data) {
		length := data[i]
		i++
		switch {
		case length == 128:
			return out
		case length < 128:
			n := int(length) + 1
			end := i + n
			if end > len(data) {
				end = len(data)
			}
			out = append(out, data[i:end]...)
			i = end
		default:
			if i >= len(data) {
				return out
			}
			n := 257 - int(length)
			for j := 0; j < n; j++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out
}

// decodeLZW delegates to compress/lzw (MSB bit order, 8-bit literals).
// The EarlyChange decode parameter is not read: code widths grow at
// compress/lzw's own boundary, with no early change.
func decodeLZW(data []byte, parms *Dictionary) ([]byte, *Warning) {
	lr := lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	defer lr.Close()
	out, err := io.ReadAll(lr)
	if err != nil && len(out) == 0 {
		return nil, wrapWarning(CodeDecoderFilterError, "lzw: decode failed", err, nil)
	}
	return applyPredictor(out, parms)
}

// applyPredictor reverses the PNG (10-15) or TIFF (2) prediction filter
// a DecodeParms dictionary may specify over Flate/LZW output (Paeth,
// Sub, Up, Average, or horizontal differencing, depending on type).
func applyPredictor(data []byte, parms *Dictionary) ([]byte, *Warning) {
	if parms == nil {
		return data, nil
	}
	predictor := dictInt(parms, "Predictor", 1)
	if predictor == 1 {
		return data, nil
	}
	colors := dictInt(parms, "Colors", 1)
	bpc := dictInt(parms, "BitsPerComponent", 8)
	columns := dictInt(parms, "Columns", 1)

	bytesPerPixel := (colors*bpc + 7) / 8
	if bytesPerPixel < 1 {
		bytesPerPixel = 1
	}
	rowBytes := (columns*colors*bpc + 7) / 8
	if rowBytes < 1 {
		rowBytes = 1
	}

	switch {
	case predictor == 2:
		return applyTIFFPredictor(data, rowBytes, bytesPerPixel), nil
	case predictor >= 10 && predictor <= 15:
		return applyPNGPredictor(data, rowBytes, bytesPerPixel)
	default:
		return nil, newWarning(CodeDecoderFilterError, "unsupported predictor value", map[string]interface{}{"predictor": predictor})
	}
}

func dictInt(d *Dictionary, key string, def int) int {
	v, ok := IntegerValue(DictGet(d, key))
	if !ok {
		return def
	}
	return int(v)
}

func applyTIFFPredictor(data []byte, rowBytes, bpp int) []byte {
	out := append([]byte(nil), data...)
	for start := 0; start+rowBytes <= len(out); start += rowBytes {
		row := out[start : start+rowBytes]
		for i := bpp; i < len(row); i++ {
			row[i] += row[i-bpp]
		}
	}
	return out
}

func applyPNGPredictor(data []byte, rowBytes, bpp int) ([]byte, *Warning) {
	stride := rowBytes + 1 // one leading filter-type byte per row
	var out []byte
	prevRow := make([]byte, rowBytes)

	for off := 0; off+stride <= len(data); off += stride {
		filterType := data[off]
		row := append([]byte(nil), data[off+1:off+stride]...)

		switch filterType {
		case 0: // None
		case 1: // Sub
			for i := bpp; i < len(row); i++ {
				row[i] += row[i-bpp]
			}
		case 2: // Up
			for i := range row {
				row[i] += prevRow[i]
			}
		case 3: // Average
			for i := 0; i < bpp && i < len(row); i++ {
				row[i] += prevRow[i] / 2
			}
			for i := bpp; i < len(row); i++ {
				row[i] += byte((int(row[i-bpp]) + int(prevRow[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < len(row); i++ {
				var a, c byte
				if i >= bpp {
					a = row[i-bpp]
					c = prevRow[i-bpp]
				}
				row[i] += paethPredictor(a, prevRow[i], c)
			}
		default:
			return out, newWarning(CodeDecoderFilterError, "unknown PNG predictor filter type", map[string]interface{}{"type": filterType})
		}

		out = append(out, row...)
		prevRow = row
	}
	return out, nil
}

func paethPredictor(a, b, c byte) byte {
	pa := absInt(int(b) - int(c))
	pb := absInt(int(a) - int(c))
	pc := absInt(int(a) + int(b) - 2*int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// decodeStreamFilters resolves a Stream's Filter/DecodeParms entries
// (single name or array-aligned names) and applies them in order.
func decodeStreamFilters(strm *Stream, raw []byte) ([]byte, []*Warning) {
	names, parmsList := filterChain(strm.Dictionary)
	data := raw
	var warnings []*Warning
	for i, name := range names {
		var parms *Dictionary
		if i < len(parmsList) {
			parms = parmsList[i]
		}
		out, warn := decodeFilter(name, data, parms)
		if warn != nil {
			warnings = append(warnings, warn)
			if out == nil {
				// An unknown filter name or an unrecoverable codec
				// error leaves nothing decoded for this stage or any
				// stage after it; returning the previous stage's bytes
				// here would mislabel undecoded data as the payload.
				return nil, warnings
			}
		}
		data = out
	}
	return data, warnings
}

// filterChain extracts the Filter/DecodeParms pair as parallel slices,
// accepting both the single-name and array forms.
func filterChain(d *Dictionary) ([]string, []*Dictionary) {
	filterObj := DictGet(d, "Filter")
	parmsObj := DictGet(d, "DecodeParms")
	if parmsObj == nil {
		parmsObj = DictGet(d, "DP")
	}

	var names []string
	switch f := filterObj.(type) {
	case *Name:
		names = []string{f.Value}
	case *Array:
		for _, child := range f.Children {
			names = append(names, NameValue(child))
		}
	}

	var parms []*Dictionary
	switch p := parmsObj.(type) {
	case *Dictionary:
		parms = []*Dictionary{p}
	case *Array:
		for _, child := range p.Children {
			if ref, ok := child.(*Ref); ok {
				child = ref.Deref()
			}
			if dict, ok := child.(*Dictionary); ok {
				parms = append(parms, dict)
			} else {
				parms = append(parms, nil)
			}
		}
	}
	return names, parms
}
