package pdf

import (
	"bytes"
	"compress/lzw"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flateCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecodeFlateRoundTrip(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	compressed := flateCompress(t, original)
	out, warn := decodeFilter("FlateDecode", compressed, nil)
	require.Nil(t, warn)
	assert.Equal(t, original, out)
}

func TestDecodeASCIIHex(t *testing.T) {
	out, warn := decodeFilter("ASCIIHexDecode", []byte("48656C6C6F>"), nil)
	require.Nil(t, warn)
	assert.Equal(t, "Hello", string(out))
}

func TestDecodeASCIIHexOddDigitAndWhitespace(t *testing.T) {
	out, warn := decodeFilter("ASCIIHexDecode", []byte("48 65 6C 6C 6F 0>"), nil)
	require.Nil(t, warn)
	assert.Equal(t, []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F, 0x00}, out)
}

func TestDecodeASCII85(t *testing.T) {
	// "Man " encodes to "9jqo^" in ASCII85 (the classic Adobe example).
	out, warn := decodeFilter("ASCII85Decode", []byte("9jqo^~>"), nil)
	require.Nil(t, warn)
	assert.Equal(t, "Man ", string(out))
}

func TestDecodeRunLength(t *testing.T) {
	// length byte 2 => copy next 3 literal bytes; length byte 254 => repeat next byte 3 times; 128 => EOD.
	in := []byte{2, 'a', 'b', 'c', 254, 'x', 128}
	out := decodeRunLength(in)
	assert.Equal(t, "abcxxx", string(out))
}

func TestDecodeLZWRoundTrip(t *testing.T) {
	// LZW needs an actual compressed payload; lzw.NewWriter with the
	// PDF-mandated MSB order and 8 literal width mirrors decodeLZW's reader.
	original := []byte("aaaaaaaaaaaaaaaabbbbbbbbbbbbbbbbccccccccccccccccc")
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.MSB, 8)
	_, err := w.Write(original)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, warn := decodeFilter("LZWDecode", buf.Bytes(), nil)
	require.Nil(t, warn)
	assert.Equal(t, original, out)
}

func TestApplyPNGPredictorSub(t *testing.T) {
	// One row, Sub filter (type 1), bpp 1: raw deltas 10,1,1,1 -> cumulative 10,11,12,13.
	data := []byte{1, 10, 1, 1, 1}
	out, warn := applyPNGPredictor(data, 4, 1)
	require.Nil(t, warn)
	assert.Equal(t, []byte{10, 11, 12, 13}, out)
}

func TestApplyTIFFPredictor(t *testing.T) {
	// Two single-byte-per-pixel rows of horizontal deltas.
	data := []byte{10, 1, 1, 1, 5, 2, 2, 2}
	out := applyTIFFPredictor(append([]byte(nil), data...), 4, 1)
	assert.Equal(t, []byte{10, 11, 12, 13, 5, 7, 9, 11}, out)
}

func TestFilterChainSingleAndArrayForms(t *testing.T) {
	dict := newDictionary()
	dict.set("Filter", &Name{Value: "FlateDecode"})
	names, parms := filterChain(dict)
	assert.Equal(t, []string{"FlateDecode"}, names)
	assert.Len(t, parms, 0)

	dict2 := newDictionary()
	arr := &Array{Children: []Object{&Name{Value: "ASCII85Decode"}, &Name{Value: "FlateDecode"}}}
	dict2.set("Filter", arr)
	names2, _ := filterChain(dict2)
	assert.Equal(t, []string{"ASCII85Decode", "FlateDecode"}, names2)
}

func TestDecodeStreamFiltersUnknownFilterYieldsEmptyOutput(t *testing.T) {
	dict := newDictionary()
	dict.set("Filter", &Name{Value: "NotARealFilter"})
	strm := &Stream{Dictionary: dict}

	out, warnings := decodeStreamFilters(strm, []byte("whatever bytes"))
	assert.Empty(t, out)
	require.Len(t, warnings, 1)
	assert.Equal(t, CodeDecoderUnimplementedFilter, warnings[0].Code)
}

func TestDecodeStreamFiltersCorruptFlateYieldsEmptyOutput(t *testing.T) {
	dict := newDictionary()
	dict.set("Filter", &Name{Value: "FlateDecode"})
	strm := &Stream{Dictionary: dict}

	out, warnings := decodeStreamFilters(strm, []byte{0x00, 0x01, 0x02, 0x03})
	assert.Empty(t, out)
	require.Len(t, warnings, 1)
	assert.Equal(t, CodeDecoderFilterError, warnings[0].Code)
}
