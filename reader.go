// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"io"
	"os"
)

// SequentialReader is the cursor-based byte source the Tokenizer
// consumes. Implementations decode bytes as Latin-1 for ASCII views —
// i.e. every byte is its own rune, no multi-byte decoding is ever
// performed here.
type SequentialReader interface {
	Length() int64
	Offset() int64
	EOF() bool

	// ReadByte returns the byte at the cursor. If consume is true the
	// cursor advances past it. Returns (0, false) at EOF.
	ReadByte(consume bool) (byte, bool)

	// ReadArray reads n bytes starting at the cursor.
	ReadArray(n int, consume bool) []byte

	// Consume advances the cursor by n bytes without reading them.
	Consume(n int)
}

// OffsetReader is a cursor-free random-access byte source, used by
// the stream-decode phase to pull a Stream's raw body by absolute
// byte range.
type OffsetReader interface {
	ReadArray(start, end int64) []byte
}

// derived helpers shared by every SequentialReader implementation.

func readStringWhile(r SequentialReader, set byteSet) string {
	return string(readArrayWhile(r, set))
}

func readArrayWhile(r SequentialReader, set byteSet) []byte {
	var out []byte
	for {
		b, ok := r.ReadByte(false)
		if !ok || !set.has(b) {
			break
		}
		r.ReadByte(true)
		out = append(out, b)
	}
	return out
}

// readStringUntil reads bytes up to (not including) the first byte in
// set, optionally consuming that terminating byte too.
func readStringUntil(r SequentialReader, set byteSet, consumeTerminator bool) (string, bool) {
	b, ok := readArrayUntil(r, set, consumeTerminator)
	return string(b), ok
}

// readArrayUntil returns (bytes, true) on finding a terminator, or
// (bytes-read-so-far, false) on EOF.
func readArrayUntil(r SequentialReader, set byteSet, consumeTerminator bool) ([]byte, bool) {
	var out []byte
	for {
		b, ok := r.ReadByte(false)
		if !ok {
			return out, false
		}
		if set.has(b) {
			if consumeTerminator {
				r.ReadByte(true)
			}
			return out, true
		}
		r.ReadByte(true)
		out = append(out, b)
	}
}

// ---- MemoryReader: trivial in-memory implementation ----

// MemoryReader implements SequentialReader over a fully-buffered byte
// slice. Its ReadArrayAt reads a cursor-free byte range, but it does
// not satisfy OffsetReader; MemoryOffsetReader serves that role.
type MemoryReader struct {
	data   []byte
	cursor int64
}

func NewMemoryReader(data []byte) *MemoryReader {
	return &MemoryReader{data: data}
}

func (m *MemoryReader) Length() int64 { return int64(len(m.data)) }
func (m *MemoryReader) Offset() int64 { return m.cursor }
func (m *MemoryReader) EOF() bool     { return m.cursor >= int64(len(m.data)) }

func (m *MemoryReader) ReadByte(consume bool) (byte, bool) {
	if m.cursor >= int64(len(m.data)) {
		return 0, false
	}
	b := m.data[m.cursor]
	if consume {
		m.cursor++
	}
	return b, true
}

func (m *MemoryReader) ReadArray(n int, consume bool) []byte {
	end := m.cursor + int64(n)
	if end > int64(len(m.data)) {
		end = int64(len(m.data))
	}
	out := append([]byte(nil), m.data[m.cursor:end]...)
	if consume {
		m.cursor = end
	}
	return out
}

func (m *MemoryReader) Consume(n int) {
	m.cursor += int64(n)
	if m.cursor > int64(len(m.data)) {
		m.cursor = int64(len(m.data))
	}
}

// Seek repositions the cursor to an absolute offset.
func (m *MemoryReader) Seek(offset int64) {
	m.cursor = offset
}

func (m *MemoryReader) ReadArrayAt(start, end int64) []byte {
	if start < 0 {
		start = 0
	}
	if end > int64(len(m.data)) {
		end = int64(len(m.data))
	}
	if start >= end {
		return nil
	}
	return append([]byte(nil), m.data[start:end]...)
}

// MemoryOffsetReader serves an in-memory byte slice as an
// OffsetReader.
type MemoryOffsetReader struct{ data []byte }

func NewMemoryOffsetReader(data []byte) *MemoryOffsetReader {
	return &MemoryOffsetReader{data: data}
}

func (m *MemoryOffsetReader) ReadArray(start, end int64) []byte {
	if start < 0 {
		start = 0
	}
	if end > int64(len(m.data)) {
		end = int64(len(m.data))
	}
	if start >= end {
		return nil
	}
	return append([]byte(nil), m.data[start:end]...)
}

// ---- FileReader: chunk-buffered, file-backed implementation ----

const defaultWindowSize = 128 << 20 // 128 MiB
const rollbackWindow = 1024         // 1 KiB

// FileReader is a chunk-buffered SequentialReader over an *os.File. It
// keeps a rolling window of at least rollbackWindow bytes behind the
// cursor so local lookahead (e.g. the tokenizer's obj/R composition)
// can never fail merely because the cursor sits near the start of the
// window.
type FileReader struct {
	f          *os.File
	size       int64
	windowSize int64

	buf       []byte
	bufStart  int64 // absolute file offset of buf[0]
	pos       int   // index into buf; absolute offset = bufStart+pos
	eof       bool
}

// NewFileReader opens a chunk-buffered reader with the default 128 MiB
// window. Use NewFileReaderSize to configure the window.
func NewFileReader(f *os.File) (*FileReader, error) {
	return NewFileReaderSize(f, defaultWindowSize)
}

func NewFileReaderSize(f *os.File, windowSize int64) (*FileReader, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &FileReader{f: f, size: fi.Size(), windowSize: windowSize}, nil
}

func (r *FileReader) Length() int64 { return r.size }
func (r *FileReader) Offset() int64 { return r.bufStart + int64(r.pos) }
func (r *FileReader) EOF() bool     { return r.Offset() >= r.size }

func (r *FileReader) fill(from int64) {
	r.buf = make([]byte, r.windowSize)
	n, _ := r.f.ReadAt(r.buf, from)
	r.buf = r.buf[:n]
	r.bufStart = from
	r.pos = 0
	r.eof = n == 0
}

// ensure makes sure at least 1 byte is available at the cursor,
// reloading the window (anchored rollbackWindow bytes behind the
// cursor) if necessary.
func (r *FileReader) ensure() bool {
	if r.pos < len(r.buf) {
		return true
	}
	abs := r.Offset()
	if abs >= r.size {
		return false
	}
	from := abs - rollbackWindow
	if from < 0 {
		from = 0
	}
	r.fill(from)
	r.pos = int(abs - r.bufStart)
	return r.pos < len(r.buf)
}

func (r *FileReader) ReadByte(consume bool) (byte, bool) {
	if !r.ensure() {
		return 0, false
	}
	b := r.buf[r.pos]
	if consume {
		r.pos++
	}
	return b, true
}

func (r *FileReader) ReadArray(n int, consume bool) []byte {
	out := make([]byte, 0, n)
	savedPos, savedStart, savedBuf := r.pos, r.bufStart, r.buf
	for i := 0; i < n; i++ {
		b, ok := r.ReadByte(true)
		if !ok {
			break
		}
		out = append(out, b)
	}
	if !consume {
		r.pos, r.bufStart, r.buf = savedPos, savedStart, savedBuf
	}
	return out
}

func (r *FileReader) Consume(n int) {
	r.ReadArray(n, true)
}

// Seek repositions the cursor to an absolute file offset, discarding
// the current window.
func (r *FileReader) Seek(offset int64) {
	from := offset - rollbackWindow
	if from < 0 {
		from = 0
	}
	r.fill(from)
	r.pos = int(offset - r.bufStart)
	if r.pos < 0 {
		r.pos = 0
	}
}

// FileOffsetReader adapts an *os.File as an idempotent OffsetReader.
type FileOffsetReader struct{ f *os.File }

func NewFileOffsetReader(f *os.File) *FileOffsetReader {
	return &FileOffsetReader{f: f}
}

func (r *FileOffsetReader) ReadArray(start, end int64) []byte {
	if end <= start {
		return nil
	}
	buf := make([]byte, end-start)
	n, err := r.f.ReadAt(buf, start)
	if err != nil && err != io.EOF {
		return buf[:n]
	}
	return buf[:n]
}
