package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPDF builds a small but valid document: a Catalog/Pages/Page
// chain plus one stream, classified with an explicit /Type so it takes
// the Content sub-parse dispatch path (classification is done strictly
// off dict.Type/Subtype, so a realistic content stream lacking a Type
// key would fall through to the Bytes default — tested separately in
// TestEngineContentStreamWithoutTypeIsBytes).
func minimalPDF() []byte {
	return []byte("%PDF-1.4\n" +
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n" +
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R >>\nendobj\n" +
		"4 0 obj\n<< /Type /Content /Length 3 >>\nstream\nq\nQ\nendstream\nendobj\n" +
		"trailer\n<< /Root 1 0 R /Size 5 >>\nstartxref\n0\n%%EOF\n")
}

func TestLoadDocumentFromArrayBasics(t *testing.T) {
	doc, err := LoadDocumentFromArray(minimalPDF(), ParserOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1.4", doc.Store.PDFVersion())
	assert.Empty(t, doc.ParserWarnings)

	cat := doc.Store.Catalog()
	require.NotNil(t, cat)
	assert.Equal(t, "Catalog", NameValue(cat.Get("Type")))
}

func TestLoadDocumentContentStreamSubParse(t *testing.T) {
	doc, err := LoadDocumentFromArray(minimalPDF(), ParserOptions{})
	require.NoError(t, err)

	ind, ok := doc.Store.Indirect(Identifier{Num: 4, Gen: 0})
	require.True(t, ok)
	strm, ok := ind.Direct.(*Stream)
	require.True(t, ok)
	assert.Equal(t, "Content", strm.StreamType)

	content, ok := strm.Direct.(*Content)
	require.True(t, ok)

	var ops []string
	for _, child := range content.Children {
		if op, ok := child.(*Op); ok {
			ops = append(ops, op.Value)
		}
	}
	assert.Equal(t, []string{"q", "Q"}, ops)
}

func TestEngineContentStreamWithoutTypeIsBytes(t *testing.T) {
	src := []byte("%PDF-1.4\n" +
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n" +
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R >>\nendobj\n" +
		"4 0 obj\n<< /Length 3 >>\nstream\nq\nQ\nendstream\nendobj\n" +
		"trailer\n<< /Root 1 0 R /Size 5 >>\nstartxref\n0\n%%EOF\n")
	doc, err := LoadDocumentFromArray(src, ParserOptions{})
	require.NoError(t, err)
	ind, ok := doc.Store.Indirect(Identifier{Num: 4, Gen: 0})
	require.True(t, ok)
	strm := ind.Direct.(*Stream)
	assert.Equal(t, "", strm.StreamType)
	_, isBytes := strm.Direct.(*Bytes)
	assert.True(t, isBytes)
}

func TestLoadDocumentRefResolutionAndMissingRef(t *testing.T) {
	src := []byte("%PDF-1.4\n" +
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R /Broken 99 0 R >>\nendobj\n" +
		"2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n" +
		"trailer\n<< /Root 1 0 R /Size 3 >>\nstartxref\n0\n%%EOF\n" +
		"% padding so the file clears the 255-byte header-check floor, which only counts total bytes ...\n")
	doc, err := LoadDocumentFromArray(src, ParserOptions{})
	require.NoError(t, err)

	cat := doc.Store.Catalog()
	require.NotNil(t, cat)
	pagesRef, ok := cat.Get("Pages").(*Ref)
	require.True(t, ok)
	assert.NotNil(t, pagesRef.Indirect)

	var sawMissing bool
	for _, w := range doc.ParserWarnings {
		if w.Code == CodeMissingRef {
			sawMissing = true
		}
	}
	assert.True(t, sawMissing)
}

func TestLoadDocumentFileTooSmallIsFatal(t *testing.T) {
	_, err := LoadDocumentFromArray([]byte("%PDF-1.4\ntiny"), ParserOptions{})
	require.Error(t, err)
	ferr, ok := err.(*FatalError)
	require.True(t, ok)
	assert.Equal(t, CodeNotPDFFilesize, ferr.Code)
}

func TestLoadDocumentBadHeaderIsFatal(t *testing.T) {
	padding := make([]byte, 260)
	for i := range padding {
		padding[i] = ' '
	}
	src := append([]byte("NOT A PDF\n"), padding...)
	_, err := LoadDocumentFromArray(src, ParserOptions{})
	require.Error(t, err)
	ferr, ok := err.(*FatalError)
	require.True(t, ok)
	assert.Equal(t, CodeNotPDFInvalidHeader, ferr.Code)
}

func TestLoadDocumentStructuralizerWalksPages(t *testing.T) {
	doc, err := LoadDocumentFromArray(minimalPDF(), ParserOptions{})
	require.NoError(t, err)
	require.NotNil(t, doc.Structure)
	require.Len(t, doc.Structure.Pages, 1)
	page := doc.Structure.Pages[0]
	require.NotNil(t, page.MediaBox)
	assert.Len(t, page.MediaBox.Children, 4)
}
