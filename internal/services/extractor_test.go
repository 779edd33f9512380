package services

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	extractor := NewDocumentExtractor(0)

	_, err := extractor.Extract([]byte("plain text"), ".txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = extractor.Extract([]byte("plain text"), "doc")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_FileTooLarge(t *testing.T) {
	extractor := NewDocumentExtractor(10)

	_, err := extractor.Extract(make([]byte, 11), ".pdf")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestExtract_DOCX(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t>Senior Go Engineer</w:t></w:r></w:p>
    <w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go, Postgres</w:t></w:r></w:p>
  </w:body>
</w:document>`

	extractor := NewDocumentExtractor(0)
	text, err := extractor.Extract(buildDOCX(t, docXML), ".docx")
	require.NoError(t, err)

	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Senior Go Engineer")
	assert.Contains(t, text, "Go, Postgres")
}

func TestExtract_DOCXFormatAliases(t *testing.T) {
	docXML := `<w:document xmlns:w="http://x"><w:body><w:p><w:r><w:t>hello world</w:t></w:r></w:p></w:body></w:document>`
	data := buildDOCX(t, docXML)
	extractor := NewDocumentExtractor(0)

	for _, format := range []string{".docx", "docx", "DOCX"} {
		text, err := extractor.Extract(data, format)
		require.NoError(t, err, "format %q", format)
		assert.Equal(t, "hello world", text)
	}
}

func TestExtract_DOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	extractor := NewDocumentExtractor(0)
	_, err = extractor.Extract(buf.Bytes(), ".docx")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_DOCXEmptyBody(t *testing.T) {
	docXML := `<w:document xmlns:w="http://x"><w:body></w:body></w:document>`

	extractor := NewDocumentExtractor(0)
	_, err := extractor.Extract(buildDOCX(t, docXML), ".docx")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_CorruptPDF(t *testing.T) {
	extractor := NewDocumentExtractor(0)
	_, err := extractor.Extract([]byte("not a pdf at all"), ".pdf")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractFile_MissingFile(t *testing.T) {
	extractor := NewDocumentExtractor(0)
	_, err := extractor.ExtractFile("/nonexistent/resume.pdf")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestCandidateName_FromText(t *testing.T) {
	extractor := NewDocumentExtractor(0)

	text := "Jane Doe\nSenior Software Engineer with 10 years of experience building systems\njane@example.com"
	assert.Equal(t, "Jane Doe", extractor.CandidateName(text, "resume.pdf"))
}

func TestCandidateName_SkipsNonNameLines(t *testing.T) {
	extractor := NewDocumentExtractor(0)

	text := "jane@example.com\n+1 555 0100\nJane van Doe\nEngineer"
	assert.Equal(t, "Jane van Doe", extractor.CandidateName(text, "resume.pdf"))
}

func TestCandidateName_FallsBackToFilename(t *testing.T) {
	extractor := NewDocumentExtractor(0)

	text := "RESUME2024\n12345\nsomeverylongheaderlinethatcannotpossiblybeaname_atall_because_it_is_too_long"
	assert.Equal(t, "john smith cv", extractor.CandidateName(text, "john_smith-cv.pdf"))
}

func TestCleanText(t *testing.T) {
	in := "  Jane Doe  \n\n\n  Engineer \n"
	assert.Equal(t, "Jane Doe\nEngineer", CleanText(in))
}
