package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// DocumentExtractor turns an uploaded resume file into plain text.
type DocumentExtractor interface {
	ExtractFile(filePath string) (string, error)
	Extract(data []byte, format string) (string, error)
	CandidateName(text, filename string) string
}

type documentExtractor struct {
	maxFileSize int64
}

func NewDocumentExtractor(maxFileSize int64) DocumentExtractor {
	return &documentExtractor{maxFileSize: maxFileSize}
}

// ExtractFile implements DocumentExtractor. The format is taken from the
// file extension.
func (e *documentExtractor) ExtractFile(filePath string) (string, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrExtraction, filePath, err)
	}

	if e.maxFileSize > 0 && info.Size() > e.maxFileSize {
		return "", fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, filepath.Base(filePath), info.Size(), e.maxFileSize)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read %s: %v", ErrExtraction, filePath, err)
	}

	return e.Extract(data, filepath.Ext(filePath))
}

// Extract implements DocumentExtractor. format is an extension or bare
// format name ("pdf", ".pdf", "docx"). Empty output is treated as a failed
// extraction, never silently returned.
func (e *documentExtractor) Extract(data []byte, format string) (string, error) {
	if e.maxFileSize > 0 && int64(len(data)) > e.maxFileSize {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(data), e.maxFileSize)
	}

	var (
		text string
		err  error
	)

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "pdf":
		text, err = extractPDF(data)
	case "docx":
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text content found", ErrExtraction)
	}

	return text, nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to open PDF: %v", ErrExtraction, err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// extractDOCX reads word/document.xml out of the DOCX zip container and
// collects the <w:t> runs, one line per paragraph.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to open DOCX container: %v", ErrExtraction, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%w: DOCX has no word/document.xml", ErrExtraction)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("%w: failed to open document.xml: %v", ErrExtraction, err)
	}
	defer rc.Close()

	var textBuilder strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: malformed document.xml: %v", ErrExtraction, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				textBuilder.WriteByte('\t')
			case "br":
				textBuilder.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				textBuilder.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				textBuilder.Write(t)
			}
		}
	}

	return textBuilder.String(), nil
}

// CandidateName implements DocumentExtractor. Best-effort: the first few
// lines of a resume usually carry the candidate's name. Falls back to the
// filename without extension.
func (e *documentExtractor) CandidateName(text, filename string) string {
	for i, line := range strings.Split(text, "\n") {
		if i >= 5 {
			break
		}
		line = strings.TrimSpace(line)
		if looksLikeName(line) {
			return line
		}
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}

func looksLikeName(line string) bool {
	if line == "" || len(line) > 40 {
		return false
	}

	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}

	for _, word := range words {
		for _, r := range word {
			if unicode.IsDigit(r) || r == '@' || r == '/' || r == ':' {
				return false
			}
		}
		if !unicode.IsLetter([]rune(word)[0]) {
			return false
		}
	}

	return true
}

// CleanText trims lines and drops empty ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
