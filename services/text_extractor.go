package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"thesis-verification-api/models"

	"github.com/gabriel-vasile/mimetype"
	pdf "github.com/ledongthuc/pdf"
)

// MaxDocumentSize is the upload limit for thesis and validation documents.
const MaxDocumentSize = 50 * 1024 * 1024

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(fileName string, data []byte) (string, error)
}

// DocumentExtractor extracts text from PDF and DOCX files.
type DocumentExtractor struct{}

// ValidateDocument checks size, extension and sniffed content type and
// returns the detected MIME type.
func ValidateDocument(fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", newValidationError("file", "file cannot be empty")
	}
	if strings.TrimSpace(fileName) == "" {
		return "", newValidationError("file", "filename is required")
	}
	if len(data) > MaxDocumentSize {
		return "", newValidationError("file", "file size cannot exceed 50MB")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf", ".docx":
	case ".doc":
		return "", newValidationError("file", "legacy .doc files are not supported, save the document as .docx or .pdf")
	default:
		return "", newValidationError("file", "unsupported file format %q, only PDF and DOCX are accepted", ext)
	}

	mt := mimetype.Detect(data)
	switch {
	case ext == ".pdf" && mt.Is(models.MimePDF):
		return models.MimePDF, nil
	case ext == ".docx" && mt.Is(models.MimeDOCX):
		return models.MimeDOCX, nil
	}
	return "", newValidationError("file", "file content (%s) does not match extension %s", mt.String(), ext)
}

// Extract validates the document and returns its text with paragraph breaks
// preserved.
func (DocumentExtractor) Extract(fileName string, data []byte) (string, error) {
	mime, err := ValidateDocument(fileName, data)
	if err != nil {
		return "", err
	}
	switch mime {
	case models.MimePDF:
		return extractPDF(data)
	default:
		return extractDOCX(data)
	}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return tidyExtractedText(string(b)), nil
}

// extractDOCX gathers the <w:t> runs of word/document.xml, one line per
// <w:p> paragraph.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx container: %w", err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", newValidationError("file", "docx has no word/document.xml part")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("docx open document.xml: %w", err)
	}
	defer rc.Close()

	var out strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx parse: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return tidyExtractedText(out.String()), nil
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\r]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// tidyExtractedText collapses horizontal whitespace and runs of blank lines
// but keeps paragraph breaks, which the structure analysis relies on.
func tidyExtractedText(s string) string {
	s = horizontalSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
