// Package document extracts plain text from uploaded résumés.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText = "text/plain"
)

// ErrUnsupportedType is returned for files that are neither PDF nor DOCX.
var ErrUnsupportedType = errors.New("invalid file type, allowed types: pdf, docx")

var (
	xmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	blankLinePattern = regexp.MustCompile(`\n{3,}`)
	spacesPattern    = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// MIMEFromFilename maps the accepted résumé extensions to their MIME type.
func MIMEFromFilename(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(name))) {
	case ".pdf":
		return MIMEPDF, nil
	case ".docx":
		return MIMEDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, name)
	}
}

// ExtensionForMIME is the inverse of MIMEFromFilename.
func ExtensionForMIME(mime string) (string, error) {
	switch normalizeMIME(mime) {
	case MIMEPDF:
		return ".pdf", nil
	case MIMEDOCX:
		return ".docx", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, mime)
	}
}

// ExtractText returns the text content of data interpreted as mime.
func ExtractText(mime string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("document is empty")
	}

	var (
		text string
		err  error
	)

	switch normalizeMIME(mime) {
	case MIMEText:
		text = string(data)
	case MIMEPDF:
		text, err = extractPDF(data)
	case MIMEDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, mime)
	}
	if err != nil {
		return "", err
	}

	return normalizeWhitespace(text), nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")
	content = xmlTagPattern.ReplaceAllString(content, "")

	return unescapeXML(content), nil
}

func normalizeMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if idx := strings.Index(mime, ";"); idx != -1 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime
}

var xmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spacesPattern.ReplaceAllString(line, " "))
	}
	joined := strings.Join(lines, "\n")
	return strings.TrimSpace(blankLinePattern.ReplaceAllString(joined, "\n\n"))
}
