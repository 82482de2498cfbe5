// ABOUTME: PDF text-layer extraction for segmentation
// ABOUTME: Wraps rsc.io/pdf behind a typed error boundary since it panics on malformed input
package segment

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/harper/paperplay/internal/models"
	rpdf "rsc.io/pdf"
)

var pdfMagic = []byte("%PDF-")

// ExtractText extracts the text layer of a document. PDFs are read in page
// order; anything else is treated as plain UTF-8 text. Returns ParseError
// for unreadable documents and EmptyDocumentError when the document
// contains no extractable text.
func ExtractText(doc *models.Document) (string, error) {
	if !bytes.HasPrefix(doc.Data, pdfMagic) {
		if !utf8.Valid(doc.Data) {
			return "", &ParseError{Name: doc.Name, Err: fmt.Errorf("not a PDF and not valid UTF-8 text")}
		}
		text := string(doc.Data)
		if strings.TrimSpace(text) == "" {
			return "", &EmptyDocumentError{Name: doc.Name}
		}
		return text, nil
	}
	return extractPDFText(doc)
}

// extractPDFText walks the PDF page tree. rsc.io/pdf panics on malformed
// structures, so the recover converts those into ParseError.
func extractPDFText(doc *models.Document) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ParseError{Name: doc.Name, Err: fmt.Errorf("%v", r)}
		}
	}()

	reader, rerr := rpdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if rerr != nil {
		return "", &ParseError{Name: doc.Name, Err: rerr}
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		pageText := renderPageText(page.Content())
		if pageText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pageText)
	}

	text = sb.String()
	if strings.TrimSpace(text) == "" {
		return "", &EmptyDocumentError{Name: doc.Name}
	}
	return text, nil
}

// renderPageText joins positioned text fragments into lines. Fragments on
// the same baseline stay on one line, with a space inserted across gaps.
func renderPageText(content rpdf.Content) string {
	var sb strings.Builder
	var lastY, lastEnd float64

	for i, t := range content.Text {
		if i > 0 {
			if t.Y != lastY {
				sb.WriteString("\n")
			} else if t.X-lastEnd > 1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(t.S)
		lastY = t.Y
		lastEnd = t.X + t.W
	}

	return strings.TrimSpace(sb.String())
}
