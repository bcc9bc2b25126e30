package extract

import (
	"fmt"
	"log"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// PDFText extracts text from a PDF, optionally limited to a 1-indexed page
// range. Returns the text and the document's total page count. Individual
// page failures are skipped; only a fully empty result is an error.
func PDFText(filePath string, startPage, endPage *int) (string, int, error) {
	doc, err := fitz.New(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("Failed to extract PDF text: %v", err)
	}
	defer doc.Close()

	totalPages := doc.NumPage()

	start := 0
	if startPage != nil {
		start = *startPage - 1
	}
	end := totalPages
	if endPage != nil {
		end = *endPage
	}
	start = max(0, min(start, totalPages-1))
	end = max(start+1, min(end, totalPages))

	var textParts []string
	pagesProcessed := 0
	for i := start; i < end; i++ {
		pagesProcessed++
		pageText, err := doc.Text(i)
		if err != nil {
			log.Printf("WARN: Failed to extract text from page %d: %v", i+1, err)
			continue
		}
		if trimmed := strings.TrimSpace(pageText); trimmed != "" {
			textParts = append(textParts, trimmed)
		}
	}

	if len(textParts) == 0 {
		msg := "No text could be extracted from the PDF"
		if pagesProcessed > 0 {
			plural := ""
			if pagesProcessed > 1 {
				plural = "s"
			}
			msg += fmt.Sprintf(" (processed %d page%s)", pagesProcessed, plural)
		}
		msg += ". The PDF might be image-based (scanned) or encrypted. Please ensure the PDF contains selectable text."
		return "", 0, fmt.Errorf("%s", msg)
	}

	if len(textParts) < pagesProcessed {
		log.Printf("WARN: Only %d out of %d pages contained extractable text", len(textParts), pagesProcessed)
	}

	return strings.Join(textParts, "\n\n"), totalPages, nil
}

// PDFPageCount returns the page count of the PDF at path, or 0 when the file
// cannot be read as a PDF.
func PDFPageCount(filePath string) int {
	doc, err := fitz.New(filePath)
	if err != nil {
		return 0
	}
	defer doc.Close()
	return doc.NumPage()
}
