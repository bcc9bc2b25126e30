package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// TextToPDF writes pasted text to a temporary PDF in dir so text input can
// flow through the same pipeline as uploaded files. The caller removes the
// file when done.
func TextToPDF(textContent, dir string) (string, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(72, 72, 72)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 11)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, para := range strings.Split(textContent, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		pdf.MultiCell(0, 14, tr(para), "", "L", false)
		pdf.Ln(6)
	}

	path := filepath.Join(dir, uuid.New().String()+"_text_input.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to create PDF from text: %w", err)
	}
	return path, nil
}
