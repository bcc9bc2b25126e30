package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	"pdf":  true,
	"doc":  true,
	"docx": true,
}

// AllowedFile checks if the file extension is allowed
func AllowedFile(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[i+1:])]
}

// ContentType determines the backend content medium type from the file name
func ContentType(filename string) string {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".doc") || strings.HasSuffix(lower, ".docx") {
		return "DOCX"
	}
	return "PDF"
}

// ParsePage parses a 1-indexed page number from form input. Anything that is
// not a plain run of digits is ignored and yields nil.
func ParsePage(value string) *int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil
	}
	return &n
}

// ValidatePageRange checks a requested page range against the document's
// total page count. The returned messages are shown to the user verbatim.
func ValidatePageRange(startPage, endPage *int, totalPages int) error {
	if startPage != nil && *startPage < 1 {
		return errors.New("Start page must be at least 1")
	}
	if endPage != nil && *endPage < 1 {
		return errors.New("End page must be at least 1")
	}
	if startPage != nil && endPage != nil && *startPage > *endPage {
		return errors.New("Start page must be less than or equal to end page")
	}
	if startPage != nil && *startPage > totalPages {
		return fmt.Errorf("Start page (%d) exceeds total pages (%d)", *startPage, totalPages)
	}
	if endPage != nil && *endPage > totalPages {
		return fmt.Errorf("End page (%d) exceeds total pages (%d)", *endPage, totalPages)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename strips path components and characters unsafe in file names
func SecureFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// SaveUpload writes an uploaded file into dir under a unique sanitized name
// and returns the path. The caller removes the file when done with it.
func SaveUpload(src io.Reader, dir, filename string) (string, error) {
	name := SecureFilename(filename)
	if name == "" {
		return "", errors.New("invalid file name")
	}

	path := filepath.Join(dir, uuid.New().String()+"_"+name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to save temporary file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to save temporary file: %w", err)
	}
	return path, nil
}

// RemoveFile deletes path if it exists, ignoring cleanup errors
func RemoveFile(path string) {
	if path == "" {
		return
	}
	os.Remove(path)
}

// Text extracts text from the file at path based on its extension. Returns
// the extracted text and the total (or for Word, estimated) page count.
func Text(filePath string, startPage, endPage *int) (string, int, error) {
	lower := strings.ToLower(filePath)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return PDFText(filePath, startPage, endPage)
	case strings.HasSuffix(lower, ".doc"), strings.HasSuffix(lower, ".docx"):
		return WordText(filePath, startPage, endPage)
	default:
		return "", 0, errors.New("Unsupported file type")
	}
}
