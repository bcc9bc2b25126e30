package extract

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"notes.pdf", true},
		{"notes.PDF", true},
		{"report.docx", true},
		{"old.doc", true},
		{"image.png", false},
		{"noextension", false},
		{"trailing.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedFile(tt.filename))
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "PDF", ContentType("notes.pdf"))
	assert.Equal(t, "DOCX", ContentType("report.DOCX"))
	assert.Equal(t, "DOCX", ContentType("old.doc"))
	assert.Equal(t, "PDF", ContentType("unknown.bin"))
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		input string
		want  *int
	}{
		{"3", intPtr(3)},
		{" 7 ", intPtr(7)},
		{"007", intPtr(7)},
		{"", nil},
		{"abc", nil},
		{"1.5", nil},
		{"-2", nil},
		{"2x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParsePage(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestValidatePageRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end *int
		total      int
		wantErr    string
	}{
		{"no range", nil, nil, 10, ""},
		{"valid range", intPtr(2), intPtr(5), 10, ""},
		{"start zero", intPtr(0), nil, 10, "Start page must be at least 1"},
		{"end zero", nil, intPtr(0), 10, "End page must be at least 1"},
		{"start after end", intPtr(5), intPtr(2), 10, "Start page must be less than or equal to end page"},
		{"start past total", intPtr(11), nil, 10, "Start page (11) exceeds total pages (10)"},
		{"end past total", nil, intPtr(12), 10, "End page (12) exceeds total pages (10)"},
		{"exact bounds", intPtr(1), intPtr(10), 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePageRange(tt.start, tt.end, tt.total)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
			}
		})
	}
}

func TestSecureFilename(t *testing.T) {
	assert.Equal(t, "my_notes.pdf", SecureFilename("my notes.pdf"))
	assert.Equal(t, "passwd", SecureFilename("../../etc/passwd"))
	assert.Equal(t, "rsum.pdf", SecureFilename("résumé.pdf"))
	assert.Equal(t, "", SecureFilename("."))
}

func TestSaveUploadAndRemove(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveUpload(strings.NewReader("hello"), dir, "greeting.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_greeting.pdf"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	RemoveFile(path)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing a missing file is a no-op.
	RemoveFile(path)
	RemoveFile("")
}

func TestSaveUploadRejectsUnusableName(t *testing.T) {
	_, err := SaveUpload(strings.NewReader("x"), t.TempDir(), "..")
	assert.Error(t, err)
}

func TestTextToPDFWritesDocument(t *testing.T) {
	dir := t.TempDir()

	path, err := TextToPDF("First paragraph.\n\nSecond paragraph with more words in it.", dir)
	require.NoError(t, err)
	defer RemoveFile(path)

	assert.True(t, strings.HasSuffix(path, "_text_input.pdf"))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "%PDF"))
}

func TestWordTextExtractsParagraphs(t *testing.T) {
	path := writeDocx(t, []string{"First paragraph", "Second paragraph", "   ", "Third paragraph"})

	text, pages, err := WordText(path, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.Equal(t, "First paragraph\n\nSecond paragraph\n\nThird paragraph", text)
}

func TestWordTextPageRange(t *testing.T) {
	paras := make([]string, 120)
	for i := range paras {
		paras[i] = fmt.Sprintf("Paragraph %d", i+1)
	}
	path := writeDocx(t, paras)

	// 120 paragraphs estimate to 2 pages of 60 paragraphs each.
	text, pages, err := WordText(path, intPtr(1), intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, 2, pages)

	got := strings.Split(text, "\n\n")
	require.Len(t, got, 60)
	assert.Equal(t, "Paragraph 1", got[0])
	assert.Equal(t, "Paragraph 60", got[59])
}

func TestWordTextRejectsNonDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.doc")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

	_, _, err := WordText(path, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to extract Word text")
}

func writeDocx(t *testing.T, paragraphs []string) string {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, para := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>`)
		body.WriteString(para)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	path := filepath.Join(t.TempDir(), "test.docx")
	out, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(out)
	doc, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(body.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	return path
}

func intPtr(n int) *int {
	return &n
}
