package upload

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizrelay/internal/config"
	"quizrelay/internal/models"
)

func testConfig(presignURL string) *config.Config {
	return &config.Config{
		UploadURLEndpoint: presignURL,
		RequestTimeout:    2 * time.Second,
		UploadTimeout:     2 * time.Second,
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "application/pdf", MIMEType("notes.PDF"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", MIMEType("report.docx"))
	assert.Equal(t, "application/msword", MIMEType("old.doc"))
	assert.Equal(t, "application/octet-stream", MIMEType("data.bin"))
}

func TestUploadFileFlow(t *testing.T) {
	filePath := writeTempFile(t, "notes.pdf", "%PDF fake content")

	s3 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "uploads/u1/notes.pdf", r.FormValue("key"))
		assert.Equal(t, "AKIAEXAMPLE", r.FormValue("AWSAccessKeyId"))
		assert.Equal(t, "policy-doc", r.FormValue("policy"))
		assert.Equal(t, "sig", r.FormValue("signature"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "notes.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "%PDF fake content", string(content))

		w.WriteHeader(http.StatusNoContent)
	}))
	defer s3.Close()

	presign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "https://app.jungleai.com", r.Header.Get("origin"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "notes.pdf", body["file_name"])
		assert.Equal(t, "u1", body["user_id"])
		assert.Equal(t, "PDF", body["content_medium_type"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"url": s3.URL,
			"fields": map[string]string{
				"key":            "uploads/u1/notes.pdf",
				"AWSAccessKeyId": "AKIAEXAMPLE",
				"policy":         "policy-doc",
				"signature":      "sig",
			},
		})
	}))
	defer presign.Close()

	client := NewClient(testConfig(presign.URL))
	key, s3URL, err := client.UploadFile(context.Background(), filePath, "u1", "PDF")
	require.NoError(t, err)
	assert.Equal(t, "uploads/u1/notes.pdf", key)
	assert.Equal(t, s3.URL+"/uploads%2Fu1%2Fnotes.pdf", s3URL)
}

func TestUploadFileFixesWordContentType(t *testing.T) {
	filePath := writeTempFile(t, "essay.docx", "fake docx")

	var gotMediumType string
	presign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotMediumType = body["content_medium_type"]
		// Answer with something unusable so the flow stops after presign.
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer presign.Close()

	client := NewClient(testConfig(presign.URL))
	_, _, err := client.UploadFile(context.Background(), filePath, "u1", "PDF")
	require.Error(t, err)
	assert.Equal(t, "DOCX", gotMediumType)
}

func TestUploadFileMissingFile(t *testing.T) {
	client := NewClient(testConfig("http://unused"))
	_, _, err := client.UploadFile(context.Background(), "/nonexistent/file.pdf", "u1", "PDF")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File not found:")
}

func TestGetUploadURLInvalidResponse(t *testing.T) {
	presign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
	}))
	defer presign.Close()

	client := NewClient(testConfig(presign.URL))
	_, err := client.GetUploadURL(context.Background(), "notes.pdf", "u1", "PDF")
	require.Error(t, err)
	assert.Equal(t, "Invalid response format from API", err.Error())
}

func TestPostToS3RequiresFieldsAndURL(t *testing.T) {
	client := NewClient(testConfig("http://unused"))

	_, _, err := client.PostToS3(context.Background(), &models.PresignedUpload{
		URL:    "http://example.com",
		Fields: map[string]interface{}{},
	}, "ignored", "ignored.pdf")
	require.Error(t, err)
	assert.Equal(t, "No fields received in upload response", err.Error())

	_, _, err = client.PostToS3(context.Background(), &models.PresignedUpload{
		URL:    "",
		Fields: map[string]interface{}{"key": "k"},
	}, "ignored", "ignored.pdf")
	require.Error(t, err)
	assert.Equal(t, "No URL received in upload response", err.Error())
}
