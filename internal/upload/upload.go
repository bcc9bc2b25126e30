// Package upload implements the presigned S3 POST protocol the backend uses
// for source documents: ask the presign service for a URL and form fields,
// then POST the file to S3 with those fields.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"quizrelay/internal/config"
	"quizrelay/internal/httpclient"
	"quizrelay/internal/models"
)

// Client uploads files through the backend's presign service
type Client struct {
	cfg           *config.Config
	presignClient *http.Client
	s3Client      *http.Client
	retry         httpclient.RetryConfig
}

// NewClient creates an upload client with pooled connections. Presign calls
// run on the request timeout, the S3 POST on the longer upload timeout.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:           cfg,
		presignClient: httpclient.New(cfg.RequestTimeout, 10),
		s3Client:      httpclient.New(cfg.UploadTimeout, 10),
		retry:         httpclient.UploadRetryConfig(),
	}
}

// MIMEType determines the MIME type from the file extension
func MIMEType(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case strings.HasSuffix(lower, ".doc"):
		return "application/msword"
	default:
		return "application/octet-stream"
	}
}

// GetUploadURL asks the presign service for an upload URL and form fields
func (c *Client) GetUploadURL(ctx context.Context, fileName, userID, contentMediumType string) (*models.PresignedUpload, error) {
	body, err := json.Marshal(map[string]string{
		"file_name":           fileName,
		"user_id":             userID,
		"content_medium_type": contentMediumType,
	})
	if err != nil {
		return nil, err
	}

	resp, err := httpclient.Do(ctx, c.presignClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.cfg.UploadURLEndpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpclient.SetHeaders(req, config.BackendHeaders())
		return req, nil
	})
	if err != nil {
		if httpclient.IsTimeout(err) {
			log.Printf("ERROR: Timeout getting upload URL for file: %s", fileName)
			return nil, errors.New("Request timeout while getting upload URL")
		}
		log.Printf("ERROR: Failed to get upload URL: %v", err)
		return nil, fmt.Errorf("Failed to get upload URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("ERROR: Failed to get upload URL: HTTP %d", resp.StatusCode)
		return nil, fmt.Errorf("Failed to get upload URL: HTTP %d", resp.StatusCode)
	}

	var presigned models.PresignedUpload
	if err := json.NewDecoder(resp.Body).Decode(&presigned); err != nil {
		log.Printf("ERROR: Invalid response format from upload URL API")
		return nil, errors.New("Invalid response format from API")
	}
	if presigned.URL == "" || presigned.Fields == nil {
		log.Printf("ERROR: Invalid response format from upload URL API")
		return nil, errors.New("Invalid response format from API")
	}

	return &presigned, nil
}

// PostToS3 uploads the file with a multipart POST against the presigned URL.
// Returns the S3 object key and the public URL for the uploaded object.
func (c *Client) PostToS3(ctx context.Context, presigned *models.PresignedUpload, filePath, fileName string) (string, string, error) {
	if len(presigned.Fields) == 0 {
		log.Printf("ERROR: No fields received in upload response")
		return "", "", errors.New("No fields received in upload response")
	}
	if presigned.URL == "" {
		log.Printf("ERROR: No URL received in upload response")
		return "", "", errors.New("No URL received in upload response")
	}

	objectKey := fieldString(presigned.Fields, "key")
	mimeType := MIMEType(fileName)

	// The request body is rebuilt per attempt so retries resend the file.
	buildRequest := func() (*http.Request, error) {
		file, err := os.Open(filePath)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for _, name := range []string{"key", "AWSAccessKeyId", "policy", "signature"} {
			if v := fieldString(presigned.Fields, name); v != "" {
				if err := writer.WriteField(name, v); err != nil {
					return nil, err
				}
			}
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
		header.Set("Content-Type", mimeType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequest(http.MethodPost, presigned.URL, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req, nil
	}

	resp, err := httpclient.Do(ctx, c.s3Client, c.retry, buildRequest)
	if err != nil {
		if httpclient.IsTimeout(err) {
			log.Printf("ERROR: Timeout uploading file to S3: %s", fileName)
			return "", "", errors.New("Upload timeout. File may be too large.")
		}
		log.Printf("ERROR: Failed to upload file to S3: %v", err)
		return "", "", fmt.Errorf("Failed to upload file to S3: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("ERROR: Failed to upload file to S3: HTTP %d", resp.StatusCode)
		return "", "", fmt.Errorf("Failed to upload file to S3: HTTP %d", resp.StatusCode)
	}

	s3URL := ""
	if objectKey != "" {
		s3URL = strings.TrimRight(presigned.URL, "/") + "/" + url.PathEscape(objectKey)
	}
	return objectKey, s3URL, nil
}

// UploadFile runs the presign flow end to end for a PDF or Word file on
// disk. The content medium type is corrected for Word files named with a
// .doc or .docx extension.
func (c *Client) UploadFile(ctx context.Context, filePath, userID, contentMediumType string) (string, string, error) {
	if _, err := os.Stat(filePath); err != nil {
		log.Printf("ERROR: File not found: %s", filePath)
		return "", "", fmt.Errorf("File not found: %s", filePath)
	}

	fileName := filepath.Base(filePath)

	lower := strings.ToLower(fileName)
	if contentMediumType == "PDF" && !strings.HasSuffix(lower, ".pdf") {
		if strings.HasSuffix(lower, ".doc") || strings.HasSuffix(lower, ".docx") {
			contentMediumType = "DOCX"
		}
	}

	presigned, err := c.GetUploadURL(ctx, fileName, userID, contentMediumType)
	if err != nil {
		return "", "", err
	}
	return c.PostToS3(ctx, presigned, filePath, fileName)
}

func fieldString(fields map[string]interface{}, name string) string {
	v, ok := fields[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
