package r2

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"quizrelay/internal/upload"
)

// Client uploads source documents directly to a Cloudflare R2 bucket. It is
// the fallback path when the backend's presign service is unavailable.
type Client struct {
	s3Client   *s3.Client
	bucketName string
	publicURL  string
}

// NewClient creates an R2 client from environment variables. It returns
// (nil, nil) when the R2 variables are not fully configured, so the server
// can run with the fallback disabled.
func NewClient() (*Client, error) {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	bucketName := os.Getenv("R2_BUCKET_NAME")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	secretAccessKey := os.Getenv("R2_SECRET_ACCESS_KEY")
	publicURL := os.Getenv("R2_PUBLIC_URL")

	if accountID == "" || bucketName == "" || accessKeyID == "" || secretAccessKey == "" || publicURL == "" {
		log.Println("WARN: Cloudflare R2 environment variables not fully configured (CLOUDFLARE_ACCOUNT_ID, R2_BUCKET_NAME, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_PUBLIC_URL). Direct upload fallback disabled.")
		return nil, nil
	}

	// R2 endpoint format: https://<ACCOUNT_ID>.r2.cloudflarestorage.com
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	log.Printf("INFO: R2 client initialized for bucket '%s'", bucketName)
	return &Client{
		s3Client:   s3.NewFromConfig(cfg),
		bucketName: bucketName,
		publicURL:  publicURL,
	}, nil
}

// UploadDocument stores a source document under
// "uploads/<userID>/<docID>/<filename>" and returns the object key and the
// public URL of the uploaded object.
func (c *Client) UploadDocument(ctx context.Context, userID string, docID uuid.UUID, filename string, content io.Reader) (string, string, error) {
	if c == nil || c.s3Client == nil {
		return "", "", fmt.Errorf("R2 client not initialized, skipping upload")
	}

	objectKey := fmt.Sprintf("uploads/%s/%s/%s", userID, docID.String(), filename)

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        content,
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String(upload.MIMEType(filename)),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file to R2 (key: %s): %w", objectKey, err)
	}

	baseURL, err := url.Parse(c.publicURL)
	if err != nil {
		log.Printf("ERROR: Failed to parse R2 public base URL '%s': %v", c.publicURL, err)
		return "", "", fmt.Errorf("invalid R2 public base URL configured")
	}
	baseURL.Path = path.Join(baseURL.Path, objectKey)

	publicFileURL := baseURL.String()
	log.Printf("INFO: Successfully uploaded file to R2: %s", publicFileURL)
	return objectKey, publicFileURL, nil
}
