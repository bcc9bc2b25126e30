package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quizrelay/internal/backend"
	"quizrelay/internal/cards"
	"quizrelay/internal/extract"
	"quizrelay/internal/models"
)

// HandleGenerate drives the whole generation flow: validate the selection,
// turn the input into an extracted-and-uploaded document, build the
// generation payload, and redirect to the deck page.
func (h *Handler) HandleGenerate(c *gin.Context) {
	amount := c.DefaultPostForm("amount", "low")
	difficulty := c.DefaultPostForm("difficulty", "Advanced")
	types := c.PostFormArray("question_type")
	userID := h.resolveUserID(c, c.PostForm("user_id"))
	inputMethod := c.DefaultPostForm("input_method", "file")

	// 1. Validate the question-type selection before doing any heavy work.
	if len(types) == 0 {
		h.renderError(c, "Please select at least one question type")
		return
	}
	questionTypes := cards.BuildQuestionTypes(types, difficulty)
	if len(questionTypes) == 0 {
		h.renderError(c, "Invalid question type selected")
		return
	}

	// 2. Turn the input into an extracted and uploaded document.
	var result *models.UploadResult
	if inputMethod == "text" {
		textContent := strings.TrimSpace(c.PostForm("text_content"))
		if textContent == "" {
			h.renderError(c, "Please enter some text content")
			return
		}
		if utf8.RuneCountInString(textContent) < 50 {
			h.renderError(c, "Please enter at least 50 characters of text")
			return
		}

		pdfPath, err := extract.TextToPDF(textContent, h.Config.UploadDir)
		if err != nil {
			h.fail(c, fmt.Sprintf("Error processing text: %v", err))
			return
		}
		defer extract.RemoveFile(pdfPath)

		// Run the generated PDF through the same pipeline as an upload.
		result, err = h.runUploadPipeline(c, pdfPath, "text_input.pdf", userID)
		if err != nil {
			h.fail(c, err.Error())
			return
		}
	} else {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			h.renderError(c, "Please select a valid PDF or Word file")
			return
		}
		result, err = h.processUploadedFile(c, fileHeader, userID)
		if err != nil {
			h.fail(c, err.Error())
			return
		}
	}

	if result.ExtractedText == "" {
		h.renderError(c, "Please upload a file and ensure text can be extracted")
		return
	}

	// 3. Submit the generation request and send the browser to the deck.
	payload := backend.BuildGenerationPayload(result, userID, questionTypes, amount)
	deckID, err := h.Backend.StartGeneration(c.Request.Context(), payload)
	if err != nil {
		h.fail(c, err.Error())
		return
	}

	c.Redirect(http.StatusFound, "/"+url.PathEscape(deckID))
}

// processUploadedFile saves a browser upload into the upload directory and
// runs the shared pipeline over it. The saved copy is always removed.
func (h *Handler) processUploadedFile(c *gin.Context, fileHeader *multipart.FileHeader, userID string) (*models.UploadResult, error) {
	filename := fileHeader.Filename
	if filename == "" || !extract.AllowedFile(filename) {
		return nil, errors.New("Please select a valid PDF or Word file")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("Error processing file: %v", err)
	}
	defer src.Close()

	tempPath, err := extract.SaveUpload(src, h.Config.UploadDir, filename)
	if err != nil {
		return nil, fmt.Errorf("Error processing file: %v", err)
	}
	defer extract.RemoveFile(tempPath)

	return h.runUploadPipeline(c, tempPath, filename, userID)
}

// runUploadPipeline extracts text from the file on disk, validates the
// requested page range, and uploads the source document. filename is the
// user-visible name carried into the generation payload; filePath is the
// scoped temporary copy.
func (h *Handler) runUploadPipeline(c *gin.Context, filePath, filename, userID string) (*models.UploadResult, error) {
	startPage := extract.ParsePage(c.PostForm("page_start"))
	endPage := extract.ParsePage(c.PostForm("page_end"))

	isPDF := strings.HasSuffix(strings.ToLower(filePath), ".pdf")

	totalPages := 0
	if isPDF {
		totalPages = extract.PDFPageCount(filePath)
		if totalPages == 0 {
			return nil, errors.New("Could not determine PDF page count")
		}
	}

	if startPage != nil || endPage != nil {
		total := totalPages
		if !isPDF {
			// Word documents only get a page estimate after extraction.
			_, estimated, err := extract.WordText(filePath, nil, nil)
			if err != nil {
				return nil, pipelineError(err)
			}
			total = estimated
		}
		if err := extract.ValidatePageRange(startPage, endPage, total); err != nil {
			return nil, err
		}
	}

	text, total, err := extract.Text(filePath, startPage, endPage)
	if err != nil {
		return nil, pipelineError(err)
	}
	totalPages = total

	if strings.TrimSpace(text) == "" {
		msg := "No text could be extracted from the file. "
		if isPDF {
			msg += "The PDF might be image-based (scanned), encrypted, or the selected page range might be empty. " +
				"Please ensure the PDF contains selectable text or try a different page range."
		} else {
			msg += "Please check the file or page range."
		}
		return nil, errors.New(msg)
	}

	contentType := extract.ContentType(filename)
	objectKey, s3URL, uploadErr := h.Uploader.UploadFile(c.Request.Context(), filePath, userID, contentType)
	if uploadErr != nil && h.R2 != nil {
		log.Printf("WARN: Presigned upload failed, falling back to direct R2 upload: %v", uploadErr)
		objectKey, s3URL, uploadErr = h.uploadViaR2(c.Request.Context(), filePath, filename, userID)
	}
	if uploadErr != nil {
		return nil, fmt.Errorf("Failed to upload file to S3: %v", uploadErr)
	}

	return &models.UploadResult{
		ExtractedText: text,
		TotalPages:    totalPages,
		S3ObjectKey:   objectKey,
		S3URL:         s3URL,
		Filename:      filename,
		ContentType:   contentType,
		StartPage:     startPage,
		EndPage:       endPage,
	}, nil
}

// uploadViaR2 streams the file into the R2 bucket directly, bypassing the
// presign service.
func (h *Handler) uploadViaR2(ctx context.Context, filePath, filename, userID string) (string, string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", "", err
	}
	defer file.Close()
	return h.R2.UploadDocument(ctx, userID, uuid.New(), filename, file)
}

// pipelineError maps extraction failures onto the user-facing messages the
// form renders.
func pipelineError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "No text could be extracted"):
		return err
	case strings.Contains(msg, "Failed to extract"):
		return fmt.Errorf("Error extracting text: %s. The file might be corrupted or in an unsupported format.", msg)
	default:
		return fmt.Errorf("Error processing file: %s", msg)
	}
}
