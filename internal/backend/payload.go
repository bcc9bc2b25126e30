package backend

import (
	"github.com/google/uuid"

	"quizrelay/internal/models"
)

// BuildGenerationPayload assembles the request body for the generation
// endpoint. The key set and zero values are a wire contract with the
// backend; every field is sent even when unused for document uploads.
func BuildGenerationPayload(result *models.UploadResult, userID string, questionTypes []models.QuestionTypeSelection, amount string) map[string]interface{} {
	startPage := 1
	if result.StartPage != nil {
		startPage = *result.StartPage
	}
	endPage := result.TotalPages
	if result.EndPage != nil {
		endPage = *result.EndPage
	}

	return map[string]interface{}{
		"should_run_generations_with_new_architecture": true,
		"pdf_pages_text_array":                         []string{result.ExtractedText},
		"page_text_sentences_array":                    []string{result.ExtractedText},
		"page_url":                                     result.S3URL,
		"page_title":                                   "",
		"content_medium_type":                          result.ContentType,
		"uploaded_file_s3_object_key":                  result.S3ObjectKey,
		"user_id":                                      userID,
		"question_types_user_selected_to_generate":     questionTypes,
		"session_id":                                   uuid.New().String(),
		"platform":                                     "Web",
		"youtubeTranscriptStartMinute":                 0,
		"youtubeTranscriptEndMinute":                   0,
		"pdfStartingPage":                              startPage,
		"pdfEndingPage":                                endPage,
		"did_user_input_url_for_pdf":                   false,
		"level_for_amount_of_cards_to_generate":        amount,
		"selected_images_for_occlusion":                []string{},
		"pdf_file_name":                                result.Filename,
		"video_or_audio_starting_minute":               0,
		"video_or_audio_ending_minute":                 nil,
		"video_or_audio_num_minutes":                   nil,
		"deck_id_to_save_cards_to":                     nil,
		"pdf_images_object_list_doc_id":                uuid.New().String(),
		"pdf_num_pages":                                result.TotalPages,
		"didGetGeneratedWithMultipleUploadedDocuments": false,
	}
}
