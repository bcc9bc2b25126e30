package models

// Card represents a normalized flashcard built from a raw backend card object
type Card struct {
	CardID      string                 `json:"card_id"`
	Question    string                 `json:"question"`
	CaseDetails string                 `json:"case_details"`
	CardType    string                 `json:"card_type"`
	Answer      string                 `json:"answer"`
	Explanation string                 `json:"explanation"`
	Options     []string               `json:"options"`
	Raw         map[string]interface{} `json:"raw,omitempty"`
}

// QuestionTypeSelection represents one question type the user asked for,
// paired with the difficulty group the backend should generate it at
type QuestionTypeSelection struct {
	CardType        string `json:"cardType"`
	DifficultyGroup string `json:"difficultyGroup"`
}

// UploadResult represents the outcome of extracting and uploading one source
// document, ready to feed a generation request
type UploadResult struct {
	ExtractedText string
	TotalPages    int
	S3ObjectKey   string
	S3URL         string
	Filename      string
	ContentType   string
	StartPage     *int
	EndPage       *int
}

// PresignedUpload represents the url and form fields returned by the presign
// service for a direct-to-S3 POST
type PresignedUpload struct {
	URL    string                 `json:"url"`
	Fields map[string]interface{} `json:"fields"`
}

// NotifyAdminRequest is the body of POST /api/notify-admin
type NotifyAdminRequest struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// InitDataRequest is the body of POST /api/get-telegram-user-id
type InitDataRequest struct {
	InitData string `json:"initData"`
}

// SendToTelegramRequest is the body of POST /api/send-to-telegram
type SendToTelegramRequest struct {
	Cards  []Card `json:"cards"`
	UserID string `json:"user_id"`
}

// ErrorResponse represents an error returned by the API
type ErrorResponse struct {
	Error string `json:"error"`
}
