package config

import (
	"log"
	"os"
	"time"
)

// Config carries every tunable the server reads from the environment. It is
// loaded once in main and passed by reference; no package reads the
// environment after startup.
type Config struct {
	// Remote backend endpoints, derived from APIBaseURL.
	APIBaseURL        string
	GenerateEndpoint  string
	CardsEndpoint     string
	UploadURLEndpoint string

	// Telegram integration. Empty token disables the bot, empty chat id
	// disables admin notifications.
	TelegramBotToken string
	AdminChatID      string

	// Fallback user id for requests that carry none.
	DefaultUserID string

	// Local scratch space for uploaded files.
	UploadDir      string
	MaxUploadBytes int64

	// Outbound HTTP budgets.
	RequestTimeout time.Duration
	UploadTimeout  time.Duration

	// Stream relay budgets.
	PollInterval      time.Duration
	PollTimeout       time.Duration
	MaxIdlePolls      int
	MaxStreamDuration time.Duration
	HeartbeatInterval time.Duration

	SessionSecret string
	FrontendURL   string
	Port          string
}

// Load builds the Config from the environment. Optional integrations degrade
// with a warning instead of failing startup.
func Load() *Config {
	base := getEnv("API_BASE_URL", "https://cbackend.jungleai.com")

	cfg := &Config{
		APIBaseURL:        base,
		GenerateEndpoint:  base + "/generate_content/run_all_generations_for_file_or_url",
		CardsEndpoint:     base + "/cards/get_all_cards_data_for_deck_and_subdecks",
		UploadURLEndpoint: base + "/file_or_url/generate_url_for_file_upload_to_s3",

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AdminChatID:      os.Getenv("ADMIN_CHAT_ID"),
		DefaultUserID:    os.Getenv("DEFAULT_USER_ID"),

		UploadDir:      getEnv("UPLOAD_FOLDER", "uploads"),
		MaxUploadBytes: 16 << 20,

		RequestTimeout: 30 * time.Second,
		UploadTimeout:  60 * time.Second,

		PollInterval:      2 * time.Second,
		PollTimeout:       10 * time.Second,
		MaxIdlePolls:      30,
		MaxStreamDuration: 5 * time.Minute,
		HeartbeatInterval: 15 * time.Second,

		SessionSecret: os.Getenv("SESSION_SECRET"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		Port:          getEnv("PORT", "8080"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("WARN: TELEGRAM_BOT_TOKEN not set, Telegram features disabled")
	}
	if cfg.AdminChatID == "" {
		log.Println("WARN: ADMIN_CHAT_ID not set, admin notifications disabled")
	}
	if cfg.SessionSecret == "" {
		log.Println("WARN: SESSION_SECRET not set, using insecure development key")
		cfg.SessionSecret = "dev-session-secret"
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("ERROR: Failed to create upload directory %s: %v", cfg.UploadDir, err)
	}

	return cfg
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// TelegramAPIURL returns the Bot API base for this bot.
func (c *Config) TelegramAPIURL() string {
	return "https://api.telegram.org/bot" + c.TelegramBotToken
}

// BackendHeaders returns the header set sent with every backend request. The
// backend expects browser-shaped traffic, so the values mirror what its web
// client sends.
func BackendHeaders() map[string]string {
	return map[string]string{
		"accept":             "*/*",
		"accept-language":    "ar-EG,ar;q=0.9,en-US;q=0.8,en;q=0.7",
		"content-type":       "application/json",
		"origin":             "https://app.jungleai.com",
		"priority":           "u=1, i",
		"referer":            "https://app.jungleai.com/",
		"sec-ch-ua":          `"Google Chrome";v="143", "Chromium";v="143", "Not A(Brand";v="24"`,
		"sec-ch-ua-mobile":   "?0",
		"sec-ch-ua-platform": `"Windows"`,
		"sec-fetch-dest":     "empty",
		"sec-fetch-mode":     "cors",
		"sec-fetch-site":     "same-site",
		"user-agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
