// Package telegram sends quiz decks and admin notifications through the
// Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"quizrelay/internal/config"
)

// Client is a minimal Bot API client. A nil *Client is valid and means the
// bot is not configured; callers check before use.
type Client struct {
	apiURL      string
	adminChatID string
	httpClient  *http.Client
}

// NewClient creates the bot client, or returns nil when no token is
// configured so the server runs with Telegram features disabled.
func NewClient(cfg *config.Config) *Client {
	if !cfg.TelegramEnabled() {
		return nil
	}

	log.Println("INFO: Telegram bot initialized successfully")
	return &Client{
		apiURL:      cfg.TelegramAPIURL(),
		adminChatID: cfg.AdminChatID,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SendMessage sends a text message to a chat
func (c *Client) SendMessage(ctx context.Context, chatID int64, text, parseMode string) error {
	return c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": parseMode,
	})
}

// SendPoll sends an anonymous quiz poll to a chat. An empty explanation is
// omitted from the request.
func (c *Client) SendPoll(ctx context.Context, chatID int64, question string, options []string, correctOptionID int, explanation string) error {
	payload := map[string]interface{}{
		"chat_id":           chatID,
		"question":          question,
		"options":           options,
		"is_anonymous":      true,
		"type":              "quiz",
		"correct_option_id": correctOptionID,
	}
	if explanation != "" {
		payload["explanation"] = explanation
	}
	return c.call(ctx, "sendPoll", payload)
}

// AlertAdmin sends an operational alert to the admin chat. Safe on a nil
// client; failures are logged, not returned.
func (c *Client) AlertAdmin(ctx context.Context, text string) {
	if c == nil || c.adminChatID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id": c.adminChatID,
		"text":    "⚠️ " + text,
	})
	if err != nil {
		log.Printf("WARN: Error sending admin alert: %v", err)
	}
}

// NotifyAdmin tells the admin chat that the mini app was opened. Returns
// whether the notification went through; failures are logged, not fatal.
func (c *Client) NotifyAdmin(ctx context.Context, userID, userName string) bool {
	if c == nil || c.adminChatID == "" {
		return false
	}

	name := userName
	if name == "" {
		name = "Unknown"
	}
	message := fmt.Sprintf("📱 Mini app opened\n\nUser: %s\nName: %s\n", userID, name)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":    c.adminChatID,
		"text":       message,
		"parse_mode": "HTML",
	})
	if err != nil {
		log.Printf("WARN: Error sending admin notification: %v", err)
		return false
	}
	return true
}

func (c *Client) call(ctx context.Context, method string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("telegram %s: HTTP %d", method, resp.StatusCode)
	}
	if !result.OK {
		if result.Description != "" {
			return fmt.Errorf("telegram %s: %s", method, result.Description)
		}
		return fmt.Errorf("telegram %s: HTTP %d", method, resp.StatusCode)
	}
	return nil
}
