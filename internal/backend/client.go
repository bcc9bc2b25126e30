// Package backend is the client for the remote generation service: it
// submits generation requests and fetches the cards a deck has so far.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"quizrelay/internal/config"
	"quizrelay/internal/httpclient"
)

// Client talks to the generation backend
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	retry      httpclient.RetryConfig
}

// NewClient creates a backend client with pooled connections and the
// standard retry policy.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpclient.New(cfg.RequestTimeout, 20),
		retry:      httpclient.BackendRetryConfig(),
	}
}

// StartGeneration submits a generation payload and returns the deck id the
// backend will fill with cards.
func (c *Client) StartGeneration(ctx context.Context, payload map[string]interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, err := httpclient.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.cfg.GenerateEndpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpclient.SetHeaders(req, config.BackendHeaders())
		return req, nil
	})
	if err != nil {
		log.Printf("ERROR: Generation request failed: %v", err)
		return "", fmt.Errorf("Generation request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("ERROR: Generation request failed: HTTP %d", resp.StatusCode)
		return "", fmt.Errorf("Generation request failed: HTTP %d", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Printf("ERROR: Invalid response from generation API: %v", err)
		return "", errors.New("Invalid response from generation API")
	}

	deckID := idString(data["deck_data_id"])
	if deckID == "" {
		log.Println("WARN: No deck_id returned from generation API")
		return "", errors.New("No deck id returned from generation API")
	}
	return deckID, nil
}

// FetchDeckCards retrieves the raw card objects generated for a deck so
// far. timeout bounds the whole call including retries; zero means the
// client default applies per attempt.
func (c *Client) FetchDeckCards(ctx context.Context, deckID, userID string, timeout time.Duration) ([]map[string]interface{}, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	body, err := json.Marshal(map[string]string{"user_id": userID})
	if err != nil {
		return nil, err
	}

	resp, err := httpclient.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.cfg.CardsEndpoint+"/"+deckID, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpclient.SetHeaders(req, config.BackendHeaders())
		return req, nil
	})
	if err != nil {
		if httpclient.IsTimeout(err) {
			log.Printf("WARN: Timeout fetching cards for deck %s", deckID)
		} else {
			log.Printf("WARN: Failed to fetch cards for deck %s: %v", deckID, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("HTTP %d", resp.StatusCode)
		log.Printf("WARN: Failed to fetch cards for deck %s: %v", deckID, err)
		return nil, err
	}

	var data struct {
		AllCardsForDeck            []map[string]interface{} `json:"all_cards_for_deck"`
		AllCardsForDeckAndSubdecks []map[string]interface{} `json:"all_cards_for_deck_and_subdecks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Printf("WARN: Failed to decode cards for deck %s: %v", deckID, err)
		return nil, fmt.Errorf("decoding cards response: %w", err)
	}

	cards := data.AllCardsForDeck
	if len(cards) == 0 {
		cards = data.AllCardsForDeckAndSubdecks
	}
	if cards == nil {
		cards = []map[string]interface{}{}
	}
	return cards, nil
}

func idString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
