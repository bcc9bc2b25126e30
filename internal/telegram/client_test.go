package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizrelay/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		apiURL:      srv.URL,
		adminChatID: "854",
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}, srv
}

func TestNewClientDisabledWithoutToken(t *testing.T) {
	cfg := &config.Config{}
	assert.Nil(t, NewClient(cfg))
}

func TestSendPollPayload(t *testing.T) {
	var got map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sendPoll", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true}`))
	})

	err := client.SendPoll(context.Background(), 99, "Q?", []string{"A", "B"}, 1, "")
	require.NoError(t, err)

	assert.Equal(t, float64(99), got["chat_id"])
	assert.Equal(t, "Q?", got["question"])
	assert.Equal(t, true, got["is_anonymous"])
	assert.Equal(t, "quiz", got["type"])
	assert.Equal(t, float64(1), got["correct_option_id"])
	_, hasExplanation := got["explanation"]
	assert.False(t, hasExplanation)
}

func TestSendMessageAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok": false, "description": "Bad Request: chat not found"}`))
	})

	err := client.SendMessage(context.Background(), 1, "hello", "Markdown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestNotifyAdmin(t *testing.T) {
	var got map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok": true}`))
	})

	ok := client.NotifyAdmin(context.Background(), "user-123", "")
	assert.True(t, ok)
	assert.Equal(t, "854", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Contains(t, got["text"], "user-123")
	assert.Contains(t, got["text"], "Name: Unknown")
}

func TestAlertAdmin(t *testing.T) {
	var got map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok": true}`))
	})

	client.AlertAdmin(context.Background(), "Upload failed: file too large")
	assert.Equal(t, "854", got["chat_id"])
	assert.Equal(t, "⚠️ Upload failed: file too large", got["text"])

	// Nil and unconfigured clients are no-ops.
	var nilClient *Client
	nilClient.AlertAdmin(context.Background(), "ignored")
	(&Client{apiURL: "http://unused"}).AlertAdmin(context.Background(), "ignored")
}

func TestNotifyAdminDisabled(t *testing.T) {
	var nilClient *Client
	assert.False(t, nilClient.NotifyAdmin(context.Background(), "u", "n"))

	client := &Client{apiURL: "http://unused", httpClient: http.DefaultClient}
	assert.False(t, client.NotifyAdmin(context.Background(), "u", "n"))
}

func TestUserIDFromInitData(t *testing.T) {
	userJSON := `{"id":853334312,"first_name":"John","username":"jdoe"}`
	initData := "query_id=AAH4x&user=" + url.QueryEscape(userJSON) + "&auth_date=1700000000&hash=abc"

	id, ok := UserIDFromInitData(initData)
	require.True(t, ok)
	assert.Equal(t, "853334312", id)
}

func TestUserIDFromInitDataRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		initData string
	}{
		{"empty", ""},
		{"no user field", "query_id=AAH4x&auth_date=1"},
		{"user not json", "user=notjson"},
		{"missing id", "user=" + url.QueryEscape(`{"first_name":"John"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := UserIDFromInitData(tt.initData)
			assert.False(t, ok)
		})
	}
}
