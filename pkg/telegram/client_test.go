package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceNilWhenUnconfigured(t *testing.T) {
	assert.Nil(t, NewService(Config{}))
	assert.Nil(t, NewService(Config{BotToken: "x"}))
	assert.Nil(t, NewService(Config{ChatID: "y"}))
}

func TestSendOnNilServiceIsNoop(t *testing.T) {
	var s *Service
	id, err := s.Send(context.Background(), "hello", "HTML")
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestSendReturnsMessageIDOnSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "chat-1", req.ChatID)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sendMessageResponse{
			OK: true,
			Result: struct {
				MessageID int64 `json:"message_id"`
			}{MessageID: 42},
		})
	}))
	defer server.Close()

	svc := NewService(Config{BotToken: "tok", ChatID: "chat-1", BaseURL: server.URL + "/bot"})
	id, err := svc.Send(context.Background(), "hi", "HTML")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(42), *id)
}

func TestSendFailsOpenOnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sendMessageResponse{OK: false, Description: "bad token"})
	}))
	defer server.Close()

	svc := NewService(Config{BotToken: "tok", ChatID: "chat-1", BaseURL: server.URL + "/bot"})
	id, err := svc.Send(context.Background(), "hi", "HTML")
	require.NoError(t, err)
	assert.Nil(t, id)
}
