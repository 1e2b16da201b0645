// Package telegram sends alert and digest text to a Telegram chat via the
// Bot API. No Telegram SDK appears anywhere in the reference corpus, so
// this wraps the Bot API directly over net/http rather than adopting one.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const apiBase = "https://api.telegram.org/bot"

// Config holds the bot token and destination chat ID. BaseURL overrides
// the Telegram API origin; tests point it at an httptest server.
type Config struct {
	BotToken string
	ChatID   string
	BaseURL  string
}

// Service sends messages to a single configured chat.
// Nil-safe: Send is a no-op returning (nil, nil) when Service is nil.
type Service struct {
	botToken string
	chatID   string
	baseURL  string
	http     *http.Client
}

// NewService constructs a Service, or returns nil if BotToken or ChatID is
// empty (the instance runs without Telegram delivery configured).
func NewService(cfg Config) *Service {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = apiBase
	}
	return &Service{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// Send posts text to the configured chat using the given Telegram parse
// mode (typically "HTML"). Returns the Telegram message ID on success. A
// nil Service, a transport error, or an API-level failure all fail open:
// errors are logged and (nil, nil) is returned so callers never block
// alert delivery on a misbehaving sink.
func (s *Service) Send(ctx context.Context, text, parseMode string) (*int64, error) {
	if s == nil {
		slog.Warn("telegram not configured, skipping message")
		return nil, nil
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                s.chatID,
		Text:                  text,
		ParseMode:             parseMode,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding telegram payload: %w", err)
	}

	url := s.baseURL + s.botToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		slog.Error("telegram send failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	var parsed sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		slog.Error("telegram response decode failed", "error", err)
		return nil, nil
	}
	if !parsed.OK {
		slog.Error("telegram api error", "description", parsed.Description)
		return nil, nil
	}

	id := parsed.Result.MessageID
	return &id, nil
}
