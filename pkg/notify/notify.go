// Package notify sends short operator messages about the gateway.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"otmqtt-bridge/pkg/config"
	"otmqtt-bridge/pkg/logger"
	"otmqtt-bridge/pkg/recovery"
)

// Notifier delivers a text message to an operator
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// New returns a circuit-guarded Telegram notifier when enabled, a log-only
// one otherwise
func New(settings config.TelegramSettings, log logger.ILogger) Notifier {
	if !settings.Enabled {
		return NewLogNotifier(log)
	}
	return NewCircuitBreakerNotifier(NewTelegram(settings.Token, settings.ChatID, log), recovery.CircuitBreakerConfig{}, log)
}

// LogNotifier writes messages to the log
type LogNotifier struct {
	log logger.ILogger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier(log logger.ILogger) *LogNotifier {
	if log == nil {
		log = logger.NewStandardLogger()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, message string) error {
	n.log.LogInfo("📣 %s", message)
	return nil
}

const telegramAPI = "https://api.telegram.org"

// Telegram posts messages through the Bot API sendMessage method
type Telegram struct {
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
	log        logger.ILogger
}

// NewTelegram creates a Telegram notifier for one chat
func NewTelegram(token, chatID string, log logger.ILogger) *Telegram {
	if log == nil {
		log = logger.NewStandardLogger()
	}
	return &Telegram{
		token:   token,
		chatID:  chatID,
		baseURL: telegramAPI,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Send(ctx context.Context, message string) error {
	form := url.Values{
		"chat_id": {t.chatID},
		"text":    {message},
	}

	reqURL := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.URL.RawQuery = form.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var tr telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("telegram: decode response: %w", err)
	}
	if !tr.OK {
		return fmt.Errorf("telegram: %s", tr.Description)
	}

	t.log.LogDebug("📣 Telegram: %s", message)
	return nil
}
