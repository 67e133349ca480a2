package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const senderTimeout = 10 * time.Second

// TelegramNotifier delivers alerts through the Telegram Bot API as
// MarkdownV2 messages.
type TelegramNotifier struct {
	chatID string
	apiURL string
	client *http.Client
}

// NewTelegramNotifier builds a notifier for one bot token and chat id.
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		chatID: chatID,
		apiURL: "https://api.telegram.org/bot" + botToken + "/sendMessage",
		client: &http.Client{Timeout: senderTimeout},
	}
}

func (t *TelegramNotifier) Send(ctx context.Context, alert Alert) error {
	heading := alert.Title
	if alert.Symbol != "" {
		heading += " " + alert.Symbol
	}
	text := fmt.Sprintf("%s *%s*\n\n%s",
		levelEmoji(alert.Level), escapeMarkdownV2(heading), escapeMarkdownV2(alert.Message))

	err := postJSON(ctx, t.client, t.apiURL, map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "MarkdownV2",
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	log.Printf("[telegram] sent alert: %s", alert.Title)
	return nil
}

func levelEmoji(l AlertLevel) string {
	switch l {
	case AlertWarning:
		return "⚠️"
	case AlertCritical:
		return "🚨"
	default:
		return "ℹ️"
	}
}

// escapeMarkdownV2 backslash-escapes every character Telegram treats
// as markup in MarkdownV2 mode.
func escapeMarkdownV2(s string) string {
	const specials = `_*[]()~` + "`" + `>#+-=|{}.!`
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// postJSON POSTs a JSON payload and treats any non-2xx status as an
// error. Shared by the HTTP-backed notifiers.
func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
