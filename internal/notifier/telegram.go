package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	telegramTimeout = 10 * time.Second
	// Telegram rejects messages longer than 4096 characters.
	messageLimit = 4096
	// maxLines caps the change lines in one message.
	maxLines = 25
)

var telegramBaseURL = "https://api.telegram.org/bot"

// TelegramNotifier sends one HTML message per run with changes to a chat.
type TelegramNotifier struct {
	botToken   string
	chatID     string
	httpClient *http.Client
}

// NewTelegramNotifier creates a notifier for the given bot and chat.
func NewTelegramNotifier(botToken, chatID string) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("chat ID is required")
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		httpClient: &http.Client{
			Timeout: telegramTimeout,
		},
	}, nil
}

// NewTelegramNotifierFromEnv reads TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.
func NewTelegramNotifierFromEnv() (*TelegramNotifier, error) {
	return NewTelegramNotifier(os.Getenv("TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID"))
}

// Notify sends the run summary. Runs without changes send nothing.
func (n *TelegramNotifier) Notify(ctx context.Context, summary *Summary) error {
	if !summary.HasChanges() {
		return nil
	}
	if err := n.send(ctx, FormatMessage(summary)); err != nil {
		return fmt.Errorf("telegram notification for run %s: %w", summary.RunID, err)
	}
	return nil
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s%s/sendMessage", telegramBaseURL, n.botToken)

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}

	return nil
}

// FormatMessage renders a summary as Telegram HTML.
func FormatMessage(summary *Summary) string {
	var lines []string
	if summary.Changes != nil {
		for _, ev := range summary.Changes.NewEvents {
			lines = append(lines, fmt.Sprintf("🆕 %s %s  <b>%s</b> - %s",
				html.EscapeString(ev.Date), ev.Event.Time,
				html.EscapeString(ev.Event.Sport), html.EscapeString(ev.Event.Event)))
		}
		for _, ch := range summary.Changes.StatusChanges {
			lines = append(lines, fmt.Sprintf("⏱️ %s %s  <b>%s</b> - %s: %s → %s",
				html.EscapeString(ch.Date), ch.Event.Time,
				html.EscapeString(ch.Event.Sport), html.EscapeString(ch.Event.Event),
				html.EscapeString(ch.From), html.EscapeString(ch.Event.Status)))
		}
	}

	var msg strings.Builder
	msg.WriteString("❄️ <b>Milano Cortina 2026 schedule update</b>\n\n")
	for i, line := range lines {
		if i == maxLines {
			fmt.Fprintf(&msg, "<i>…and %d more</i>\n", len(lines)-maxLines)
			break
		}
		msg.WriteString(line + "\n")
	}

	if len(summary.Athletes) > 0 && summary.Nationality != "" {
		fmt.Fprintf(&msg, "\n<b>%s athletes</b>\n", html.EscapeString(summary.Nationality))
		for _, day := range summary.Athletes {
			for _, a := range day.Athletes {
				fmt.Fprintf(&msg, "%s %s  %s (%s)\n", html.EscapeString(day.Date), a.Time,
					html.EscapeString(a.Athlete), html.EscapeString(a.Sport))
			}
		}
	}

	msg.WriteString("\n#MilanoCortina2026")

	text := msg.String()
	if r := []rune(text); len(r) > messageLimit {
		text = string(r[:messageLimit-1]) + "…"
	}
	return text
}
