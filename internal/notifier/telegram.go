package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const defaultAPIBase = "https://api.telegram.org"

// failureNotice is the last rung of the degrade ladder.
const failureNotice = "❗ Không thể phân tích JSON phản hồi từ AI."

// TelegramNotifier delivers messages via the Telegram Bot API. Delivery
// is best-effort: missing credentials and transport failures are logged,
// never propagated to the pipeline.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client
	log      zerolog.Logger
}

// NewTelegramNotifier creates a notifier. Empty credentials are allowed;
// the notifier then degrades to a logged no-op.
func NewTelegramNotifier(botToken, chatID string, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  defaultAPIBase,
		Client:   &http.Client{Timeout: 30 * time.Second},
		log:      logger.With().Str("component", "telegram").Logger(),
	}
}

// Configured reports whether both credentials are present.
func (t *TelegramNotifier) Configured() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Send delivers a message to the configured chat, retrying transient
// failures with exponential backoff. It never returns an error.
func (t *TelegramNotifier) Send(ctx context.Context, text string) {
	if !t.Configured() {
		t.log.Warn().Msg("TELEGRAM_BOT_TOKEN or TELEGRAM_GROUP_ID missing, skipping notification")
		return
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	err := backoff.Retry(func() error {
		return t.post(ctx, text)
	}, policy)
	if err != nil {
		t.log.Error().Err(err).Msg("telegram delivery failed")
	}
}

// SendRecommendation delivers a generation response with a three-tier
// degrade ladder: formatted record, then pretty-printed raw JSON, then a
// static failure notice.
func (t *TelegramNotifier) SendRecommendation(ctx context.Context, raw map[string]any) {
	rec, err := Normalize(raw)
	if err == nil {
		t.Send(ctx, Render(rec))
		return
	}

	t.log.Warn().Err(err).Msg("recommendation shape unrecognized, sending raw payload")
	msg, err := RenderRaw(raw)
	if err != nil {
		t.log.Warn().Err(err).Msg("raw payload unrenderable, sending failure notice")
		t.Send(ctx, failureNotice)
		return
	}
	t.Send(ctx, msg)
}

func (t *TelegramNotifier) post(ctx context.Context, text string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.APIBase, t.BotToken)
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("marshal payload: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
