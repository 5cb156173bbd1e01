package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel/starfield/internal/models"
	"github.com/gabriel/starfield/internal/rating"
)

type Message struct {
	Title   string         `json:"title"`
	Body    string         `json:"body"`
	Context map[string]any `json:"context,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, message Message) error
}

type NoopNotifier struct{}

func (n NoopNotifier) Notify(_ context.Context, _ Message) error {
	return nil
}

// New returns a webhook notifier for a non-empty URL and a no-op otherwise.
func New(webhookURL string) (Notifier, error) {
	if strings.TrimSpace(webhookURL) == "" {
		return NoopNotifier{}, nil
	}
	return NewWebhookNotifier(webhookURL)
}

type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(webhookURL string) (*WebhookNotifier, error) {
	trimmed := strings.TrimSpace(webhookURL)
	if trimmed == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	return &WebhookNotifier{
		url: trimmed,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (w *WebhookNotifier) Notify(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook notification: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", res.StatusCode)
	}

	return nil
}

// RatingChanged describes a stored rating change. The body carries the same
// rendering the listings show.
func RatingChanged(entry models.Entry, field models.Field, previous, current rating.Value, settings models.Settings) Message {
	cfg := field.RatingConfig(settings)
	return Message{
		Title: fmt.Sprintf("%s rated", entry.Title),
		Body:  fmt.Sprintf("%s: %s", field.Name, rating.Render(current, cfg)),
		Context: map[string]any{
			"entryId":  entry.ID,
			"field":    field.Handle,
			"maxStars": field.MaxStars,
			"previous": previous,
			"current":  current,
		},
	}
}
