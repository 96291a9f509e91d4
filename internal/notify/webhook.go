package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrWebhookRejected is returned when the webhook answers with a non-2xx status.
var ErrWebhookRejected = errors.New("webhook rejected notification")

// Webhook posts notifications as JSON to an HTTP endpoint.
// Channels are registered locally and sent along with every notification.
type Webhook struct {
	url    string
	client *http.Client

	mu       sync.RWMutex
	channels map[string]ChannelConfig
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		channels: make(map[string]ChannelConfig),
	}
}

func (w *Webhook) Permission(context.Context) (bool, error) { return w.url != "", nil }

func (w *Webhook) RequestPermission(ctx context.Context) (bool, error) { return w.Permission(ctx) }

func (w *Webhook) RequiresChannel() bool { return true }

func (w *Webhook) EnsureChannel(_ context.Context, ch ChannelConfig) error {
	if ch.ID == "" {
		return errors.New("channel id is required")
	}
	w.mu.Lock()
	w.channels[ch.ID] = ch
	w.mu.Unlock()
	return nil
}

type webhookPayload struct {
	Title   string         `json:"title"`
	Body    string         `json:"body"`
	Channel *ChannelConfig `json:"channel,omitempty"`
	SentAt  time.Time      `json:"sent_at"`
}

func (w *Webhook) Schedule(ctx context.Context, n Notification) error {
	payload := webhookPayload{Title: n.Title, Body: n.Body, SentAt: time.Now().UTC()}
	if n.ChannelID != "" {
		w.mu.RLock()
		ch, ok := w.channels[n.ChannelID]
		w.mu.RUnlock()
		if !ok {
			return fmt.Errorf("unknown channel %q", n.ChannelID)
		}
		payload.Channel = &ch
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrWebhookRejected, resp.StatusCode)
	}
	return nil
}
