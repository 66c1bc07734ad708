package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/guilhermexp/memoria/internal/db"
)

// WebhookSink delivers events to HTTP subscribers registered in the
// webhook_subscriptions table. Delivery is best effort: failures are
// logged, never retried, and never surfaced to the search path.
type WebhookSink struct {
	db     *db.DB
	client *http.Client
	logger *slog.Logger
}

// NewWebhookSink creates a sink backed by the given database.
func NewWebhookSink(database *db.DB, logger *slog.Logger) *WebhookSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookSink{
		db:     database,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Handle implements Subscriber. It runs on the bus's delivery goroutine,
// so blocking on HTTP here is fine.
func (s *WebhookSink) Handle(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	urls, err := s.subscriptions(ctx, ev.OrgID, ev.Type)
	if err != nil {
		s.logger.Warn("loading webhook subscriptions", "error", err)
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	for _, url := range urls {
		if err := s.post(ctx, url, payload); err != nil {
			s.logger.Warn("webhook delivery failed", "url", url, "error", err)
		}
	}
}

// subscriptions returns the webhook URLs for an org whose event filter is
// empty or matches the event type.
func (s *WebhookSink) subscriptions(ctx context.Context, orgID, eventType string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, event_filter FROM webhook_subscriptions WHERE org_id = ?`, orgID)
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url, filter string
		if err := rows.Scan(&url, &filter); err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		if filter == "" || filter == eventType {
			urls = append(urls, url)
		}
	}
	return urls, rows.Err()
}

func (s *WebhookSink) post(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
