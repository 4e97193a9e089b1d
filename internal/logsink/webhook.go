package logsink

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/opentill/cashdesk/pkg/retry"
	"github.com/sony/gobreaker/v2"
)

// WebhookSink POSTs mirror lines to an external HTTP log endpoint. Calls go
// through a circuit breaker so a dead endpoint stops costing a timeout per
// transaction; individual deliveries retry with backoff.
type WebhookSink struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
	retry   retry.Config
}

type mirrorPayload struct {
	Kind      string `json:"kind"`
	Line      string `json:"line"`
	Timestamp int64  `json:"timestamp"`
}

func NewWebhookSink(url string, timeout time.Duration) *WebhookSink {
	client := resty.New().
		SetBaseURL(url).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	breaker := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        "log-mirror",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})

	return &WebhookSink{client: client, breaker: breaker, retry: retry.DefaultConfig()}
}

func (s *WebhookSink) AppendEntry(ctx context.Context, e ledger.Entry) error {
	return s.post(ctx, mirrorPayload{
		Kind:      "entry",
		Line:      FormatEntry(e),
		Timestamp: e.Timestamp.Unix(),
	})
}

func (s *WebhookSink) AppendBatchMarker(ctx context.Context, batchKey string, ts time.Time, rowCount int) error {
	return s.post(ctx, mirrorPayload{
		Kind:      "batch",
		Line:      FormatBatchMarker(batchKey, ts, rowCount),
		Timestamp: ts.Unix(),
	})
}

func (s *WebhookSink) post(ctx context.Context, payload mirrorPayload) error {
	return retry.Do(ctx, s.retry, func() error {
		resp, err := s.breaker.Execute(func() (*resty.Response, error) {
			return s.client.R().SetContext(ctx).SetBody(payload).Post("")
		})
		if err != nil {
			return fmt.Errorf("deliver mirror line: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("deliver mirror line: endpoint returned %s", resp.Status())
		}
		return nil
	})
}
