package logsink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/redis/go-redis/v9"
)

// DefaultMirrorStream is the stream the mirror worker consumes.
const DefaultMirrorStream = "cashdesk:mirror"

// RedisSink publishes mirror lines to a Redis stream. A separate worker
// (cmd/mirror) drains the stream into the actual human-readable log.
type RedisSink struct {
	client *redis.Client
	stream string
}

func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	if stream == "" {
		stream = DefaultMirrorStream
	}
	return &RedisSink{client: client, stream: stream}
}

func (s *RedisSink) AppendEntry(ctx context.Context, e ledger.Entry) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"kind":           "entry",
			"line":           FormatEntry(e),
			"transaction_id": e.TransactionID.String(),
			"timestamp":      e.Timestamp.Unix(),
		},
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("publish mirror entry: %w", err)
	}
	return nil
}

func (s *RedisSink) AppendBatchMarker(ctx context.Context, batchKey string, ts time.Time, rowCount int) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"kind":      "batch",
			"line":      FormatBatchMarker(batchKey, ts, rowCount),
			"batch_key": batchKey,
			"rows":      rowCount,
			"timestamp": ts.Unix(),
		},
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("publish mirror batch marker: %w", err)
	}
	return nil
}

// MirrorConsumer reads mirror lines from the stream with a consumer group.
type MirrorConsumer struct {
	client        *redis.Client
	stream        string
	group         string
	consumer      string
	batchSize     int64
	blockDuration time.Duration
}

func NewMirrorConsumer(
	client *redis.Client,
	stream string,
	group string,
	consumer string,
	batchSize int64,
	blockDuration time.Duration,
) *MirrorConsumer {
	if stream == "" {
		stream = DefaultMirrorStream
	}
	return &MirrorConsumer{
		client:        client,
		stream:        stream,
		group:         group,
		consumer:      consumer,
		batchSize:     batchSize,
		blockDuration: blockDuration,
	}
}

func (c *MirrorConsumer) CreateGroup(ctx context.Context) error {
	// Create stream if it doesn't exist
	const busyGroupMsg = "BUSYGROUP"
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), busyGroupMsg) {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

func (c *MirrorConsumer) Read(ctx context.Context) ([]redis.XStream, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    c.batchSize,
		Block:    c.blockDuration,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			// No new messages
			return nil, nil
		}
		return nil, fmt.Errorf("read mirror stream: %w", err)
	}
	return streams, nil
}

func (c *MirrorConsumer) Ack(ctx context.Context, messageID string) error {
	if err := c.client.XAck(ctx, c.stream, c.group, messageID).Err(); err != nil {
		return fmt.Errorf("ack mirror message: %w", err)
	}
	return nil
}
