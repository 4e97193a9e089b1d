package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/opentill/cashdesk/internal/bootstrap"
	"github.com/opentill/cashdesk/internal/logsink"
)

// readErrorBackoff is how long the drain loop waits after a failed stream
// read before retrying, so a down Redis is not hammered in a tight loop.
const readErrorBackoff = 1 * time.Second

// The mirror worker drains the Redis mirror stream into an append-only text
// log, one formatted line per committed transaction or batch marker.
func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "mirror.log", "Path to the append-only mirror log")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "cashdesk-mirror", "cashdesk_mirror")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if app.Redis == nil {
		app.Logger.Fatal().Msg("mirror worker requires mirror.sink=redis")
	}

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		app.Logger.Fatal().Err(err).Str("path", outPath).Msg("Failed to open mirror log")
	}
	defer out.Close()

	mirrorCfg := app.Config.Mirror
	consumer := logsink.NewMirrorConsumer(
		app.Redis,
		mirrorCfg.Stream,
		mirrorCfg.ConsumerGroup,
		app.Config.InstanceID,
		mirrorCfg.BatchSize,
		mirrorCfg.BlockDuration,
	)
	if err := consumer.CreateGroup(ctx); err != nil {
		app.Logger.Error().Err(err).Msg("Failed to create consumer group (may already exist)")
	}

	app.Logger.Info().
		Str("stream", mirrorCfg.Stream).
		Str("group", mirrorCfg.ConsumerGroup).
		Str("consumer", app.Config.InstanceID).
		Str("out", outPath).
		Msg("Mirror worker started, draining stream...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return drainMirror(gCtx, app.Logger, consumer, out, readErrorBackoff)
	})

	g.Go(func() error {
		select {
		case <-quit:
			app.Logger.Info().Msg("Shutdown signal received")
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Mirror worker stopped with error")
		os.Exit(1)
	}
	app.Logger.Info().Msg("Mirror worker exited")
}

// mirrorSource is the slice of logsink.MirrorConsumer the drain loop needs.
type mirrorSource interface {
	Read(ctx context.Context) ([]redis.XStream, error)
	Ack(ctx context.Context, messageID string) error
}

func drainMirror(ctx context.Context, logger zerolog.Logger, source mirrorSource, out io.Writer, backoff time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error().Err(err).Msg("Failed to read mirror stream")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				line, ok := msg.Values["line"].(string)
				if !ok {
					logger.Warn().Str("id", msg.ID).Msg("Mirror message without line field, acking anyway")
					if err := source.Ack(ctx, msg.ID); err != nil {
						logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to ack mirror message")
					}
					continue
				}

				if _, err := fmt.Fprintln(out, line); err != nil {
					// Leave unacked so another read attempt redelivers it.
					logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to write mirror line")
					continue
				}
				if err := source.Ack(ctx, msg.ID); err != nil {
					logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to ack mirror message")
				}
			}
		}
	}
}
