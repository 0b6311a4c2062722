package ws

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chronoforge/internal/engine"
)

const tailBatch = 500

// EventSource is the read side of the committed event log.
type EventSource interface {
	EventsAfter(ctx context.Context, after int64, limit int) ([]engine.Event, error)
}

// Tail polls src every interval and publishes events with a sequence above
// after to sink, so subscribers see commits made by other processes. It
// returns when ctx is done.
func Tail(ctx context.Context, src EventSource, sink engine.EventSink, after int64, interval time.Duration, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		for {
			events, err := src.EventsAfter(ctx, after, tailBatch)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("tail events", zap.Error(err))
				}
				break
			}
			for _, ev := range events {
				if err := sink.Publish(ctx, ev); err != nil {
					logger.Warn("publish tailed event", zap.Int64("seq", ev.Seq), zap.Error(err))
				}
				after = ev.Seq
			}
			if len(events) < tailBatch {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
