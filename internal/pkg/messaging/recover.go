package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/shandysiswandi/mailpress/internal/pkg/stacktrace"
)

func callHandlerWithRecover(ctx context.Context, driver string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
	}()

	return fn()
}

// responder guards a message against being acked and nacked more than once.
type responder struct {
	responded atomic.Bool
}

func (r *responder) claim() bool {
	return !r.responded.Swap(true)
}

func (r *responder) hasResponded() bool {
	return r.responded.Load()
}

// dispatch runs handler for msg and settles it when auto-ack is on and the
// handler did not settle it itself.
func dispatch(ctx context.Context, driver string, msg interface {
	Message
	hasResponded() bool
}, handler Handler, autoAck bool,
) error {
	herr := callHandlerWithRecover(ctx, driver, func() error {
		return handler(ctx, msg)
	})
	if herr != nil {
		slog.WarnContext(ctx, "messaging handler failed", "driver", driver, "subject", msg.Subject(), "error", herr)
	}

	if !autoAck || msg.hasResponded() {
		return nil
	}
	if herr == nil {
		return msg.Ack(ctx)
	}
	return msg.Nack(ctx)
}
