package obs

import (
	"context"
	"delivery-eta-service/internal/platform/logger"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID stores a correlation id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the correlation id stored on ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs the duration of an operation; call the returned func with the
// operation's error pointer, usually via defer.
func Time(ctx context.Context, log *logger.Logger, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		entry := log.WithFields(logrus.Fields{
			"req_id": RequestID(ctx),
			"op":     name,
			"dur_ms": time.Since(start).Milliseconds(),
		})

		if errp != nil && *errp != nil {
			entry.WithError(*errp).Debug("operation failed")
			return
		}
		entry.Debug("operation done")
	}
}
