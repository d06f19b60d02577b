// Package telemetry reports unexpected server errors to Sentry.
//
// Call InitSentry once at startup and defer Flush in main():
//
//	telemetry.InitSentry(cfg.SentryDSN, "catalog")
//	defer telemetry.Flush(2 * time.Second)
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

var enabled bool

// InitSentry initializes the Sentry SDK. An empty dsn leaves reporting
// disabled, which is not an error.
func InitSentry(dsn, serviceName string) error {
	if dsn == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		AttachStacktrace: true,
		Tags: map[string]string{
			"service": serviceName,
		},
	})
	if err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	enabled = true
	return nil
}

// CaptureError sends an error to Sentry with optional tags. Safe to call
// when Sentry is disabled.
func CaptureError(err error, tags map[string]string) {
	if err == nil || !enabled {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Flush waits up to timeout for buffered events to be sent
func Flush(timeout time.Duration) {
	if enabled {
		sentry.Flush(timeout)
	}
}
