// Package logging sets up the structured logger every evaluator carries.
// No example repo in the retrieval pack imports a dedicated logging
// library as a direct dependency (go-logr/OpenTelemetry appear only as
// indirect transitive deps of unrelated stacks), so this follows the
// stdlib's own structured logger instead of reaching past what the pack
// actually grounds.
package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// New builds a logger tagged with a fresh evaluator instance id, following
// jinterlante1206-AleutianLocal's session-id convention of truncating a
// uuid to a short, log-friendly prefix.
func New(component string) *slog.Logger {
	id := uuid.NewString()[:12]
	return slog.New(slog.NewTextHandler(os.Stderr, nil)).With(
		slog.String("component", component),
		slog.String("instance", id),
	)
}

type loggerKey struct{}

// WithContext attaches l to ctx so downstream calls (recognizer runs,
// poset merges) can retrieve it without threading it through every
// function signature.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger attached to ctx, or a fresh unnamed one
// if none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return New("unnamed")
}
