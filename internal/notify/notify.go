// Package notify defines the boundary toward the external notification
// subsystem. The ledger core only emits domain events; delivery, read
// state and storage belong to the collaborator behind the interface.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"activity-points/internal/model"
)

// Notifier receives domain notifications. Implementations must not
// block for long; a returned error is logged by the caller and never
// aborts the operation that produced the notification.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// LogNotifier writes notifications to the structured log. It is the
// default sink when no delivery collaborator is wired in.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a LogNotifier writing to the given logger.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: logger}
}

// Notify logs the notification.
func (l *LogNotifier) Notify(_ context.Context, n model.Notification) error {
	l.log.Info().
		Int64("user_id", n.UserID).
		Str("type", n.Type).
		Str("title", n.Title).
		Int64("related_id", n.RelatedID).
		Msg(n.Message)
	return nil
}
