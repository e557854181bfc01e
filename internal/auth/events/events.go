// Package events publishes token lifecycle events for downstream consumers
// such as audit logging or session dashboards.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/jwtauth/pkg/idx"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"
)

type Type string

const (
	TokenIssued       Type = "token.issued"
	TokenRefreshed    Type = "token.refreshed"
	TokenRevoked      Type = "token.revoked"
	ClientTokenIssued Type = "client_token.issued"
)

// Event never carries token material, only who and when.
type Event struct {
	ID         string     `json:"id"`
	Type       Type       `json:"type"`
	Subject    string     `json:"subject"`
	OccurredAt time.Time  `json:"occurred_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// New builds an event for subject (a user id or client id).
func New(t Type, subject string, occurredAt time.Time) Event {
	return Event{
		ID:         idx.NewAt(occurredAt).String(),
		Type:       t,
		Subject:    subject,
		OccurredAt: occurredAt.UTC(),
	}
}

// WithExpiry records when the credential the event refers to expires.
func (e Event) WithExpiry(t time.Time) Event {
	t = t.UTC()
	e.ExpiresAt = &t
	return e
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher writes events to the request logger. It is used when no
// broker is configured.
type LogPublisher struct {
	Level slog.Level
}

func (p LogPublisher) Publish(ctx context.Context, e Event) error {
	slogx.FromContext(ctx).Log(ctx, p.Level, "token event",
		slog.String("event_id", e.ID),
		slog.String("event_type", string(e.Type)),
		slog.String("subject", e.Subject),
	)
	return nil
}

func (LogPublisher) Close() error { return nil }
