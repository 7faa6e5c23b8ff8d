package application

import (
	"context"
	"time"
)

const (
	EventUserCreated     = "user.created"
	EventUserUpdated     = "user.updated"
	EventUserDeleted     = "user.deleted"
	EventPasswordChanged = "user.password_changed"
	EventStatusChanged   = "user.status_changed"
)

// UserEvent describes a persisted change to a user.
type UserEvent struct {
	Type       string    `json:"type"`
	User       UserView  `json:"user"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEvent(typ string, v *UserView) UserEvent {
	return UserEvent{Type: typ, User: *v, OccurredAt: time.Now().UTC()}
}

// EventPublisher receives events after the change is stored.
// Delivery is best effort: implementations handle their own failures and
// must not block the caller for long.
type EventPublisher interface {
	Publish(ctx context.Context, evt UserEvent)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, UserEvent) {}
