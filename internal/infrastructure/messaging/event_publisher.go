// Package messaging delivers user lifecycle events to RabbitMQ.
package messaging

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity-service/internal/application"
)

// Sender is the part of helpers.RabbitQueue used here.
type Sender interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// EventPublisher forwards application events to a queue. A failed publish
// is logged and dropped; the stored change it describes stands.
type EventPublisher struct {
	Sender  Sender
	Logger  *logrus.Logger
	Timeout time.Duration
}

var _ application.EventPublisher = (*EventPublisher)(nil)

func NewEventPublisher(sender Sender, logger *logrus.Logger) *EventPublisher {
	return &EventPublisher{Sender: sender, Logger: logger, Timeout: 3 * time.Second}
}

func (p *EventPublisher) Publish(ctx context.Context, evt application.UserEvent) {
	if p == nil || p.Sender == nil {
		return
	}
	// detached so a request that finishes right after the write still gets
	// its event out
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.Timeout)
	defer cancel()
	if err := p.Sender.PublishJSON(c, evt.Type, evt); err != nil && p.Logger != nil {
		p.Logger.WithError(err).WithFields(logrus.Fields{
			"event":   evt.Type,
			"user_id": evt.User.ID,
		}).Warn("publish user event failed")
	}
}
