package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity-service/config"
	"github.com/oksasatya/go-ddd-identity-service/internal/application"
	"github.com/oksasatya/go-ddd-identity-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-identity-service/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-identity-service/pkg/mailer/templates"
)

// ErrMalformed marks a message that can never be processed.
var ErrMalformed = errors.New("malformed event")

// Indexer is the part of search.UserIndex used by the consumer.
type Indexer interface {
	Apply(ctx context.Context, evt application.UserEvent) error
}

// EventHandler projects user events into the search index and notifies
// the user by email.
type EventHandler struct {
	Index  Indexer
	Mail   mailer.Sender // nil disables email
	Cfg    *config.Config
	Logger *logrus.Logger
}

// mailTypeFor maps an event to the email sent for it; profile edits send none.
func mailTypeFor(eventType string) (string, bool) {
	switch eventType {
	case application.EventUserCreated:
		return mailtpl.Welcome, true
	case application.EventPasswordChanged:
		return mailtpl.PasswordChanged, true
	case application.EventStatusChanged:
		return mailtpl.StatusChanged, true
	case application.EventUserDeleted:
		return mailtpl.AccountDeleted, true
	}
	return "", false
}

// EmailJobFor builds the email for evt, if any.
func (h *EventHandler) EmailJobFor(evt application.UserEvent) (mailer.EmailJob, bool) {
	typ, ok := mailTypeFor(evt.Type)
	if !ok || evt.User.Email == "" {
		return mailer.EmailJob{}, false
	}
	data := mailtpl.NewBaseEmailData(h.Cfg, typ, evt.User.FullName, evt.User.Email,
		mailtpl.WithUsername(evt.User.Username),
		mailtpl.WithStatus(evt.User.Status),
		mailtpl.WithTime(evt.OccurredAt),
	)
	job := mailer.EmailJob{To: evt.User.Email, Template: mailtpl.Universal, Data: mailtpl.ToMap(data)}
	helpers.EnsureRecipientAndEmail(&job)
	return job, true
}

// Handle processes one message body. Errors wrapping ErrMalformed should not
// be retried.
func (h *EventHandler) Handle(ctx context.Context, body []byte) error {
	var evt application.UserEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if evt.Type == "" || evt.User.ID == "" {
		return fmt.Errorf("%w: missing type or user id", ErrMalformed)
	}

	log := h.Logger.WithFields(logrus.Fields{"event": evt.Type, "user_id": evt.User.ID})

	if h.Index != nil {
		if err := h.Index.Apply(ctx, evt); err != nil {
			return fmt.Errorf("index: %w", err)
		}
	}

	if h.Mail == nil {
		return nil
	}
	job, ok := h.EmailJobFor(evt)
	if !ok {
		return nil
	}
	subject, text, html, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		// a broken template will not fix itself on retry
		log.WithError(err).Error("render email failed")
		return nil
	}
	if err := h.Mail.Send(ctx, job.To, subject, text, html); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	log.Debug("email sent")
	return nil
}

// Deliver acks, requeues or drops msg according to Handle's result.
func (h *EventHandler) Deliver(ctx context.Context, msg amqp.Delivery) {
	err := h.Handle(ctx, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, ErrMalformed):
		h.Logger.WithError(err).Warn("dropping event")
		_ = msg.Nack(false, false)
	default:
		h.Logger.WithError(err).WithField("redelivered", msg.Redelivered).Warn("event processing failed")
		// one retry, then drop
		_ = msg.Nack(false, !msg.Redelivered)
	}
}
