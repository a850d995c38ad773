package notification

import (
	"context"
	"errors"
	"fmt"

	"quote_portal_backend/internal/mailrelay/sender"
	"quote_portal_backend/internal/scheduler"
	"quote_portal_backend/platform/sanitize"
)

// Email is a rendered notification addressed to one or more recipients.
type Email struct {
	Event   string
	To      []string
	Subject string
	HTML    string
}

// Dispatcher hands a rendered notification to a delivery channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, email Email) error
}

// QueueDispatcher enqueues one asynq task per recipient.
type QueueDispatcher struct {
	queue scheduler.EmailEnqueuer
}

func NewQueueDispatcher(queue scheduler.EmailEnqueuer) *QueueDispatcher {
	return &QueueDispatcher{queue: queue}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, email Email) error {
	var errs []error
	for _, to := range email.To {
		err := d.queue.EnqueueNotificationEmail(ctx, scheduler.NotificationEmailPayload{
			Event:   email.Event,
			To:      to,
			Subject: email.Subject,
			HTML:    email.HTML,
			Text:    sanitize.HTMLToText(email.HTML),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("enqueue %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg sender.Message) (string, error)
}

// DirectDispatcher sends inline when no queue is configured.
type DirectDispatcher struct {
	mailer Mailer
}

func NewDirectDispatcher(mailer Mailer) *DirectDispatcher {
	return &DirectDispatcher{mailer: mailer}
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, email Email) error {
	text := sanitize.HTMLToText(email.HTML)
	var errs []error
	for _, to := range email.To {
		_, err := d.mailer.Send(ctx, sender.Message{To: to, Subject: email.Subject, HTML: email.HTML, Text: text})
		if err != nil {
			errs = append(errs, fmt.Errorf("send %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}
