package scheduler

import (
	"context"
	"fmt"

	"quote_portal_backend/internal/mailrelay/sender"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, msg sender.Message) (string, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	mailer Mailer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, mailer Mailer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(mailer, log)
	w.server = server
	return w, nil
}

func newWorker(mailer Mailer, log *logger.Logger) *Worker {
	w := &Worker{
		mux:    asynq.NewServeMux(),
		mailer: mailer,
		log:    log,
	}
	w.mux.HandleFunc(TaskNotificationEmailSend, w.handleNotificationEmail)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleNotificationEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNotificationEmailPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.To == "" {
		return fmt.Errorf("%w: notification email without recipient", asynq.SkipRetry)
	}
	if w.mailer == nil {
		w.log.Warn("dropping notification email; SMTP not configured", "event", payload.Event)
		return nil
	}

	id, err := w.mailer.Send(ctx, sender.Message{
		To:      payload.To,
		Subject: payload.Subject,
		HTML:    payload.HTML,
		Text:    payload.Text,
	})
	if err != nil {
		return err
	}

	w.log.Info("notification email sent", "event", payload.Event, "recipient", payload.To, "message_id", id)
	return nil
}
