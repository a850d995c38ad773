package scheduler

import (
	"context"
	"errors"
	"testing"

	"quote_portal_backend/internal/mailrelay/sender"
	"quote_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type fakeMailer struct {
	err  error
	sent []sender.Message
}

func (f *fakeMailer) Send(_ context.Context, msg sender.Message) (string, error) {
	f.sent = append(f.sent, msg)
	return "<1@test>", f.err
}

func TestHandleNotificationEmailSends(t *testing.T) {
	mailer := &fakeMailer{}
	w := newWorker(mailer, logger.Nop())

	task, err := NewNotificationEmailTask(NotificationEmailPayload{Event: "quoting.quote.resolved", To: "ops@example.com", Subject: "Quote ready", HTML: "<p>ok</p>"})
	if err != nil {
		t.Fatalf("NewNotificationEmailTask: %v", err)
	}
	if err := w.mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To != "ops@example.com" || mailer.sent[0].Subject != "Quote ready" {
		t.Fatalf("sent = %+v", mailer.sent)
	}
}

func TestHandleNotificationEmailRetriesSendFailure(t *testing.T) {
	w := newWorker(&fakeMailer{err: errors.New("421 try later")}, logger.Nop())

	task, _ := NewNotificationEmailTask(NotificationEmailPayload{To: "ops@example.com", Subject: "s", HTML: "h"})
	err := w.mux.ProcessTask(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want retryable error", err)
	}
}

func TestHandleNotificationEmailSkipsBadPayload(t *testing.T) {
	w := newWorker(&fakeMailer{}, logger.Nop())

	cases := map[string]*asynq.Task{
		"malformed":    asynq.NewTask(TaskNotificationEmailSend, []byte("{")),
		"no recipient": asynq.NewTask(TaskNotificationEmailSend, []byte(`{"subject":"s"}`)),
	}
	for name, task := range cases {
		if err := w.mux.ProcessTask(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
			t.Errorf("%s: err = %v, want SkipRetry", name, err)
		}
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("rediss://:secret@cache.internal:6380/2", true)
	if err != nil {
		t.Fatalf("redisClientOpt: %v", err)
	}
	if opt.Addr != "cache.internal:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("opt = %+v", opt)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config")
	}

	plain, err := redisClientOpt("redis://localhost:6379", false)
	if err != nil || plain.TLSConfig != nil {
		t.Fatalf("plain = %+v, err = %v", plain, err)
	}
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	if err := c.EnqueueNotificationEmail(context.Background(), NotificationEmailPayload{}); err != nil {
		t.Fatalf("err = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close = %v", err)
	}
}
