package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"quote_portal_backend/internal/mailrelay/sender"
	"quote_portal_backend/internal/mailrelay/transport"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/logger"
)

type fakeSender struct {
	mu        sync.Mutex
	verifyErr error
	failFor   map[string]bool
	sent      []sender.Message
}

func (f *fakeSender) Verify(context.Context) error { return f.verifyErr }

func (f *fakeSender) Send(_ context.Context, msg sender.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if f.failFor[msg.To] {
		return "", errors.New("mailbox unavailable")
	}
	return "<id-" + msg.To + ">", nil
}

func TestRecipients(t *testing.T) {
	svc := New(nil, []string{"ops@example.com"}, logger.Nop())

	if got := svc.Recipients(" a@x.com, b@x.com ,,c@x.com"); strings.Join(got, "|") != "a@x.com|b@x.com|c@x.com" {
		t.Errorf("split = %v", got)
	}
	if got := svc.Recipients("  "); len(got) != 1 || got[0] != "ops@example.com" {
		t.Errorf("fallback = %v", got)
	}
}

func TestSendAllSucceed(t *testing.T) {
	fs := &fakeSender{}
	svc := New(fs, nil, logger.Nop())

	resp, err := svc.Send(context.Background(), transport.SendEmailRequest{
		To: "a@x.com,b@x.com", Subject: "Hi", HTML: "<p>Hello</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !resp.Success || len(resp.Results) != 2 || resp.Message != "Emails successfully sent to 2 recipients" {
		t.Fatalf("resp = %+v", resp)
	}
	for _, msg := range fs.sent {
		if msg.Text != "Hello" {
			t.Errorf("derived text = %q", msg.Text)
		}
	}
}

func TestSendPartialFailureKeepsOrder(t *testing.T) {
	fs := &fakeSender{failFor: map[string]bool{"b@x.com": true}}
	svc := New(fs, nil, logger.Nop())

	resp, err := svc.Send(context.Background(), transport.SendEmailRequest{
		To: "a@x.com,b@x.com,c@x.com", Subject: "Hi", HTML: "<p>Hello</p>", Text: "custom",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Success {
		t.Fatal("expected partial failure")
	}
	want := []string{"a@x.com", "b@x.com", "c@x.com"}
	for i, r := range resp.Results {
		if r.Recipient != want[i] {
			t.Errorf("results[%d] = %s, want %s", i, r.Recipient, want[i])
		}
	}
	if resp.Results[1].Success || resp.Results[1].Error != "mailbox unavailable" {
		t.Errorf("failed result = %+v", resp.Results[1])
	}
	if resp.Results[0].MessageID != "<id-a@x.com>" {
		t.Errorf("message id = %q", resp.Results[0].MessageID)
	}
	for _, msg := range fs.sent {
		if msg.Text != "custom" {
			t.Errorf("explicit text replaced: %q", msg.Text)
		}
	}
}

func TestSendRejectsMissingFields(t *testing.T) {
	svc := New(&fakeSender{}, nil, logger.Nop())

	cases := []transport.SendEmailRequest{
		{Subject: "Hi", HTML: "<p/>"},
		{To: "a@x.com", HTML: "<p/>"},
		{To: "a@x.com", Subject: "Hi"},
	}
	for _, req := range cases {
		if _, err := svc.Send(context.Background(), req); !apperr.Is(err, apperr.KindBadRequest) {
			t.Errorf("Send(%+v) err = %v, want BadRequest", req, err)
		}
	}
}

func TestSendVerifyFailure(t *testing.T) {
	fs := &fakeSender{verifyErr: errors.New("connection refused")}
	svc := New(fs, nil, logger.Nop())

	_, err := svc.Send(context.Background(), transport.SendEmailRequest{To: "a@x.com", Subject: "Hi", HTML: "<p/>"})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("err = %v, want Internal", err)
	}
	if len(fs.sent) != 0 {
		t.Fatal("nothing should be sent after a failed verify")
	}
}
