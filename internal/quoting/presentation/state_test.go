package presentation

import (
	"testing"
	"time"

	"quote_portal_backend/internal/quoting/domain"
	"quote_portal_backend/platform/apperr"
)

func sampleQuote() *domain.ResolvedQuote {
	return domain.NewResolvedQuote(850, 5000, "Q-1", "20260314-ABC123", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
}

func TestReduceHappyPath(t *testing.T) {
	s := Initial()
	s = Reduce(s, Started{ReferenceID: "20260314-ABC123"})
	if s.Status != StatusProcessing {
		t.Fatalf("status = %s, want processing", s.Status)
	}

	s = Reduce(s, Polled{Attempt: 3})
	if s.Attempts != 3 {
		t.Fatalf("attempts = %d", s.Attempts)
	}

	s = Reduce(s, Completed{Quote: sampleQuote()})
	if s.Status != StatusComplete || s.Quote.Premium != 850 || s.Error != nil {
		t.Fatalf("state = %+v", s)
	}
}

func TestReduceErrorAndRetry(t *testing.T) {
	s := Reduce(Initial(), Started{ReferenceID: "ref"})
	s = Reduce(s, Failed{Err: apperr.Timeout("polling exhausted")})

	if s.Status != StatusError || s.Error.Code != "TIMEOUT" || s.Error.Action != ActionRetry || !s.Error.Retryable {
		t.Fatalf("state = %+v / %+v", s, s.Error)
	}

	s = Reduce(s, Retried{})
	if s.Status != StatusProcessing || s.Error != nil {
		t.Fatalf("retry should return to processing, got %+v", s)
	}
}

func TestReduceIgnoresInvalidTransitions(t *testing.T) {
	complete := Reduce(Reduce(Initial(), Started{}), Completed{Quote: sampleQuote()})

	cases := map[string]struct {
		from State
		ev   Event
	}{
		"retry from complete":    {complete, Retried{}},
		"retry from idle":        {Initial(), Retried{}},
		"fail after complete":    {complete, Failed{Err: apperr.Timeout("late")}},
		"complete from idle":     {Initial(), Completed{Quote: sampleQuote()}},
		"poll from idle":         {Initial(), Polled{Attempt: 1}},
		"complete without quote": {Reduce(Initial(), Started{}), Completed{}},
	}

	for name, tc := range cases {
		got := Reduce(tc.from, tc.ev)
		if got.Status != tc.from.Status || got.Attempts != tc.from.Attempts {
			t.Errorf("%s: state changed from %s to %s", name, tc.from.Status, got.Status)
		}
	}
}

func TestErrorViewFieldDetails(t *testing.T) {
	err := apperr.Validation("rejected",
		apperr.FieldError{Field: "vehicles -> 0 -> make", Message: "field required"},
		apperr.FieldError{Field: "email", Message: "invalid"},
	)

	view := NewErrorView(err)

	if view.Action != ActionFix || view.Retryable {
		t.Fatalf("view = %+v", view)
	}
	want := []string{"Vehicle 1: Vehicle Make: field required", "Email Address: invalid"}
	if len(view.Details) != len(want) {
		t.Fatalf("details = %v", view.Details)
	}
	for i := range want {
		if view.Details[i] != want[i] {
			t.Errorf("details[%d] = %q, want %q", i, view.Details[i], want[i])
		}
	}
}

func TestErrorViewPerKind(t *testing.T) {
	cases := []struct {
		kind      apperr.Kind
		action    Action
		retryable bool
	}{
		{apperr.KindTransform, ActionFix, false},
		{apperr.KindAuth, ActionReload, false},
		{apperr.KindRateLimit, ActionWait, false},
		{apperr.KindService, ActionRetry, true},
		{apperr.KindNetwork, ActionRetry, true},
		{apperr.KindTimeout, ActionRetry, true},
		{apperr.KindNotFound, ActionRestart, false},
		{apperr.KindInternal, ActionRestart, false},
		{apperr.KindUnknown, ActionRestart, false},
	}

	for _, tc := range cases {
		view := NewErrorView(apperr.New(tc.kind, ""))
		if view.Action != tc.action || view.Retryable != tc.retryable || view.Message == "" {
			t.Errorf("%s: view = %+v, want action %s retryable %t", tc.kind, view, tc.action, tc.retryable)
		}
	}
}

func TestFieldLabel(t *testing.T) {
	cases := map[string]string{
		"first_name":              "First Name",
		"vehicles -> 1 -> v_year": "Vehicle 2: Vehicle Year",
		"applicant -> idNumber":   "ID Number",
		"mystery":                 "mystery",
		"":                        "Unknown field",
	}
	for in, want := range cases {
		if got := FieldLabel(in); got != want {
			t.Errorf("FieldLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
