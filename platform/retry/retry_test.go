package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

var errTransient = errors.New("transient")

func TestDoRetriesUntilSuccess(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	err := Do(context.Background(), Policy{MaxRetries: 2, Delay: 2 * time.Second}, sleeper, nil, func(int) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if len(sleeper.waits) != 2 || sleeper.waits[0] != 2*time.Second {
		t.Fatalf("waits = %v, want two 2s waits", sleeper.waits)
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0

	err := Do(context.Background(), Policy{MaxRetries: 5}, &recordingSleeper{}, func(err error) bool {
		return !errors.Is(err, fatal)
	}, func(int) error {
		calls++
		return fatal
	})

	if !errors.Is(err, fatal) || calls != 1 {
		t.Fatalf("err = %v, calls = %d; want fatal after 1 call", err, calls)
	}
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxRetries: 1}, &recordingSleeper{}, nil, func(int) error {
		calls++
		return errTransient
	})
	if !errors.Is(err, errTransient) || calls != 2 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestSleepOrDoneHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := SleepOrDone(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("SleepOrDone did not return promptly after cancel")
	}
}
