package providers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// recordingSleep captures requested delays without waiting
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) Sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func TestRetryPolicy_Do(t *testing.T) {
	transient := &StatusError{StatusCode: http.StatusServiceUnavailable}
	tests := []struct {
		name         string
		results      []error
		maxRetries   int
		wantErr      bool
		wantAttempts int
	}{
		{
			name:         "succeeds after two retries",
			results:      []error{transient, transient, nil},
			maxRetries:   3,
			wantAttempts: 3,
		},
		{
			name:         "rate limited then ok",
			results:      []error{&StatusError{StatusCode: http.StatusTooManyRequests}, nil},
			maxRetries:   3,
			wantAttempts: 2,
		},
		{
			name:         "transport error is retried",
			results:      []error{errors.New("connection reset"), nil},
			maxRetries:   3,
			wantAttempts: 2,
		},
		{
			name:         "client error is not retried",
			results:      []error{&StatusError{StatusCode: http.StatusBadRequest}, nil},
			maxRetries:   3,
			wantErr:      true,
			wantAttempts: 1,
		},
		{
			name:         "permanent error is not retried",
			results:      []error{Permanent(errors.New("bad model")), nil},
			maxRetries:   3,
			wantErr:      true,
			wantAttempts: 1,
		},
		{
			name:         "malformed reply is not retried",
			results:      []error{ErrMalformedResponse, nil},
			maxRetries:   3,
			wantErr:      true,
			wantAttempts: 1,
		},
		{
			name:         "gives up after the ceiling",
			results:      []error{transient, transient, transient, transient, transient},
			maxRetries:   3,
			wantErr:      true,
			wantAttempts: 4,
		},
		{
			name:         "zero retries tries once",
			results:      []error{transient, nil},
			maxRetries:   0,
			wantErr:      true,
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sleeper := &recordingSleep{}
			policy := NewRetryPolicy(tt.maxRetries, 0)
			policy.Sleep = sleeper.Sleep

			attempts := 0
			err := policy.Do(context.Background(), func(ctx context.Context) error {
				err := tt.results[attempts]
				attempts++
				return err
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
			if len(sleeper.delays) != attempts-1 && !tt.wantErr {
				t.Errorf("slept %d times for %d attempts", len(sleeper.delays), attempts)
			}
			for i := 1; i < len(sleeper.delays); i++ {
				if sleeper.delays[i] < sleeper.delays[i-1] {
					t.Errorf("delay %d (%v) shorter than delay %d (%v)", i, sleeper.delays[i], i-1, sleeper.delays[i-1])
				}
			}
		})
	}
}

func TestExponentialBackoff(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	for attempt, w := range want {
		if got := ExponentialBackoff(attempt); got != w {
			t.Errorf("ExponentialBackoff(%d) = %v, want %v", attempt, got, w)
		}
	}
}

func TestRetryPolicy_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := NewRetryPolicy(3, 0)
	attempts := 0
	err := policy.Do(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return &StatusError{StatusCode: http.StatusServiceUnavailable}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryPolicy_AttemptTimeoutIsRetried(t *testing.T) {
	sleeper := &recordingSleep{}
	policy := NewRetryPolicy(1, 10*time.Millisecond)
	policy.Sleep = sleeper.Sleep

	attempts := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := SleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("SleepContext ignored cancellation")
	}
}
