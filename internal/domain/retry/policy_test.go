package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/heavybid/auction-media/internal/domain/retry"
)

func TestPolicy_CalculateDelay(t *testing.T) {
	tests := []struct {
		name    string
		policy  retry.Policy
		attempt int
		want    time.Duration
	}{
		{
			name: "fixed backoff stays flat",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffFixed,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        1 * time.Second,
			},
			attempt: 5,
			want:    100 * time.Millisecond,
		},
		{
			name: "linear backoff scales with attempt",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffLinear,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        1 * time.Second,
			},
			attempt: 3,
			want:    300 * time.Millisecond,
		},
		{
			name: "exponential backoff doubles",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffExponential,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        10 * time.Second,
			},
			attempt: 3,
			want:    400 * time.Millisecond,
		},
		{
			name: "respects max delay",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffExponential,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        200 * time.Millisecond,
			},
			attempt: 10,
			want:    200 * time.Millisecond,
		},
		{
			name: "zero attempt yields zero delay",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffFixed,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        1 * time.Second,
			},
			attempt: 0,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.CalculateDelay(tt.attempt); got != tt.want {
				t.Errorf("Policy.CalculateDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicy_CalculateDelay_Jitter(t *testing.T) {
	policy := retry.Policy{
		BackoffStrategy: retry.BackoffFixed,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        1 * time.Second,
		JitterFactor:    0.5,
	}

	for i := 0; i < 50; i++ {
		got := policy.CalculateDelay(1)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("jittered delay %v outside [50ms, 150ms]", got)
		}
	}
}

func TestPolicy_ShouldRetry(t *testing.T) {
	policy := retry.Policy{MaxRetries: 3}

	if !policy.ShouldRetry(0) {
		t.Error("expected retry on attempt 0")
	}
	if !policy.ShouldRetry(2) {
		t.Error("expected retry on attempt 2")
	}
	if policy.ShouldRetry(3) {
		t.Error("did not expect retry on attempt 3")
	}
}

func TestExecute_SucceedsAfterFailures(t *testing.T) {
	policy := retry.Policy{
		MaxRetries:      5,
		InitialDelay:    time.Millisecond,
		MaxDelay:        time.Millisecond,
		BackoffStrategy: retry.BackoffFixed,
	}

	calls := 0
	err := retry.Execute(context.Background(), policy, func(ctx context.Context, attempt int) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestExecute_ExhaustsBudget(t *testing.T) {
	policy := retry.Policy{
		MaxRetries:      2,
		InitialDelay:    time.Millisecond,
		MaxDelay:        time.Millisecond,
		BackoffStrategy: retry.BackoffFixed,
	}

	wantErr := errors.New("permanent")
	calls := 0
	err := retry.Execute(context.Background(), policy, func(ctx context.Context, attempt int) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Execute() error = %v, want %v", err, wantErr)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
}

func TestExecute_ContextCancelled(t *testing.T) {
	policy := retry.Policy{
		MaxRetries:      10,
		InitialDelay:    50 * time.Millisecond,
		MaxDelay:        50 * time.Millisecond,
		BackoffStrategy: retry.BackoffFixed,
	}

	ctx, cancel := context.WithCancel(context.Background())
	err := retry.Execute(ctx, policy, func(ctx context.Context, attempt int) error {
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestExecuteWithResult(t *testing.T) {
	policy := retry.Policy{
		MaxRetries:      3,
		InitialDelay:    time.Millisecond,
		MaxDelay:        time.Millisecond,
		BackoffStrategy: retry.BackoffFixed,
	}

	calls := 0
	got, err := retry.ExecuteWithResult(context.Background(), policy, func(ctx context.Context, attempt int) (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("not yet")
		}
		return "done", nil
	})
	if err != nil {
		t.Fatalf("ExecuteWithResult() error = %v", err)
	}
	if got != "done" {
		t.Errorf("result = %q, want %q", got, "done")
	}
}

func TestJobPollPolicy(t *testing.T) {
	policy := retry.JobPollPolicy()
	if policy.MaxRetries != 10 {
		t.Errorf("MaxRetries = %d, want 10", policy.MaxRetries)
	}
	if policy.InitialDelay != 200*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 200ms", policy.InitialDelay)
	}
	if policy.MaxDelay != 2*time.Second {
		t.Errorf("MaxDelay = %v, want 2s", policy.MaxDelay)
	}
}
