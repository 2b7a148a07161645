package gdrive

import (
	"strings"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

func retrier(slept *[]time.Duration) *Retrier {
	return &Retrier{
		MaxWait: 60 * time.Second,
		sleep: func(d time.Duration) {
			*slept = append(*slept, d)
		},
		jitter: func() time.Duration {
			return 0
		},
	}
}

func TestRetrySucceedsWithinCeiling(t *testing.T) {
	slept := []time.Duration{}
	r := retrier(&slept)

	calls := 0
	aerr := r.Do("drive.files.search", 5, func() error {
		calls++
		if calls < 4 {
			return &googleapi.Error{Code: 429}
		}

		return nil
	})

	if aerr != nil {
		t.Fatalf("Unexpected error returned from Do (%v)", aerr)
	}

	if calls != 4 {
		t.Errorf("Expected 4 attempts, got %v", calls)
	}

	// attempt n waits 2^n seconds (ignoring jitter)
	expected := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(slept) != len(expected) {
		t.Fatalf("Expected %v backoff sleeps, got %v (%v)", len(expected), len(slept), slept)
	}

	for i := range expected {
		if slept[i] != expected[i] {
			t.Errorf("Incorrect backoff for attempt %v - expected:%v, got:%v", i+1, expected[i], slept[i])
		}
	}
}

func TestRetryExhaustsCeiling(t *testing.T) {
	slept := []time.Duration{}
	r := retrier(&slept)

	calls := 0
	aerr := r.Do("drive.permissions.create", 6, func() error {
		calls++
		return &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "sharingRateLimitExceeded"}}}
	})

	if aerr == nil {
		t.Fatalf("Expected error after exhausting retries, got %v", aerr)
	}

	if calls != 6 {
		t.Errorf("Expected 6 attempts, got %v", calls)
	}

	if len(slept) != 5 {
		t.Errorf("Expected 5 backoff sleeps, got %v", len(slept))
	}

	if !strings.Contains(aerr.Error(), "retries exhausted after 6 attempts") {
		t.Errorf("Expected exhaustion diagnostic, got '%v'", aerr.Error())
	}

	if aerr.Op != "drive.permissions.create" || aerr.StatusCode != 403 {
		t.Errorf("Incorrect error context (%+v)", aerr)
	}
}

func TestRetryDoesNotRetryTerminalErrors(t *testing.T) {
	slept := []time.Duration{}
	r := retrier(&slept)

	calls := 0
	aerr := r.Do("drive.permissions.list", 5, func() error {
		calls++
		return &googleapi.Error{Code: 404, Message: "File not found"}
	})

	if aerr == nil {
		t.Fatalf("Expected terminal error, got %v", aerr)
	}

	if calls != 1 {
		t.Errorf("Expected a single attempt for a terminal error, got %v", calls)
	}

	if len(slept) != 0 {
		t.Errorf("Expected no backoff sleeps for a terminal error, got %v", slept)
	}

	if aerr.StatusCode != 404 {
		t.Errorf("Incorrect error context (%+v)", aerr)
	}
}

func TestBackoffCap(t *testing.T) {
	r := Retrier{
		MaxWait: 60 * time.Second,
		jitter: func() time.Duration {
			return 0
		},
	}

	if wait := r.backoff(10); wait != 60*time.Second {
		t.Errorf("Expected backoff capped at 60s, got %v", wait)
	}

	if wait := r.backoff(1); wait != 2*time.Second {
		t.Errorf("Expected 2s backoff for attempt 1, got %v", wait)
	}
}
