package ratelimit

import (
	"testing"
	"time"
)

func TestLoginLimiterBlocksAfterMaxFailures(t *testing.T) {
	limiter := NewLoginLimiter(5*time.Minute, 5)

	for i := 0; i < 5; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
		limiter.RecordFailure("10.0.0.1")
	}

	if limiter.Allow("10.0.0.1") {
		t.Fatal("sixth attempt should be blocked")
	}

	// Other keys are unaffected.
	if !limiter.Allow("10.0.0.2") {
		t.Fatal("unrelated key should be allowed")
	}
}

func TestLoginLimiterWindowExpiry(t *testing.T) {
	limiter := NewLoginLimiter(5*time.Minute, 5)

	current := time.Now()
	limiter.WithNowFunc(func() time.Time { return current })

	for i := 0; i < 5; i++ {
		limiter.RecordFailure("10.0.0.1")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("expected key to be blocked inside the window")
	}

	current = current.Add(5*time.Minute + time.Second)
	if !limiter.Allow("10.0.0.1") {
		t.Fatal("expected key to be allowed after the window elapsed")
	}
}

func TestLoginLimiterSuccessDoesNotReset(t *testing.T) {
	limiter := NewLoginLimiter(5*time.Minute, 5)

	for i := 0; i < 4; i++ {
		limiter.RecordFailure("10.0.0.1")
	}

	// A successful login is simply the absence of RecordFailure; prior
	// failures still count until they age out.
	if !limiter.Allow("10.0.0.1") {
		t.Fatal("fifth attempt should still be allowed")
	}
	limiter.RecordFailure("10.0.0.1")
	if limiter.Allow("10.0.0.1") {
		t.Fatal("expected block once the fifth failure landed")
	}
}

func TestLoginLimiterEmptyKey(t *testing.T) {
	limiter := NewLoginLimiter(5*time.Minute, 2)

	limiter.RecordFailure("")
	limiter.RecordFailure("")

	if limiter.Allow("") {
		t.Fatal("empty keys share the fallback bucket and should be blocked")
	}
}
