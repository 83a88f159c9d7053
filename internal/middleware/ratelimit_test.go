package middleware

import (
	"testing"
	"time"
)

func TestQuotaLimiter_AllowAndDeny(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	ql := NewQuotaLimiterWithNow(2, time.Minute, func() time.Time { return clock })

	if !ql.Allow("user-1") {
		t.Fatalf("expected allow")
	}
	if !ql.Allow("user-1") {
		t.Fatalf("expected allow")
	}
	if ql.Allow("user-1") {
		t.Fatalf("expected deny")
	}

	if !ql.Allow("user-2") {
		t.Fatalf("expected independent key to be allowed")
	}

	clock = clock.Add(time.Minute + time.Second)
	if !ql.Allow("user-1") {
		t.Fatalf("expected allow after window")
	}
}
