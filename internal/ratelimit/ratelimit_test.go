package ratelimit

import (
	"testing"
	"time"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	l := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         3,
		CleanupInterval:   time.Minute,
	})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("client1") {
			t.Fatalf("Expected request %d to be allowed within burst", i+1)
		}
	}

	if l.Allow("client1") {
		t.Error("Expected request beyond burst to be denied")
	}
}

func TestAllow_IndependentKeys(t *testing.T) {
	l := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         1,
		CleanupInterval:   time.Minute,
	})
	defer l.Stop()

	if !l.Allow("a") {
		t.Error("Expected first request for a to pass")
	}
	if !l.Allow("b") {
		t.Error("Expected first request for b to pass")
	}
	if l.Allow("a") {
		t.Error("Expected second immediate request for a to be denied")
	}
}

func TestAllow_RefillsOverTime(t *testing.T) {
	l := New(Config{
		RequestsPerMinute: 6000, // 100/sec so the test stays fast
		BurstSize:         1,
		CleanupInterval:   time.Minute,
	})
	defer l.Stop()

	l.Allow("c")
	if l.Allow("c") {
		t.Fatal("Expected immediate second request to be denied")
	}

	time.Sleep(50 * time.Millisecond)

	if !l.Allow("c") {
		t.Error("Expected request to pass after refill")
	}
}
