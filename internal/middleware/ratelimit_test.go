package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestConnectLimitPerIP(t *testing.T) {
	rl := NewIPRateLimiter(2, 10, time.Second)
	defer rl.Close()

	if !rl.ConnectAllowed("1.2.3.4") || !rl.ConnectAllowed("1.2.3.4") {
		t.Fatal("first two connections should be allowed")
	}
	if rl.ConnectAllowed("1.2.3.4") {
		t.Error("third connection should be refused")
	}
	if !rl.ConnectAllowed("5.6.7.8") {
		t.Error("other IPs are tracked separately")
	}
	rl.Disconnect("1.2.3.4")
	if !rl.ConnectAllowed("1.2.3.4") {
		t.Error("slot should free up after disconnect")
	}
}

func TestMessageTokenBucket(t *testing.T) {
	rl := NewIPRateLimiter(4, 3, time.Second)
	defer rl.Close()
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	rl.ConnectAllowed("ip")
	for i := 0; i < 3; i++ {
		if !rl.MessageAllowed("ip") {
			t.Fatalf("message %d should be allowed", i)
		}
	}
	if rl.MessageAllowed("ip") {
		t.Error("bucket should be empty")
	}

	now = now.Add(time.Second)
	if !rl.MessageAllowed("ip") {
		t.Error("bucket should refill after a window")
	}
}

func TestSweepDropsIdleVisitors(t *testing.T) {
	rl := NewIPRateLimiter(4, 3, time.Second)
	defer rl.Close()

	rl.ConnectAllowed("a")
	rl.ConnectAllowed("b")
	rl.Disconnect("b")
	rl.sweep()
	if rl.Tracked() != 1 {
		t.Errorf("expected 1 tracked IP, got %d", rl.Tracked())
	}
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if ip := RealIP(r); ip != "10.0.0.1" {
		t.Errorf("expected 10.0.0.1, got %s", ip)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := RealIP(r); ip != "203.0.113.9" {
		t.Errorf("expected forwarded IP, got %s", ip)
	}
}
