package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const sweepEvery = 5 * time.Minute

// visitor is the per-IP state: open connections and a message bucket that
// refills in whole windows.
type visitor struct {
	connections int
	tokens      int
	lastRefill  time.Time
}

func (v *visitor) refill(now time.Time, rate int, window time.Duration) {
	elapsed := now.Sub(v.lastRefill)
	if elapsed < window {
		return
	}
	windows := int(elapsed / window)
	v.tokens = min(v.tokens+windows*rate, rate)
	v.lastRefill = v.lastRefill.Add(time.Duration(windows) * window)
}

func (v *visitor) take() bool {
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// IPRateLimiter tracks per-IP connection counts and message rates. Close
// stops the background sweep.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once

	maxConnsPerIP int
	msgRate       int
	msgWindow     time.Duration
}

// NewIPRateLimiter allows maxConnsPerIP simultaneous connections and msgRate
// messages per msgWindow for each IP.
func NewIPRateLimiter(maxConnsPerIP, msgRate int, msgWindow time.Duration) *IPRateLimiter {
	rl := &IPRateLimiter{
		visitors:      make(map[string]*visitor),
		now:           time.Now,
		stop:          make(chan struct{}),
		maxConnsPerIP: maxConnsPerIP,
		msgRate:       msgRate,
		msgWindow:     msgWindow,
	}
	go rl.cleanup(sweepEvery)
	return rl
}

// visitor returns the state for ip, creating it with a full bucket.
// Caller holds mu.
func (rl *IPRateLimiter) visitor(ip string) *visitor {
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{tokens: rl.msgRate, lastRefill: rl.now()}
		rl.visitors[ip] = v
	}
	return v
}

// ConnectAllowed reserves a connection slot for ip if one is free.
func (rl *IPRateLimiter) ConnectAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v := rl.visitor(ip)
	if v.connections >= rl.maxConnsPerIP {
		return false
	}
	v.connections++
	return true
}

// Disconnect releases a connection slot.
func (rl *IPRateLimiter) Disconnect(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors[ip]; ok && v.connections > 0 {
		v.connections--
	}
}

// MessageAllowed spends one token from ip's bucket.
func (rl *IPRateLimiter) MessageAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v := rl.visitor(ip)
	v.refill(rl.now(), rl.msgRate, rl.msgWindow)
	return v.take()
}

// Tracked returns how many IPs currently have state.
func (rl *IPRateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

func (rl *IPRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// sweep forgets IPs with no open connections.
func (rl *IPRateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if v.connections == 0 {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *IPRateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// RealIP returns the first X-Forwarded-For hop when behind a proxy, else
// the host part of RemoteAddr.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
