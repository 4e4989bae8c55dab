package api

import (
	"net"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// defaultLimiterIdle is how long a client's bucket outlives its last request.
const defaultLimiterIdle = 5 * time.Minute

// clientLimiter keeps one token bucket per client address. Buckets of idle
// clients expire, so the set stays bounded by recent traffic.
type clientLimiter struct {
	clients *gocache.Cache
	rps     rate.Limit
	burst   int
}

func newClientLimiter(rps float64, burst int, idle time.Duration) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idle <= 0 {
		idle = defaultLimiterIdle
	}
	return &clientLimiter{
		clients: gocache.New(idle, idle),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (l *clientLimiter) get(client string) *rate.Limiter {
	if v, found := l.clients.Get(client); found {
		limiter := v.(*rate.Limiter)
		// Each request pushes the expiry back.
		l.clients.SetDefault(client, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(l.rps, l.burst)
	if err := l.clients.Add(client, limiter, gocache.DefaultExpiration); err != nil {
		// Lost the race to a concurrent request from the same client.
		if v, found := l.clients.Get(client); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// middleware rejects requests over the client's budget with 429.
func (l *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.get(clientKey(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
