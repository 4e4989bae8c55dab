package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientLimiter_IdleClientsExpire(t *testing.T) {
	l := newClientLimiter(20, 40, 50*time.Millisecond)
	h := l.middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 1000; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
		req.RemoteAddr = fmt.Sprintf("10.0.%d.%d:4242", i/256, i%256)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	if n := l.clients.ItemCount(); n != 1000 {
		t.Fatalf("clients = %d, want 1000", n)
	}

	time.Sleep(120 * time.Millisecond)
	l.clients.DeleteExpired()
	if n := l.clients.ItemCount(); n != 0 {
		t.Errorf("clients after idle period = %d, want 0", n)
	}
}

func TestClientLimiter_SameClientSharesBucket(t *testing.T) {
	l := newClientLimiter(1, 2, time.Minute)
	a := l.get("192.0.2.1")
	if b := l.get("192.0.2.1"); a != b {
		t.Fatal("same client got two buckets")
	}
	if !a.Allow() || !a.Allow() || a.Allow() {
		t.Error("bucket should allow exactly burst requests")
	}
	if c := l.get("192.0.2.2"); c == a || !c.Allow() {
		t.Error("other client should have its own full bucket")
	}
}

func TestClientLimiter_ExpiredClientStartsFresh(t *testing.T) {
	l := newClientLimiter(0.001, 1, 30*time.Millisecond)
	first := l.get("192.0.2.1")
	if !first.Allow() || first.Allow() {
		t.Fatal("burst of one expected")
	}
	time.Sleep(60 * time.Millisecond)
	if again := l.get("192.0.2.1"); again == first || !again.Allow() {
		t.Error("an expired client should get a new full bucket")
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:51000"
	if got := clientKey(req); got != "203.0.113.9" {
		t.Errorf("clientKey = %q", got)
	}
	req.RemoteAddr = "pipe"
	if got := clientKey(req); got != "pipe" {
		t.Errorf("clientKey without port = %q", got)
	}
}
