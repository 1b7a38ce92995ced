package metric

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.Prometheus() == nil {
		t.Fatal("nil prometheus registry")
	}

	r.MessagesSent.WithLabelValues(PhaseReplay).Add(3)
	r.MessagesSent.WithLabelValues(PhaseInteractive).Inc()
	r.ThrottlePauses.Inc()

	body := scrape(t, r)
	for _, want := range []string{
		`zpipe_messages_sent_total{phase="replay"} 3`,
		`zpipe_messages_sent_total{phase="interactive"} 1`,
		`zpipe_throttle_pauses_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.MessagesReceived.Add(7)

	body := scrape(t, r)
	if !strings.Contains(body, "zpipe_messages_received_total 7") {
		t.Errorf("metric missing from exposition:\n%s", body)
	}
}

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	return rec.Body.String()
}

func TestServe(t *testing.T) {
	r := NewRegistry()
	s, err := Serve("127.0.0.1:0", r)
	if err != nil {
		t.Fatalf("Serve() error = %v", err)
	}

	resp, err := http.Get("http://" + s.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "OK" {
		t.Errorf("health body = %q", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestServe_BadAddr(t *testing.T) {
	if _, err := Serve("not-an-addr", NewRegistry()); err == nil {
		t.Error("expected listen error")
	}
}
