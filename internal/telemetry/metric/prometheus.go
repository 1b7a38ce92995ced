package metric

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zpipe"

// Publish phases used as the "phase" label of MessagesSent.
const (
	PhaseReplay      = "replay"
	PhaseInteractive = "interactive"
)

// Registry holds all zpipe metrics.
type Registry struct {
	reg *prometheus.Registry

	MessagesSent     *prometheus.CounterVec
	MessagesReceived prometheus.Counter
	ThrottlePauses   prometheus.Counter
	RecordsTruncated prometheus.Counter
	FramesMalformed  prometheus.Counter

	Replay *Collector
}

// NewRegistry creates a registry with every zpipe metric and the Go
// runtime collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Messages published, by phase (replay, interactive).",
		}, []string{"phase"}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Messages received by the subscriber.",
		}),
		ThrottlePauses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttle_pauses_total",
			Help:      "High-water-mark cool-down pauses taken during replay.",
		}),
		RecordsTruncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_truncated_total",
			Help:      "Truncated records encountered while reading a log.",
		}),
		FramesMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_malformed_total",
			Help:      "Received messages skipped for not having exactly two frames.",
		}),
		Replay: NewCollector(),
	}

	r.reg.MustRegister(
		r.MessagesSent,
		r.MessagesReceived,
		r.ThrottlePauses,
		r.RecordsTruncated,
		r.FramesMalformed,
		r.Replay,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

// Handler returns the /metrics HTTP handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Server serves /metrics and /health.
type Server struct {
	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	done   chan struct{}
	errVal error
}

// Serve starts a metrics server on addr in its own goroutine. The
// listener is bound before Serve returns, so a bad address fails fast.
func Serve(addr string, r *Registry) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metric: listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	s := &Server{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:   ln,
		done: make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.mu.Lock()
			s.errVal = err
			s.mu.Unlock()
		}
	}()
	return s, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server and waits for the serve goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.errVal
}
