package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yndnr/zpipe/internal/telemetry/logger"
)

// DefaultTimeout bounds the time spent in shutdown hooks.
const DefaultTimeout = 5 * time.Second

// Hook is a named cleanup step.
type Hook struct {
	Name string
	Fn   func(context.Context) error
}

// Handler handles graceful shutdown.
type Handler struct {
	timeout time.Duration
	log     logger.Logger

	mu     sync.Mutex
	hooks  []Hook
	cancel context.CancelFunc
	stop   func()

	once sync.Once
	err  error
	done chan struct{}
}

// NewHandler creates a new shutdown handler. A nil logger discards.
func NewHandler(timeout time.Duration, log logger.Logger) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		timeout: timeout,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Context returns a child of parent that is cancelled on the first
// SIGINT or SIGTERM, or when Trigger is called.
func (h *Handler) Context(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	stopCh := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			h.log.Info("signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		case <-stopCh:
		}
	}()

	h.mu.Lock()
	h.cancel = cancel
	h.stop = func() {
		signal.Stop(sigCh)
		close(stopCh)
	}
	h.mu.Unlock()

	return ctx
}

// Trigger cancels the context returned by Context.
func (h *Handler) Trigger() {
	h.mu.Lock()
	cancel := h.cancel
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, Hook{Name: name, Fn: fn})
}

// Run cancels the context, executes the hooks and returns their joined
// errors. Only the first call does any work.
func (h *Handler) Run() error {
	h.once.Do(func() {
		h.mu.Lock()
		hooks := make([]Hook, len(h.hooks))
		copy(hooks, h.hooks)
		cancel, stop := h.cancel, h.stop
		h.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if stop != nil {
			stop()
		}

		ctx, done := context.WithTimeout(context.Background(), h.timeout)
		defer done()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			hook := hooks[i]
			if err := hook.Fn(ctx); err != nil {
				h.log.Warn("shutdown hook failed", "hook", hook.Name, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", hook.Name, err))
				continue
			}
			h.log.Debug("shutdown hook done", "hook", hook.Name)
		}
		h.err = errors.Join(errs...)
		close(h.done)
	})
	return h.err
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
