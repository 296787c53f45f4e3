// Package shutdown runs cleanup hooks when the CLI exits. Signals cancel
// the command context; the hooks run once the command has returned.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
)

// DefaultTimeout bounds the total time given to shutdown hooks.
const DefaultTimeout = 5 * time.Second

type hook struct {
	name string
	fn   func(context.Context) error
}

// run converts a panic in the hook into an error.
func (hk hook) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return hk.fn(ctx)
}

// Handler handles graceful shutdown.
type Handler struct {
	timeout time.Duration
	logger  logger.Logger
	hooks   []hook
	mu      sync.Mutex
	once    sync.Once
	done    chan struct{}
	err     error
}

// NewHandler creates a new shutdown handler. A non-positive timeout uses
// DefaultTimeout and a nil logger discards output.
func NewHandler(timeout time.Duration, l logger.Logger) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if l == nil {
		l = logger.Discard()
	}
	return &Handler{
		timeout: timeout,
		logger:  l.With("component", "shutdown"),
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a named shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// Shutdown runs every hook once, newest first, and returns their joined
// errors. Later calls return the result of the first.
func (h *Handler) Shutdown() error {
	h.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]hook, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			if err := hooks[i].run(ctx); err != nil {
				h.logger.Warn("shutdown hook failed", "hook", hooks[i].name, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", hooks[i].name, err))
				continue
			}
			h.logger.Debug("shutdown hook done", "hook", hooks[i].name)
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
