package navigation

import (
	"sync"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
	"github.com/yndnr/ecoply-go/internal/telemetry/metric"
)

// DefaultMaxRedirects bounds guard redirects per navigation.
const DefaultMaxRedirects = 8

// Decision is a guard's verdict. An empty Redirect means proceed.
type Decision struct {
	Redirect string
}

// Proceed lets the navigation continue to the next guard.
func Proceed() Decision {
	return Decision{}
}

// RedirectTo aborts the attempt and starts a new one at name.
func RedirectTo(name string) Decision {
	return Decision{Redirect: name}
}

// Guard runs before every navigation attempt. Guards run under the
// router lock and must not call back into the router.
type Guard func(to, from Location) Decision

// Router tracks the current screen.
type Router struct {
	table        *Table
	logger       logger.Logger
	metrics      *metric.Registry
	maxRedirects int

	mu      sync.Mutex
	guards  []Guard
	current Location
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger sets the logger.
func WithRouterLogger(l logger.Logger) RouterOption {
	return func(r *Router) {
		r.logger = l
	}
}

// WithRouterMetrics records navigation outcomes in reg.
func WithRouterMetrics(reg *metric.Registry) RouterOption {
	return func(r *Router) {
		r.metrics = reg
	}
}

// WithMaxRedirects overrides DefaultMaxRedirects.
func WithMaxRedirects(n int) RouterOption {
	return func(r *Router) {
		r.maxRedirects = n
	}
}

// NewRouter creates a router over table. The initial location is the
// route at "/" when the table has one, committed without running guards.
func NewRouter(table *Table, opts ...RouterOption) *Router {
	r := &Router{
		table:        table,
		logger:       logger.Default(),
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "router")
	if loc, err := table.Resolve("/"); err == nil {
		r.current = loc
	}
	return r
}

// Table returns the route table.
func (r *Router) Table() *Table {
	return r.table
}

// BeforeEach registers a guard. Guards run in registration order and the
// first redirect wins.
func (r *Router) BeforeEach(g Guard) {
	r.mu.Lock()
	r.guards = append(r.guards, g)
	r.mu.Unlock()
}

// Current returns the committed location.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Push navigates to a named route and returns the committed location,
// which differs from the target when a guard redirected.
func (r *Router) Push(name string, params map[string]string) (Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	to, err := r.table.Build(name, params)
	if err != nil {
		r.metrics.Navigation("error")
		return r.current, err
	}
	return r.navigateLocked(to)
}

// Navigate navigates to a concrete path such as /offer/42.
func (r *Router) Navigate(path string) (Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	to, err := r.table.Resolve(path)
	if err != nil {
		r.metrics.Navigation("error")
		return r.current, err
	}
	return r.navigateLocked(to)
}

// Redirect navigates to name unless it is already current, so repeated
// redirects to the same screen collapse into one.
func (r *Router) Redirect(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current.Name() == name {
		return nil
	}
	to, err := r.table.Build(name, nil)
	if err != nil {
		return err
	}
	_, err = r.navigateLocked(to)
	return err
}

func (r *Router) navigateLocked(to Location) (Location, error) {
	from := r.current
	requested := to.Name()

	for hops := 0; ; hops++ {
		if hops > r.maxRedirects {
			r.metrics.Navigation("error")
			r.logger.Warn("navigation did not settle", "target", requested, "hops", hops)
			return r.current, domain.ErrRedirectLoop.WithDetails(requested)
		}

		next := r.decideLocked(to, from)
		if next == "" {
			break
		}

		loc, err := r.table.Build(next, nil)
		if err != nil {
			r.metrics.Navigation("error")
			return r.current, err
		}
		r.logger.Debug("guard redirect", "from", to.Name(), "to", next)
		to = loc
	}

	r.current = to
	if to.Name() == requested {
		r.metrics.Navigation("proceed")
	} else {
		r.metrics.Navigation("redirect")
	}
	return to, nil
}

func (r *Router) decideLocked(to, from Location) string {
	for _, g := range r.guards {
		if d := g(to, from); d.Redirect != "" {
			return d.Redirect
		}
	}
	return ""
}
