package navigation

import (
	"fmt"
	"strings"

	"github.com/yndnr/ecoply-go/internal/core/domain"
)

// Route names of the marketplace client.
const (
	RouteHome        = "home"
	RouteLogin       = "login"
	RouteRegister    = "register"
	RouteDashboard   = "dashboard"
	RouteOfferDetail = "offer-detail"
	RouteCheckout    = "checkout"
	RouteManageOffer = "manage-offer"
)

// Meta carries per-route flags read by guards.
type Meta struct {
	RequiresAuth bool
	Title        string
}

// Route is a named screen. Path segments starting with ':' are params.
type Route struct {
	Name   string
	Path   string
	Parent string
	Meta   Meta
}

// Location is a resolved navigation target.
type Location struct {
	Route  Route
	Path   string
	Params map[string]string
	// Matched is the route chain from the outermost ancestor to Route.
	Matched []Route
}

// Name returns the route name, or "" for the zero Location.
func (l Location) Name() string {
	return l.Route.Name
}

// RequiresAuth reports whether the route or any ancestor requires a session.
func (l Location) RequiresAuth() bool {
	for _, r := range l.Matched {
		if r.Meta.RequiresAuth {
			return true
		}
	}
	return false
}

// Table is an immutable set of routes.
type Table struct {
	routes []Route
	byName map[string]Route
}

// DefaultRoutes returns the marketplace screens.
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteHome, Path: "/", Meta: Meta{Title: "Ecoply"}},
		{Name: RouteLogin, Path: "/login", Meta: Meta{Title: "Sign in"}},
		{Name: RouteRegister, Path: "/register", Meta: Meta{Title: "Create account"}},
		{Name: RouteDashboard, Path: "/dashboard", Meta: Meta{RequiresAuth: true, Title: "Dashboard"}},
		{Name: RouteOfferDetail, Path: "/offer/:id", Meta: Meta{RequiresAuth: true, Title: "Offer"}},
		{Name: RouteCheckout, Path: "/checkout/:id", Meta: Meta{RequiresAuth: true, Title: "Checkout"}},
		{Name: RouteManageOffer, Path: "/dashboard/offers/:id", Parent: RouteDashboard, Meta: Meta{Title: "Manage offer"}},
	}
}

// NewTable validates routes and builds a table.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{byName: make(map[string]Route, len(routes))}
	for _, r := range routes {
		if r.Name == "" {
			return nil, fmt.Errorf("navigation: route with path %q has no name", r.Path)
		}
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("navigation: route %q: path must start with /", r.Name)
		}
		if _, dup := t.byName[r.Name]; dup {
			return nil, fmt.Errorf("navigation: duplicate route %q", r.Name)
		}
		t.byName[r.Name] = r
		t.routes = append(t.routes, r)
	}
	for _, r := range t.routes {
		if r.Parent == "" {
			continue
		}
		if _, ok := t.byName[r.Parent]; !ok {
			return nil, fmt.Errorf("navigation: route %q: unknown parent %q", r.Name, r.Parent)
		}
		if _, err := t.chain(r); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustTable is NewTable for static route sets.
func MustTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns the routes in declaration order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Lookup finds a route by name.
func (t *Table) Lookup(name string) (Route, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// RequiresAuth reports whether the named route or any ancestor requires a session.
func (t *Table) RequiresAuth(name string) bool {
	r, ok := t.byName[name]
	if !ok {
		return false
	}
	matched, err := t.chain(r)
	if err != nil {
		return false
	}
	return Location{Route: r, Matched: matched}.RequiresAuth()
}

// Build resolves a named route with params.
func (t *Table) Build(name string, params map[string]string) (Location, error) {
	r, ok := t.byName[name]
	if !ok {
		return Location{}, domain.ErrUnknownRoute.WithDetails(name)
	}

	segs := splitPath(r.Path)
	used := make(map[string]string)
	for i, seg := range segs {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		key := seg[1:]
		v := params[key]
		if v == "" {
			return Location{}, domain.ErrMissingArgument.WithDetails(fmt.Sprintf("route %s needs %s", name, key))
		}
		segs[i] = v
		used[key] = v
	}
	return t.locate(r, "/"+strings.Join(segs, "/"), used)
}

// Resolve matches a concrete path such as /offer/42.
func (t *Table) Resolve(path string) (Location, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	want := splitPath(path)

	for _, r := range t.routes {
		params, ok := match(splitPath(r.Path), want)
		if ok {
			return t.locate(r, "/"+strings.Join(want, "/"), params)
		}
	}
	return Location{}, domain.ErrUnknownRoute.WithDetails(path)
}

func (t *Table) locate(r Route, path string, params map[string]string) (Location, error) {
	matched, err := t.chain(r)
	if err != nil {
		return Location{}, err
	}
	return Location{Route: r, Path: path, Params: params, Matched: matched}, nil
}

// chain returns r's ancestors followed by r.
func (t *Table) chain(r Route) ([]Route, error) {
	chain := []Route{r}
	seen := map[string]bool{r.Name: true}
	for r.Parent != "" {
		r = t.byName[r.Parent]
		if seen[r.Name] {
			return nil, fmt.Errorf("navigation: route %q: parent cycle", r.Name)
		}
		seen[r.Name] = true
		chain = append([]Route{r}, chain...)
	}
	return chain, nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return []string{}
	}
	return strings.Split(p, "/")
}

func match(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			if path[i] == "" {
				return nil, false
			}
			params[seg[1:]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	return params, true
}
