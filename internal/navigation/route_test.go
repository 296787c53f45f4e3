package navigation

import (
	"errors"
	"testing"

	"github.com/yndnr/ecoply-go/internal/core/domain"
)

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name   string
		routes []Route
	}{
		{"missing name", []Route{{Path: "/"}}},
		{"relative path", []Route{{Name: "a", Path: "a"}}},
		{"duplicate", []Route{{Name: "a", Path: "/a"}, {Name: "a", Path: "/b"}}},
		{"unknown parent", []Route{{Name: "a", Path: "/a", Parent: "b"}}},
		{"parent cycle", []Route{{Name: "a", Path: "/a", Parent: "b"}, {Name: "b", Path: "/b", Parent: "a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(tt.routes...); err == nil {
				t.Error("NewTable() error = nil")
			}
		})
	}
}

func TestTable_Resolve(t *testing.T) {
	table := MustTable(DefaultRoutes()...)

	tests := []struct {
		path         string
		wantName     string
		wantParam    string
		requiresAuth bool
	}{
		{"/", RouteHome, "", false},
		{"/login", RouteLogin, "", false},
		{"/login/", RouteLogin, "", false},
		{"/register?next=/dashboard", RouteRegister, "", false},
		{"/dashboard", RouteDashboard, "", true},
		{"/offer/abc-123", RouteOfferDetail, "abc-123", true},
		{"/checkout/9", RouteCheckout, "9", true},
		{"/dashboard/offers/7", RouteManageOffer, "7", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			loc, err := table.Resolve(tt.path)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if loc.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", loc.Name(), tt.wantName)
			}
			if tt.wantParam != "" && loc.Params["id"] != tt.wantParam {
				t.Errorf("Params[id] = %q, want %q", loc.Params["id"], tt.wantParam)
			}
			if loc.RequiresAuth() != tt.requiresAuth {
				t.Errorf("RequiresAuth() = %v, want %v", loc.RequiresAuth(), tt.requiresAuth)
			}
		})
	}
}

func TestTable_Resolve_Unknown(t *testing.T) {
	table := MustTable(DefaultRoutes()...)
	for _, path := range []string{"/nope", "/offer", "/offer/1/extra"} {
		if _, err := table.Resolve(path); !errors.Is(err, domain.ErrUnknownRoute) {
			t.Errorf("Resolve(%q) error = %v, want ErrUnknownRoute", path, err)
		}
	}
}

func TestTable_Build(t *testing.T) {
	table := MustTable(DefaultRoutes()...)

	loc, err := table.Build(RouteCheckout, map[string]string{"id": "42"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if loc.Path != "/checkout/42" {
		t.Errorf("Path = %q, want /checkout/42", loc.Path)
	}

	if _, err := table.Build(RouteCheckout, nil); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("Build() without param error = %v, want ErrMissingArgument", err)
	}
	if _, err := table.Build("nope", nil); !errors.Is(err, domain.ErrUnknownRoute) {
		t.Errorf("Build(unknown) error = %v, want ErrUnknownRoute", err)
	}
}

func TestLocation_MatchedChain(t *testing.T) {
	table := MustTable(DefaultRoutes()...)
	loc, err := table.Resolve("/dashboard/offers/1")
	if err != nil {
		t.Fatal(err)
	}
	if len(loc.Matched) != 2 || loc.Matched[0].Name != RouteDashboard || loc.Matched[1].Name != RouteManageOffer {
		t.Errorf("Matched = %v, want [dashboard manage-offer]", loc.Matched)
	}
	if loc.Route.Meta.RequiresAuth {
		t.Error("child route should inherit RequiresAuth, not declare it")
	}
	if !loc.RequiresAuth() {
		t.Error("RequiresAuth() = false for a child of an auth route")
	}
}

func TestTable_RequiresAuth(t *testing.T) {
	table := MustTable(DefaultRoutes()...)
	tests := []struct {
		name string
		want bool
	}{
		{RouteHome, false},
		{RouteLogin, false},
		{RouteDashboard, true},
		{RouteManageOffer, true},
		{"nope", false},
	}
	for _, tt := range tests {
		if got := table.RequiresAuth(tt.name); got != tt.want {
			t.Errorf("RequiresAuth(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
