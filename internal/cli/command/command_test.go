package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/yndnr/ecoply-go/internal/api"
	"github.com/yndnr/ecoply-go/internal/app"
	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/navigation"
	"github.com/yndnr/ecoply-go/internal/transport"
)

const principalJSON = `{"name":"Ana","email":"ana@example.com","user_type":"buyer"}`

func newMarketplace(t *testing.T) *httptest.Server {
	t.Helper()
	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"message":"token expired"}`)
			return false
		}
		return true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+api.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"message":"invalid email or password"}`)
			return
		}
		io.WriteString(w, `{"data":{"token":"tok-1","user":`+principalJSON+`}}`)
	})
	mux.HandleFunc("GET "+api.MePath, func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			io.WriteString(w, `{"data":`+principalJSON+`}`)
		}
	})
	mux.HandleFunc("GET "+api.OffersPath, func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			io.WriteString(w, `{"page":1,"page_size":10,"has_next":true,"data":[{"uuid":"o1","status":1,"energy_type":"solar"}]}`)
		}
	})
	mux.HandleFunc("GET "+api.ContractPath("p1"), func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			io.WriteString(w, `{"data":{"supplier":{"cnpj":"11222333000181","company_name":"Sol SA"},`+
				`"offer":{"uuid":"o1","price_per_mwh":150,"contracted_quantity_mwh":2.5,"energy_type":"solar"},`+
				`"buyer":{"cnpj":"99888777000166","company_name":"Fab Ltda"}}}`)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// harness runs CLI invocations that share a token file, like separate
// processes would.
type harness struct {
	t      *testing.T
	dir    string
	server string
}

func newHarness(t *testing.T, server string) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return &harness{t: t, dir: dir, server: server}
}

func (h *harness) cli(stdin string) (*bytes.Buffer, *bytes.Buffer, func(args ...string) error) {
	var stdout, stderr bytes.Buffer
	run := func(args ...string) error {
		a := App()
		a.Reader = strings.NewReader(stdin)
		a.Writer = &stdout
		a.ErrWriter = &stderr
		a.Metadata[optionsKey] = app.Options{
			ConfigPath: filepath.Join(h.dir, "cli.yaml"),
			Overrides: map[string]any{
				"server":          h.server,
				"credential.path": filepath.Join(h.dir, "token"),
			},
			LogOutput: io.Discard,
		}
		return a.RunContext(h.t.Context(), append([]string{"ecoply-cli"}, args...))
	}
	return &stdout, &stderr, run
}

func (h *harness) run(args ...string) (string, error) {
	out, _, run := h.cli("")
	err := run(args...)
	return out.String(), err
}

func TestLogin_ThenWhoami(t *testing.T) {
	h := newHarness(t, newMarketplace(t).URL)

	out, err := h.run("login", "--email", "ana@example.com", "--password", "secret")
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "Logged in as Ana (buyer)") {
		t.Errorf("login output = %q", out)
	}

	out, err = h.run("-o", "json", "whoami")
	if err != nil {
		t.Fatalf("whoami error = %v", err)
	}
	if !strings.Contains(out, `"email": "ana@example.com"`) {
		t.Errorf("whoami output = %q", out)
	}

	out, err = h.run("-o", "json", "status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, `"authenticated": true`) {
		t.Errorf("status output = %q", out)
	}
}

func TestLogin_Errors(t *testing.T) {
	h := newHarness(t, newMarketplace(t).URL)
	t.Setenv("ECOPLY_PASSWORD", "")

	tests := []struct {
		name string
		args []string
		want *domain.DomainError
	}{
		{"wrong password", []string{"login", "--email", "ana@example.com", "--password", "nope"}, domain.ErrInvalidCredentials},
		{"missing password", []string{"login", "--email", "ana@example.com"}, domain.ErrMissingArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
	if _, err := os.Stat(filepath.Join(h.dir, "token")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("token file should not exist after failed logins, stat error = %v", err)
	}
}

func TestOffersList(t *testing.T) {
	h := newHarness(t, newMarketplace(t).URL)

	if _, err := h.run("offers", "list"); !errors.Is(err, domain.ErrNavigationBlocked) {
		t.Fatalf("anonymous offers list error = %v, want ErrNavigationBlocked", err)
	}

	if _, err := h.run("login", "--email", "ana@example.com", "--password", "secret"); err != nil {
		t.Fatal(err)
	}
	out, err := h.run("offers", "list")
	if err != nil {
		t.Fatalf("offers list error = %v", err)
	}
	for _, want := range []string{"o1", "solar", "more with --page 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}

	out, err = h.run("-o", "json", "offers", "list")
	if err != nil {
		t.Fatal(err)
	}
	var page transport.Page[api.Offer]
	if err := json.Unmarshal([]byte(out), &page); err != nil {
		t.Fatalf("json output: %v\n%s", err, out)
	}
	if !page.HasNext || len(page.Data) != 1 || page.Data[0].Status != "1" {
		t.Errorf("page = %+v", page)
	}
}

func TestPurchasesContract(t *testing.T) {
	h := newHarness(t, newMarketplace(t).URL)
	if _, err := h.run("login", "--email", "ana@example.com", "--password", "secret"); err != nil {
		t.Fatal(err)
	}

	out, err := h.run("purchases", "contract", "p1")
	if err != nil {
		t.Fatalf("contract error = %v", err)
	}
	for _, want := range []string{"11.222.333/0001-81", "Fab Ltda", "R$ 375.00", "R$ 250.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "description") {
		t.Errorf("narrow output shows wide rows:\n%s", out)
	}

	out, err = h.run("-o", "json", "purchases", "contract", "p1")
	if err != nil {
		t.Fatal(err)
	}
	var c api.Contract
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		t.Fatalf("json output: %v\n%s", err, out)
	}
	if c.Supplier.CNPJ != "11222333000181" || c.Offer.ContractedQuantityMWh != 2.5 {
		t.Errorf("contract = %+v", c)
	}
}

func TestOffers_MissingArgument(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	for _, args := range [][]string{
		{"offers", "get"},
		{"offers", "delete"},
		{"offers", "purchase", "--quantity", "1"},
		{"purchases", "contract"},
		{"goto"},
	} {
		if _, err := h.run(args...); !errors.Is(err, domain.ErrMissingArgument) {
			t.Errorf("%v error = %v, want ErrMissingArgument", args, err)
		}
	}
}

func TestGoto(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"public path", []string{"goto", "/register"}, "/register (register)\n"},
		{"guarded path", []string{"goto", "/offer/42"}, "Redirected to /login (login)\n"},
		{"guarded name", []string{"goto", "checkout", "id=7"}, "Redirected to /login (login)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.run(tt.args...)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}

	if _, err := h.run("goto", "checkout", "id"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("bad param error = %v, want ErrInvalidArgument", err)
	}
	if _, err := h.run("goto", "/nowhere"); !errors.Is(err, domain.ErrUnknownRoute) {
		t.Errorf("unknown path error = %v, want ErrUnknownRoute", err)
	}
}

func TestRoutes(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")

	out, err := h.run("-o", "json", "routes")
	if err != nil {
		t.Fatal(err)
	}
	var rows []routeRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("json output: %v\n%s", err, out)
	}
	byName := make(map[string]routeRow)
	for _, r := range rows {
		byName[r.Name] = r
	}
	if !byName["manage-offer"].Auth {
		t.Error("manage-offer should inherit the auth requirement of dashboard")
	}
	if byName["login"].Auth {
		t.Error("login should be public")
	}
	if !byName["home"].Current {
		t.Error("home should be the current route")
	}
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t, "https://api.example.com")
	path := filepath.Join(h.dir, "cli.yaml")

	out, err := h.run("config", "path")
	if err != nil || strings.TrimSpace(out) != path {
		t.Fatalf("config path = %q, %v", out, err)
	}

	if _, err := h.run("config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "server: https://api.example.com") {
		t.Errorf("written config = %s", data)
	}

	if _, err := h.run("config", "init"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("second init error = %v, want ErrInvalidArgument", err)
	}
	if _, err := h.run("config", "init", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}

	t.Setenv("ECOPLY_CREDENTIAL_PASSPHRASE", "hunter2")
	out, err = h.run("-o", "yaml", "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("config show leaked the passphrase:\n%s", out)
	}

	out, err = h.run("config", "sources")
	if err != nil {
		t.Fatalf("config sources error = %v", err)
	}
	for _, want := range []string{"defaults", "file", path, "env", "overrides"} {
		if !strings.Contains(out, want) {
			t.Errorf("config sources missing %q:\n%s", want, out)
		}
	}

	if _, err := h.run("--output", "xml", "config", "validate"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("validate error = %v, want ErrInvalidArgument", err)
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	out, err := h.run("-o", "json", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"version": "`) || !strings.Contains(out, `"go_version": "go`) {
		t.Errorf("version output = %q", out)
	}
}

func TestRepl_SharesRuntime(t *testing.T) {
	h := newHarness(t, newMarketplace(t).URL)
	historyFile := filepath.Join(h.dir, "history")

	script := strings.Join([]string{
		"offers list",
		"login --email ana@example.com --password secret",
		"offers list",
		"repl",
		"exit",
	}, "\n") + "\n"
	stdout, stderr, run := h.cli(script)

	if err := run("repl", "--history-file", historyFile); err != nil {
		t.Fatalf("repl error = %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "ecoply:/login> ") {
		t.Errorf("prompt should follow the redirect to login:\n%s", out)
	}
	if !strings.Contains(out, "ecoply:/dashboard> ") {
		t.Errorf("prompt should show the dashboard after login:\n%s", out)
	}
	if !strings.Contains(out, "o1") {
		t.Errorf("offers list after login should print offers:\n%s", out)
	}
	errOut := stderr.String()
	if !strings.Contains(errOut, "navigation redirected") {
		t.Errorf("blocked command should report an error:\n%s", errOut)
	}
	if !strings.Contains(errOut, "already in an interactive session") {
		t.Errorf("nested repl should be refused:\n%s", errOut)
	}

	data, err := os.ReadFile(historyFile)
	if err != nil {
		t.Fatalf("history not saved: %v", err)
	}
	if !strings.Contains(string(data), "offers list") || strings.Contains(string(data), "secret") {
		t.Errorf("history = %s", data)
	}
}

func TestCommandPaths(t *testing.T) {
	paths := commandPaths("", Commands())
	for _, want := range []string{"login", "offers list", "offers purchase", "purchases contract", "config init"} {
		if !slices.Contains(paths, want) {
			t.Errorf("commandPaths() missing %q", want)
		}
	}
}

func TestRouteTargets(t *testing.T) {
	got := routeTargets(navigation.MustTable(navigation.DefaultRoutes()...))
	for _, want := range []string{"login", "/login", "dashboard", "offer-detail"} {
		if !slices.Contains(got, want) {
			t.Errorf("routeTargets() missing %q", want)
		}
	}
	if slices.ContainsFunc(got, func(s string) bool { return strings.Contains(s, ":") }) {
		t.Errorf("routeTargets() offers parameterised paths: %q", got)
	}
}

func TestPrintError_BadCredentialsIsNotExpiry(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, domain.ErrInvalidCredentials.WithDetails("invalid email or password"))
	if strings.Contains(buf.String(), "session has ended") {
		t.Errorf("bad credentials reported as an ended session: %q", buf.String())
	}
}

func TestPrintError_Hints(t *testing.T) {
	tests := []struct {
		name string
		err  error
		hint string
	}{
		{"expired", domain.ErrSessionExpired, "login' again"},
		{"bad credentials", domain.ErrInvalidCredentials.WithDetails("invalid email or password"), "email and password"},
		{"blocked", domain.ErrNavigationBlocked.WithDetails("dashboard"), "ecoply-cli logout' first"},
		{"sealed", domain.ErrCredentialSealed, "ECOPLY_CREDENTIAL_PASSPHRASE"},
		{"not found", &transport.APIError{StatusCode: http.StatusNotFound, Message: "no offer"}, "does not exist"},
		{"plain", errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintError(&buf, tt.err)
			out := buf.String()
			if !strings.HasPrefix(out, "error: ") {
				t.Errorf("output = %q", out)
			}
			if tt.hint == "" && strings.Contains(out, "hint:") {
				t.Errorf("unexpected hint: %q", out)
			}
			if tt.hint != "" && !strings.Contains(out, tt.hint) {
				t.Errorf("output = %q, want hint containing %q", out, tt.hint)
			}
		})
	}
}
