package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"alias-heaven-calculator/internal/buildinfo"
	"alias-heaven-calculator/internal/models"
	"alias-heaven-calculator/internal/roles"
	"alias-heaven-calculator/internal/session"
	"alias-heaven-calculator/pkg/metrics"
)

type fixture struct {
	router   *mux.Router
	sessions *session.Store
	reg      *metrics.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ts, err := LoadTemplates(os.DirFS("../../web/templates"))
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	f := &fixture{router: mux.NewRouter(), sessions: session.NewStore(), reg: metrics.NewRegistry()}
	h := NewHandler(Options{
		Provider:  roles.NewProvider(roles.NewDefault()),
		Sessions:  f.sessions,
		Templates: ts,
		Metrics:   f.reg,
		Build:     buildinfo.Info{Version: "1.2.3"},
	})
	h.Register(f.router)
	return f
}

func (f *fixture) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", cookieName)
	return nil
}

func postForm(vals url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPageStartsEmpty(t *testing.T) {
	f := newFixture(t)
	rr := f.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	sessionCookie(t, rr)
	body := rr.Body.String()
	for _, want := range []string{"Final role: Legacy 0", "Final role: Negacy 0", "Final role: No quacker role", "Negacy roles you converted into legacy ones"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if f.sessions.Count() != 1 {
		t.Fatalf("sessions = %d, want 1", f.sessions.Count())
	}
}

func TestSubmitFormPersistsInSession(t *testing.T) {
	f := newFixture(t)
	first := f.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	cookie := sessionCookie(t, first)

	rr := f.do(postForm(url.Values{
		"general_messages":   {"600"},
		"secret_area":        {"on"},
		"negacies_converted": {"1"},
		"negacies_earned":    {"4"},
		"quacks":             {"120"},
	}), cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}

	page := f.do(httptest.NewRequest(http.MethodGet, "/", nil), cookie).Body.String()
	for _, want := range []string{"Final role: Legacy -2", "Final role: Negacy 3", "Final role: Loud Quacker"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if f.sessions.Count() != 1 {
		t.Fatalf("sessions = %d, want 1", f.sessions.Count())
	}
}

func TestSubmitRejectsNonNumbers(t *testing.T) {
	f := newFixture(t)
	rr := f.do(postForm(url.Values{"quacks": {"lots"}}), nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSubmitClampsNegatives(t *testing.T) {
	f := newFixture(t)
	rr := f.do(postForm(url.Values{"quacks": {"-50"}, "negacies_earned": {"-3"}}), nil)
	cookie := sessionCookie(t, rr)
	in, ok := f.sessions.Get(cookie.Value)
	if !ok {
		t.Fatal("session not stored")
	}
	if in.Quacks != 0 || in.NegaciesEarned != 0 {
		t.Fatalf("input = %+v, want clamped counters", in)
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	cookie := sessionCookie(t, f.do(postForm(url.Values{"quacks": {"500"}}), nil))

	rr := f.do(httptest.NewRequest(http.MethodPost, "/reset", nil), cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rr.Code)
	}
	in, _ := f.sessions.Get(cookie.Value)
	if in != (models.Input{}) {
		t.Fatalf("input after reset = %+v", in)
	}
}

func TestCalculateAPI(t *testing.T) {
	f := newFixture(t)
	body := `{"general_messages":600,"secret_area":true,"negacies_converted":1,"quacks":-10}`
	rr := f.do(httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body)), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp calculationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Result.Legacy != -2 || resp.Result.Negacy != -1 {
		t.Fatalf("result = %+v", resp.Result)
	}
	if resp.Input.Quacks != 0 {
		t.Fatalf("quacks not clamped: %d", resp.Input.Quacks)
	}
	if len(resp.Lines) != 3 || resp.Lines[2] != "Final role: No quacker role" {
		t.Fatalf("lines = %v", resp.Lines)
	}
	if f.sessions.Count() != 0 {
		t.Fatal("calculate must not create a session")
	}
	if got := f.reg.Counter("role_calculations_total", "").Get(); got != 1 {
		t.Fatalf("role_calculations_total = %d, want 1", got)
	}
}

func TestCalculateAPIRejectsUnknownFields(t *testing.T) {
	f := newFixture(t)
	rr := f.do(httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(`{"quaks":3}`)), nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSessionAPI(t *testing.T) {
	f := newFixture(t)
	get := f.do(httptest.NewRequest(http.MethodGet, "/api/session", nil), nil)
	cookie := sessionCookie(t, get)

	patch := httptest.NewRequest(http.MethodPatch, "/api/session", strings.NewReader(`{"quacks":250,"legacy_to_negacy":true,"negacies_converted":2}`))
	rr := f.do(patch, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp calculationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID != cookie.Value {
		t.Fatalf("session id = %q, want %q", resp.SessionID, cookie.Value)
	}
	if resp.Result.QuackerRole != "Duck Lord" || resp.Result.Legacy != -2 || resp.Result.Negacy != 2 {
		t.Fatalf("result = %+v", resp.Result)
	}

	// a second patch only touches what it names
	rr = f.do(httptest.NewRequest(http.MethodPatch, "/api/session", strings.NewReader(`{"negacies_earned":1}`)), cookie)
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Input.Quacks != 250 || resp.Input.NegaciesEarned != 1 {
		t.Fatalf("input = %+v", resp.Input)
	}

	del := f.do(httptest.NewRequest(http.MethodDelete, "/api/session", nil), cookie)
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", del.Code)
	}
	if _, ok := f.sessions.Get(cookie.Value); ok {
		t.Fatal("session still present after delete")
	}
}

func TestUnknownSessionCookieStartsFresh(t *testing.T) {
	f := newFixture(t)
	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/session", nil), &http.Cookie{Name: cookieName, Value: "gone"})
	if got := sessionCookie(t, rr).Value; got == "gone" {
		t.Fatal("stale session id reused")
	}
}

func TestRolesAPI(t *testing.T) {
	f := newFixture(t)
	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/roles", nil), nil)
	var cfg roles.Config
	if err := json.Unmarshal(rr.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("served config invalid: %v", err)
	}
	if cfg.SecretAreaCost != 5 {
		t.Fatalf("secret area cost = %d", cfg.SecretAreaCost)
	}
}

func TestInfoPage(t *testing.T) {
	f := newFixture(t)
	rr := f.do(httptest.NewRequest(http.MethodGet, "/info", nil), nil)
	body := rr.Body.String()
	for _, want := range []string{"Pandicon", "Version: 1.2.3", "Build time unknown"} {
		if !strings.Contains(body, want) {
			t.Errorf("info page missing %q", want)
		}
	}
}

func TestLoadTemplatesMissingPage(t *testing.T) {
	if _, err := LoadTemplates(os.DirFS(t.TempDir())); err == nil {
		t.Fatal("expected error for empty template dir")
	}
}

func TestInfoAPIOmitsUnknownBuildTime(t *testing.T) {
	f := newFixture(t)
	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/info", nil), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "built_at") || strings.Contains(body, "0001-01-01") {
		t.Fatalf("dev build should not report a build time: %s", body)
	}
	if !strings.Contains(body, `"built_on":"Build time unknown"`) {
		t.Fatalf("body = %s", body)
	}
}
