package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/taxlens/invoice-analyzer/internal/common"
)

func sessionRequest(t *testing.T, userID uint) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	CreateSession(rec, userID)
	req := httptest.NewRequest(http.MethodGet, "/v1/batches", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	req := sessionRequest(t, 42)
	uid, ok := ParseSession(req)
	if !ok {
		t.Fatal("valid session did not parse")
	}
	if uid != 42 {
		t.Errorf("uid = %d, want 42", uid)
	}
}

func TestParseSessionRejectsTampering(t *testing.T) {
	req := sessionRequest(t, 42)
	c, err := req.Cookie("session")
	if err != nil {
		t.Fatalf("cookie: %v", err)
	}

	forged := strings.Replace(c.Value, "42.", "1.", 1)
	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: "session", Value: forged})
	if _, ok := ParseSession(bad); ok {
		t.Error("tampered uid accepted")
	}

	noDot := httptest.NewRequest(http.MethodGet, "/", nil)
	noDot.AddCookie(&http.Cookie{Name: "session", Value: "42"})
	if _, ok := ParseSession(noDot); ok {
		t.Error("unsigned value accepted")
	}
}

func TestParseSessionMissingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ParseSession(req); ok {
		t.Error("missing cookie accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("password stored in plaintext")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}

func TestMiddlewareAttachesUserID(t *testing.T) {
	var gotUID uint
	var gotOK bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, gotOK = common.UserIDFromContext(r.Context())
	})

	Middleware(inner).ServeHTTP(httptest.NewRecorder(), sessionRequest(t, 7))
	if !gotOK || gotUID != 7 {
		t.Errorf("context uid = %d ok=%v, want 7 true", gotUID, gotOK)
	}
}

func TestRequireAuth(t *testing.T) {
	protected := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// API request without a session: 401 JSON.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/batches", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("api status = %d, want 401", rec.Code)
	}

	// Browser request without a session: redirect to /login.
	rec = httptest.NewRecorder()
	browser := httptest.NewRequest(http.MethodGet, "/export", nil)
	browser.Header.Set("Accept", "text/html")
	protected.ServeHTTP(rec, browser)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("browser status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect = %q, want /login", loc)
	}

	// Authenticated request passes through.
	rec = httptest.NewRecorder()
	Middleware(protected).ServeHTTP(rec, sessionRequest(t, 9))
	if rec.Code != http.StatusNoContent {
		t.Errorf("authed status = %d, want 204", rec.Code)
	}
}

func TestRequireAuthVerifier(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return uid == 1 })
	t.Cleanup(func() { SetUserVerifier(nil) })

	protected := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, sessionRequest(t, 1))
	if rec.Code != http.StatusNoContent {
		t.Errorf("existing user status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, sessionRequest(t, 2))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("deleted user status = %d, want 401", rec.Code)
	}
}
