package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"travel-admin/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenService(auth.TokenConfig{Secret: "0123456789abcdef0123456789abcdef"})
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func gatedRouter(tokens *auth.TokenService) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(quietLogger()), SessionGate(tokens, []string{"/dashboard"}, "/login"))
	r.GET("/dashboard", func(c *gin.Context) {
		claims, _ := CurrentAdmin(c)
		c.JSON(http.StatusOK, gin.H{"adminId": claims.AdminID})
	})
	r.GET("/dashboard/trips", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/dashboards", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

// ---------- session gate ----------

func TestSessionGateRedirectsWithoutCookie(t *testing.T) {
	r := gatedRouter(testTokens(t))

	for _, path := range []string{"/dashboard", "/dashboard/trips"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusTemporaryRedirect || rec.Header().Get("Location") != "/login" {
			t.Fatalf("%s: got %d location %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestSessionGateRedirectsInvalidCookie(t *testing.T) {
	r := gatedRouter(testTokens(t))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSessionGateAllowsValidCookie(t *testing.T) {
	tokens := testTokens(t)
	r := gatedRouter(tokens)
	token, _ := tokens.IssueSessionToken(auth.SessionIdentity{AdminID: 42, Email: "a@acme.co"})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"adminId":42}` {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSessionGateIgnoresOtherPaths(t *testing.T) {
	r := gatedRouter(testTokens(t))
	for _, path := range []string{"/login", "/dashboards"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
	}
}

// ---------- require session ----------

func TestRequireSession(t *testing.T) {
	tokens := testTokens(t)
	r := gin.New()
	r.GET("/me", RequireSession(tokens), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusUnauthorized || rec.Body.String() != `{"message":"Unauthorized"}` {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}

	reset, _ := tokens.IssueResetToken(1, "a@acme.co")
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+reset)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("reset token accepted as session: %d", rec.Code)
	}

	session, _ := tokens.IssueSessionToken(auth.SessionIdentity{AdminID: 1})
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+session)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("bearer session rejected: %d", rec.Code)
	}
}

// ---------- request id / rate limit / recovery ----------

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if id := rec.Header().Get(RequestIDHeader); id == "" || id != rec.Body.String() {
		t.Fatalf("generated id mismatch: header %q body %q", id, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "abc-123" {
		t.Fatalf("inbound id not reused: %q", rec.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", RateLimit(2), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestRateLimitZeroDisables(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", RateLimit(0), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: code = %d", i, rec.Code)
		}
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(quietLogger()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError || rec.Body.String() != `{"message":"Something went wrong"}` {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}
