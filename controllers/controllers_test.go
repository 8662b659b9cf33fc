package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"travel-admin/auth"
	"travel-admin/mailer"
	"travel-admin/middleware"
	"travel-admin/models"
	"travel-admin/repo"
	"travel-admin/services"
	"travel-admin/storage"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPassword = "correct-horse"
)

type nopMailer struct{}

func (nopMailer) Send(context.Context, mailer.Message) error { return nil }

type testApp struct {
	router *gin.Engine
	tokens *auth.TokenService
	admins *repo.MemoryAdminStore
	trips  *repo.MemoryTripStore
	admin  *models.Admin
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: testSecret})
	if err != nil {
		t.Fatal(err)
	}
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	admins := repo.NewMemoryAdminStore()
	trips := repo.NewMemoryTripStore()

	hash, _ := hasher.Hash(testPassword)
	admin := &models.Admin{Name: "Sarah Jones", Email: "sarah.jones@acme.co", PasswordHash: hash}
	if err := admins.Create(context.Background(), admin); err != nil {
		t.Fatal(err)
	}

	accounts := services.NewAccountService(services.AccountDeps{
		Admins: admins,
		Tokens: tokens,
		Hasher: hasher,
		Mailer: nopMailer{},
		AppURL: "http://localhost:3000",
	})
	tripSvc := services.NewTripService(trips)
	uploads := services.NewUploadService(storage.NewLocalStore(t.TempDir(), "/uploads"), 1<<20, nil, nil)

	ac := NewAuthController(accounts, CookieConfig{})
	pc := NewProfileController(accounts, tripSvc)
	tc := NewTripController(tripSvc)
	uc := NewUploadController(uploads)
	session := middleware.RequireSession(tokens)

	r := gin.New()
	r.POST("/auth/login", ac.Login)
	r.POST("/auth/logout", ac.Logout)
	r.POST("/auth/forgot-password", ac.ForgotPassword)
	r.POST("/auth/reset-password", ac.ResetPassword)
	r.POST("/auth/change-password", session, ac.ChangePassword)
	r.POST("/auth/change-email", session, ac.ChangeEmail)
	r.GET("/admin/profile", session, pc.GetProfile)
	r.PUT("/admin/profile", session, pc.UpdateProfile)
	r.GET("/dashboard", session, pc.Dashboard)
	r.GET("/trips", tc.GetTrips)
	r.GET("/trips/:id", tc.GetTrip)
	r.POST("/trips", session, tc.CreateTrip)
	r.PUT("/trips/:id", session, tc.UpdateTrip)
	r.DELETE("/trips/:id", session, tc.DeleteTrip)
	r.POST("/upload", session, uc.Upload)

	return &testApp{router: r, tokens: tokens, admins: admins, trips: trips, admin: admin}
}

func (a *testApp) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := a.tokens.IssueSessionToken(auth.SessionIdentity{
		AdminID: a.admin.ID, Email: a.admin.Email, Name: a.admin.Name,
	})
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

func (a *testApp) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) doJSON(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, cookie)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ---------- auth ----------

func TestLoginSetsSessionCookie(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/auth/login",
		`{"email":"Sarah.Jones@acme.co","password":"`+testPassword+`"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}

	cookie := findCookie(w, middleware.SessionCookie)
	if cookie == nil {
		t.Fatal("no session cookie")
	}
	if !cookie.HttpOnly || cookie.Path != "/" || cookie.MaxAge != 86400 || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("cookie attributes = %+v", cookie)
	}
	claims, err := app.tokens.VerifySessionToken(cookie.Value)
	if err != nil || claims.AdminID != app.admin.ID {
		t.Fatalf("claims = %+v err %v", claims, err)
	}

	body := decode(t, w)
	if body["message"] != "Login successful" {
		t.Fatalf("message = %v", body["message"])
	}
	admin := body["admin"].(map[string]any)
	if _, leaked := admin["passwordHash"]; leaked {
		t.Fatal("password hash serialized")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/auth/login",
		`{"email":"sarah.jones@acme.co","password":"wrong-password"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if findCookie(w, middleware.SessionCookie) != nil {
		t.Fatal("cookie set on failed login")
	}
	if msg := decode(t, w)["message"]; msg != services.MsgInvalidCredentials {
		t.Fatalf("message = %v", msg)
	}
}

func TestLoginMalformedBody(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/auth/login", `{"email":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != MsgInvalidPayload {
		t.Fatalf("message = %v", msg)
	}
}

func TestLoginValidationErrors(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/auth/login", `{"email":"nope","password":"123"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	errs, ok := body["errors"].(map[string]any)
	if !ok || errs["email"] == nil || errs["password"] == nil {
		t.Fatalf("errors = %v", body["errors"])
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/auth/logout", ``, app.sessionCookie(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	cookie := findCookie(w, middleware.SessionCookie)
	if cookie == nil || cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("cookie = %+v", cookie)
	}
	if msg := decode(t, w)["message"]; msg != "Logout successful" {
		t.Fatalf("message = %v", msg)
	}
}

func TestChangePasswordRequiresSession(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/auth/change-password",
		`{"currentPassword":"`+testPassword+`","newPassword":"brand-new-pass"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestChangePasswordThenLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/auth/change-password",
		`{"currentPassword":"`+testPassword+`","newPassword":"brand-new-pass","confirmPassword":"brand-new-pass"}`,
		app.sessionCookie(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}

	w = app.doJSON(http.MethodPost, "/auth/login",
		`{"email":"sarah.jones@acme.co","password":"brand-new-pass"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login with new password: %d", w.Code)
	}
}

func TestChangeEmailRejectsDemoAddress(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/auth/change-email",
		`{"newEmail":"admin@example.com","password":"`+testPassword+`"}`, app.sessionCookie(t))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	got, _ := app.admins.FindByID(context.Background(), app.admin.ID)
	if got.Email != "sarah.jones@acme.co" {
		t.Fatalf("email changed to %q", got.Email)
	}
}

func TestChangeEmailSuccess(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/auth/change-email",
		`{"newEmail":"sarah@travelco.io","password":"`+testPassword+`"}`, app.sessionCookie(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if msg := decode(t, w)["message"]; msg != "Email updated successfully" {
		t.Fatalf("message = %v", msg)
	}
}

func TestForgotPasswordHidesUnknownEmail(t *testing.T) {
	app := newTestApp(t)

	for _, email := range []string{"sarah.jones@acme.co", "nobody@acme.co"} {
		w := app.doJSON(http.MethodPost, "/auth/forgot-password", `{"email":"`+email+`"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", email, w.Code)
		}
		if msg := decode(t, w)["message"]; msg != "If the email exists, a reset link has been sent." {
			t.Fatalf("%s: message = %v", email, msg)
		}
	}
}

func TestResetPassword(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/auth/reset-password",
		`{"token":"garbage","password":"brand-new-pass"}`, nil)
	if w.Code != http.StatusBadRequest || decode(t, w)["message"] != services.MsgInvalidResetToken {
		t.Fatalf("garbage token: %d %s", w.Code, w.Body.String())
	}

	token, err := app.tokens.IssueResetToken(app.admin.ID, app.admin.Email)
	if err != nil {
		t.Fatal(err)
	}
	w = app.doJSON(http.MethodPost, "/auth/reset-password",
		`{"token":"`+token+`","password":"brand-new-pass"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if msg := decode(t, w)["message"]; msg != "Password reset successful" {
		t.Fatalf("message = %v", msg)
	}
}

// ---------- profile ----------

func TestGetProfile(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/admin/profile", nil), app.sessionCookie(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["email"] != "sarah.jones@acme.co" || body["name"] != "Sarah Jones" {
		t.Fatalf("body = %v", body)
	}
}

func TestUpdateProfileNoChanges(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPut, "/admin/profile", `{"name":"Sarah Jones"}`, app.sessionCookie(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["message"] != services.MsgNoChanges {
		t.Fatalf("message = %v", body["message"])
	}
	if _, ok := body["admin"]; ok {
		t.Fatal("admin returned for a no-op update")
	}
}

func TestUpdateProfileChangesName(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPut, "/admin/profile",
		`{"name":"Sarah J.","image":"https://cdn.acme.co/me.png"}`, app.sessionCookie(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	admin := body["admin"].(map[string]any)
	if body["message"] != "Profile updated successfully" || admin["name"] != "Sarah J." {
		t.Fatalf("body = %v", body)
	}
	if admin["image"] != "https://cdn.acme.co/me.png" {
		t.Fatalf("image = %v", admin["image"])
	}
}

func TestUpdateProfileEmptyBody(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPut, "/admin/profile", `{}`, app.sessionCookie(t))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
}

func TestDashboard(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < 7; i++ {
		app.trips.Create(context.Background(), &models.Trip{
			Title: "Trip", TourType: "Group", Includes: "Meals",
			Places: []string{"Hanoi"}, Images: []string{"/uploads/a.png"},
		})
	}

	w := app.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), app.sessionCookie(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["tripCount"] != float64(7) {
		t.Fatalf("tripCount = %v", body["tripCount"])
	}
	if recent := body["recentTrips"].([]any); len(recent) != 5 {
		t.Fatalf("recentTrips = %d", len(recent))
	}
}

// ---------- trips ----------

const tripJSON = `{"title":"Halong Bay Cruise","tourType":"Private","includes":"Boat and meals",` +
	`"places":["Halong Bay"],"images":["/uploads/halong.png"],"notes":"Bring a jacket"}`

func TestTripLifecycle(t *testing.T) {
	app := newTestApp(t)
	cookie := app.sessionCookie(t)

	w := app.doJSON(http.MethodPost, "/trips", tripJSON, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	created := decode(t, w)
	id := created["id"].(float64)
	path := fmt.Sprintf("/trips/%d", int(id))

	w = app.do(httptest.NewRequest(http.MethodGet, path, nil), nil)
	if w.Code != http.StatusOK || decode(t, w)["title"] != "Halong Bay Cruise" {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}

	w = app.doJSON(http.MethodPut, path, `{"notes":null,"title":"Halong Bay Overnight"}`, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	updated := decode(t, w)
	if updated["title"] != "Halong Bay Overnight" || updated["notes"] != nil {
		t.Fatalf("updated = %v", updated)
	}

	w = app.do(httptest.NewRequest(http.MethodGet, "/trips", nil), nil)
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s (err %v)", w.Body.String(), err)
	}

	w = app.do(httptest.NewRequest(http.MethodDelete, path, nil), cookie)
	if w.Code != http.StatusOK || decode(t, w)["message"] != "Trip deleted successfully" {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}

	w = app.do(httptest.NewRequest(http.MethodGet, path, nil), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", w.Code)
	}
}

func TestTripMutationsRequireSession(t *testing.T) {
	app := newTestApp(t)

	if w := app.doJSON(http.MethodPost, "/trips", tripJSON, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("create: %d", w.Code)
	}
	if w := app.do(httptest.NewRequest(http.MethodDelete, "/trips/1", nil), nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("delete: %d", w.Code)
	}
}

func TestTripInvalidID(t *testing.T) {
	app := newTestApp(t)

	for _, id := range []string{"abc", "0", "-1"} {
		w := app.do(httptest.NewRequest(http.MethodGet, "/trips/"+id, nil), nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", id, w.Code)
		}
	}
}

func TestCreateTripValidation(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/trips", `{"title":"Hi","places":[],"images":[]}`, app.sessionCookie(t))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	errs, ok := decode(t, w)["errors"].(map[string]any)
	if !ok || errs["title"] == nil || errs["places"] == nil {
		t.Fatalf("errors = %v", errs)
	}
}

// ---------- upload ----------

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func multipartRequest(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	app := newTestApp(t)
	cookie := app.sessionCookie(t)

	w := app.do(multipartRequest(t, "file", "beach.png", "image/png", pngBytes), cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if url, _ := decode(t, w)["url"].(string); !strings.HasPrefix(url, "/uploads/") {
		t.Fatalf("url = %q", url)
	}

	w = app.do(multipartRequest(t, "other", "beach.png", "image/png", pngBytes), cookie)
	if w.Code != http.StatusBadRequest || decode(t, w)["message"] != services.MsgNoFile {
		t.Fatalf("missing file: %d %s", w.Code, w.Body.String())
	}

	w = app.do(multipartRequest(t, "file", "notes.txt", "text/plain", []byte("hello")), cookie)
	if w.Code != http.StatusBadRequest || decode(t, w)["message"] != services.MsgNotImage {
		t.Fatalf("text file: %d %s", w.Code, w.Body.String())
	}

	big := append(append([]byte(nil), pngBytes...), bytes.Repeat([]byte{0}, 1<<19+1<<20)...)
	w = app.do(multipartRequest(t, "file", "huge.png", "image/png", big), cookie)
	if w.Code != http.StatusBadRequest || decode(t, w)["message"] != "File size must be less than 1MB" {
		t.Fatalf("oversized: %d %s", w.Code, w.Body.String())
	}

	// past the limit plus the multipart allowance the body reader gives up
	huge := append(append([]byte(nil), pngBytes...), bytes.Repeat([]byte{0}, 3<<20)...)
	w = app.do(multipartRequest(t, "file", "huge.png", "image/png", huge), cookie)
	if w.Code != http.StatusBadRequest || decode(t, w)["message"] != "File size must be less than 1MB" {
		t.Fatalf("over body limit: %d %s", w.Code, w.Body.String())
	}
}

func TestUploadRequiresSession(t *testing.T) {
	app := newTestApp(t)

	w := app.do(multipartRequest(t, "file", "beach.png", "image/png", pngBytes), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}
