package account

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/auth"
	"backend-friendbook/internal/logger"
	"backend-friendbook/internal/oauth"

	"github.com/gofiber/fiber/v2"
)

func newApp(f *fixture) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(logger.Nop())})
	RegisterRoutes(app.Group("/api/user"), f.svc, auth.Middleware(f.tokens))
	RegisterOAuthRoutes(app.Group("/api/oauth"), f.svc, "http://front.test")
	return app
}

func jsonRequest(method, target, token string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAccountHandlers(t *testing.T) {
	f := setup(t)
	app := newApp(f)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/user/send-verification-otp", "", EmailInput{Email: "alice@example.com"}))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("send otp: %v %d", err, resp.StatusCode)
	}

	reg := RegisterInput{Email: "alice@example.com", Username: "alice", Password: "secret1", OTP: "000000"}
	resp, _ = app.Test(jsonRequest(http.MethodPost, "/api/user/register", "", reg))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong otp, got %d", resp.StatusCode)
	}

	reg.OTP = f.code(t, "alice@example.com")
	resp, _ = app.Test(jsonRequest(http.MethodPost, "/api/user/register", "", reg))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d", resp.StatusCode)
	}
	var res AuthResult
	_ = json.NewDecoder(resp.Body).Decode(&res)
	if res.Token == "" || res.User.Username != "alice" {
		t.Fatalf("unexpected register result %+v", res)
	}

	resp, _ = app.Test(jsonRequest(http.MethodGet, "/api/user/me", res.Token, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status %d", resp.StatusCode)
	}

	resp, _ = app.Test(jsonRequest(http.MethodPatch, "/api/user/me", res.Token, map[string]any{"email": "x@example.com"}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid update, got %d", resp.StatusCode)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("age", "31")
	part, _ := w.CreateFormFile("profilePicture", "me.png")
	_, _ = part.Write([]byte("png-bytes"))
	_ = w.Close()
	req := httptest.NewRequest(http.MethodPatch, "/api/user/me", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+res.Token)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("multipart update status %d", resp.StatusCode)
	}
	var updated User
	_ = json.NewDecoder(resp.Body).Decode(&updated)
	if updated.Age != 31 || !updated.HasProfilePicture {
		t.Fatalf("unexpected profile %+v", updated)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, updated.ProfilePictureLink, nil))
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(data) != "png-bytes" {
		t.Fatalf("profile picture: %d %q", resp.StatusCode, data)
	}

	resp, _ = app.Test(jsonRequest(http.MethodGet, "/api/user?username=alice", res.Token, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get user status %d", resp.StatusCode)
	}

	resp, _ = app.Test(jsonRequest(http.MethodPost, "/api/user/logout", res.Token, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status %d", resp.StatusCode)
	}
	resp, _ = app.Test(jsonRequest(http.MethodGet, "/api/user/me", res.Token, nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}

	login := LoginInput{Email: "alice@example.com", Password: "secret1"}
	resp, _ = app.Test(jsonRequest(http.MethodPost, "/api/user/login", "", login))
	_ = json.NewDecoder(resp.Body).Decode(&res)
	if resp.StatusCode != http.StatusOK || res.Token == "" {
		t.Fatalf("login status %d", resp.StatusCode)
	}

	resp, _ = app.Test(jsonRequest(http.MethodDelete, "/api/user/me", res.Token, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	resp, _ = app.Test(jsonRequest(http.MethodPost, "/api/user/login", "", login))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after delete, got %d", resp.StatusCode)
	}
}

func TestGoogleCallback(t *testing.T) {
	f := setup(t)
	app := newApp(f)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/oauth/google?code=abc", nil))
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "http://front.test/oauth/error" {
		t.Fatalf("expected error redirect, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	f.google.id = oauth.Identity{Email: "jane@example.com", EmailVerified: true, Name: "Jane"}
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/api/oauth/google?code=abc", nil))
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "http://front.test" {
		t.Fatalf("expected redirect to origin, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if !strings.HasPrefix(resp.Header.Get("Set-Cookie"), "token=") {
		t.Fatalf("expected token cookie, got %q", resp.Header.Get("Set-Cookie"))
	}
}
