package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backend-friendbook/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestServer(t *testing.T) (*Server, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewServer(config.Config{
		JWTSecret:    "secret",
		ServerPort:   ":0",
		StoreDriver:  config.DriverMemory,
		PublicOrigin: "http://front.test",
	}, Deps{Redis: rdb})
	t.Cleanup(s.Close)
	return s, mr
}

func call(t *testing.T, s *Server, method, target, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHealthRoute(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", ServerPort: ":0", StoreDriver: config.DriverMemory}, Deps{})
	defer s.Close()

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
}

func TestMetricsRoute(t *testing.T) {
	s, _ := newTestServer(t)
	call(t, s, http.MethodGet, "/health", "", nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "friendbook_http_request_duration_seconds") {
		t.Fatalf("expected request histogram in metrics output")
	}
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	s, _ := newTestServer(t)
	resp, body := call(t, s, http.MethodGet, "/api/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if _, ok := body["error"].(map[string]any); !ok {
		t.Fatalf("expected error envelope, got %v", body)
	}
}

func TestProtectedRouteNeedsToken(t *testing.T) {
	s, _ := newTestServer(t)
	resp, _ := call(t, s, http.MethodGet, "/api/post/timeline", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func register(t *testing.T, s *Server, mr *miniredis.Miniredis, email, username string) (string, string) {
	t.Helper()
	resp, _ := call(t, s, http.MethodPost, "/api/user/send-verification-otp", "", map[string]string{"email": email})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send otp status %d", resp.StatusCode)
	}
	code, err := mr.Get("otp:" + email)
	if err != nil {
		t.Fatalf("otp not stored: %v", err)
	}
	resp, body := call(t, s, http.MethodPost, "/api/user/register", "", map[string]string{
		"email": email, "username": username, "password": "secret1", "otp": code,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d: %v", resp.StatusCode, body)
	}
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func TestSocialFlow(t *testing.T) {
	s, mr := newTestServer(t)
	aliceToken, aliceID := register(t, s, mr, "alice@example.com", "alice")
	bobToken, bobID := register(t, s, mr, "bob@example.com", "bob")

	resp, body := call(t, s, http.MethodPut, "/api/user/follow-unfollow/"+aliceID, bobToken, nil)
	if resp.StatusCode != http.StatusOK || body["followed"] != true {
		t.Fatalf("follow: %d %v", resp.StatusCode, body)
	}

	resp, body = call(t, s, http.MethodPost, "/api/post", aliceToken, map[string]string{"message": "hello"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post: %d %v", resp.StatusCode, body)
	}
	postID := body["id"].(string)

	resp, body = call(t, s, http.MethodPut, "/api/like/"+postID, bobToken, nil)
	if resp.StatusCode != http.StatusOK || body["likeCounter"] != float64(1) {
		t.Fatalf("like: %d %v", resp.StatusCode, body)
	}

	resp, body = call(t, s, http.MethodPost, "/api/comment/"+postID, bobToken, map[string]string{"message": "nice"})
	if resp.StatusCode != http.StatusCreated || body["commentCounter"] != float64(1) {
		t.Fatalf("comment: %d %v", resp.StatusCode, body)
	}

	resp, _ = call(t, s, http.MethodDelete, "/api/post/"+postID, bobToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 deleting someone else's post, got %d", resp.StatusCode)
	}

	resp, _ = call(t, s, http.MethodDelete, "/api/user/me", bobToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete account: %d", resp.StatusCode)
	}

	post, err := s.Store.Posts.ByID(t.Context(), postID)
	if err != nil {
		t.Fatalf("post lookup: %v", err)
	}
	if post.LikeCounter != 0 || post.CommentCounter != 0 {
		t.Fatalf("expected counters reset, got %d likes %d comments", post.LikeCounter, post.CommentCounter)
	}
	alice, err := s.Store.Users.ByID(t.Context(), aliceID)
	if err != nil {
		t.Fatalf("alice lookup: %v", err)
	}
	for _, id := range alice.Followers {
		if id == bobID {
			t.Fatalf("deleted user still listed as follower")
		}
	}
}

func TestStreamNeedsOwnToken(t *testing.T) {
	s, mr := newTestServer(t)
	aliceToken, aliceID := register(t, s, mr, "alice@example.com", "alice")
	_, bobID := register(t, s, mr, "bob@example.com", "bob")

	for _, target := range []string{
		"/stream/ws/" + aliceID,
		"/stream/ws/" + bobID + "?token=" + aliceToken,
	} {
		resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatalf("%s: %v", target, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, resp.StatusCode)
		}
	}
}
