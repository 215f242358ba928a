package social

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/auth"
	"backend-friendbook/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func fakeAuth(c *fiber.Ctx) error {
	c.Locals(auth.LocalUserID, c.Get("X-User"))
	return c.Next()
}

func TestSocialHandlers(t *testing.T) {
	svc, st, _ := setup(t)
	a, b := addUser(t, st, "alice"), addUser(t, st, "bob")

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(logger.Nop())})
	RegisterRoutes(app.Group("/api/user"), svc, fakeAuth)

	req := httptest.NewRequest(http.MethodPut, "/api/user/follow-unfollow/"+b.ID, nil)
	req.Header.Set("X-User", a.ID)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("follow status: %v %d", err, resp.StatusCode)
	}
	var res FollowResult
	_ = json.NewDecoder(resp.Body).Decode(&res)
	if !res.Followed {
		t.Fatalf("expected followed")
	}

	req = httptest.NewRequest(http.MethodPut, "/api/user/follow-unfollow/"+a.ID, nil)
	req.Header.Set("X-User", a.ID)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected self follow to be rejected, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/friends/"+b.ID, nil)
	req.Header.Set("X-User", a.ID)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("friends status %d", resp.StatusCode)
	}
	var friends []Friend
	_ = json.NewDecoder(resp.Body).Decode(&friends)
	if len(friends) != 1 || friends[0].ID != a.ID || !friends[0].FollowsMe {
		t.Fatalf("unexpected friends %+v", friends)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/user/friend/"+uuid.NewString(), nil)
	req.Header.Set("X-User", a.ID)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/follow-status/"+b.ID, nil)
	req.Header.Set("X-User", a.ID)
	resp, _ = app.Test(req)
	var status FollowStatus
	_ = json.NewDecoder(resp.Body).Decode(&status)
	if !status.Following {
		t.Fatalf("expected following")
	}
}
