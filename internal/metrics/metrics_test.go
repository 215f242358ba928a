package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAction(t *testing.T) {
	before := testutil.ToFloat64(actions.WithLabelValues(ActionFollow))
	Action(ActionFollow)
	if got := testutil.ToFloat64(actions.WithLabelValues(ActionFollow)); got != before+1 {
		t.Fatalf("expected counter to grow by one, got %v -> %v", before, got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("ping failed: %v", err)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `friendbook_http_request_duration_seconds_count{method="GET",route="/ping",status_code="200"}`) {
		t.Fatalf("expected request histogram in output")
	}
}

func TestMiddlewareRecordsDomainErrorStatus(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(logger.Nop())})
	app.Use(Middleware())
	app.Get("/forbidden", func(c *fiber.Ctx) error { return apperr.Forbiddenf("not yours") })
	app.Get("/missing", func(c *fiber.Ctx) error { return apperr.NotFoundf("gone") })
	app.Get("/metrics", Handler())

	for _, path := range []string{"/forbidden", "/missing"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if resp.StatusCode == http.StatusOK {
			t.Fatalf("%s: expected an error status", path)
		}
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	body := string(raw)
	for route, status := range map[string]string{"/forbidden": "403", "/missing": "404"} {
		want := `friendbook_http_request_duration_seconds_count{method="GET",route="` + route + `",status_code="` + status + `"}`
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in output", want)
		}
		wrong := `route="` + route + `",status_code="200"`
		if strings.Contains(body, wrong) {
			t.Fatalf("unexpected %s in output", wrong)
		}
	}
}
