package apperr

import (
	"errors"
	"fmt"
	"testing"

	"backend-friendbook/internal/store"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{BadRequestf("bad %d", 1), BadRequest},
		{Unauthorizedf("no"), Unauthorized},
		{Forbiddenf("owner only"), Forbidden},
		{NotFoundf("missing"), NotFound},
		{errors.New("boom"), Internal},
		{fmt.Errorf("wrapped: %w", ErrSelfFollow), BadRequest},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Fatalf("KindOf(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestMessageHidesInternal(t *testing.T) {
	err := Internalf(errors.New("pg down"), "load user")
	if MessageOf(err) != "internal server error" {
		t.Fatalf("internal message leaked: %q", MessageOf(err))
	}
	if !errors.Is(err, err.Err) {
		t.Fatalf("expected unwrap to cause")
	}
	if MessageOf(ErrInvalidOTP) != "invalid OTP" {
		t.Fatalf("unexpected message %q", MessageOf(ErrInvalidOTP))
	}
}

func TestSentinelIs(t *testing.T) {
	err := fmt.Errorf("register: %w", New(Unauthorized, "invalid OTP"))
	if !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected errors.Is to match sentinel")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unexpected match")
	}
	if Kind(99).String() != "internal_error" {
		t.Fatalf("unknown kinds should render as internal")
	}
}

func TestFromStore(t *testing.T) {
	if FromStore(nil, "x") != nil {
		t.Fatalf("nil stays nil")
	}
	if got := KindOf(FromStore(fmt.Errorf("scan: %w", store.ErrInvalidID), "load")); got != BadRequest {
		t.Fatalf("invalid id should be a bad request, got %v", got)
	}
	if got := KindOf(FromStore(store.ErrNotFound, "load")); got != Internal {
		t.Fatalf("unclassified store errors are internal, got %v", got)
	}
	if got := FromStore(ErrSelfFollow, "load"); !errors.Is(got, ErrSelfFollow) {
		t.Fatalf("app errors pass through, got %v", got)
	}
}
