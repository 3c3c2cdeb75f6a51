package fault

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatus(t *testing.T) {
	t.Run("InvalidArgument -> 400", func(t *testing.T) {
		gotStatus, gotCode := HTTPStatus(InvalidArgument("bad sort %q", "x"))
		if gotStatus != http.StatusBadRequest || gotCode != "INVALID_ARGUMENT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("NotFound -> 404", func(t *testing.T) {
		gotStatus, gotCode := HTTPStatus(NotFound("product %s", "p1"))
		if gotStatus != http.StatusNotFound || gotCode != "NOT_FOUND" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("Unauthenticated -> 401", func(t *testing.T) {
		gotStatus, gotCode := HTTPStatus(Unauthenticated("no token"))
		if gotStatus != http.StatusUnauthorized || gotCode != "UNAUTHENTICATED" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("Unavailable -> 503", func(t *testing.T) {
		gotStatus, gotCode := HTTPStatus(Unavailable("find", errors.New("conn refused")))
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("DeadlineExceeded -> 503", func(t *testing.T) {
		gotStatus, gotCode := HTTPStatus(status.Error(codes.DeadlineExceeded, "timeout"))
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("wrapped keeps code", func(t *testing.T) {
		err := fmt.Errorf("cart add: %w", NotFound("product p9"))
		gotStatus, _ := HTTPStatus(err)
		if gotStatus != http.StatusNotFound {
			t.Fatalf("got %d", gotStatus)
		}
		if Message(err) != "product p9" {
			t.Fatalf("message %q", Message(err))
		}
	})

	t.Run("non-status error -> 500", func(t *testing.T) {
		gotStatus, gotCode := HTTPStatus(errors.New("boom"))
		if gotStatus != http.StatusInternalServerError || gotCode != "INTERNAL" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})
}

func TestUnavailableKeepsExistingCode(t *testing.T) {
	err := Unavailable("get product", NotFound("product p1"))
	if Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", Code(err))
	}
	if Unavailable("noop", nil) != nil {
		t.Fatal("nil cause must stay nil")
	}
}

func TestFromHTTP(t *testing.T) {
	cases := map[int]codes.Code{
		http.StatusBadRequest:          codes.InvalidArgument,
		http.StatusUnauthorized:        codes.Unauthenticated,
		http.StatusForbidden:           codes.PermissionDenied,
		http.StatusNotFound:            codes.NotFound,
		http.StatusServiceUnavailable:  codes.Unavailable,
		http.StatusInternalServerError: codes.Internal,
		http.StatusTeapot:              codes.Unknown,
	}
	for httpStatus, want := range cases {
		if got := Code(FromHTTP(httpStatus, "", "")); got != want {
			t.Errorf("FromHTTP(%d) = %v, want %v", httpStatus, got, want)
		}
	}
}
