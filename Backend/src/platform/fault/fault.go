// Package fault carries the error taxonomy shared by the catalog and cart
// services. Errors are gRPC status values so the same code travels through
// the REST layer, the health server and the client without translation tables.
package fault

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func InvalidArgument(format string, a ...any) error {
	return status.Errorf(codes.InvalidArgument, format, a...)
}

func NotFound(format string, a ...any) error {
	return status.Errorf(codes.NotFound, format, a...)
}

func Unauthenticated(format string, a ...any) error {
	return status.Errorf(codes.Unauthenticated, format, a...)
}

func PermissionDenied(format string, a ...any) error {
	return status.Errorf(codes.PermissionDenied, format, a...)
}

// Unavailable wraps a store or transport failure. The cause is kept in the
// message only; callers never branch on it.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if isStatus(err) {
		return err
	}
	return status.Errorf(codes.Unavailable, "%s: %v", op, err)
}

// Code reports the taxonomy code of err, unwrapping fmt.Errorf chains.
// Errors outside the taxonomy report codes.Unknown.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		return se.GRPCStatus().Code()
	}
	return codes.Unknown
}

func Is(err error, c codes.Code) bool { return Code(err) == c }

func Message(err error) string {
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		return se.GRPCStatus().Message()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// HTTPStatus maps err to the status code the REST layer responds with.
// Errors that are not part of the taxonomy are internal.
func HTTPStatus(err error) (int, string) {
	c := Code(err)
	if c == codes.Unknown {
		return http.StatusInternalServerError, "INTERNAL"
	}
	if c == codes.DeadlineExceeded {
		c = codes.Unavailable
	}
	return runtime.HTTPStatusFromCode(c), codeName(c)
}

// FromHTTP is the inverse used by clients of the REST API.
func FromHTTP(statusCode int, code, message string) error {
	c := codes.Unknown
	switch statusCode {
	case http.StatusBadRequest:
		c = codes.InvalidArgument
	case http.StatusUnauthorized:
		c = codes.Unauthenticated
	case http.StatusForbidden:
		c = codes.PermissionDenied
	case http.StatusNotFound:
		c = codes.NotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		c = codes.Unavailable
	case http.StatusInternalServerError:
		c = codes.Internal
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	if code != "" && c == codes.Unknown {
		message = fmt.Sprintf("%s: %s", code, message)
	}
	return status.Error(c, message)
}

func codeName(c codes.Code) string {
	// codes.InvalidArgument.String() == "InvalidArgument"
	var b strings.Builder
	for i, r := range c.String() {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

func isStatus(err error) bool {
	var se interface{ GRPCStatus() *status.Status }
	return errors.As(err, &se)
}
