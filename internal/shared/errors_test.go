package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestRemoteError(t *testing.T) {
	t.Run("Error includes code and message", func(t *testing.T) {
		err := &RemoteError{Code: "404", Message: "user not found"}
		if got := err.Error(); got != "remote error 404: user not found" {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("Error without code", func(t *testing.T) {
		err := &RemoteError{Message: "boom"}
		if got := err.Error(); got != "remote error: boom" {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("Details includes errors and trace", func(t *testing.T) {
		err := &RemoteError{
			Code:    "422",
			Message: "invalid",
			Errors:  json.RawMessage(`{"user_code":["required"]}`),
			Trace:   []string{"Controller.php:10", "Kernel.php:20"},
		}
		details := err.Details()
		for _, want := range []string{"422", `"user_code"`, "at Controller.php:10", "at Kernel.php:20"} {
			if !strings.Contains(details, want) {
				t.Errorf("Details() missing %q in %q", want, details)
			}
		}
	})

	t.Run("errors.As through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("failed to resolve account: %w", &RemoteError{Code: "500"})
		var remote *RemoteError
		if !errors.As(wrapped, &remote) {
			t.Fatal("expected errors.As to find RemoteError")
		}
		if remote.Code != "500" {
			t.Errorf("expected code 500, got %s", remote.Code)
		}
	})
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Op: "request", URL: "https://example.com/a", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected TransportError to unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q", err.Error())
	}

	status := &TransportError{Op: "status", URL: "https://example.com/a", StatusCode: 404}
	if got := status.Error(); got != "status https://example.com/a: status 404" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorKind(t *testing.T) {
	tt := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "malformed", err: fmt.Errorf("%w: %q", ErrMalformedReference, "x"), want: "malformed_reference"},
		{name: "remote", err: &RemoteError{}, want: "remote"},
		{name: "transport", err: &TransportError{Op: "request"}, want: "transport"},
		{name: "io", err: &IOError{Path: "a", Err: os.ErrPermission}, want: "io"},
		{name: "other", err: errors.New("other"), want: "unknown"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := ErrorKind(tc.err); got != tc.want {
				t.Errorf("ErrorKind() = %q, want %q", got, tc.want)
			}
		})
	}
}
