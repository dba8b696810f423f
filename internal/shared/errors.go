package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Pipeline errors
	ErrMalformedReference = fmt.Errorf("malformed asset reference")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// RemoteError is the error envelope returned by the remote API.
//
// Fields are kept as received so the CLI boundary decides how to render them.
type RemoteError struct {
	Code    string
	Message string
	Errors  json.RawMessage
	Trace   []string
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("remote error: %s", e.Message)
	}
	return fmt.Sprintf("remote error %s: %s", e.Code, e.Message)
}

// Details renders the full envelope, including field errors and the trace.
func (e *RemoteError) Details() string {
	var b strings.Builder
	b.WriteString(e.Error())
	if len(e.Errors) > 0 && string(e.Errors) != "null" {
		fmt.Fprintf(&b, "\nerrors: %s", string(e.Errors))
	}
	for _, line := range e.Trace {
		fmt.Fprintf(&b, "\n  at %s", line)
	}
	return b.String()
}

// TransportError wraps a network, status or decoding failure while talking to a remote host.
type TransportError struct {
	Op         string // request, status, read, decode
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%s %s (status %d): %v", e.Op, e.URL, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// IOError wraps a local filesystem failure for the file at Path.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ErrorKind names the category of err for logs and the archive ledger.
func ErrorKind(err error) string {
	var (
		remote    *RemoteError
		transport *TransportError
		ioErr     *IOError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedReference):
		return "malformed_reference"
	case errors.As(err, &remote):
		return "remote"
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &ioErr):
		return "io"
	default:
		return "unknown"
	}
}
