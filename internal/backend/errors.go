package backend

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// TransportError reports that a request never produced an HTTP response:
// connection refused, DNS failure, client timeout and the like.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a response whose shape the relay cannot use,
// such as undecodable JSON or a missing message id.
type ProtocolError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: protocol error: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: protocol error: %s", e.Op, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// BackendError reports a non-2xx status.
type BackendError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

// ErrTimeout is returned when the poll budget is exhausted without a reply.
var ErrTimeout = errors.New("timed out waiting for assistant reply")

// Error kinds reported by Kind.
const (
	KindTransport = "transport"
	KindProtocol  = "protocol"
	KindBackend   = "backend"
	KindTimeout   = "timeout"
	KindCanceled  = "canceled"
	KindUnknown   = "unknown"
)

// Kind classifies err into one of the Kind* constants for logs and metrics.
func Kind(err error) string {
	var (
		transportErr *TransportError
		protocolErr  *ProtocolError
		backendErr   *BackendError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &protocolErr):
		return KindProtocol
	case errors.As(err, &backendErr):
		return KindBackend
	default:
		return KindUnknown
	}
}
