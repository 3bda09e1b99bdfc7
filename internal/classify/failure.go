package classify

import (
	"errors"
	"fmt"
)

// FailureKind categorizes why a batch classification failed. Every kind
// is batch-scoped: the orchestrator records it and moves on to the next
// batch, it never aborts the run.
type FailureKind string

const (
	// TransportError covers network problems, timeouts and any other
	// failure to complete the outbound call.
	TransportError FailureKind = "transport_error"
	// ServiceError means the service answered with an explicit error
	// (non-success status or an error payload).
	ServiceError FailureKind = "service_error"
	// InvalidResponse means the service answered but the payload did
	// not parse as the documented structure.
	InvalidResponse FailureKind = "invalid_response"
	// EmptyResponse means the service answered with no usable content.
	EmptyResponse FailureKind = "empty_response"
)

// Failure is the typed error returned for a failed batch
// classification. It carries enough detail for the run summary and for
// logging; the HTTP status is only set for ServiceError.
type Failure struct {
	Kind   FailureKind
	Status int
	Detail string
	cause  error
}

func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("classification failed (%s, status %d): %s", f.Kind, f.Status, f.Detail)
	}
	return fmt.Sprintf("classification failed (%s): %s", f.Kind, f.Detail)
}

func (f *Failure) Unwrap() error {
	return f.cause
}

// AsFailure extracts a *Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func newFailure(kind FailureKind, cause error, format string, args ...interface{}) *Failure {
	return &Failure{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
		cause:  cause,
	}
}
