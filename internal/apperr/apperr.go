package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping
type Kind int

const (
	// KindInvalidArgument marks caller mistakes: unknown entity type,
	// missing ids, empty required fields. Never retried.
	KindInvalidArgument Kind = iota
	// KindStorage marks failures of the backing store. Not retried
	// internally; the caller decides.
	KindStorage
	// KindUpstreamGateway marks failures of the external media provider.
	KindUpstreamGateway
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindStorage:
		return "storage"
	case KindUpstreamGateway:
		return "upstream_gateway"
	}
	return "unknown"
}

// Error carries a kind alongside the wrapped cause
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidArgument creates a caller-error with a formatted message
func InvalidArgument(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// Storage wraps a storage-layer failure
func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

// UpstreamGateway wraps a media-provider failure, keeping provider detail
func UpstreamGateway(msg string, err error) error {
	return &Error{Kind: KindUpstreamGateway, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or ok=false for untagged errors
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsInvalidArgument reports whether err is a caller error
func IsInvalidArgument(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindInvalidArgument
}

// IsStorage reports whether err is a storage failure
func IsStorage(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindStorage
}

// IsUpstreamGateway reports whether err is a media-provider failure
func IsUpstreamGateway(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindUpstreamGateway
}
