package ipc

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
)

// Kind classifies exchange failures for callers.
type Kind int

const (
	KindTransport Kind = iota
	KindSocketMissing
	KindConnectionRefused
)

func (k Kind) String() string {
	switch k {
	case KindSocketMissing:
		return "socket_missing"
	case KindConnectionRefused:
		return "connection_refused"
	default:
		return "transport"
	}
}

// Hint is appended to errors that mean no controller is listening.
const Hint = "make sure the sensor controller is running"

var (
	ErrSocketMissing     = errors.New("socket not found")
	ErrConnectionRefused = errors.New("connection refused")
	ErrInvalidUTF8       = errors.New("response is not valid UTF-8")
)

// Error is the failure of one exchange step.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindSocketMissing:
		return fmt.Sprintf("socket not found at %s (%s)", e.Path, Hint)
	case KindConnectionRefused:
		return fmt.Sprintf("connection refused to %s (%s)", e.Path, Hint)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSocketMissing:
		return e.Kind == KindSocketMissing
	case ErrConnectionRefused:
		return e.Kind == KindConnectionRefused
	}
	return false
}

// KindOf extracts the failure kind; non-exchange errors are transport failures.
func KindOf(err error) Kind {
	var ipcErr *Error
	if errors.As(err, &ipcErr) {
		return ipcErr.Kind
	}
	return KindTransport
}

// classify wraps err from op against path with its failure kind.
func classify(op, path string, err error) *Error {
	kind := KindTransport
	if op == "dial" {
		switch {
		case isSocketMissing(err):
			kind = KindSocketMissing
		case isConnectionRefused(err):
			kind = KindConnectionRefused
		}
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// isSocketMissing reports absent-socket failures.
func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

// isConnectionRefused reports no-listener failures.
func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
