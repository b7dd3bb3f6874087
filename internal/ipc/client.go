package ipc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rbright/sensorctl/internal/fsm"
)

// Client performs one command exchange per Run against a unix socket.
type Client struct {
	Path    string
	// Timeout bounds the whole exchange when positive. Zero keeps the
	// operating system defaults and waits for the controller indefinitely.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewClient returns a client for the controller socket at path.
func NewClient(path string) *Client {
	return &Client{Path: path}
}

// Run sends command as one line and returns everything the controller
// writes until it closes the connection.
//
// The response is framed only by connection closure: a controller that keeps
// the connection open after answering blocks Run until ctx is cancelled or
// Timeout expires. There is no upper bound on response size.
func (c *Client) Run(ctx context.Context, command string) (Response, error) {
	ex := &exchange{state: fsm.StateIdle, logger: c.logger(), path: c.Path}
	ex.step(fsm.EventDial)

	dialer := net.Dialer{Timeout: c.Timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.Path)
	if err != nil {
		return Response{}, ex.fail(classify("dial", c.Path, err))
	}
	defer conn.Close()
	ex.step(fsm.EventConnected)

	if c.Timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(c.Timeout)); err != nil {
			return Response{}, ex.fail(classify("set deadline", c.Path, err))
		}
	}

	// Interrupts unblock a pending write or read by closing the connection.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if _, err := conn.Write(FormatLine(command)); err != nil {
		return Response{}, ex.fail(classify("write", c.Path, contextCause(ctx, err)))
	}
	ex.step(fsm.EventSent)

	raw, err := readUntilEOF(conn)
	if err != nil {
		return Response{}, ex.fail(classify("read", c.Path, contextCause(ctx, err)))
	}
	if !utf8.Valid(raw) {
		return Response{}, ex.fail(classify("decode", c.Path, ErrInvalidUTF8))
	}
	ex.step(fsm.EventEOF)

	ex.logger.Debug("command exchange complete",
		"socket", c.Path,
		"command", command,
		"response_bytes", len(raw),
	)

	return Response{
		Raw:   raw,
		Text:  strings.TrimSpace(string(raw)),
		State: string(ex.state),
	}, nil
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Probe checks whether a responsive controller is currently listening on path.
func Probe(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	client := &Client{Path: path, Timeout: timeout}
	_, err := client.Run(ctx, "STATUS")
	if err == nil {
		return true, nil
	}
	switch KindOf(err) {
	case KindSocketMissing, KindConnectionRefused:
		return false, nil
	}
	return false, fmt.Errorf("probe socket: %w", err)
}

// readUntilEOF accumulates chunks until the peer closes its write side.
func readUntilEOF(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// contextCause prefers the cancellation reason over the closed-connection error it caused.
func contextCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}

// exchange tracks the lifecycle of one Run.
type exchange struct {
	state  fsm.State
	logger *slog.Logger
	path   string
}

func (e *exchange) step(event fsm.Event) {
	next, err := fsm.Transition(e.state, event)
	if err != nil {
		e.logger.Error("exchange transition rejected", "socket", e.path, "error", err.Error())
		return
	}
	e.logger.Debug("exchange transition", "socket", e.path, "from", e.state, "event", event, "to", next)
	e.state = next
}

func (e *exchange) fail(err *Error) error {
	e.step(fsm.EventFail)
	e.logger.Error("command exchange failed",
		"socket", e.path,
		"op", err.Op,
		"kind", err.Kind.String(),
		"error", err.Error(),
	)
	return err
}
