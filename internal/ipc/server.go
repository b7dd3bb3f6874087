package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
)

// Handler answers one command line. The returned bytes are written verbatim
// before the connection is closed.
type Handler interface {
	Handle(ctx context.Context, command string) []byte
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, string) []byte

func (f HandlerFunc) Handle(ctx context.Context, command string) []byte {
	return f(ctx, command)
}

// Serve speaks the controller side of the line protocol: read one line,
// write the answer, close. It runs until ctx is cancelled or the listener closes.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept controller connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()

			line, err := bufio.NewReader(c).ReadString(Terminator)
			if err != nil && !errors.Is(err, io.EOF) {
				_, _ = fmt.Fprintf(c, "ERROR read request: %v\n", err)
				return
			}

			command := strings.TrimSuffix(line, string(Terminator))
			_, _ = c.Write(handler.Handle(ctx, command))
		}(conn)
	}
}
