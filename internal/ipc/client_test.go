package ipc

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"
)

// startController serves handler on a fresh socket until the returned stop is called.
func startController(t *testing.T, handler Handler) (string, func()) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "sensor_ctrl.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, handler)
	}()

	stop := func() {
		cancel()
		require.NoError(t, <-serveDone)
	}
	return socketPath, stop
}

func TestRunStatusTrimsResponse(t *testing.T) {
	defer leaktest.Check(t)()

	socketPath, stop := startController(t, HandlerFunc(func(_ context.Context, command string) []byte {
		require.Equal(t, "STATUS", command)
		return []byte("OK\n")
	}))
	defer stop()

	resp, err := NewClient(socketPath).Run(context.Background(), "STATUS")
	require.NoError(t, err)
	require.Equal(t, []byte("OK\n"), resp.Raw)
	require.Equal(t, "OK", resp.Text)
	require.Equal(t, "done", resp.State)
}

func TestRunAccumulatesChunkedResponse(t *testing.T) {
	defer leaktest.Check(t)()

	socketPath := filepath.Join(t.TempDir(), "sensor_ctrl.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	received := make(chan string, 1)
	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()

		line, _ := bufio.NewReader(conn).ReadString('\n')
		received <- line
		for _, chunk := range []string{"RATE", " SET", " TO", " 50", "00"} {
			_, _ = conn.Write([]byte(chunk))
			time.Sleep(5 * time.Millisecond)
		}
	}()

	resp, err := NewClient(socketPath).Run(context.Background(), "SET_RATE 5000")
	require.NoError(t, err)
	require.Equal(t, "RATE SET TO 5000", resp.Text)
	require.Equal(t, "SET_RATE 5000\n", <-received)
}

func TestRunSendsExactlyOneLine(t *testing.T) {
	defer leaktest.Check(t)()

	socketPath := filepath.Join(t.TempDir(), "sensor_ctrl.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	type capture struct {
		line     string
		buffered int
		extra    int
	}
	captured := make(chan capture, 1)
	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)
		line, _ := reader.ReadString('\n')
		got := capture{line: line, buffered: reader.Buffered()}

		_ = conn.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
		extra := make([]byte, 16)
		got.extra, _ = conn.Read(extra)
		captured <- got
	}()

	_, err = NewClient(socketPath).Run(context.Background(), "  odd   spacing ")
	require.NoError(t, err)

	got := <-captured
	require.Equal(t, "  odd   spacing \n", got.line)
	require.Zero(t, got.buffered)
	require.Zero(t, got.extra)
}

func TestRunSocketMissing(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "missing.sock")

	_, err := NewClient(socketPath).Run(context.Background(), "STATUS")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSocketMissing)
	require.NotErrorIs(t, err, ErrConnectionRefused)
	require.Equal(t, KindSocketMissing, KindOf(err))
	require.Contains(t, err.Error(), "socket not found at "+socketPath)
	require.Contains(t, err.Error(), Hint)

	_, statErr := os.Stat(socketPath)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRunConnectionRefusedOnStaleSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "stale.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	listener.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, listener.Close())

	_, err = NewClient(socketPath).Run(context.Background(), "STATUS")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrConnectionRefused)
	require.Equal(t, KindConnectionRefused, KindOf(err))
	require.Contains(t, err.Error(), "connection refused to "+socketPath)
	require.Contains(t, err.Error(), Hint)
}

func TestRunInvalidUTF8IsTransportError(t *testing.T) {
	defer leaktest.Check(t)()

	socketPath, stop := startController(t, HandlerFunc(func(context.Context, string) []byte {
		return []byte{0xff, 0xfe, 'O', 'K'}
	}))
	defer stop()

	_, err := NewClient(socketPath).Run(context.Background(), "STATUS")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidUTF8)
	require.Equal(t, KindTransport, KindOf(err))
	require.Contains(t, err.Error(), "decode")
}

func TestRunEmptyResponse(t *testing.T) {
	defer leaktest.Check(t)()

	socketPath, stop := startController(t, HandlerFunc(func(context.Context, string) []byte {
		return nil
	}))
	defer stop()

	resp, err := NewClient(socketPath).Run(context.Background(), "STOP")
	require.NoError(t, err)
	require.Empty(t, resp.Text)
}

func TestRunIsIdempotentAcrossInvocations(t *testing.T) {
	defer leaktest.Check(t)()

	socketPath, stop := startController(t, HandlerFunc(func(_ context.Context, command string) []byte {
		return []byte("ACK " + command + "\n")
	}))
	defer stop()

	client := NewClient(socketPath)
	first, err := client.Run(context.Background(), "START")
	require.NoError(t, err)
	second, err := client.Run(context.Background(), "START")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, "ACK START", first.Text)
}

func TestRunCancelUnblocksSilentController(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "sensor_ctrl.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()
		<-release
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = NewClient(socketPath).Run(ctx, "STATUS")
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.Equal(t, KindTransport, KindOf(err))
}

func TestRunTimeoutBoundsExchange(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "sensor_ctrl.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()
		<-release
	}()

	client := &Client{Path: socketPath, Timeout: 50 * time.Millisecond}
	_, err = client.Run(context.Background(), "STATUS")
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
	require.Contains(t, err.Error(), "read "+socketPath)
}

func TestProbe(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "sensor_ctrl.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, HandlerFunc(func(context.Context, string) []byte {
			return []byte("RUNNING\n")
		}))
	}()

	alive, probeErr := Probe(context.Background(), socketPath, 200*time.Millisecond)
	require.NoError(t, probeErr)
	require.True(t, alive)

	cancel()
	require.NoError(t, <-serveDone)

	alive, probeErr = Probe(context.Background(), socketPath, 100*time.Millisecond)
	require.NoError(t, probeErr)
	require.False(t, alive)
}
