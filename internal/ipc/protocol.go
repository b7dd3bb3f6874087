package ipc

import (
	"strings"
)

// DefaultSocketPath is where the sensor controller listens unless told otherwise.
const DefaultSocketPath = "/tmp/sensor_ctrl.sock"

// Terminator ends the single request line a client sends.
const Terminator = '\n'

// readChunkSize bounds one read from the connection, not the response.
const readChunkSize = 1024

// JoinCommand builds the command line from invocation arguments.
func JoinCommand(args []string) string {
	return strings.Join(args, " ")
}

// FormatLine encodes command as the exact bytes written to the socket.
func FormatLine(command string) []byte {
	line := make([]byte, 0, len(command)+1)
	line = append(line, command...)
	return append(line, Terminator)
}

// Response is everything the controller wrote before closing its side.
type Response struct {
	Raw   []byte
	Text  string
	State string
}
