package ipc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// SocketState describes what currently sits at a socket path.
type SocketState string

const (
	SocketAbsent    SocketState = "absent"
	SocketPresent   SocketState = "socket"
	SocketNotSocket SocketState = "not-a-socket"
)

// Inspect reports the filesystem state of path without connecting to it.
func Inspect(path string) (SocketState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SocketAbsent, nil
		}
		return "", fmt.Errorf("stat socket %s: %w", path, err)
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return SocketNotSocket, nil
	}
	return SocketPresent, nil
}
