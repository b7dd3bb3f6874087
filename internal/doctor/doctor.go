// Package doctor runs readiness diagnostics for config, the controller socket, and the controller itself.
package doctor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rbright/sensorctl/internal/config"
	"github.com/rbright/sensorctl/internal/ipc"
)

// defaultProbeTimeout applies when the config leaves the exchange unbounded.
const defaultProbeTimeout = 2 * time.Second

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config/socket/controller checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{checkConfig(cfg)}

	socketCheck := checkSocket(cfg.Config.Socket)
	checks = append(checks, socketCheck)
	if socketCheck.Pass {
		checks = append(checks, checkController(ctx, cfg.Config))
	}

	checks = append(checks, checkLogging(cfg.Config.Log))
	return Report{Checks: checks}
}

func checkConfig(cfg config.Loaded) Check {
	if cfg.Path == "" {
		return Check{Name: "config", Pass: true, Message: "using defaults (no config file)"}
	}
	message := fmt.Sprintf("loaded %q", cfg.Path)
	if n := len(cfg.Warnings); n > 0 {
		message = fmt.Sprintf("%s with %d warning(s)", message, n)
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkSocket inspects the socket file without connecting.
func checkSocket(path string) Check {
	state, err := ipc.Inspect(path)
	if err != nil {
		return Check{Name: "socket", Pass: false, Message: err.Error()}
	}
	switch state {
	case ipc.SocketAbsent:
		return Check{Name: "socket", Pass: false, Message: fmt.Sprintf("no socket at %s (%s)", path, ipc.Hint)}
	case ipc.SocketNotSocket:
		return Check{Name: "socket", Pass: false, Message: fmt.Sprintf("%s exists but is not a unix socket", path)}
	default:
		return Check{Name: "socket", Pass: true, Message: fmt.Sprintf("unix socket present at %s", path)}
	}
}

// checkController sends STATUS and expects the controller to answer and close.
func checkController(ctx context.Context, cfg config.Config) Check {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	alive, err := ipc.Probe(ctx, cfg.Socket, timeout)
	if err != nil {
		return Check{Name: "controller", Pass: false, Message: err.Error()}
	}
	if !alive {
		return Check{Name: "controller", Pass: false, Message: fmt.Sprintf("nothing is accepting connections on %s (%s)", cfg.Socket, ipc.Hint)}
	}
	return Check{Name: "controller", Pass: true, Message: "answered STATUS"}
}

func checkLogging(cfg config.LogConfig) Check {
	if strings.TrimSpace(cfg.File) == "" {
		return Check{Name: "log", Pass: true, Message: "disabled"}
	}
	return Check{Name: "log", Pass: true, Message: fmt.Sprintf("%s at level %s", cfg.File, cfg.Level)}
}
