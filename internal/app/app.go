// Package app runs one sensorctl invocation end to end.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rbright/sensorctl/internal/cli"
	"github.com/rbright/sensorctl/internal/config"
	"github.com/rbright/sensorctl/internal/doctor"
	"github.com/rbright/sensorctl/internal/ipc"
	"github.com/rbright/sensorctl/internal/logging"
	"github.com/rbright/sensorctl/internal/version"
)

const binaryName = "sensorctl"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

// Execute returns the process exit status: 0 for a completed exchange,
// 1 for missing arguments or any exchange failure, 2 for flag errors.
func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	switch parsed.Mode {
	case cli.ModeHelp:
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	case cli.ModeVersion:
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	case cli.ModeUsage:
		fmt.Fprint(r.Stdout, cli.UsageText(binaryName))
		return 1
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath, parsed.Flags)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
	}

	if parsed.Mode == cli.ModePrintConfig {
		out, err := config.Render(cfgLoaded.Config)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		_, _ = r.Stdout.Write(out)
		return 0
	}

	logRuntime, err := logging.New(cfgLoaded.Config.Log)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}
	for _, w := range cfgLoaded.Warnings {
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"mode", parsed.Mode,
		"command", parsed.Command,
		"socket", cfgLoaded.Config.Socket,
		"config", cfgLoaded.Path,
		"timeout", cfgLoaded.Config.Timeout.String(),
	)

	if parsed.Mode == cli.ModeDoctor {
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	}

	return r.commandSend(ctx, cfgLoaded.Config, parsed.Command, logger)
}

func (r Runner) commandSend(ctx context.Context, cfg config.Config, command string, logger *slog.Logger) int {
	client := &ipc.Client{Path: cfg.Socket, Timeout: cfg.Timeout, Logger: logger}

	resp, err := client.Run(ctx, command)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("command failed",
			"command", command,
			"kind", ipc.KindOf(err).String(),
			"error", err.Error(),
		)
		return 1
	}

	fmt.Fprintf(r.Stdout, "Sent: %s\n", command)
	fmt.Fprintf(r.Stdout, "Response: %s\n", resp.Text)

	logger.Info("command complete",
		"command", command,
		"state", resp.State,
		"response_bytes", len(resp.Raw),
	)
	return 0
}
