// Package cli parses sensorctl invocation arguments.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/rbright/sensorctl/internal/ipc"
)

// Mode selects what one invocation does.
type Mode string

const (
	ModeSend        Mode = "send"
	ModeUsage       Mode = "usage"
	ModeHelp        Mode = "help"
	ModeVersion     Mode = "version"
	ModeDoctor      Mode = "doctor"
	ModePrintConfig Mode = "print-config"
)

// Parsed is the outcome of argument parsing.
type Parsed struct {
	Mode       Mode
	Command    string
	Args       []string
	ConfigPath string
	// Flags carries every defined flag so config loading can apply the changed ones.
	Flags      *pflag.FlagSet
}

// NewFlagSet declares the sensorctl flags.
func NewFlagSet(binaryName string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)
	fs.SortFlags = false

	fs.String("socket", ipc.DefaultSocketPath, "Controller socket path")
	fs.String("config", "", "Config file to load (YAML, TOML, or JSON); none is read otherwise")
	fs.Duration("timeout", 0, "Exchange deadline, e.g. \"2s\" (0 waits indefinitely)")
	fs.String("log", "", "Path to a rolling JSON log file, else no logging")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.Bool("doctor", false, "Check configuration and controller reachability, then exit")
	fs.Bool("print-config", false, "Print the effective configuration as YAML, then exit")
	fs.Bool("version", false, "Print version information, then exit")
	fs.BoolP("help", "h", false, "Show help")
	return fs
}

// Parse reads flags up to the first command word; everything from there on
// is the command and is never interpreted as flags.
func Parse(args []string) (Parsed, error) {
	fs := NewFlagSet("sensorctl")
	if err := fs.Parse(args); err != nil {
		return Parsed{}, err
	}

	parsed := Parsed{Flags: fs, Args: fs.Args()}
	parsed.ConfigPath, _ = fs.GetString("config")

	switch {
	case flagSet(fs, "help"):
		parsed.Mode = ModeHelp
	case flagSet(fs, "version"):
		parsed.Mode = ModeVersion
	case flagSet(fs, "print-config"):
		parsed.Mode = ModePrintConfig
	case flagSet(fs, "doctor"):
		parsed.Mode = ModeDoctor
	case len(parsed.Args) == 0:
		parsed.Mode = ModeUsage
	default:
		parsed.Mode = ModeSend
		parsed.Command = ipc.JoinCommand(parsed.Args)
	}

	if parsed.Mode != ModeSend && parsed.Mode != ModeUsage && len(parsed.Args) > 0 {
		return Parsed{}, fmt.Errorf("unexpected command %q with --%s", ipc.JoinCommand(parsed.Args), parsed.Mode)
	}

	return parsed, nil
}

func flagSet(fs *pflag.FlagSet, name string) bool {
	v, err := fs.GetBool(name)
	return err == nil && v
}

// UsageText is printed when no command is given.
func UsageText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s START
  %[1]s STOP
  %[1]s STATUS
  %[1]s SET_RATE 10000
`, binaryName)
}

// HelpText is the full --help output.
func HelpText(binaryName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage:\n  %s [flags] <command> [args...]\n\n", binaryName)
	b.WriteString(`Sends one command line to the sensor controller socket and prints the response.
Commands are forwarded verbatim; the controller understands:
  START             Start acquisition
  STOP              Stop acquisition
  STATUS            Report controller state
  SET_RATE <value>  Change the sample rate

Flags:
`)
	b.WriteString(NewFlagSet(binaryName).FlagUsages())
	return b.String()
}
