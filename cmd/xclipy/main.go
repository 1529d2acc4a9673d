// xclipy: clipboard history daemon with a global hotkey.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.design/x/hotkey/mainthread"

	"go.klb.dev/xclipy/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	// macOS delivers hot key events on the main thread only.
	mainthread.Init(run)
}

func run() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xclipy",
		Short: "Clipboard history with a global hotkey",
		Long: `xclipy records everything copied to the system clipboard (text and file
lists) into a bounded, de-duplicated history, and raises the history viewer
when the global hotkey (default Ctrl+Shift+V) is pressed.

Run "xclipy daemon" once per session (or enable autoStart). Every other
subcommand talks to the running daemon over its local socket.

Config file search order (first found wins):
  path supplied via --config
  $HOME/.config/xclipy/xclipy.toml

All flags can be set via XCLIPY_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newDaemonCmd(),
		newHistoryCmd(),
		newCopyCmd(),
		newRemoveCmd(),
		newClearCmd(),
		newSettingsCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "xclipy %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
