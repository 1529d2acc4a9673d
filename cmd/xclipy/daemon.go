package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/xclipy/internal/autostart"
	"go.klb.dev/xclipy/internal/clip"
	"go.klb.dev/xclipy/internal/hotkey"
	"go.klb.dev/xclipy/internal/ipc"
	"go.klb.dev/xclipy/internal/manager"
	"go.klb.dev/xclipy/internal/settings"
	"go.klb.dev/xclipy/internal/watcher"
)

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the clipboard history daemon",
		Long: `Polls the system clipboard, records new text and file-list entries,
registers the global hotkey and serves the other subcommands over a local
socket. Settings and history are saved under --data-dir.

Precedence (lowest → highest): defaults → config file → XCLIPY_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.String("data-dir", settings.DefaultDir(), "directory holding xclipy.toml and history.db")
	f.Duration("poll-interval", watcher.DefaultInterval, "clipboard poll interval")
	_ = f.MarkHidden("poll-interval")
	addSocketFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(parent context.Context, v *viper.Viper) error {
	setupLogging(v)
	if parent == nil {
		parent = context.Background()
	}

	dataDir := v.GetString("data-dir")
	socket := v.GetString("socket")

	store, err := settings.Open(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	st := store.Settings()
	entries, err := store.History()
	if err != nil {
		slog.Warn("loading history failed, starting empty", "err", err)
		entries = nil
	}

	backend := clip.New()
	defer backend.Close()

	var registry *hotkey.Registry
	if hotkey.Supported() {
		hb, err := hotkey.Open()
		if err != nil {
			slog.Warn("global hotkeys unavailable", "err", err)
		} else {
			registry = hotkey.NewRegistry(hb)
			defer registry.Close()
		}
	}

	var login manager.LoginItem
	if item, err := autostart.Default(); err != nil {
		slog.Warn("autostart unavailable", "err", err)
	} else {
		login = item
	}

	slog.Info("xclipy daemon starting",
		"version", Version,
		"data_dir", dataDir,
		"socket", socket,
		"clipboard", backend.Name(),
		"history", len(entries),
	)

	m := manager.New(manager.Config{
		Clipboard:    backend,
		Hotkeys:      registry,
		Store:        store,
		Login:        login,
		Settings:     st,
		History:      entries,
		PollInterval: v.GetDuration("poll-interval"),
	})

	ln, err := ipc.Listen(socket)
	if err != nil {
		return fmt.Errorf("ipc: %w", err)
	}
	defer os.Remove(socket)
	slog.Info("IPC socket listening", "path", socket)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvErr := make(chan error, 1)
	go func() { srvErr <- ipc.NewServer(m).Serve(ctx, ln) }()

	if err := m.Run(ctx); err != nil {
		return err
	}
	return <-srvErr
}
