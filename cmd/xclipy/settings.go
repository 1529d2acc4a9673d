package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/xclipy/internal/message"
)

func newSettingsCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change daemon settings",
		Long: `Without a subcommand, prints the current settings and hotkey state.

Keys for "settings set":
  maxHistorySize       positive integer
  autoStart            true|false (installs or removes the login item)
  showTrayIcon         true|false
  globalHotkey         e.g. Ctrl+Shift+V, Cmd+Option+F12
  globalHotkeyEnabled  true|false`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runSettingsShow(cmd, v) },
	}
	addFormatFlag(cmd)
	addSocketFlag(cmd)
	addConfigFlag(cmd)

	cmd.AddCommand(newSettingsSetCmd())
	return cmd
}

func runSettingsShow(cmd *cobra.Command, v *viper.Viper) error {
	format, err := parseOutputFormat(v.GetString("format"))
	if err != nil {
		return err
	}
	resp, err := newClient(v).Call(&message.Message{Type: message.TypeStatus})
	if err != nil {
		return err
	}
	if format == formatText {
		return printStatusText(cmd.OutOrStdout(), resp)
	}
	res := statusResult{
		Entries:            len(resp.History),
		HotkeySupported:    resp.HotkeySupported,
		HotkeyRegistered:   resp.HotkeyRegistered,
		AutoStartInstalled: resp.AutoStartInstalled,
	}
	if resp.Settings != nil {
		res.Settings = *resp.Settings
	}
	return printStructured(cmd.OutOrStdout(), format, res)
}

func newSettingsSetCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "set KEY VALUE",
		Short:   "Change one setting",
		Args:    cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := newClient(v).Call(&message.Message{Type: message.TypeSet, Key: args[0], Value: args[1]})
			return err
		},
	}
	addSocketFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}
