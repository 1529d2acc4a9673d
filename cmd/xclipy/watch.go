package main

import (
	"encoding/json"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/xclipy/internal/message"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream history and hotkey events from the daemon",
		Long: `Prints one line per daemon event until interrupted: the current history
first, then every history change and every press of the global hotkey.
With --format json each line is a JSON object, suitable for driving a viewer.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(v.GetString("format"))
			if err != nil {
				return err
			}
			if format == formatYAML {
				return errors.New("watch supports text or json output")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)
			return newClient(v).Watch(ctx, func(ev *message.Message) error {
				if format == formatJSON {
					return enc.Encode(ev)
				}
				return printEventText(out, ev)
			})
		},
	}
	addFormatFlag(cmd)
	addSocketFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}
