package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/xclipy/internal/message"
)

func newHistoryCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"ls"},
		Short:   "List clipboard history, most recent first",
		Long: `Lists clipboard history, most recent first. Indices are the ones copy
and rm take, also when --search hides some entries.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runHistory(cmd, v) },
	}
	cmd.Flags().StringP("search", "s", "", "show only entries containing this text (case-insensitive)")
	addFormatFlag(cmd)
	addSocketFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func runHistory(cmd *cobra.Command, v *viper.Viper) error {
	format, err := parseOutputFormat(v.GetString("format"))
	if err != nil {
		return err
	}
	resp, err := newClient(v).Call(&message.Message{Type: message.TypeHistory})
	if err != nil {
		return err
	}
	search := v.GetString("search")
	if format == formatText {
		return printHistoryText(cmd.OutOrStdout(), resp.HistoryOf(), search)
	}
	return printStructured(cmd.OutOrStdout(), format, newHistoryResult(resp.HistoryOf(), search))
}
