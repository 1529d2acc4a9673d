package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/xclipy/internal/message"
)

func newRemoveCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "rm [TEXT]",
		Aliases: []string{"remove"},
		Short:   "Remove an entry from the history",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := removeRequest(args, cmd.Flags().Changed("index"), v.GetInt("index"))
			if err != nil {
				return err
			}
			resp, err := newClient(v).Call(req)
			if err != nil {
				return err
			}
			if !resp.Removed {
				fmt.Fprintln(cmd.ErrOrStderr(), "no matching entry")
			}
			return nil
		},
	}
	cmd.Flags().IntP("index", "i", -1, "remove the history entry at this index")
	addSocketFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func removeRequest(args []string, hasIndex bool, index int) (*message.Message, error) {
	switch {
	case hasIndex && len(args) > 0:
		return nil, errors.New("give either TEXT or --index, not both")
	case hasIndex:
		if index < 0 {
			return nil, fmt.Errorf("invalid index %d", index)
		}
		return &message.Message{Type: message.TypeRemove, Index: message.IndexOf(index)}, nil
	case len(args) == 1:
		return &message.Message{Type: message.TypeRemove, Text: args[0]}, nil
	default:
		return nil, errors.New("give the entry TEXT or --index")
	}
}

func newClearCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "clear",
		Short:   "Delete the whole history",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := newClient(v).Call(&message.Message{Type: message.TypeClear})
			return err
		},
	}
	addSocketFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}
