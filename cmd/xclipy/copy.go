package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/xclipy/internal/manager"
	"go.klb.dev/xclipy/internal/message"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy [TEXT]",
		Short: "Put text, files or a history entry on the clipboard",
		Long: `Writes to the system clipboard through the daemon. The write is not
recorded as a new history entry.

  xclipy copy "some text"        copy TEXT
  echo hi | xclipy copy          copy stdin
  xclipy copy --files a.txt dir  copy a file list
  xclipy copy --index 2          re-copy history entry 2
  xclipy copy -i 0 --as text     re-copy entry 0 as text even if it names files`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runCopy(cmd, v, args) },
	}

	f := cmd.Flags()
	f.StringArrayP("files", "f", nil, "copy these paths as a file list (repeat for each path)")
	f.IntP("index", "i", -1, "copy the history entry at this index")
	f.String("as", "", "with --index, copy the entry as auto, text or files")
	addSocketFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func runCopy(cmd *cobra.Command, v *viper.Viper, args []string) error {
	// Read directly from the flag set: paths may contain commas.
	files, err := cmd.Flags().GetStringArray("files")
	if err != nil {
		return err
	}
	req, err := copyRequest(cmd.InOrStdin(), args, files, cmd.Flags().Changed("index"), v.GetInt("index"), v.GetString("as"))
	if err != nil {
		return err
	}
	if req == nil {
		return nil
	}
	_, err = newClient(v).Call(req)
	return err
}

// copyRequest builds the COPY request. A nil request means stdin was empty.
func copyRequest(stdin io.Reader, args, files []string, hasIndex bool, index int, as string) (*message.Message, error) {
	set := 0
	for _, b := range []bool{len(args) > 0, len(files) > 0, hasIndex} {
		if b {
			set++
		}
	}
	if set > 1 {
		return nil, errors.New("give only one of TEXT, --files or --index")
	}
	if as != "" && !hasIndex {
		return nil, errors.New("--as needs --index")
	}

	switch {
	case hasIndex:
		if index < 0 {
			return nil, fmt.Errorf("invalid index %d", index)
		}
		mode, err := manager.ParseCopyMode(as)
		if err != nil {
			return nil, err
		}
		return &message.Message{Type: message.TypeCopy, Index: message.IndexOf(index), As: string(mode)}, nil
	case len(files) > 0:
		abs := make([]string, 0, len(files))
		for _, f := range files {
			p, err := filepath.Abs(f)
			if err != nil {
				return nil, fmt.Errorf("resolving %s: %w", f, err)
			}
			abs = append(abs, p)
		}
		return &message.Message{Type: message.TypeCopy, Files: abs}, nil
	case len(args) > 0:
		if args[0] == "" {
			return nil, errors.New("refusing to copy empty text")
		}
		return &message.Message{Type: message.TypeCopy, Text: args[0]}, nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &message.Message{Type: message.TypeCopy, Text: string(data)}, nil
}
