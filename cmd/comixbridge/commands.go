package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/phrazzld/comix-bridge/internal/archive"
	"github.com/phrazzld/comix-bridge/internal/bridge"
	"github.com/phrazzld/comix-bridge/internal/resource"
	"github.com/phrazzld/comix-bridge/internal/task"
	"github.com/spf13/cobra"
)

func newMetadataCmd(opts *rootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "metadata FILE",
		Short: "Print the title and page list of a comic book as JSON",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the file name)")

	cmd.RunE = opts.run(func(cmd *cobra.Command, args []string, app *application) error {
		path := args[0]
		if name == "" {
			name = filepath.Base(path)
		}
		fd, err := resource.OpenDescriptor(path)
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		var book *bridge.ComicBook
		var ferr *bridge.Error
		status, err := app.bridge.OpenComicBook(ctx, fd, path, name, bridge.CallbackFuncs[*bridge.ComicBook]{
			Success: func(b *bridge.ComicBook) { book = b },
			Failure: func(e *bridge.Error) { ferr = e },
		})
		if err := result(fd, status, err, ferr); err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), book)
	})
	return cmd
}

func newHashCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash FILE",
		Short: "Print the size and content hash of a file",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = opts.run(func(cmd *cobra.Command, args []string, app *application) error {
		fd, err := resource.OpenDescriptor(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		fh, err := app.bridge.ComicFileData(ctx, fd)
		if err != nil {
			if bridge.IsIllegalArgument(err) {
				_ = resource.CloseDescriptor(fd)
			}
			return err
		}
		if fh == nil {
			return task.ErrCancelled
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"size":      fh.Size,
			"algorithm": fh.Algorithm,
			"digest":    hex.EncodeToString(fh.Digest),
		})
	})
	return cmd
}

func newPageCmd(opts *rootOptions) *cobra.Command {
	var (
		width, height int
		out           string
	)
	cmd := &cobra.Command{
		Use:   "page FILE POSITION",
		Short: "Decode one page and write it as PNG",
		Args:  cobra.ExactArgs(2),
	}
	cmd.Flags().IntVar(&width, "width", 0, "fit the page within this width")
	cmd.Flags().IntVar(&height, "height", 0, "fit the page within this height")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to stdout)")

	cmd.RunE = opts.run(func(cmd *cobra.Command, args []string, app *application) error {
		position, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("position must be an integer: %q", args[1])
		}
		fd, err := resource.OpenDescriptor(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		var img *archive.Image
		var ferr *bridge.Error
		cb := bridge.CallbackFuncs[*archive.Image]{
			Success: func(i *archive.Image) { img = i },
			Failure: func(e *bridge.Error) { ferr = e },
		}
		var status bridge.Status
		if width > 0 || height > 0 {
			status, err = app.bridge.Thumbnail(ctx, fd, position, width, height, cb)
		} else {
			status, err = app.bridge.Image(ctx, fd, position, cb)
		}
		if err := result(fd, status, err, ferr); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			w = f
		}
		if err := png.Encode(w, img.RGBA()); err != nil {
			return fmt.Errorf("failed to encode page: %w", err)
		}
		return nil
	})
	return cmd
}

// result turns a callback-based bridge call into an error. A descriptor the
// bridge rejected is still ours and is closed here.
func result(fd int, status bridge.Status, err error, ferr *bridge.Error) error {
	switch {
	case err != nil:
		_ = resource.CloseDescriptor(fd)
		return err
	case status == bridge.StatusCancelled:
		return task.ErrCancelled
	case ferr != nil:
		return ferr
	default:
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
