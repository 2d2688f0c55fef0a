package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/admin"
	"github.com/mesh-intelligence/storefront/internal/app"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// openUpload opens a local file for upload. The caller closes the file.
func openUpload(path string) (*admin.Upload, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, userError(fmt.Errorf("open %s: %w", path, err))
	}
	return &admin.Upload{Filename: filepath.Base(path), Body: f}, f, nil
}

func printImages(out *printer, imgs []*types.Image) error {
	return out.result(imgs, func(w io.Writer) {
		rows := make([][]string, 0, len(imgs))
		for _, img := range imgs {
			rows = append(rows, []string{img.Name, img.Section, img.URL, img.AltText})
		}
		out.table([]string{"NAME", "SECTION", "URL", "ALT"}, rows)
	})
}

func printImage(out *printer, img *types.Image) error {
	return printImages(out, []*types.Image{img})
}

func (c *command) newImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Manage the image registry",
	}

	list := &cobra.Command{
		Use:   "list [section]",
		Short: "List images, optionally of one section",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section := ""
			if len(args) == 1 {
				section = args[0]
			}
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				imgs, err := a.Images.List(cmd.Context(), section)
				if err != nil {
					return err
				}
				return printImages(out, imgs)
			})
		},
	}

	var alt string
	add := &cobra.Command{
		Use:   "add <section> <file>",
		Short: "Upload a gallery image under a new name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, f, err := openUpload(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				img, err := a.ImageService.Add(cmd.Context(), args[0], up, map[string]string{"alt_text": alt})
				if err != nil {
					return err
				}
				return printImage(out, img)
			})
		},
	}
	add.Flags().StringVar(&alt, "alt", "", "alternative text (required)")

	put := &cobra.Command{
		Use:   "put <section> <name> <file>",
		Short: "Upload a fixed-name section image such as home_background",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, f, err := openUpload(args[2])
			if err != nil {
				return err
			}
			defer f.Close()
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				img, err := a.ImageService.Slot(cmd.Context(), args[0], args[1], up)
				if err != nil {
					return err
				}
				return printImage(out, img)
			})
		},
	}

	replace := &cobra.Command{
		Use:   "replace <name> <file>",
		Short: "Replace the file of a registered image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, f, err := openUpload(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				img, err := a.Images.Replace(cmd.Context(), args[0], up.Body)
				if err != nil {
					return err
				}
				return printImage(out, img)
			})
		},
	}

	altCmd := &cobra.Command{
		Use:   "alt <name> <text>",
		Short: "Change the alternative text of an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				img, err := a.ImageService.Edit(cmd.Context(), args[0], nil, map[string]string{"alt_text": args[1]})
				if err != nil {
					return err
				}
				return printImage(out, img)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an image and its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				if err := a.ImageService.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				return out.success("Deleted image %s", args[0])
			})
		},
	}

	cmd.AddCommand(list, add, put, replace, altCmd, del)
	return cmd
}
