package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/app"
)

func (c *command) newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage product categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				cats, err := a.Catalog.Categories(cmd.Context())
				if err != nil {
					return err
				}
				return out.result(cats, func(w io.Writer) {
					rows := make([][]string, 0, len(cats))
					for _, cat := range cats {
						rows = append(rows, []string{cat.CategoryID, cat.Name})
					}
					out.table([]string{"ID", "NAME"}, rows)
				})
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				cat, err := a.Categories.Create(cmd.Context(), map[string]string{"name": args[0]})
				if err != nil {
					return err
				}
				return out.result(cat, func(w io.Writer) {
					out.table([]string{"ID", "NAME"}, [][]string{{cat.CategoryID, cat.Name}})
				})
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				if err := a.Categories.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				return out.success("Deleted category %s", args[0])
			})
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}
