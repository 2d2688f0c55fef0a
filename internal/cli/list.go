package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/app"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

func printItems(out *printer, items []types.ListItem) error {
	return out.result(items, func(w io.Writer) {
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			pairs := make([]string, 0, len(it.Fields))
			for _, k := range sortedKeys(it.Fields) {
				pairs = append(pairs, k+"="+it.Fields[k])
			}
			rows = append(rows, []string{it.ID, strings.Join(pairs, " ")})
		}
		out.table([]string{"ID", "FIELDS"}, rows)
	})
}

func (c *command) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Edit list-valued content such as store locations",
		Long:  "Edit list-valued content elements: contact.locations and contact.contact_methods.",
	}

	show := &cobra.Command{
		Use:   "show <section> <element>",
		Short: "Print the items of a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				l, err := a.Lists.Load(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printItems(out, l.Items)
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <section> <element> key=value...",
		Short: "Append an item",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := fieldsFromArgs(args[2:])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				item, err := a.Lists.Append(cmd.Context(), args[0], args[1], fields)
				if err != nil {
					return err
				}
				return printItems(out, []types.ListItem{item})
			})
		},
	}

	edit := &cobra.Command{
		Use:   "edit <section> <element> <id> key=value...",
		Short: "Replace the fields of an item",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := fieldsFromArgs(args[3:])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				if err := a.Lists.Update(cmd.Context(), args[0], args[1], args[2], fields); err != nil {
					return err
				}
				return out.success("Updated %s in %s.%s", args[2], args[0], args[1])
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <section> <element> <id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				if err := a.Lists.Delete(cmd.Context(), args[0], args[1], args[2]); err != nil {
					return err
				}
				return out.success("Removed %s from %s.%s", args[2], args[0], args[1])
			})
		},
	}

	cmd.AddCommand(show, add, edit, del)
	return cmd
}
