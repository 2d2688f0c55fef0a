package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/app"
	"github.com/mesh-intelligence/storefront/internal/content"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

func (c *command) newContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Read and edit site content",
	}

	get := &cobra.Command{
		Use:   "get <section> [element]",
		Short: "Print a section or one element",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				if len(args) == 2 {
					v, err := a.Content.ReadElement(cmd.Context(), args[0], args[1])
					if err != nil {
						return err
					}
					return out.result(v, func(w io.Writer) { fmt.Fprintln(w, v.String()) })
				}
				s, err := a.Content.Read(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return out.result(s, func(w io.Writer) {
					rows := make([][]string, 0, len(s))
					for _, el := range sortedKeys(s) {
						rows = append(rows, []string{el, string(s[el].Kind()), s[el].String()})
					}
					out.table([]string{"ELEMENT", "KIND", "VALUE"}, rows)
				})
			})
		},
	}

	var kind string
	set := &cobra.Command{
		Use:   "set <section> <element> <value>",
		Short: "Write one element",
		Long:  "Write one element. With --kind json the value must be a JSON document and is\nstored as structured data; otherwise it is stored as text.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v content.Value
			switch types.ContentKind(kind) {
			case types.KindText:
				v = content.Text(args[2])
			case types.KindJSON:
				var err error
				if v, err = content.JSON(json.RawMessage(args[2])); err != nil {
					return userError(err)
				}
			default:
				return userError(fmt.Errorf("%w: %q", types.ErrInvalidKind, kind))
			}
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				err := a.Content.Write(cmd.Context(), []content.Update{{Section: args[0], Element: args[1], Value: v}})
				if err != nil {
					return err
				}
				return out.success("Set %s.%s", args[0], args[1])
			})
		},
	}
	set.Flags().StringVar(&kind, "kind", string(types.KindText), "value kind: text or json")

	del := &cobra.Command{
		Use:   "delete <section> <element>",
		Short: "Delete one element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				if err := a.Content.Delete(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				return out.success("Deleted %s.%s", args[0], args[1])
			})
		},
	}

	form := &cobra.Command{
		Use:   "form <form> [key=value...]",
		Short: "Submit a section form",
		Long:  "Validate the fields against the named form (home, about, about_philosophy,\ncatalog, faq_page, orders_page, footer, contact) and write them.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := fieldsFromArgs(args[1:])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				if err := a.Sections.Submit(cmd.Context(), args[0], fields); err != nil {
					return err
				}
				return out.success("Saved form %s", args[0])
			})
		},
	}

	cmd.AddCommand(get, set, del, form)
	return cmd
}
