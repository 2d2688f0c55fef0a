package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/app"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

func printFAQs(out *printer, faqs []*types.FAQ) error {
	return out.result(faqs, func(w io.Writer) {
		rows := make([][]string, 0, len(faqs))
		for _, f := range faqs {
			rows = append(rows, []string{f.FAQID, f.Question, f.Answer})
		}
		out.table([]string{"ID", "QUESTION", "ANSWER"}, rows)
	})
}

func (c *command) newFAQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faq",
		Short: "Manage frequently asked questions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List FAQs in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				faqs, err := a.FAQs.List(cmd.Context())
				if err != nil {
					return err
				}
				return printFAQs(out, faqs)
			})
		},
	}

	add := &cobra.Command{
		Use:   "add question=... answer=...",
		Short: "Create an FAQ",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := fieldsFromArgs(args)
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				f, err := a.FAQs.Create(cmd.Context(), fields)
				if err != nil {
					return err
				}
				return printFAQs(out, []*types.FAQ{f})
			})
		},
	}

	update := &cobra.Command{
		Use:   "update <id> question=... answer=...",
		Short: "Overwrite an FAQ",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := fieldsFromArgs(args[1:])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				f, err := a.FAQs.Update(cmd.Context(), args[0], fields)
				if err != nil {
					return err
				}
				return printFAQs(out, []*types.FAQ{f})
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an FAQ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				if err := a.FAQs.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				return out.success("Deleted FAQ %s", args[0])
			})
		},
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}
