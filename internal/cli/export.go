package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/app"
	"github.com/mesh-intelligence/storefront/internal/sqlite"
)

func (c *command) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Export every table as JSONL",
		Long: "Export writes one JSONL file per table into dir. The directory can be used\n" +
			"as the data directory of the sqlite backend, so export also migrates a\n" +
			"postgres store to sqlite.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				if err := sqlite.Export(cmd.Context(), a.Store, args[0]); err != nil {
					return sysError(err)
				}
				return out.success("Exported to %s", args[0])
			})
		},
	}
}
