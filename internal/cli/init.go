package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/app"
)

func (c *command) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize storefront storage",
		Long: "Create the configuration directory with a default config.yaml, then attach\n" +
			"the configured store, which creates its schema and seeds the default site content.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				if !out.json {
					out.warn("config: %s", a.Config.ConfigDir)
					out.warn("data:   %s", a.Config.Store.DataDir)
				}
				return out.success("Storefront initialized (%s backend)", a.Config.Store.Backend)
			})
		},
	}
}
