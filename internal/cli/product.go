package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/admin"
	"github.com/mesh-intelligence/storefront/internal/app"
	"github.com/mesh-intelligence/storefront/internal/catalog"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

func printProducts(out *printer, products []*types.Product) error {
	return out.result(products, func(w io.Writer) {
		rows := make([][]string, 0, len(products))
		for _, p := range products {
			rows = append(rows, []string{p.ProductID, p.Name, p.Price.String(), p.Weight, p.CategoryID})
		}
		out.table([]string{"ID", "NAME", "PRICE", "WEIGHT", "CATEGORY"}, rows)
	})
}

func (c *command) newProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage catalog products",
	}

	var search, category, price, size string
	list := &cobra.Command{
		Use:   "list",
		Short: "List products matching the filters",
		Long: "List products. Filters combine with AND:\n" +
			"  --search    substring of name or description, any case\n" +
			"  --category  category id (all for every category)\n" +
			"  --price     all, low (up to 50), medium (up to 120) or high\n" +
			"  --size      all, small (200g/400g), medium (500g) or large (1kg)",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pr, err := catalog.ParsePriceRange(price)
			if err != nil {
				return userError(err)
			}
			sr, err := catalog.ParseSizeRange(size)
			if err != nil {
				return userError(err)
			}
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				products, err := a.Catalog.Query(cmd.Context(), catalog.Filter{
					Search: search, CategoryID: category, Price: pr, Size: sr,
				})
				if err != nil {
					return err
				}
				return printProducts(out, products)
			})
		},
	}
	list.Flags().StringVar(&search, "search", "", "search text")
	list.Flags().StringVar(&category, "category", "", "category id")
	list.Flags().StringVar(&price, "price", "", "price range")
	list.Flags().StringVar(&size, "size", "", "size range")

	// save creates a product when withID is false, otherwise overwrites the
	// product named by the first argument.
	save := func(withID bool, image *string) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			id := ""
			if withID {
				id, args = args[0], args[1:]
			}
			fields, err := fieldsFromArgs(args)
			if err != nil {
				return err
			}
			var up *admin.Upload
			if *image != "" {
				u, f, err := openUpload(*image)
				if err != nil {
					return err
				}
				defer f.Close()
				up = u
			}
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				var p *types.Product
				var err error
				if withID {
					p, err = a.Products.Update(cmd.Context(), id, fields, up)
				} else {
					p, err = a.Products.Create(cmd.Context(), fields, up)
				}
				if err != nil {
					return err
				}
				return printProducts(out, []*types.Product{p})
			})
		}
	}

	var addImage, updateImage string
	add := &cobra.Command{
		Use:   "add key=value...",
		Short: "Create a product (name, description, price, weight, category_id)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  save(false, &addImage),
	}
	add.Flags().StringVar(&addImage, "image", "", "image file to upload")

	update := &cobra.Command{
		Use:   "update <id> key=value...",
		Short: "Overwrite a product",
		Args:  cobra.MinimumNArgs(2),
		RunE:  save(true, &updateImage),
	}
	update.Flags().StringVar(&updateImage, "image", "", "replacement image file")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product and its image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App, out *printer) error {
				if err := a.Products.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				return out.success("Deleted product %s", args[0])
			})
		},
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}
