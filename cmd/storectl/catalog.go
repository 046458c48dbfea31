package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	catalogapp "github.com/xgrltd/storefront/internal/application/catalog"
	"github.com/xgrltd/storefront/internal/domain/shared/valueobject"
	"github.com/xgrltd/storefront/internal/infrastructure/fixtures"
)

const nameColumnWidth = 40

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Query the product catalog",
	}

	var req catalogapp.ListProductsRequest
	list := &cobra.Command{
		Use:   "list",
		Short: "List products with the storefront's filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := fixtures.Load()
			if err != nil {
				return err
			}
			resp, err := catalogapp.NewProductService(store).List(cmd.Context(), req)
			if err != nil {
				return err
			}

			table := newTable(a.out, "ID", "Name", "Category", "Price")
			for _, p := range resp.Products {
				table.Append([]string{
					strconv.Itoa(p.ID),
					valueobject.TruncateText(p.Name, nameColumnWidth),
					p.Category,
					p.FormattedPrice,
				})
			}
			table.Render()
			fmt.Fprintf(a.out, "%d products (sort: %s)\n", resp.Total, resp.Sort)
			return nil
		},
	}
	list.Flags().StringVar(&req.Search, "search", "", "Case-insensitive name search")
	list.Flags().StringSliceVar(&req.Categories, "category", nil, "Category filter, repeatable")
	list.Flags().StringVar(&req.Sort, "sort", "", "featured, price-low, price-high or newest")

	cmd.AddCommand(list)
	return cmd
}
