package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/domain/product"
	"github.com/orderdesk/orderdesk/internal/storeapi"
)

type clientFunc func() (*storeapi.Client, error)

func newProductsCmd(client clientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalog",
	}
	cmd.AddCommand(newProductsListCmd(client))
	cmd.AddCommand(newProductsCreateCmd(client))
	cmd.AddCommand(newProductsUpdateCmd(client))
	cmd.AddCommand(newProductsDeleteCmd(client))
	return cmd
}

func newProductsListCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client()
			if err != nil {
				return err
			}

			products, err := c.FetchProducts(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tUNIT PRICE")
			for _, p := range products {
				fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.UnitPrice.StringFixed(2))
			}
			return w.Flush()
		},
	}
}

func newProductsCreateCmd(client clientFunc) *cobra.Command {
	var (
		name  string
		price string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			unitPrice, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("parse --price: %w", err)
			}

			c, err := client()
			if err != nil {
				return err
			}

			created, err := c.CreateProduct(cmd.Context(), product.Product{Name: name, UnitPrice: unitPrice})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created product %d: %s (%s)\n",
				created.ID, created.Name, created.UnitPrice.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringVar(&price, "price", "", "unit price, e.g. 2.80")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProductsUpdateCmd(client clientFunc) *cobra.Command {
	var (
		name  string
		price string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product's name and unit price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse product id: %w", err)
			}
			unitPrice, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("parse --price: %w", err)
			}

			c, err := client()
			if err != nil {
				return err
			}

			updated, err := c.UpdateProduct(cmd.Context(), product.Product{ID: id, Name: name, UnitPrice: unitPrice})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated product %d: %s (%s)\n",
				updated.ID, updated.Name, updated.UnitPrice.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringVar(&price, "price", "", "unit price, e.g. 2.80")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProductsDeleteCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a product from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse product id: %w", err)
			}

			c, err := client()
			if err != nil {
				return err
			}

			if err := c.DeleteProduct(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %d\n", id)
			return nil
		},
	}
}
