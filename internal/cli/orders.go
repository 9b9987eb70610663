package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/domain/order"
)

const dateLayout = "2006-01-02"

func newOrdersCmd(client clientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List, inspect, and manage orders",
	}
	cmd.AddCommand(newOrdersListCmd(client))
	cmd.AddCommand(newOrdersShowCmd(client))
	cmd.AddCommand(newOrdersComposeCmd(client))
	cmd.AddCommand(newOrdersEditCmd(client))
	cmd.AddCommand(newOrdersStatusCmd(client))
	cmd.AddCommand(newOrdersDeleteCmd(client))
	return cmd
}

func newOrdersListCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client()
			if err != nil {
				return err
			}

			orders, err := c.ListOrders(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tORDER #\tDATE\tPRODUCTS\tTOTAL\tSTATUS")
			for _, o := range orders {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
					o.ID, o.OrderNumber, o.Date.Format(dateLayout),
					o.ProductCount, o.FinalPrice.StringFixed(2), o.Status)
			}
			return w.Flush()
		},
	}
}

func newOrdersShowCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single order with its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order id")
			if err != nil {
				return err
			}

			c, err := client()
			if err != nil {
				return err
			}

			o, err := c.FetchOrder(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Order %d  #%s  %s  %s\n", o.ID, o.OrderNumber, o.Date.Format(dateLayout), o.Status)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRODUCT\tQTY\tUNIT PRICE\tSUBTOTAL")
			for _, l := range o.Lines {
				sub := l.UnitPrice.Mul(intDecimal(l.Qty))
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", l.ProductID, l.Qty, l.UnitPrice.StringFixed(2), sub.StringFixed(2))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Total: %s\n", o.FinalPrice().StringFixed(2))
			return nil
		},
	}
}

func newOrdersStatusCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <pending|in_progress|completed>",
		Short: "Advance an order's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order id")
			if err != nil {
				return err
			}
			status, err := order.ParseStatus(strings.ToUpper(args[1]))
			if err != nil {
				return err
			}

			c, err := client()
			if err != nil {
				return err
			}

			if err := c.SetOrderStatus(cmd.Context(), id, status); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Order %d is now %s\n", id, status)
			return nil
		},
	}
}

func newOrdersDeleteCmd(client clientFunc) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order id")
			if err != nil {
				return err
			}

			if !yes && !confirm(cmd, fmt.Sprintf("Delete order %d?", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}

			c, err := client()
			if err != nil {
				return err
			}

			if err := c.DeleteOrder(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted order %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

// confirm prompts on stdin and accepts only an explicit yes.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)

	var answer string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", what, err)
	}
	return id, nil
}
