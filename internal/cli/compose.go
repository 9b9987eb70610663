package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/draft"
)

// itemSpec is a "<productID>:<qty>" argument to --item.
type itemSpec struct {
	productID int64
	qty       int
}

func parseItemSpec(s string) (itemSpec, error) {
	id, qty, ok := strings.Cut(s, ":")
	if !ok {
		return itemSpec{}, fmt.Errorf("invalid item %q: expected <productID>:<qty>", s)
	}
	productID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return itemSpec{}, fmt.Errorf("invalid item %q: %w", s, err)
	}
	n, err := strconv.Atoi(qty)
	if err != nil {
		return itemSpec{}, fmt.Errorf("invalid item %q: %w", s, err)
	}
	return itemSpec{productID: productID, qty: n}, nil
}

func newOrdersComposeCmd(client clientFunc) *cobra.Command {
	var (
		number string
		items  []string
	)

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose and submit a new order",
		Long: `Compose a new order draft from catalog products and submit it.

Each --item takes the form <productID>:<qty>. Repeating a product id replaces
the earlier line's quantity instead of adding a second line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := client()
			if err != nil {
				return err
			}

			session := draft.NewSession(c)
			if err := session.LoadNew(ctx); err != nil {
				return err
			}

			d := session.Draft()
			d.SetOrderNumber(number)
			if err := stageItems(session.Editor(), items); err != nil {
				return err
			}

			id, err := draft.NewSubmitter(c).Submit(ctx, d, draft.Create())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created order %d (#%s), total %s\n",
				id, d.TrimmedOrderNumber(), d.TotalPrice().StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&number, "number", "", "order number")
	cmd.Flags().StringArrayVar(&items, "item", nil, "line item as <productID>:<qty>, repeatable")
	_ = cmd.MarkFlagRequired("number")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newOrdersEditCmd(client clientFunc) *cobra.Command {
	var (
		number  string
		items   []string
		setQty  []string
		removes []int
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an existing order and resubmit it",
		Long: `Load a persisted order into a draft, apply changes, and submit the update.

Line items keep the unit price they were ordered at. --add stages new lines
(or replaces the quantity of an existing line for the same product), --set
changes the quantity of a line by its position, and --remove deletes a line
by its position. Removals are applied last, highest position first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			orderID, err := parseID(args[0], "order id")
			if err != nil {
				return err
			}

			c, err := client()
			if err != nil {
				return err
			}

			session := draft.NewSession(c)
			if err := session.LoadExisting(ctx, orderID); err != nil {
				return err
			}

			d := session.Draft()
			ed := session.Editor()

			if number != "" {
				d.SetOrderNumber(number)
			}
			if err := stageItems(ed, items); err != nil {
				return err
			}
			for _, s := range setQty {
				index, qty, err := parseSetQty(s)
				if err != nil {
					return err
				}
				if err := editQty(ed, index, qty); err != nil {
					return err
				}
			}
			for _, index := range sortedDesc(removes) {
				if err := ed.RequestRemoval(index); err != nil {
					return err
				}
				if err := ed.ConfirmRemoval(); err != nil {
					return err
				}
			}

			if _, err := draft.NewSubmitter(c).Submit(ctx, d, draft.Update(orderID)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated order %d (#%s), total %s\n",
				orderID, d.TrimmedOrderNumber(), d.TotalPrice().StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&number, "number", "", "new order number (unchanged when empty)")
	cmd.Flags().StringArrayVar(&items, "add", nil, "line item as <productID>:<qty>, repeatable")
	cmd.Flags().StringArrayVar(&setQty, "set", nil, "quantity change as <position>=<qty>, repeatable")
	cmd.Flags().IntSliceVar(&removes, "remove", nil, "line position to remove, repeatable")
	return cmd
}

// stageItems runs one add flow per item spec.
func stageItems(ed *draft.Editor, items []string) error {
	for _, s := range items {
		spec, err := parseItemSpec(s)
		if err != nil {
			return err
		}
		if err := ed.OpenAdd(); err != nil {
			return err
		}
		if err := ed.SetProduct(spec.productID); err != nil {
			ed.Cancel()
			return err
		}
		if err := ed.SetQty(spec.qty); err != nil {
			ed.Cancel()
			return err
		}
		if err := ed.Commit(); err != nil {
			ed.Cancel()
			return err
		}
	}
	return nil
}

// editQty runs one edit flow changing the quantity at a position.
func editQty(ed *draft.Editor, index, qty int) error {
	if err := ed.OpenEdit(index); err != nil {
		return err
	}
	if err := ed.SetQty(qty); err != nil {
		ed.Cancel()
		return err
	}
	if err := ed.Commit(); err != nil {
		ed.Cancel()
		return err
	}
	return nil
}

func parseSetQty(s string) (index, qty int, err error) {
	pos, n, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("invalid --set %q: expected <position>=<qty>", s)
	}
	if index, err = strconv.Atoi(pos); err != nil {
		return 0, 0, fmt.Errorf("invalid --set %q: %w", s, err)
	}
	if qty, err = strconv.Atoi(n); err != nil {
		return 0, 0, fmt.Errorf("invalid --set %q: %w", s, err)
	}
	return index, qty, nil
}

// sortedDesc returns a copy sorted high to low, so removals by position stay
// valid as lines disappear.
func sortedDesc(indexes []int) []int {
	out := make([]int, len(indexes))
	copy(out, indexes)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] > out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func intDecimal(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
