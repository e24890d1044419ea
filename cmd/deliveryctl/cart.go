package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"deliveryfood/checkout"
	"deliveryfood/receipt"
	"deliveryfood/session"
)

// loadCart opens the cart tab and fetches the current lines.
func (a *app) loadCart(ctx context.Context) (*checkout.Cart, error) {
	if err := a.open(session.TabCart); err != nil {
		return nil, err
	}
	cart := checkout.New(a.client, a.session, a.log)
	if err := cart.Load(ctx); err != nil {
		return nil, cartError(cart, err)
	}
	return cart, nil
}

// cartError prefers the cart's user-facing message over the raw error.
func cartError(cart *checkout.Cart, err error) error {
	if msg := cart.Message(); msg != "" {
		return errors.New(msg)
	}
	return err
}

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cart, err := a.loadCart(cmd.Context())
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), cart)
		},
	}

	var quantity int
	add := &cobra.Command{
		Use:   "add MENU_ID",
		Short: "Add a menu item to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(session.TabCart); err != nil {
				return err
			}
			menuID, err := parseID(args[0])
			if err != nil {
				return err
			}
			line, err := a.client.AddToCart(cmd.Context(), menuID, quantity)
			if err != nil {
				return err
			}
			a.session.NotifyCartChanged()
			fmt.Fprintf(cmd.OutOrStdout(), "Cart line %d: %d x %s\n", line.ID, line.Quantity, line.MenuItem.Name)
			return nil
		},
	}
	add.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to add")

	edit := func(use, short string, nargs int, apply func(context.Context, *checkout.Cart, uint, []string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(nargs),
			RunE: func(cmd *cobra.Command, args []string) error {
				cartID, err := parseID(args[0])
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				cart, err := a.loadCart(ctx)
				if err != nil {
					return err
				}
				if err := apply(ctx, cart, cartID, args[1:]); err != nil {
					return cartError(cart, err)
				}
				return printCart(cmd.OutOrStdout(), cart)
			},
		}
	}

	cmd.AddCommand(
		add,
		edit("qty CART_ID QUANTITY", "Set a line's quantity", 2, func(ctx context.Context, c *checkout.Cart, id uint, rest []string) error {
			q, err := strconv.Atoi(rest[0])
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", rest[0])
			}
			return c.SetQuantity(ctx, id, q)
		}),
		edit("inc CART_ID", "Add one to a line", 1, func(ctx context.Context, c *checkout.Cart, id uint, _ []string) error {
			return c.Increment(ctx, id)
		}),
		edit("dec CART_ID", "Take one from a line", 1, func(ctx context.Context, c *checkout.Cart, id uint, _ []string) error {
			return c.Decrement(ctx, id)
		}),
		edit("rm CART_ID", "Remove a line", 1, func(ctx context.Context, c *checkout.Cart, id uint, _ []string) error {
			return c.Remove(ctx, id)
		}),
	)
	return cmd
}

func newCheckoutCmd(a *app) *cobra.Command {
	var (
		items       []uint
		yes         bool
		receiptPath string
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Preview and confirm an order from cart lines",
		Long: "Checkout prices the selected cart lines (all of them without --item), shows the quote\n" +
			"and asks for confirmation before the order is created.",
		Example: "  deliveryctl checkout --item 3 --item 4\n  deliveryctl checkout --yes --receipt order.txt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			cart, err := a.loadCart(ctx)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				cart.SelectAll()
			}
			slices.Sort(items)
			for _, id := range slices.Compact(items) {
				if err := cart.Toggle(id); err != nil {
					return fmt.Errorf("cart line %d: %w", id, err)
				}
			}

			quote, err := cart.InitiateCheckout(ctx)
			if err != nil {
				return cartError(cart, err)
			}

			fmt.Fprintln(out, cart.Message())
			tw := newTable(out)
			for _, it := range quote.Items {
				fmt.Fprintf(tw, "%s\tx%d\t%s\n", it.Name, it.Quantity, receipt.Money(it.LineTotal))
			}
			fmt.Fprintf(tw, "Subtotal\t\t%s\n", receipt.Money(quote.Subtotal))
			fmt.Fprintf(tw, "Delivery fee\t\t%s\n", receipt.Money(quote.DeliveryFee))
			fmt.Fprintf(tw, "Total\t\t%s\n", receipt.Money(quote.TotalPrice))
			if err := tw.Flush(); err != nil {
				return err
			}

			if !yes && !confirm(cmd.InOrStdin(), out, "Place this order?") {
				cart.Cancel()
				fmt.Fprintln(out, "Checkout cancelled.")
				return nil
			}

			r, err := cart.Confirm(ctx)
			if err != nil {
				return cartError(cart, err)
			}
			fmt.Fprintln(out, cart.Message())
			if err := receipt.Render(out, *r); err != nil {
				return err
			}
			if receiptPath != "" {
				return saveReceipt(receiptPath, *r)
			}
			return nil
		},
	}
	cmd.Flags().UintSliceVar(&items, "item", nil, "cart line to check out (repeatable)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm without asking")
	cmd.Flags().StringVar(&receiptPath, "receipt", "", "also save the receipt to this file")
	return cmd
}

func printCart(w io.Writer, cart *checkout.Cart) error {
	lines := cart.Lines()
	if len(lines) == 0 {
		_, err := fmt.Fprintln(w, "Your cart is empty.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "CART ID\tITEM\tRESTAURANT\tQTY\tPRICE\tTOTAL")
	var total int64
	for _, l := range lines {
		restaurant := ""
		if l.MenuItem.Restaurant != nil {
			restaurant = l.MenuItem.Restaurant.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			l.ID, l.MenuItem.Name, restaurant, l.Quantity, receipt.Money(l.MenuItem.Price), receipt.Money(l.LineTotal()))
		total += l.LineTotal()
	}
	fmt.Fprintf(tw, "\t\t\t\t\t%s\n", receipt.Money(total))
	return tw.Flush()
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func saveReceipt(path string, r receipt.Receipt) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	if err := receipt.Render(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("save receipt: %w", err)
	}
	return f.Close()
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
