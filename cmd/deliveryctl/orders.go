package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"deliveryfood/models"
	"deliveryfood/receipt"
	"deliveryfood/session"
	"deliveryfood/statemachine"
	"deliveryfood/tracking"
)

func newOrdersCmd(a *app) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show your order history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabOrders); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := tracking.NewOrderWatcher(a.client, a.session.UserID(), a.log)
			if !watch {
				orders, _, err := w.Poll(cmd.Context())
				if err != nil {
					return err
				}
				return printOrders(out, orders)
			}

			first := true
			err := w.Watch(cmd.Context(), interval, func(orders []models.Order, updates []tracking.StatusUpdate) {
				if first {
					first = false
					_ = printOrders(out, orders)
					return
				}
				for _, u := range updates {
					fmt.Fprintf(out, "%s  order #%d: %s -> %s\n", time.Now().Format(time.TimeOnly), u.OrderID, orEmpty(u.From), u.To)
				}
			})
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep polling and print status changes")
	cmd.Flags().DurationVar(&interval, "interval", tracking.CustomerInterval, "poll interval with --watch")

	show := &cobra.Command{
		Use:   "show ORDER_ID",
		Short: "Show one order with its receipt and status history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			order, err := a.client.GetOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printOrder(cmd.OutOrStdout(), order)
		},
	}
	cmd.AddCommand(show)
	return cmd
}

func printOrders(w io.Writer, orders []models.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders yet.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ORDER\tSTATUS\tPROGRESS\tITEMS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "#%d\t%s\t%d%%\t%d\t%s\t%s\n",
			o.ID, o.Status, statemachine.Progress(o.Status), len(o.Items), receipt.Money(o.TotalPrice), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func printOrder(w io.Writer, o *models.Order) error {
	customer := ""
	if o.Customer != nil {
		customer = o.Customer.Name
	}
	if err := receipt.Render(w, receipt.FromOrder(*o, customer)); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nStatus: %s (%d%%)\n", o.Status, statemachine.Progress(o.Status))
	if o.Assignment != nil && o.Assignment.Courier != nil {
		fmt.Fprintf(w, "Courier: %s\n", o.Assignment.Courier.Name)
	}
	tw := newTable(w)
	for _, h := range o.StatusHistory {
		fmt.Fprintf(tw, "%s\t%s -> %s\t%s\n", h.CreatedAt.Format("2006-01-02 15:04"), orEmpty(h.FromStatus), h.ToStatus, h.Note)
	}
	return tw.Flush()
}

func orEmpty(s models.OrderStatus) models.OrderStatus {
	if s == "" {
		return "-"
	}
	return s
}
