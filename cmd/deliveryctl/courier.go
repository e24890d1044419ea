package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"deliveryfood/apiclient"
	"deliveryfood/models"
	"deliveryfood/session"
	"deliveryfood/statemachine"
	"deliveryfood/tracking"
)

func newCourierCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courier",
		Short: "Courier dashboard",
	}

	board := func(cmd *cobra.Command) (*tracking.CourierBoard, error) {
		if err := a.open(session.TabCourierDashboard); err != nil {
			return nil, err
		}
		b := tracking.NewCourierBoard(a.client, a.session.UserID(), a.log)
		return b, b.Refresh(cmd.Context())
	}

	orders := &cobra.Command{
		Use:   "orders",
		Short: "List the orders assigned to you",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := board(cmd)
			if err != nil {
				return err
			}
			return printCourierOrders(cmd.OutOrStdout(), b.Orders())
		},
	}

	advance := &cobra.Command{
		Use:   "advance ORDER_ID",
		Short: "Move an order to its next status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := board(cmd)
			if err != nil {
				return err
			}
			change, err := b.Advance(cmd.Context(), id)
			switch {
			case errors.Is(err, tracking.ErrTerminalStatus):
				fmt.Fprintf(cmd.OutOrStdout(), "Order #%d is already delivered.\n", id)
				return nil
			case err != nil:
				return fmt.Errorf("advance order #%d: %s", id, apiclient.MessageOf(err, "Failed to update status. Please try again."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d: %s -> %s (%d%%)\n", change.OrderID, change.PreviousStatus, change.NewStatus, change.Progress)
			return printCourierOrders(cmd.OutOrStdout(), b.Orders())
		},
	}

	var interval time.Duration
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Keep the order list refreshed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabCourierDashboard); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			b := tracking.NewCourierBoard(a.client, a.session.UserID(), a.log)
			err := b.Watch(cmd.Context(), interval, func(orders []models.Order) {
				fmt.Fprintf(out, "\n%s\n", time.Now().Format(time.TimeOnly))
				_ = printCourierOrders(out, orders)
			})
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
	watch.Flags().DurationVar(&interval, "interval", tracking.CourierInterval, "refresh interval")

	cmd.AddCommand(orders, advance, watch)
	return cmd
}

func printCourierOrders(w io.Writer, orders []models.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders assigned.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ORDER\tSTATUS\tNEXT\tDELIVER TO\tPHONE")
	for _, o := range orders {
		next := "-"
		if s, ok := statemachine.Next(o.Status); ok {
			next = string(s)
		}
		addr := o.DeliveryAddress
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s, %s %s\t%s\n", o.ID, o.Status, next, addr.Street, addr.City, addr.PostalCode, addr.Phone)
	}
	return tw.Flush()
}
