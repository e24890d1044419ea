package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"deliveryfood/apiclient"
	"deliveryfood/models"
	"deliveryfood/receipt"
)

func newRestaurantsCmd(a *app) *cobra.Command {
	var q apiclient.RestaurantQuery
	var desc bool
	cmd := &cobra.Command{
		Use:   "restaurants",
		Short: "List restaurants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if desc {
				q.Order = "desc"
			}
			list, err := a.client.ListRestaurants(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printRestaurants(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&q.Search, "search", "", "filter by name or address")
	cmd.Flags().StringVar(&q.Sort, "sort", "name", "sort by name or address")
	cmd.Flags().BoolVar(&desc, "desc", false, "descending order")
	return cmd
}

func newMenusCmd(a *app) *cobra.Command {
	var restaurantID uint
	var search string
	cmd := &cobra.Command{
		Use:   "menus",
		Short: "List menu items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client.ListMenus(cmd.Context(), restaurantID, search)
			if err != nil {
				return err
			}
			return printMenus(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().UintVar(&restaurantID, "restaurant", 0, "only this restaurant")
	cmd.Flags().StringVar(&search, "search", "", "filter by name")
	return cmd
}

func printRestaurants(w io.Writer, list []models.Restaurant) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tADDRESS\tPHONE")
	for _, r := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Name, r.Address, r.Phone)
	}
	return tw.Flush()
}

func printMenus(w io.Writer, list []models.MenuItem) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tRESTAURANT\tPRICE\tIMAGE")
	for _, m := range list {
		restaurant := fmt.Sprint(m.RestaurantID)
		if m.Restaurant != nil {
			restaurant = m.Restaurant.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.Name, restaurant, receipt.Money(m.Price), m.ImageURL)
	}
	return tw.Flush()
}
