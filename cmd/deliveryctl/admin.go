package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"deliveryfood/apiclient"
	"deliveryfood/listing"
	"deliveryfood/models"
	"deliveryfood/receipt"
	"deliveryfood/session"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration: couriers, catalog, assignment and reports",
	}
	cmd.AddCommand(
		newAdminCouriersCmd(a),
		newAdminRestaurantsCmd(a),
		newAdminMenusCmd(a),
		newAdminOrdersCmd(a),
		newAdminUnassignedCmd(a),
		newAdminAvailableCmd(a),
		newAdminAssignCmd(a),
		newAdminReportsCmd(a),
	)
	return cmd
}

func listFlags(fs *pflag.FlagSet, q *listing.Query, defaultSort string) {
	fs.StringVar(&q.Search, "search", "", "case-insensitive text filter")
	fs.StringVar(&q.SortBy, "sort", defaultSort, "sort column")
	fs.BoolVar(&q.Desc, "desc", false, "descending order")
	fs.IntVar(&q.Page, "page", 1, "page number")
	fs.IntVar(&q.PageSize, "page-size", 20, "rows per page, 0 for all")
}

func pageFooter(w io.Writer, total, page, pages int) {
	fmt.Fprintf(w, "%d result(s), page %d of %d\n", total, page, pages)
}

// setIfChanged copies the named string flag into dst when it was given.
func setIfChanged(fs *pflag.FlagSet, name string, dst *string) {
	if fs.Changed(name) {
		*dst, _ = fs.GetString(name)
	}
}

// --- couriers ---

func newAdminCouriersCmd(a *app) *cobra.Command {
	var q listing.Query
	cmd := &cobra.Command{
		Use:   "couriers",
		Short: "List couriers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabCouriers); err != nil {
				return err
			}
			all, err := a.client.ListUsers(cmd.Context(), models.RoleCourier)
			if err != nil {
				return err
			}
			page, err := listing.Apply(all, listing.Couriers, q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printUsers(out, page.Items); err != nil {
				return err
			}
			pageFooter(out, page.Total, page.Page, page.Pages)
			return nil
		},
	}
	listFlags(cmd.Flags(), &q, listing.Couriers.DefaultSort)

	var in apiclient.CourierInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a courier account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabCouriers); err != nil {
				return err
			}
			u, err := a.client.CreateCourier(cmd.Context(), a.session.State().AdminID, in)
			if err != nil {
				return fmt.Errorf("create courier: %s", apiclient.MessageOf(err, "Failed to create courier."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Courier %d created: %s <%s>\n", u.ID, u.Name, u.Email)
			return nil
		},
	}
	courierFlags(create.Flags(), &in)
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	update := &cobra.Command{
		Use:   "update COURIER_ID",
		Short: "Update a courier; omitted fields are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(session.TabCouriers); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			current, err := a.client.GetUser(ctx, id)
			if err != nil {
				return err
			}
			merged := apiclient.CourierInput{Name: current.Name, Email: current.Email, Phone: current.Phone}
			fs := cmd.Flags()
			setIfChanged(fs, "name", &merged.Name)
			setIfChanged(fs, "email", &merged.Email)
			setIfChanged(fs, "phone", &merged.Phone)
			setIfChanged(fs, "password", &merged.Password)
			u, err := a.client.UpdateCourier(ctx, a.session.State().AdminID, id, merged)
			if err != nil {
				return fmt.Errorf("update courier: %s", apiclient.MessageOf(err, "Failed to update courier."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Courier %d updated: %s <%s>\n", u.ID, u.Name, u.Email)
			return nil
		},
	}
	courierFlags(update.Flags(), &apiclient.CourierInput{})

	remove := &cobra.Command{
		Use:   "delete COURIER_ID",
		Short: "Delete a courier without deliveries in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(session.TabCouriers); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.DeleteCourier(cmd.Context(), a.session.State().AdminID, id); err != nil {
				return fmt.Errorf("delete courier: %s", apiclient.MessageOf(err, "Failed to delete courier."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Courier %d deleted.\n", id)
			return nil
		},
	}

	cmd.AddCommand(create, update, remove)
	return cmd
}

func courierFlags(fs *pflag.FlagSet, in *apiclient.CourierInput) {
	fs.StringVar(&in.Name, "name", "", "full name")
	fs.StringVar(&in.Email, "email", "", "login email")
	fs.StringVar(&in.Password, "password", "", "password (min 6 characters)")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
}

func printUsers(w io.Writer, users []models.User) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Phone)
	}
	return tw.Flush()
}

// --- restaurants ---

func newAdminRestaurantsCmd(a *app) *cobra.Command {
	var q listing.Query
	cmd := &cobra.Command{
		Use:   "restaurants",
		Short: "List restaurants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabRestaurants); err != nil {
				return err
			}
			all, err := a.client.ListRestaurants(cmd.Context(), apiclient.RestaurantQuery{})
			if err != nil {
				return err
			}
			page, err := listing.Apply(all, listing.Restaurants, q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printRestaurants(out, page.Items); err != nil {
				return err
			}
			pageFooter(out, page.Total, page.Page, page.Pages)
			return nil
		},
	}
	listFlags(cmd.Flags(), &q, listing.Restaurants.DefaultSort)

	var in apiclient.RestaurantInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a restaurant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabRestaurants); err != nil {
				return err
			}
			r, err := a.client.CreateRestaurant(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create restaurant: %s", apiclient.MessageOf(err, "Failed to create restaurant."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restaurant %d created: %s\n", r.ID, r.Name)
			return nil
		},
	}
	restaurantFlags(create.Flags(), &in)
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("address")

	update := &cobra.Command{
		Use:   "update RESTAURANT_ID",
		Short: "Update a restaurant; omitted fields are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(session.TabRestaurants); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			current, err := a.client.GetRestaurant(ctx, id)
			if err != nil {
				return err
			}
			merged := apiclient.RestaurantInput{Name: current.Name, Address: current.Address, Phone: current.Phone}
			fs := cmd.Flags()
			setIfChanged(fs, "name", &merged.Name)
			setIfChanged(fs, "address", &merged.Address)
			setIfChanged(fs, "phone", &merged.Phone)
			r, err := a.client.UpdateRestaurant(ctx, id, merged)
			if err != nil {
				return fmt.Errorf("update restaurant: %s", apiclient.MessageOf(err, "Failed to update restaurant."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restaurant %d updated: %s\n", r.ID, r.Name)
			return nil
		},
	}
	restaurantFlags(update.Flags(), &apiclient.RestaurantInput{})

	remove := &cobra.Command{
		Use:   "delete RESTAURANT_ID",
		Short: "Delete a restaurant and its menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(session.TabRestaurants); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.DeleteRestaurant(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete restaurant: %s", apiclient.MessageOf(err, "Failed to delete restaurant."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restaurant %d deleted.\n", id)
			return nil
		},
	}

	cmd.AddCommand(create, update, remove)
	return cmd
}

func restaurantFlags(fs *pflag.FlagSet, in *apiclient.RestaurantInput) {
	fs.StringVar(&in.Name, "name", "", "restaurant name")
	fs.StringVar(&in.Address, "address", "", "street address")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
}

// --- menus ---

func newAdminMenusCmd(a *app) *cobra.Command {
	var (
		q            listing.Query
		restaurantID uint
	)
	cmd := &cobra.Command{
		Use:   "menus",
		Short: "List menu items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabMenus); err != nil {
				return err
			}
			all, err := a.client.ListMenus(cmd.Context(), restaurantID, "")
			if err != nil {
				return err
			}
			page, err := listing.Apply(all, listing.Menus, q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printMenus(out, page.Items); err != nil {
				return err
			}
			pageFooter(out, page.Total, page.Page, page.Pages)
			return nil
		},
	}
	listFlags(cmd.Flags(), &q, listing.Menus.DefaultSort)
	cmd.Flags().UintVar(&restaurantID, "restaurant", 0, "only this restaurant")

	var (
		in    apiclient.MenuInput
		image string
	)
	create := &cobra.Command{
		Use:     "create",
		Short:   "Create a menu item",
		Example: "  deliveryctl admin menus create --restaurant 1 --name \"Sate Ayam\" --price 25000 --image sate.jpg",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabMenus); err != nil {
				return err
			}
			m, err := withUpload(image, func(up *apiclient.Upload) (*models.MenuItem, error) {
				return a.client.CreateMenu(cmd.Context(), in, up)
			})
			if err != nil {
				return fmt.Errorf("create menu: %s", apiclient.MessageOf(err, "Failed to create menu."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Menu %d created: %s %s\n", m.ID, m.Name, receipt.Money(m.Price))
			return nil
		},
	}
	menuFlags(create.Flags(), &in, &image)
	_ = create.MarkFlagRequired("restaurant")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("price")

	var updateImage string
	update := &cobra.Command{
		Use:   "update MENU_ID",
		Short: "Update a menu item; omitted fields are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(session.TabMenus); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			current, err := a.client.GetMenu(ctx, id)
			if err != nil {
				return err
			}
			merged := apiclient.MenuInput{
				RestaurantID: current.RestaurantID,
				Name:         current.Name,
				Description:  current.Description,
				Price:        current.Price,
			}
			fs := cmd.Flags()
			setIfChanged(fs, "name", &merged.Name)
			setIfChanged(fs, "description", &merged.Description)
			if fs.Changed("restaurant") {
				merged.RestaurantID, _ = fs.GetUint("restaurant")
			}
			if fs.Changed("price") {
				merged.Price, _ = fs.GetInt64("price")
			}
			m, err := withUpload(updateImage, func(up *apiclient.Upload) (*models.MenuItem, error) {
				return a.client.UpdateMenu(ctx, id, merged, up)
			})
			if err != nil {
				return fmt.Errorf("update menu: %s", apiclient.MessageOf(err, "Failed to update menu."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Menu %d updated: %s %s\n", m.ID, m.Name, receipt.Money(m.Price))
			return nil
		},
	}
	menuFlags(update.Flags(), &apiclient.MenuInput{}, &updateImage)

	remove := &cobra.Command{
		Use:   "delete MENU_ID",
		Short: "Delete a menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(session.TabMenus); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.DeleteMenu(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete menu: %s", apiclient.MessageOf(err, "Failed to delete menu."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Menu %d deleted.\n", id)
			return nil
		},
	}

	cmd.AddCommand(create, update, remove)
	return cmd
}

func menuFlags(fs *pflag.FlagSet, in *apiclient.MenuInput, image *string) {
	fs.UintVar(&in.RestaurantID, "restaurant", 0, "restaurant id")
	fs.StringVar(&in.Name, "name", "", "item name")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.Int64Var(&in.Price, "price", 0, "price in whole currency units")
	fs.StringVar(image, "image", "", "image file (jpg, jpeg, png, gif, webp)")
}

// withUpload opens path, when set, for the duration of send.
func withUpload(path string, send func(*apiclient.Upload) (*models.MenuItem, error)) (*models.MenuItem, error) {
	if path == "" {
		return send(nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return send(&apiclient.Upload{Filename: filepath.Base(path), Content: f})
}

// --- orders ---

func newAdminOrdersCmd(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List all orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabDashboard); err != nil {
				return err
			}
			orders, err := a.client.ListOrders(cmd.Context())
			if err != nil {
				return err
			}
			if status != "" {
				orders = slices.DeleteFunc(orders, func(o models.Order) bool { return string(o.Status) != status })
			}
			return printOrders(cmd.OutOrStdout(), orders)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only orders in this status")
	return cmd
}

func newAdminUnassignedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unassigned",
		Short: "List pending orders without a courier",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabUnassignedOrders); err != nil {
				return err
			}
			orders, err := a.client.UnassignedOrders(cmd.Context())
			if err != nil {
				return err
			}
			return printOrders(cmd.OutOrStdout(), orders)
		},
	}
}

func newAdminAvailableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List couriers without a delivery in progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabUnassignedOrders); err != nil {
				return err
			}
			couriers, err := a.client.AvailableCouriers(cmd.Context())
			if err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), couriers)
		},
	}
}

func newAdminAssignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assign ORDER_ID COURIER_ID",
		Short: "Assign a pending order to a courier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(session.TabUnassignedOrders); err != nil {
				return err
			}
			orderID, err := parseID(args[0])
			if err != nil {
				return err
			}
			courierID, err := parseID(args[1])
			if err != nil {
				return err
			}
			order, err := a.client.AssignCourier(cmd.Context(), orderID, courierID)
			if err != nil {
				return fmt.Errorf("assign order #%d: %s", orderID, apiclient.MessageOf(err, "Failed to assign courier."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d is %s with courier %d.\n", order.ID, order.Status, courierID)
			return nil
		},
	}
}

func newAdminReportsCmd(a *app) *cobra.Command {
	var reportType string
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Revenue of delivered orders per day, month or year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabReports); err != nil {
				return err
			}
			return printReport(cmd.Context(), a, cmd.OutOrStdout(), reportType)
		},
	}
	cmd.Flags().StringVar(&reportType, "type", "daily", "daily, monthly or yearly")
	return cmd
}

func printReport(ctx context.Context, a *app, w io.Writer, reportType string) error {
	report, err := a.client.Reports(ctx, reportType)
	if err != nil {
		return fmt.Errorf("reports: %s", apiclient.MessageOf(err, "Failed to load reports."))
	}
	periods := make([]string, 0, len(report.Report))
	var total int64
	for p, v := range report.Report {
		periods = append(periods, p)
		total += v
	}
	slices.Sort(periods)

	tw := newTable(w)
	fmt.Fprintln(tw, "PERIOD\tREVENUE")
	for _, p := range periods {
		fmt.Fprintf(tw, "%s\t%s\n", p, receipt.Money(report.Report[p]))
	}
	fmt.Fprintf(tw, "TOTAL (%d orders)\t%s\n", report.OrdersCount, receipt.Money(total))
	return tw.Flush()
}
