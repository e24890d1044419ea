package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"deliveryfood/apiclient"
	"deliveryfood/models"
	"deliveryfood/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Sign in and remember the session",
		Example: "  deliveryctl login --email budi@example.com --password secret123",
		RunE: func(cmd *cobra.Command, _ []string) error {
			login, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %s", apiclient.MessageOf(err, "Login failed. Please try again."))
			}
			return a.signedIn(cmd, login)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var r apiclient.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a customer account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			login, err := a.client.Register(cmd.Context(), r)
			if err != nil {
				return fmt.Errorf("register: %s", apiclient.MessageOf(err, "Registration failed. Please try again."))
			}
			return a.signedIn(cmd, login)
		},
	}
	cmd.Flags().StringVar(&r.Name, "name", "", "full name")
	cmd.Flags().StringVar(&r.Email, "email", "", "account email")
	cmd.Flags().StringVar(&r.Password, "password", "", "password (min 6 characters)")
	addressFlags(cmd, &r.Address)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) signedIn(cmd *cobra.Command, login *apiclient.Login) error {
	if err := a.session.SignIn(login.ID, login.Role, login.Email, login.Token); err != nil {
		return err
	}
	a.log.Info("signed in", "user_id", login.ID, "role", login.Role)
	fmt.Fprintf(cmd.OutOrStdout(), "Welcome %s (%s)\n", login.Name, login.Role)
	return nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity and its navigation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.session.State()
			out := cmd.OutOrStdout()
			if st.UserID == 0 {
				fmt.Fprintln(out, "Not logged in.")
			} else {
				fmt.Fprintf(out, "%s (id %d, %s)\n", st.Email, st.UserID, st.Role)
			}
			tabs := session.Navigation(st.Role)
			names := make([]string, len(tabs))
			for i, t := range tabs {
				names[i] = string(t)
				if t == st.ActiveTab {
					names[i] = "[" + names[i] + "]"
				}
			}
			fmt.Fprintf(out, "Navigation: %s\n", strings.Join(names, " | "))
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the customer profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabProfile); err != nil {
				return err
			}
			user, err := a.client.GetUser(cmd.Context(), a.session.UserID())
			if err != nil {
				return err
			}
			printProfile(cmd, user)
			return nil
		},
	}

	var addr models.Address
	address := &cobra.Command{
		Use:   "address",
		Short: "Update the delivery address; omitted fields are kept",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(session.TabProfile); err != nil {
				return err
			}
			ctx := cmd.Context()
			user, err := a.client.GetUser(ctx, a.session.UserID())
			if err != nil {
				return err
			}
			merged := user.Address
			flags := cmd.Flags()
			for name, dst := range map[string]*string{
				"street":      &merged.Street,
				"city":        &merged.City,
				"postal-code": &merged.PostalCode,
				"phone":       &merged.Phone,
			} {
				if flags.Changed(name) {
					*dst, _ = flags.GetString(name)
				}
			}
			user, err = a.client.UpdateAddress(ctx, user.ID, merged)
			if err != nil {
				return fmt.Errorf("update address: %s", apiclient.MessageOf(err, "Failed to update address. Please try again."))
			}
			printProfile(cmd, user)
			return nil
		},
	}
	addressFlags(address, &addr)
	cmd.AddCommand(address)
	return cmd
}

func addressFlags(cmd *cobra.Command, addr *models.Address) {
	cmd.Flags().StringVar(&addr.Street, "street", "", "street")
	cmd.Flags().StringVar(&addr.City, "city", "", "city")
	cmd.Flags().StringVar(&addr.PostalCode, "postal-code", "", "postal code")
	cmd.Flags().StringVar(&addr.Phone, "phone", "", "phone number")
}

func printProfile(cmd *cobra.Command, u *models.User) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:    %s\nEmail:   %s\n", u.Name, u.Email)
	fmt.Fprintf(out, "Address: %s, %s %s\nPhone:   %s\n", u.Street, u.City, u.PostalCode, u.Phone)
	if !u.Address.Complete() {
		fmt.Fprintln(out, "Address is incomplete; checkout needs street, city, postal code and phone.")
	}
}
