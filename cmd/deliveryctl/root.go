package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"deliveryfood/apiclient"
	"deliveryfood/logger"
	"deliveryfood/session"
)

const defaultAPIURL = "http://localhost:8080"

var errNotLoggedIn = errors.New("not logged in, run: deliveryctl login")

// app is shared by every command; PersistentPreRunE fills it in.
type app struct {
	apiURL      string
	sessionPath string
	logLevel    string

	client  *apiclient.Client
	session *session.Store
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "deliveryctl",
		Short:         "Food delivery client",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api", envOr("DELIVERY_API_URL", defaultAPIURL), "API base URL")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", defaultSessionPath(), "session file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newRestaurantsCmd(a),
		newMenusCmd(a),
		newCartCmd(a),
		newCheckoutCmd(a),
		newOrdersCmd(a),
		newCourierCmd(a),
		newAdminCmd(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	a.log = logger.NewWithWriter(stderr, "deliveryctl", a.logLevel)

	store, err := session.Open(a.sessionPath)
	if err != nil {
		return err
	}
	a.session = store
	store.Subscribe(func(e session.Event) {
		a.log.Debug("session event", "type", e.Type, "user_id", e.State.UserID)
	})
	a.client = apiclient.New(a.apiURL, apiclient.WithToken(store.Token()))
	return nil
}

// open enforces the role gate: the signed-in role must see tab in its
// navigation. The tab becomes the active one.
func (a *app) open(tab session.Tab) error {
	role := a.session.Role()
	if role == "" {
		return errNotLoggedIn
	}
	if !session.Allowed(role, tab) {
		return fmt.Errorf("%s is not available to %s accounts", tab, role)
	}
	return a.session.SetActiveTab(tab)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "deliveryfood", "session.json")
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
