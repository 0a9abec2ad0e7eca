package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/coffeemania/pkg/cartclient"
	base "github.com/Skotchmaster/coffeemania/pkg/config"
	"github.com/Skotchmaster/coffeemania/pkg/logging"
	"github.com/Skotchmaster/coffeemania/pkg/storefront"
)

const defaultAPI = "http://localhost:8080"

type app struct {
	apiURL    string
	statePath string
	logLevel  string
	out       io.Writer

	store   *storefront.SQLiteStore
	client  *cartclient.Client
	session *storefront.Session
}

// execute runs one cartctl invocation. The local store is closed whatever the outcome.
func execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	a := &app{out: out}
	defer a.close()

	root := newRootCmd(a, out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app, out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "cartctl",
		Short:        "Drive a Coffeemania cart from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.apiURL, "api", base.EnvDefault("CARTCTL_API", defaultAPI), "gateway base URL")
	root.PersistentFlags().StringVar(&a.statePath, "state", defaultStatePath(), "local state file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.showCmd(),
		a.syncCmd(),
		a.addCmd(),
		a.changeCmd(),
		a.removeCmd(),
		a.clearCmd(),
		a.checkoutCmd(),
	)
	return root
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cartctl.db"
	}
	return filepath.Join(home, ".cartctl.db")
}

func (a *app) open(cmd *cobra.Command) error {
	ctx := logging.IntoContext(cmd.Context(), logging.NewWithWriter(cmd.ErrOrStderr(), a.logLevel))
	cmd.SetContext(ctx)

	store, err := storefront.OpenSQLiteStore(a.statePath)
	if err != nil {
		return err
	}
	mirror, err := storefront.NewMirror(ctx, store)
	if err != nil {
		_ = store.Close()
		return err
	}
	a.client = cartclient.NewClient(a.apiURL)
	session, err := storefront.NewSession(ctx, a.client, mirror, store)
	if err != nil {
		_ = store.Close()
		return err
	}
	a.store, a.session = store, session
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *app) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <login>",
		Short: "Sign in and replace the local cart with the server cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("CARTCTL_PASSWORD")
			}
			if err := a.session.Login(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "signed in as %s\n", args[0])
			return a.printView()
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (or CARTCTL_PASSWORD)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and empty the local cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "signed out")
			return nil
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.printView()
		},
	}
}

func (a *app) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Overwrite the local cart with the server cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Sync(cmd.Context()); err != nil {
				return err
			}
			return a.printView()
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "add <productId>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.client.GetProduct(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("look up product %d: %w", id, err)
			}
			ref := storefront.ProductRef{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.ImageURL}
			if err := a.session.AddItem(cmd.Context(), ref, qty); err != nil {
				return err
			}
			return a.printView()
		},
	}
	cmd.Flags().IntVarP(&qty, "qty", "q", 1, "quantity to add")
	return cmd
}

func (a *app) changeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change <productId> <delta>",
		Short: "Move a line's quantity by delta; a result of zero or less removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid delta %q", args[1])
			}
			if err := a.session.ChangeQuantity(cmd.Context(), id, delta); err != nil {
				return err
			}
			return a.printView()
		},
	}
	// negative deltas must not be read as flags
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <productId>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.session.RemoveItem(cmd.Context(), id); err != nil {
				return err
			}
			return a.printView()
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.ClearCart(cmd.Context()); err != nil {
				return err
			}
			return a.printView()
		},
	}
}

func (a *app) checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Confirm the cart and empty it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := a.session.Checkout(cmd.Context())
			if errors.Is(err, storefront.ErrEmptyCart) {
				fmt.Fprintln(a.out, "cart is empty, nothing to check out")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "order %s confirmed: %d items, total %s\n",
				summary.Reference, summary.TotalItems, summary.TotalAmount.StringFixed(2))
			return nil
		},
	}
}

func (a *app) printView() error {
	v := a.session.View()
	switch st := a.session.State().(type) {
	case storefront.Authenticated:
		fmt.Fprintf(a.out, "user %d\n", st.UserID)
	default:
		fmt.Fprintln(a.out, "guest")
	}
	if len(v.Entries) == 0 {
		fmt.Fprintln(a.out, "cart is empty")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tTOTAL")
	for _, e := range v.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", e.ID, e.Name, e.Price.StringFixed(2), e.Quantity, e.Total().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t\t%d\t%s\n", v.TotalItems, v.TotalAmount.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}
	if v.Stale {
		fmt.Fprintln(a.out, "(server unreachable: showing local changes, run sync later)")
	}
	return nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return uint(id), nil
}
