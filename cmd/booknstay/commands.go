package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/qamarabbas408/booknstay/internal/browser"
	"github.com/qamarabbas408/booknstay/internal/store"
	"github.com/qamarabbas408/booknstay/pkg/client"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

var errNotSignedIn = errors.New("not signed in, run: booknstay login")

const sessionEndedHint = "Your session has ended. Sign in again with: booknstay login"

// withEnv runs fn on a rehydrated store. A forced logout of a restored session prints a
// hint to stderr; a rejected sign-in reports its own error instead.
func withEnv(cmd *cobra.Command, configFile string, fn func(ctx context.Context, e *env) error) error {
	stderr := cmd.ErrOrStderr()
	var hadSession atomic.Bool
	nav := store.NavigatorFunc(func(path string) {
		if path == store.LoginPath && hadSession.Load() {
			fmt.Fprintln(stderr, sessionEndedHint) //nolint:errcheck
		}
	})
	e, err := setup(cmd.Context(), configFile, nav)
	if err != nil {
		return err
	}
	defer e.Close()
	hadSession.Store(e.store.Auth.IsAuthenticated())
	return fn(cmd.Context(), e)
}

// readSecret reads a line from r after printing prompt to w.
func readSecret(r io.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt) //nolint:errcheck
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCommand(configFile *string) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				var err error
				if password, err = readSecret(cmd.InOrStdin(), cmd.OutOrStdout(), "Password: "); err != nil {
					return err
				}
			}
			return withEnv(cmd, *configFile, func(ctx context.Context, e *env) error {
				if _, err := e.store.API.Login(ctx, domain.LoginRequest{Email: email, Password: password}); err != nil {
					return fmt.Errorf("login failed: %s", client.Message(err))
				}
				printSignedIn(cmd.OutOrStdout(), e.store.Auth.State())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func newRegisterCommand(configFile *string) *cobra.Command {
	var (
		name, email, password string
		vendor                bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a guest or vendor account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || email == "" {
				return errors.New("--name and --email are required")
			}
			if password == "" {
				var err error
				if password, err = readSecret(cmd.InOrStdin(), cmd.OutOrStdout(), "Password: "); err != nil {
					return err
				}
			}
			req := domain.RegisterRequest{
				Name:                 name,
				Email:                email,
				Password:             password,
				PasswordConfirmation: password,
				Role:                 domain.RoleGuest,
			}
			if vendor {
				req.Role = domain.RoleVendor
			}
			return withEnv(cmd, *configFile, func(ctx context.Context, e *env) error {
				if _, err := e.store.API.Register(ctx, req); err != nil {
					return fmt.Errorf("registration failed: %s", client.Message(err))
				}
				printSignedIn(cmd.OutOrStdout(), e.store.Auth.State())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().BoolVar(&vendor, "vendor", false, "register a vendor account")
	return cmd
}

func newLogoutCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, *configFile, func(ctx context.Context, e *env) error {
				out := cmd.OutOrStdout()
				if !e.store.Auth.IsAuthenticated() {
					fmt.Fprintln(out, "Already signed out.") //nolint:errcheck
					return nil
				}
				e.store.Logout()
				fmt.Fprintln(out, "Signed out.") //nolint:errcheck
				return nil
			})
		},
	}
}

func newWhoamiCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, *configFile, func(ctx context.Context, e *env) error {
				s := e.store.Auth.State()
				if !s.IsAuthenticated {
					printWelcome(cmd.OutOrStdout())
					return nil
				}
				printSession(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}
}

func newHotelsCommand(configFile *string) *cobra.Command {
	var f domain.HotelFilter

	cmd := &cobra.Command{
		Use:   "hotels [id]",
		Short: "List hotels, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, *configFile, func(ctx context.Context, e *env) error {
				if len(args) == 1 {
					id, err := parseID(args[0])
					if err != nil {
						return err
					}
					h, err := e.store.API.Hotel(ctx, id)
					if err != nil {
						return fmt.Errorf("hotel %d: %s", id, client.Message(err))
					}
					printHotel(cmd.OutOrStdout(), h)
					return nil
				}
				page, err := e.store.API.Hotels(ctx, f)
				if err != nil {
					return fmt.Errorf("hotels: %s", client.Message(err))
				}
				printHotels(cmd.OutOrStdout(), page)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "search by name")
	cmd.Flags().StringVar(&f.City, "city", "", "filter by city")
	cmd.Flags().IntVar(&f.Page, "page", 0, "result page")
	return cmd
}

func newEventsCommand(configFile *string) *cobra.Command {
	var f domain.EventFilter

	cmd := &cobra.Command{
		Use:   "events [id]",
		Short: "List events, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, *configFile, func(ctx context.Context, e *env) error {
				if len(args) == 1 {
					id, err := parseID(args[0])
					if err != nil {
						return err
					}
					ev, err := e.store.API.Event(ctx, id)
					if err != nil {
						return fmt.Errorf("event %d: %s", id, client.Message(err))
					}
					printEvent(cmd.OutOrStdout(), ev)
					return nil
				}
				page, err := e.store.API.Events(ctx, f)
				if err != nil {
					return fmt.Errorf("events: %s", client.Message(err))
				}
				printEvents(cmd.OutOrStdout(), page)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "search by title")
	cmd.Flags().Int64Var(&f.Category, "category", 0, "filter by category id")
	cmd.Flags().IntVar(&f.Page, "page", 0, "result page")
	return cmd
}

func newBookingsCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bookings [id]",
		Short: "List your bookings, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, *configFile, func(ctx context.Context, e *env) error {
				if !e.store.Auth.IsAuthenticated() {
					return errNotSignedIn
				}
				if len(args) == 1 {
					id, err := parseID(args[0])
					if err != nil {
						return err
					}
					b, err := e.store.API.GuestBooking(ctx, id)
					if err != nil {
						return fmt.Errorf("booking %d: %s", id, client.Message(err))
					}
					printBooking(cmd.OutOrStdout(), b)
					return nil
				}
				page, err := e.store.API.GuestBookings(ctx)
				if err != nil {
					if client.IsStatus(err, 401) {
						return errNotSignedIn
					}
					return fmt.Errorf("bookings: %s", client.Message(err))
				}
				printBookings(cmd.OutOrStdout(), page)
				return nil
			})
		},
	}
}

func newOpenCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:       "open hotel|event <id>",
		Short:     "Open a hotel or event page in the browser",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"hotel", "event"},
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := pageResource(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withEnv(cmd, *configFile, func(ctx context.Context, e *env) error {
				url := browser.PageURL(e.cfg.WebURL, resource, id)
				if err := browser.Open(url); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Could not open browser. Visit this URL manually:\n  %s\n", url) //nolint:errcheck
				}
				return nil
			})
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "booknstay "+version) //nolint:errcheck
		},
	}
}

func pageResource(kind string) (string, error) {
	switch kind {
	case "hotel", "hotels":
		return "hotels", nil
	case "event", "events":
		return "events", nil
	}
	return "", fmt.Errorf("unknown page %q, want hotel or event", kind)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
