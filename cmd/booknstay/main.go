package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/qamarabbas408/booknstay/internal/tui"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Without a subcommand it starts the TUI.
func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "booknstay",
		Short:         "Browse and book hotels and events from the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), configFile)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default $HOME/.booknstay/config.yaml)")

	rootCmd.AddCommand(
		newLoginCommand(&configFile),
		newRegisterCommand(&configFile),
		newLogoutCommand(&configFile),
		newWhoamiCommand(&configFile),
		newHotelsCommand(&configFile),
		newEventsCommand(&configFile),
		newBookingsCommand(&configFile),
		newOpenCommand(&configFile),
		newVersionCommand(),
	)
	return rootCmd
}

func runTUI(ctx context.Context, configFile string) error {
	nav := &tui.Navigator{}
	e, err := setup(ctx, configFile, nav)
	if err != nil {
		return err
	}
	defer e.Close()

	// Warm the reference lists; the screens read them from the cache.
	go func() {
		if err := e.store.API.Prefetch(ctx); err != nil {
			e.log.WithError(err).Debug("prefetch failed")
		}
	}()

	app := tui.NewApp(e.store, e.cfg.WebURL)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	nav.Attach(p)
	unsubscribe := e.store.Auth.Subscribe(func(s domain.Session) {
		go p.Send(tui.SessionMsg{Session: s})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
