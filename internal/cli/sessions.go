package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
	"github.com/lewtnanny/lewtnanny/internal/ledger"
	"github.com/lewtnanny/lewtnanny/internal/store"
)

// NewSessionsCommand creates the sessions command group.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage tracked sessions",
	}

	cmd.AddCommand(newSessionsListCommand(rootOpts))
	cmd.AddCommand(newSessionsStartCommand(rootOpts))
	cmd.AddCommand(newSessionsDeleteCommand(rootOpts))
	cmd.AddCommand(newSessionsClearCommand(rootOpts))

	return cmd
}

// openLedger opens the user-data store and wraps it in a ledger engine.
// The returned closer shuts the whole manager down.
func openLedger(opts *RootOptions, formatter *OutputFormatter) (*ledger.Engine, func(), error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		_ = formatter.Error("E_CONFIG", err.Error(), nil)
		return nil, nil, WrapExitError(ExitCommandError, "loading config", err)
	}

	log := newLogger(opts, cfg)
	manager := store.NewManager(cfg.DataDir, log)
	if err := manager.OpenAll(); err != nil {
		_ = formatter.Error("E_STORE", err.Error(), nil)
		return nil, nil, WrapExitError(ExitCommandError, "opening stores", err)
	}

	userData, ok := manager.Store(store.KindUserData)
	if !ok {
		manager.CloseAll()
		_ = formatter.Error("E_STORE", "user data store unavailable", nil)
		return nil, nil, NewExitError(ExitCommandError, "user data store unavailable")
	}

	engine := ledger.NewEngine(userData, nil, log)
	return engine, func() { manager.CloseAll() }, nil
}

func newSessionsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List sessions, most recent first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: rootOpts.Verbose}

			engine, closer, err := openLedger(rootOpts, formatter)
			if err != nil {
				return err
			}
			defer closer()

			sessions, err := engine.Sessions(cmd.Context())
			if err != nil {
				_ = formatter.Error("E_QUERY", err.Error(), nil)
				return WrapExitError(ExitCommandError, "listing sessions", err)
			}

			if formatter.Format == "json" {
				return formatter.Success(sessions)
			}

			if len(sessions) == 0 {
				fmt.Fprintln(formatter.Writer, "No sessions.")
				return nil
			}
			for _, s := range sessions {
				state := "open"
				if s.Closed() {
					state = "closed"
				}
				fmt.Fprintf(formatter.Writer, "%s  %-10s %-7s cost=%s return=%s markup=%s\n",
					s.ID, s.ActivityType, state,
					s.TotalCost.StringFixed(2), s.TotalReturn.StringFixed(2), s.TotalMarkup.StringFixed(2))
			}
			return nil
		},
	}
}

func newSessionsStartCommand(rootOpts *RootOptions) *cobra.Command {
	var activity string

	cmd := &cobra.Command{
		Use:           "start",
		Short:         "Start a new session",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: rootOpts.Verbose}

			engine, closer, err := openLedger(rootOpts, formatter)
			if err != nil {
				return err
			}
			defer closer()

			sess, err := engine.CreateSession(cmd.Context(), ledger.NewSessionID(), gamedata.ActivityType(activity))
			if err != nil {
				if store.IsDuplicateSession(err) {
					_ = formatter.Error("E_DUPLICATE", err.Error(), nil)
					return WrapExitError(ExitFailure, "session already exists", err)
				}
				_ = formatter.Error("E_QUERY", err.Error(), nil)
				return WrapExitError(ExitCommandError, "creating session", err)
			}

			if formatter.Format == "json" {
				return formatter.Success(sess)
			}
			fmt.Fprintf(formatter.Writer, "Started session %s (%s)\n", sess.ID, sess.ActivityType)
			return nil
		},
	}

	cmd.Flags().StringVar(&activity, "activity", string(gamedata.ActivityHunting), "activity type (hunting|crafting|mining|trading|exploring)")
	return cmd
}

func newSessionsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <session-id>",
		Short:         "Delete a session with its events and loot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: rootOpts.Verbose}

			engine, closer, err := openLedger(rootOpts, formatter)
			if err != nil {
				return err
			}
			defer closer()

			if err := engine.DeleteSession(cmd.Context(), args[0]); err != nil {
				_ = formatter.Error("E_QUERY", err.Error(), nil)
				return WrapExitError(ExitCommandError, "deleting session", err)
			}
			return formatter.Success(fmt.Sprintf("Deleted session %s", args[0]))
		},
	}
}

func newSessionsClearCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Delete every session, event and loot row",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: rootOpts.Verbose}

			if !yes {
				_ = formatter.Error("E_CONFIRM", "pass --yes to confirm clearing the whole ledger", nil)
				return NewExitError(ExitFailure, "confirmation required")
			}

			engine, closer, err := openLedger(rootOpts, formatter)
			if err != nil {
				return err
			}
			defer closer()

			if err := engine.DeleteAllSessions(cmd.Context()); err != nil {
				_ = formatter.Error("E_QUERY", err.Error(), nil)
				return WrapExitError(ExitCommandError, "clearing sessions", err)
			}
			return formatter.Success("Cleared all sessions")
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the irreversible clear")
	return cmd
}
