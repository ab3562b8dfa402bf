package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lewtnanny/lewtnanny/internal/migrate"
	"github.com/lewtnanny/lewtnanny/internal/store"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	SnapshotDir string
	Force       bool
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Load exporter JSON snapshots into the domain stores",
		Long: `Load the category snapshot files (weapons, attachments, scopes,
sights, resources, crafting) into their stores.

Missing files and malformed rows are logged and skipped; the run always
completes and reports per-category counts. --force clears each category
table first for a full rebuild.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SnapshotDir, "snapshots", "", "snapshot directory (overrides config)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "clear existing static data before loading")

	return cmd
}

func runMigrate(opts *MigrateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		_ = formatter.Error("E_CONFIG", err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	if opts.SnapshotDir != "" {
		cfg.SnapshotDir = opts.SnapshotDir
	}

	log := newLogger(opts.RootOptions, cfg)
	manager := store.NewManager(cfg.DataDir, log)
	if err := manager.OpenAll(); err != nil {
		_ = formatter.Error("E_STORE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening stores", err)
	}
	defer manager.CloseAll()

	formatter.VerboseLog("Loading snapshots from %s", cfg.SnapshotDir)

	pipeline := migrate.NewPipeline(cfg.SnapshotDir, manager, log)
	counts, err := pipeline.MigrateAll(cmd.Context(), opts.Force)
	if err != nil {
		_ = formatter.Error("E_MIGRATE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "migration", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(counts)
	}

	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	fmt.Fprintln(formatter.Writer, "Migration complete:")
	for _, c := range categories {
		fmt.Fprintf(formatter.Writer, "  %-20s %d\n", c, counts[c])
	}
	return nil
}

// NewVerifyCommand creates the verify command, which reports post-
// migration row counts and sample rows.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "verify",
		Short:         "Report store row counts and sample rows",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd)
		},
	}
	return cmd
}

func runVerify(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		_ = formatter.Error("E_CONFIG", err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	log := newLogger(opts, cfg)
	manager := store.NewManager(cfg.DataDir, log)
	if err := manager.OpenAll(); err != nil {
		_ = formatter.Error("E_STORE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening stores", err)
	}
	defer manager.CloseAll()

	pipeline := migrate.NewPipeline(cfg.SnapshotDir, manager, log)
	report, err := pipeline.Verify(cmd.Context())
	if err != nil {
		_ = formatter.Error("E_VERIFY", err.Error(), nil)
		return WrapExitError(ExitCommandError, "verify", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	tables := make([]string, 0, len(report.Counts))
	for t := range report.Counts {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	fmt.Fprintln(formatter.Writer, "Store contents:")
	for _, t := range tables {
		fmt.Fprintf(formatter.Writer, "  %-25s %d\n", t, report.Counts[t])
	}
	if len(report.SampleWeapons) > 0 {
		fmt.Fprintf(formatter.Writer, "Sample weapons: %v\n", report.SampleWeapons)
	}
	if len(report.SampleResources) > 0 {
		fmt.Fprintf(formatter.Writer, "Sample resources: %v\n", report.SampleResources)
	}
	return nil
}
