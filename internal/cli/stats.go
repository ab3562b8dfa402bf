package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SessionReport bundles the aggregates shown by the stats command.
type SessionReport struct {
	SessionID   string     `json:"session_id"`
	EventCount  int64      `json:"event_count"`
	CombatCount int64      `json:"combat_count"`
	LootCount   int64      `json:"loot_count"`
	Creatures   int64      `json:"creatures"`
	Globals     int64      `json:"globals"`
	HOFs        int64      `json:"hofs"`
	LootItems   []LootLine `json:"loot_items,omitempty"`
}

// LootLine is one aggregated loot row in a stats report.
type LootLine struct {
	ItemName   string `json:"item_name"`
	Quantity   int64  `json:"quantity"`
	TotalValue string `json:"total_value"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stats <session-id>",
		Short:         "Show aggregated stats for one session",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runStats(opts *RootOptions, sessionID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	engine, closer, err := openLedger(opts, formatter)
	if err != nil {
		return err
	}
	defer closer()

	ctx := cmd.Context()

	stats, err := engine.SessionStats(ctx, sessionID)
	if err != nil {
		_ = formatter.Error("E_QUERY", err.Error(), nil)
		return WrapExitError(ExitCommandError, "session stats", err)
	}
	counts, err := engine.SessionCounts(ctx, sessionID)
	if err != nil {
		_ = formatter.Error("E_QUERY", err.Error(), nil)
		return WrapExitError(ExitCommandError, "session counts", err)
	}
	loot, err := engine.SessionLootItems(ctx, sessionID)
	if err != nil {
		_ = formatter.Error("E_QUERY", err.Error(), nil)
		return WrapExitError(ExitCommandError, "session loot", err)
	}

	report := SessionReport{
		SessionID:   sessionID,
		EventCount:  stats.EventCount,
		CombatCount: stats.CombatCount,
		LootCount:   stats.LootCount,
		Creatures:   counts.Creatures,
		Globals:     counts.Globals,
		HOFs:        counts.HOFs,
	}
	for _, item := range loot {
		report.LootItems = append(report.LootItems, LootLine{
			ItemName:   item.ItemName,
			Quantity:   item.Quantity,
			TotalValue: item.TotalValue.StringFixed(2),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "Session %s\n", report.SessionID)
	fmt.Fprintf(formatter.Writer, "  events:    %d (combat %d, loot %d)\n",
		report.EventCount, report.CombatCount, report.LootCount)
	fmt.Fprintf(formatter.Writer, "  creatures: %d\n", report.Creatures)
	fmt.Fprintf(formatter.Writer, "  globals:   %d\n", report.Globals)
	fmt.Fprintf(formatter.Writer, "  hofs:      %d\n", report.HOFs)
	if len(report.LootItems) > 0 {
		fmt.Fprintln(formatter.Writer, "  loot:")
		for _, item := range report.LootItems {
			fmt.Fprintf(formatter.Writer, "    %-30s x%-5d %s PED\n",
				item.ItemName, item.Quantity, item.TotalValue)
		}
	}
	return nil
}
