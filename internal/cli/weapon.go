package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/lewtnanny/lewtnanny/internal/econ"
	"github.com/lewtnanny/lewtnanny/internal/gamedata"
	"github.com/lewtnanny/lewtnanny/internal/store"
)

// NewWeaponCommand creates the weapon command group.
func NewWeaponCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weapon",
		Short: "Query weapons and derive per-shot economics",
	}

	cmd.AddCommand(newWeaponSearchCommand(rootOpts))
	cmd.AddCommand(newWeaponCalcCommand(rootOpts))

	return cmd
}

func newWeaponSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "search <query>",
		Short:         "Search weapons by name substring",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: rootOpts.Verbose}

			cfg, err := loadConfig(rootOpts)
			if err != nil {
				_ = formatter.Error("E_CONFIG", err.Error(), nil)
				return WrapExitError(ExitCommandError, "loading config", err)
			}

			log := newLogger(rootOpts, cfg)
			manager := store.NewManager(cfg.DataDir, log)
			if err := manager.OpenAll(); err != nil {
				_ = formatter.Error("E_STORE", err.Error(), nil)
				return WrapExitError(ExitCommandError, "opening stores", err)
			}
			defer manager.CloseAll()

			ws, ok := manager.Store(store.KindWeapons)
			if !ok {
				_ = formatter.Error("E_STORE", "weapons store unavailable", nil)
				return NewExitError(ExitCommandError, "weapons store unavailable")
			}

			weapons, err := ws.SearchWeapons(cmd.Context(), args[0], limit)
			if err != nil {
				_ = formatter.Error("E_QUERY", err.Error(), nil)
				return WrapExitError(ExitCommandError, "searching weapons", err)
			}

			if formatter.Format == "json" {
				return formatter.Success(weapons)
			}

			if len(weapons) == 0 {
				fmt.Fprintln(formatter.Writer, "No weapons found.")
				return nil
			}
			for _, w := range weapons {
				fmt.Fprintf(formatter.Writer, "%-40s %-12s dps=%s eco=%s\n",
					w.Name, w.WeaponType, w.DPS.StringFixed(2), w.Eco.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results")
	return cmd
}

// CalcReport is the JSON shape of a weapon calc run.
type CalcReport struct {
	Damage           string `json:"damage"`
	AmmoBurn         string `json:"ammo_burn"`
	Decay            string `json:"decay"`
	AmmoCost         string `json:"ammo_cost"`
	TotalCostPerShot string `json:"total_cost_per_shot"`
	DPS              string `json:"dps"`
	DamagePerPEC     string `json:"damage_per_pec"`
	EffectiveRange   int64  `json:"effective_range"`
}

func newWeaponCalcCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		damage     string
		ammo       string
		decay      string
		reload     string
		rangeM     int64
		damageEnh  int64
		economyEnh int64
		amplifier  string
		scope      string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Derive per-shot economics for a weapon profile",
		Long: `Derive the enhanced per-shot profile for a weapon, optionally with
an amplifier or scope looked up from the attachments store.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: rootOpts.Verbose}

			input, err := parseWeaponInput(damage, ammo, decay, reload, rangeM)
			if err != nil {
				_ = formatter.Error("E_INPUT", err.Error(), nil)
				return WrapExitError(ExitCommandError, "parsing weapon profile", err)
			}

			var amp, sc *gamedata.Attachment
			if amplifier != "" || scope != "" {
				amp, sc, err = lookupAttachments(rootOpts, cmd, amplifier, scope)
				if err != nil {
					_ = formatter.Error("E_STORE", err.Error(), nil)
					return WrapExitError(ExitCommandError, "looking up attachments", err)
				}
			}

			stats := econ.CalculateEnhancedStats(input, amp, sc, damageEnh, economyEnh)

			report := CalcReport{
				Damage:           stats.Damage.String(),
				AmmoBurn:         stats.AmmoBurn.String(),
				Decay:            stats.Decay.String(),
				AmmoCost:         stats.AmmoCost.String(),
				TotalCostPerShot: stats.TotalCostPerShot.String(),
				DPS:              stats.DPS.StringFixed(4),
				DamagePerPEC:     stats.DamagePerPEC.StringFixed(4),
				EffectiveRange:   stats.EffectiveRange,
			}

			if formatter.Format == "json" {
				return formatter.Success(report)
			}

			fmt.Fprintf(formatter.Writer, "damage:          %s\n", report.Damage)
			fmt.Fprintf(formatter.Writer, "ammo burn:       %s\n", report.AmmoBurn)
			fmt.Fprintf(formatter.Writer, "decay:           %s\n", report.Decay)
			fmt.Fprintf(formatter.Writer, "cost per shot:   %s PED\n", report.TotalCostPerShot)
			fmt.Fprintf(formatter.Writer, "dps:             %s\n", report.DPS)
			fmt.Fprintf(formatter.Writer, "damage per PEC:  %s\n", report.DamagePerPEC)
			fmt.Fprintf(formatter.Writer, "effective range: %dm\n", report.EffectiveRange)
			return nil
		},
	}

	cmd.Flags().StringVar(&damage, "damage", "0", "base damage")
	cmd.Flags().StringVar(&ammo, "ammo", "0", "ammo burn per shot")
	cmd.Flags().StringVar(&decay, "decay", "0", "decay per shot in PED")
	cmd.Flags().StringVar(&reload, "reload", "0", "reload time in seconds")
	cmd.Flags().Int64Var(&rangeM, "range", 0, "base range in meters")
	cmd.Flags().Int64Var(&damageEnh, "damage-enh", 0, "damage enhancer count")
	cmd.Flags().Int64Var(&economyEnh, "economy-enh", 0, "economy enhancer count")
	cmd.Flags().StringVar(&amplifier, "amplifier", "", "amplifier attachment id")
	cmd.Flags().StringVar(&scope, "scope", "", "scope attachment id")
	return cmd
}

func parseWeaponInput(damage, ammo, decay, reload string, rangeM int64) (econ.WeaponInput, error) {
	var (
		input econ.WeaponInput
		err   error
	)
	if input.Damage, err = decimal.NewFromString(damage); err != nil {
		return econ.WeaponInput{}, fmt.Errorf("damage: %w", err)
	}
	if input.AmmoBurn, err = decimal.NewFromString(ammo); err != nil {
		return econ.WeaponInput{}, fmt.Errorf("ammo: %w", err)
	}
	if input.Decay, err = decimal.NewFromString(decay); err != nil {
		return econ.WeaponInput{}, fmt.Errorf("decay: %w", err)
	}
	if input.ReloadTime, err = decimal.NewFromString(reload); err != nil {
		return econ.WeaponInput{}, fmt.Errorf("reload: %w", err)
	}
	input.Range = rangeM
	return input, nil
}

// lookupAttachments resolves the amplifier and scope ids against the
// attachments store. Unknown ids come back nil rather than failing.
func lookupAttachments(opts *RootOptions, cmd *cobra.Command, amplifierID, scopeID string) (*gamedata.Attachment, *gamedata.Attachment, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	log := newLogger(opts, cfg)
	manager := store.NewManager(cfg.DataDir, log)
	if err := manager.OpenAll(); err != nil {
		return nil, nil, err
	}
	defer manager.CloseAll()

	as, ok := manager.Store(store.KindAttachments)
	if !ok {
		return nil, nil, fmt.Errorf("attachments store unavailable")
	}

	var amp, sc *gamedata.Attachment
	if amplifierID != "" {
		if a, found, err := as.AttachmentByID(cmd.Context(), amplifierID); err != nil {
			return nil, nil, err
		} else if found {
			amp = &a
		}
	}
	if scopeID != "" {
		if s, found, err := as.AttachmentByID(cmd.Context(), scopeID); err != nil {
			return nil, nil, err
		} else if found {
			sc = &s
		}
	}
	return amp, sc, nil
}
