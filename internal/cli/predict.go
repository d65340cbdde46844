package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/endocare/internal/services"
)

type predictOptions struct {
	request services.FlareRequest
}

// NewPredictCommand scores one feature set offline. Nothing is persisted.
func NewPredictCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &predictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a flare probability with the configured model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, rootOpts, opts)
		},
	}

	features := &opts.request.Features
	cmd.Flags().StringVar(&opts.request.Date, "date", "", "date of the observation (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&features.DurationH, "duration-h", 0, "hours slept")
	cmd.Flags().Float64Var(&features.QualityPct, "quality-pct", 0, "sleep quality percentage")
	cmd.Flags().IntVar(&features.CycleDay, "cycle-day", 1, "day of the menstrual cycle")
	cmd.Flags().IntVar(&features.PainToday, "pain-today", 0, "pain today (0-10)")
	cmd.Flags().IntVar(&features.ProcessedSugar, "processed-sugar", 0, "processed sugar eaten (0 or 1)")
	cmd.Flags().IntVar(&features.CaffeineEvening, "caffeine-evening", 0, "evening caffeine (0 or 1)")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func runPredict(cmd *cobra.Command, rootOpts *RootOptions, opts *predictOptions) error {
	rt, err := loadRuntime(rootOpts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	predictor, err := loadPredictor(cmd.Context(), rt.cfg)
	if err != nil {
		return fmt.Errorf("model init failed: %w", err)
	}

	probability, err := services.NewFlareService(predictor, nil, rt.logger).Score(opts.request)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	return encoder.Encode(map[string]any{
		"date":             opts.request.Date,
		"flareProbability": probability,
	})
}
