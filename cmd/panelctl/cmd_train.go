package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/csvsink"
	"github.com/couchcryptid/commodity-panel-etl/internal/trainer"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the linear price model on the master panel",
	Example: `  panelctl train --panel master_dataframe_mensal.csv --split 0.8
  panelctl train --ridge 0.5`,
	RunE: runTrain,
}

var (
	trainPanel  string
	trainTarget string
	trainSplit  float64
	trainRidge  float64
)

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringVar(&trainPanel, "panel", "", "panel CSV (defaults to OUTPUT_PATH)")
	trainCmd.Flags().StringVar(&trainTarget, "target", "price_local", "column to predict")
	trainCmd.Flags().Float64Var(&trainSplit, "split", trainer.DefaultSplit, "share of rows used for training")
	trainCmd.Flags().Float64Var(&trainRidge, "ridge", 0, "L2 penalty on standardized coefficients")
}

func runTrain(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	path := trainPanel
	if path == "" {
		path = e.cfg.OutputPath
	}

	rep, err := trainer.TrainFile(path, trainer.Options{Target: trainTarget, Split: trainSplit, Ridge: trainRidge})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Target:   %s\n", rep.Target)
	fmt.Fprintf(out, "Train:    %s to %s (%d periods)\n", rep.TrainStart.Format(csvsink.DateLayout), rep.TrainEnd.Format(csvsink.DateLayout), rep.TrainRows)
	fmt.Fprintf(out, "Test:     %d periods\n", rep.TestRows)
	fmt.Fprintf(out, "R²:       %.4f\n", rep.R2)
	fmt.Fprintf(out, "MAE:      %.2f\n\n", rep.MAE)

	fmt.Fprintln(out, "Feature importance:")
	for _, fi := range rep.Importance {
		fmt.Fprintf(out, "  %-28s %.4f\n", fi.Feature, fi.Importance)
	}

	fmt.Fprintln(out, "\nHold-out predictions:")
	for _, p := range rep.Test {
		fmt.Fprintf(out, "  %s  actual %10.2f  predicted %10.2f\n", p.Date.Format(csvsink.DateLayout), p.Actual, p.Predicted)
	}
	return nil
}
