package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/csvsink"
	"github.com/couchcryptid/commodity-panel-etl/internal/analysis"
	"github.com/couchcryptid/commodity-panel-etl/internal/source"
)

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Write the Pearson correlation matrix of the panel columns",
	RunE:  runCorrelate,
}

var regionalCmd = &cobra.Command{
	Use:   "regional",
	Short: "Rank regions by guaranteed minimum price for a year",
	RunE:  runRegional,
}

var annualCmd = &cobra.Command{
	Use:   "annual",
	Short: "Compare the yearly mean price with the stock-to-use ratio",
	RunE:  runAnnual,
}

var (
	correlatePanel string
	correlateOut   string
	regionalYear   int
)

func init() {
	rootCmd.AddCommand(correlateCmd, regionalCmd, annualCmd)
	correlateCmd.Flags().StringVar(&correlatePanel, "panel", "", "panel CSV (defaults to OUTPUT_PATH)")
	correlateCmd.Flags().StringVarP(&correlateOut, "out", "o", "", "output CSV (defaults to stdout)")
	regionalCmd.Flags().IntVar(&regionalYear, "year", 0, "validity year (0 selects the latest)")
}

func runCorrelate(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	path := correlatePanel
	if path == "" {
		path = e.cfg.OutputPath
	}
	frame, err := csvsink.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read panel: %w", err)
	}

	m := analysis.CorrelationMatrix(frame)
	if correlateOut == "" {
		return m.WriteCSV(cmd.OutOrStdout())
	}
	f, err := os.Create(correlateOut)
	if err != nil {
		return err
	}
	if err := m.WriteCSV(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	e.logger.Info("correlation matrix written", "path", correlateOut, "columns", len(m.Columns))
	return nil
}

func runRegional(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	if e.cfg.RegionalPricePath == "" {
		return fmt.Errorf("REGIONAL_PRICE_PATH is required")
	}

	prices, err := source.NewRegionalPriceLoader(e.cfg.RegionalPricePath, e.logger, e.metrics).LoadRegionalPrices(cmd.Context())
	if err != nil {
		return err
	}
	ranked, year, err := analysis.RegionalRanking(prices, regionalYear)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Minimum price by region, %d\n", year)
	for i, p := range ranked {
		fmt.Fprintf(out, "  %2d. %-32s %8.2f\n", i+1, p.Region, p.Price)
	}
	return nil
}

func runAnnual(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	prices, err := source.NewPriceLoader(e.cfg.PricePath, e.logger, e.metrics).LoadPrices(ctx)
	if err != nil {
		return err
	}
	supply, err := source.NewSupplyDemandLoader(e.cfg.SupplyDemandPath, e.logger, e.metrics).LoadSupplyDemand(ctx)
	if err != nil {
		return err
	}

	points := analysis.AnnualPriceVsStockToUse(prices, supply)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-6s %12s %12s\n", "year", "price_local", "stock_to_use")
	for _, p := range points {
		fmt.Fprintf(out, "%-6d %12.2f %12.4f\n", p.Year, p.PriceLocal, p.StockToUse)
	}
	fmt.Fprintf(out, "\ncorrelation: %.4f\n", analysis.AnnualCorrelation(points))
	return nil
}
