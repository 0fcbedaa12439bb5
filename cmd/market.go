package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	marketIndustry string
	marketJSON     bool
)

var marketCmd = &cobra.Command{
	Use:     "market <location>",
	Short:   "Analyze seller and pricing potential for a market",
	Example: `  dealscout market "Tucson, AZ" --industry hvac`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("market"); err != nil {
			return err
		}

		env := &pipeline{Breakers: newBreakers(cfg.Circuit)}
		defer env.Close()
		cache := buildMarket(cfg, env)

		a, err := cache.AnalyzeMarket(cmd.Context(), strings.Join(args, " "), marketIndustry)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if marketJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		}

		_, _ = fmt.Fprintf(out, "Market:              %s\n", a.Location)
		if a.Industry != "" {
			_, _ = fmt.Fprintf(out, "Industry:            %s\n", a.Industry)
		}
		_, _ = fmt.Fprintf(out, "Seller potential:    %d\n", a.SellerPotentialScore)
		_, _ = fmt.Fprintf(out, "Pricing potential:   %d\n", a.PricingPotentialScore)
		_, _ = fmt.Fprintf(out, "Marketing spend:     $%d/mo\n", a.RecommendedMarketingSpend)
		_, _ = fmt.Fprintf(out, "Fragmentation:       %d\n", a.FragmentationPrediction)
		if a.Synthetic {
			_, _ = fmt.Fprintln(out, "Data:                synthetic estimate")
		}
		for _, in := range a.Insights {
			_, _ = fmt.Fprintf(out, "  - %s\n", in)
		}
		return nil
	},
}

func init() {
	marketCmd.Flags().StringVar(&marketIndustry, "industry", "", "industry for fragmentation and pricing")
	marketCmd.Flags().BoolVar(&marketJSON, "json", false, "print the analysis as JSON")
	rootCmd.AddCommand(marketCmd)
}
