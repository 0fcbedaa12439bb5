package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dealscout/internal/model"
)

var fetchFlags struct {
	industry       string
	location       string
	minRevenue     int64
	maxRevenue     int64
	minEmployees   int64
	maxEmployees   int64
	requireContact bool
	limit          int
	format         string
	out            string
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch, score and enrich leads matching the criteria",
	Example: `  dealscout fetch --industry hvac --location "Phoenix, AZ"
  dealscout fetch --industry landscaping --min-revenue 250000 --format xlsx --out leads.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Orchestrator().Run(ctx, criteriaFromFlags())
		if err != nil {
			return err
		}
		for _, sf := range res.SoftFailures {
			zap.L().Debug("signal unavailable", zap.Error(sf))
		}

		var w io.Writer = cmd.OutOrStdout()
		if fetchFlags.out != "" {
			f, err := os.Create(fetchFlags.out)
			if err != nil {
				return eris.Wrapf(err, "fetch: create %s", fetchFlags.out)
			}
			defer f.Close() //nolint:errcheck
			w = f
		}
		return writeProfiles(w, fetchFlags.format, res.Profiles)
	},
}

func criteriaFromFlags() model.LeadCriteria {
	c := model.LeadCriteria{
		Industry:       fetchFlags.industry,
		Location:       fetchFlags.location,
		RequireContact: fetchFlags.requireContact,
		Limit:          fetchFlags.limit,
	}
	if fetchFlags.minRevenue != 0 || fetchFlags.maxRevenue != 0 {
		c.Revenue = &model.Range{Min: fetchFlags.minRevenue, Max: fetchFlags.maxRevenue}
	}
	if fetchFlags.minEmployees != 0 || fetchFlags.maxEmployees != 0 {
		c.Employees = &model.Range{Min: fetchFlags.minEmployees, Max: fetchFlags.maxEmployees}
	}
	return c
}

func init() {
	f := fetchCmd.Flags()
	f.StringVar(&fetchFlags.industry, "industry", "", "industry to search (e.g. hvac)")
	f.StringVar(&fetchFlags.location, "location", "", `location as "City, ST"`)
	f.Int64Var(&fetchFlags.minRevenue, "min-revenue", 0, "minimum estimated annual revenue")
	f.Int64Var(&fetchFlags.maxRevenue, "max-revenue", 0, "maximum estimated annual revenue (0 = unbounded)")
	f.Int64Var(&fetchFlags.minEmployees, "min-employees", 0, "minimum employee count")
	f.Int64Var(&fetchFlags.maxEmployees, "max-employees", 0, "maximum employee count (0 = unbounded)")
	f.BoolVar(&fetchFlags.requireContact, "require-contact", false, "drop leads without a phone or owner email")
	f.IntVar(&fetchFlags.limit, "limit", 0, "maximum leads to return (default from config)")
	f.StringVarP(&fetchFlags.format, "format", "f", formatTable, "output format: table, json, csv, xlsx")
	f.StringVarP(&fetchFlags.out, "out", "o", "", "write output to a file instead of stdout")
	rootCmd.AddCommand(fetchCmd)
}
