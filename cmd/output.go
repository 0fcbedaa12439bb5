package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/dealscout/internal/model"
)

// Output formats for the fetch command.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
	formatXLSX  = "xlsx"
)

var profileColumns = []string{
	"name", "industry", "address", "phone", "website", "owner_name", "owner_email",
	"estimated_revenue", "employee_count", "founded_year", "arbitrage_score",
	"modernity", "last_updated_year", "ssl_valid", "avg_sentiment", "last_review_days_ago",
	"ad_spend_estimate", "succession_score", "digital_health", "deal_readiness",
	"seller_potential", "source",
}

func profileRow(p model.EnrichedBusinessProfile) []string {
	fstr := func(v *float64, prec int) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', prec, 64)
	}
	istr := func(v *int) string {
		if v == nil {
			return ""
		}
		return strconv.Itoa(*v)
	}
	ssl := ""
	if p.SSLValid != nil {
		ssl = strconv.FormatBool(*p.SSLValid)
	}
	seller := ""
	if p.Market != nil {
		seller = strconv.Itoa(p.Market.SellerPotentialScore)
	}
	return []string{
		p.Name, p.Industry, p.Address, p.Phone, p.Website, p.OwnerName, p.OwnerEmail,
		fstr(p.EstimatedRevenue, 0), istr(p.EmployeeCount), istr(p.FoundedYear), fstr(p.ArbitrageScore, 2),
		p.Modernity, istr(p.LastUpdatedYear), ssl, fstr(p.AvgSentiment, 2), istr(p.LastReviewDaysAgo),
		strconv.FormatInt(p.AdSpendEstimate, 10), strconv.Itoa(p.SuccessionScore),
		strconv.Itoa(p.DigitalHealth), string(p.DealReadiness),
		seller, p.Source,
	}
}

func writeProfiles(w io.Writer, format string, profiles []model.EnrichedBusinessProfile) error {
	switch strings.ToLower(format) {
	case formatTable, "":
		return writeTable(w, profiles)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(profiles), "output: encode json")
	case formatCSV:
		return writeCSV(w, profiles)
	case formatXLSX:
		return writeXLSX(w, profiles)
	default:
		return eris.Errorf("output: unknown format %q (want table, json, csv or xlsx)", format)
	}
}

func writeTable(w io.Writer, profiles []model.EnrichedBusinessProfile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tINDUSTRY\tREVENUE\tARBITRAGE\tREADINESS\tSUCCESSION\tDIGITAL\tAD SPEND\tSOURCE")
	for _, p := range profiles {
		arb := "-"
		if p.ArbitrageScore != nil {
			arb = strconv.FormatFloat(*p.ArbitrageScore, 'f', 2, 64)
		}
		rev := "-"
		if p.EstimatedRevenue != nil {
			rev = strconv.FormatFloat(*p.EstimatedRevenue, 'f', 0, 64)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			p.Name, p.Industry, rev, arb, p.DealReadiness,
			p.SuccessionScore, p.DigitalHealth, p.AdSpendEstimate, p.Source)
	}
	return eris.Wrap(tw.Flush(), "output: flush table")
}

func writeCSV(w io.Writer, profiles []model.EnrichedBusinessProfile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(profileColumns); err != nil {
		return eris.Wrap(err, "output: write csv header")
	}
	for _, p := range profiles {
		if err := cw.Write(profileRow(p)); err != nil {
			return eris.Wrap(err, "output: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "output: flush csv")
}

func writeXLSX(w io.Writer, profiles []model.EnrichedBusinessProfile) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "output: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range profileColumns {
		header.AddCell().SetString(col)
	}
	for _, p := range profiles {
		row := sheet.AddRow()
		for _, v := range profileRow(p) {
			row.AddCell().SetString(v)
		}
	}

	return eris.Wrap(f.Write(w), "output: write xlsx")
}
