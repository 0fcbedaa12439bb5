package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/dealscout/internal/model"
)

func sampleProfiles() []model.EnrichedBusinessProfile {
	ssl := true
	return []model.EnrichedBusinessProfile{
		{
			RawLead: model.RawLead{
				Name:             "Desert Comfort Heating & Air",
				Industry:         "hvac",
				EstimatedRevenue: model.Float64(1_850_000),
				EmployeeCount:    model.Int(14),
				Source:           "local",
			},
			ArbitrageScore: model.Float64(1.2847),
			Modernity:      model.ModernityDated,
			SSLValid:       &ssl,
			DealScores: model.DealScores{
				AdSpendEstimate: 2400,
				SuccessionScore: 75,
				DigitalHealth:   55,
				DealReadiness:   model.DealReadinessHigh,
			},
			Market: &model.MarketAnalysis{SellerPotentialScore: 61},
		},
		{
			RawLead: model.RawLead{Name: "Sonoran Cooling Co", Industry: "hvac", Source: "local"},
			DealScores: model.DealScores{
				DealReadiness: model.DealReadinessLow,
			},
		},
	}
}

func TestWriteProfiles_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeProfiles(&buf, formatCSV, sampleProfiles()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, profileColumns, records[0])

	row := map[string]string{}
	for i, col := range profileColumns {
		row[col] = records[1][i]
	}
	assert.Equal(t, "Desert Comfort Heating & Air", row["name"])
	assert.Equal(t, "1850000", row["estimated_revenue"])
	assert.Equal(t, "1.28", row["arbitrage_score"])
	assert.Equal(t, "true", row["ssl_valid"])
	assert.Equal(t, "High", row["deal_readiness"])
	assert.Equal(t, "61", row["seller_potential"])

	assert.Equal(t, "", records[2][7], "missing revenue renders empty")
}

func TestWriteProfiles_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeProfiles(&buf, formatJSON, sampleProfiles()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Desert Comfort Heating & Air", got[0]["name"])
	assert.Equal(t, "High", got[0]["deal_readiness"])
	assert.NotContains(t, got[1], "arbitrage_score")
}

func TestWriteProfiles_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeProfiles(&buf, formatXLSX, sampleProfiles()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Leads", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "name", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Sonoran Cooling Co", sheet.Rows[2].Cells[0].String())
}

func TestWriteProfiles_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeProfiles(&buf, formatTable, sampleProfiles()))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Desert Comfort Heating & Air")
	assert.Contains(t, out, "1.28")
	assert.Contains(t, out, "Sonoran Cooling Co")
}

func TestWriteProfiles_UnknownFormat(t *testing.T) {
	err := writeProfiles(&bytes.Buffer{}, "yaml", nil)
	assert.ErrorContains(t, err, "unknown format")
}
