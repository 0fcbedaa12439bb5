package source

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadXLSXFile(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Name", "Industry", "Address", "Estimated_Revenue", "Employee_Count", "Founded_Year", "Social_Facebook", "Notes"},
		{"Desert Comfort HVAC", "hvac", "1 Main St, Phoenix, AZ", "1,200,000", "9", "1998", "fb.com/dc", "ignored"},
		{"", "hvac", "", "", "", "", "", ""},
		{"Valley Air", "hvac", "2 Elm St, Phoenix, AZ"},
	})

	leads, err := LoadDatasetFile(path)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	dc := leads[0]
	assert.Equal(t, "Desert Comfort HVAC", dc.Name)
	assert.Equal(t, "hvac", dc.Industry)
	require.NotNil(t, dc.EstimatedRevenue)
	assert.InDelta(t, 1_200_000, *dc.EstimatedRevenue, 0.001)
	require.NotNil(t, dc.EmployeeCount)
	assert.Equal(t, 9, *dc.EmployeeCount)
	require.NotNil(t, dc.FoundedYear)
	assert.Equal(t, 1998, *dc.FoundedYear)
	assert.Equal(t, map[string]string{"facebook": "fb.com/dc"}, dc.SocialProfiles)

	assert.Equal(t, "Valley Air", leads[1].Name)
	assert.Nil(t, leads[1].EstimatedRevenue)
}

func TestLoadXLSXFile_BadNumber(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"name", "employee_count"},
		{"Valley Air", "a dozen"},
	})

	_, err := LoadXLSXFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoadXLSXFile_Missing(t *testing.T) {
	_, err := LoadXLSXFile(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestLoadDatasetFile_YAML(t *testing.T) {
	_, err := LoadDatasetFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "source: read dataset")
}
