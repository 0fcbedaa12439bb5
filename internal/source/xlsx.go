package source

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/dealscout/internal/model"
)

// LoadDatasetFile reads a fallback dataset, choosing the format from the
// file extension: .xlsx for a spreadsheet export, YAML otherwise.
func LoadDatasetFile(path string) ([]model.RawLead, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSXFile(path)
	}
	return LoadYAMLFile(path)
}

// LoadXLSXFile reads leads from the first sheet of a spreadsheet. The first
// row is a header naming the columns; unknown columns are ignored and
// columns named like social_<network> become social profiles.
func LoadXLSXFile(path string) ([]model.RawLead, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open spreadsheet %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("source: spreadsheet %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	header := rowToStrings(sheet.Rows[0])
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var leads []model.RawLead
	for n, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		lead, err := leadFromRow(header, cells)
		if err != nil {
			return nil, eris.Wrapf(err, "source: spreadsheet row %d", n+2)
		}
		if lead.Name == "" {
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

func leadFromRow(header, cells []string) (model.RawLead, error) {
	var l model.RawLead
	for i, col := range header {
		if i >= len(cells) {
			break
		}
		v := strings.TrimSpace(cells[i])
		if v == "" {
			continue
		}

		switch col {
		case "name":
			l.Name = v
		case "address":
			l.Address = v
		case "phone":
			l.Phone = v
		case "website":
			l.Website = v
		case "industry":
			l.Industry = v
		case "owner_name":
			l.OwnerName = v
		case "owner_email":
			l.OwnerEmail = v
		case "estimated_revenue":
			f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
			if err != nil {
				return l, eris.Wrapf(err, "parse %s", col)
			}
			l.EstimatedRevenue = model.Float64(f)
		case "employee_count", "founded_year":
			n, err := strconv.Atoi(v)
			if err != nil {
				return l, eris.Wrapf(err, "parse %s", col)
			}
			if col == "employee_count" {
				l.EmployeeCount = model.Int(n)
			} else {
				l.FoundedYear = model.Int(n)
			}
		default:
			if network, ok := strings.CutPrefix(col, "social_"); ok && network != "" {
				if l.SocialProfiles == nil {
					l.SocialProfiles = make(map[string]string)
				}
				l.SocialProfiles[network] = v
			}
		}
	}
	return l, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
