package source

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/sells-group/dealscout/internal/model"
)

//go:embed data/leads.yaml
var seedYAML []byte

type dataset struct {
	Leads []model.RawLead `yaml:"leads"`
}

// SeedLeads returns the embedded fallback dataset.
func SeedLeads() ([]model.RawLead, error) {
	return ParseYAML(seedYAML)
}

// ParseYAML parses a lead dataset document with a top-level "leads" list.
func ParseYAML(data []byte) ([]model.RawLead, error) {
	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, eris.Wrap(err, "source: parse dataset")
	}
	return ds.Leads, nil
}

// LoadYAMLFile reads a lead dataset from disk.
func LoadYAMLFile(path string) ([]model.RawLead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read dataset %s", path)
	}
	return ParseYAML(data)
}

const sqliteLeadsSQL = `
SELECT name, COALESCE(address, ''), COALESCE(phone, ''), COALESCE(website, ''),
       COALESCE(industry, ''), estimated_revenue, employee_count,
       COALESCE(owner_name, ''), COALESCE(owner_email, ''), founded_year,
       COALESCE(social_profiles, '')
FROM leads
ORDER BY rowid`

// LoadSQLite reads the fallback dataset from the "leads" table of a SQLite
// database. social_profiles holds a JSON object when present.
func LoadSQLite(ctx context.Context, dsn string) ([]model.RawLead, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "source: open sqlite")
	}
	defer db.Close() //nolint:errcheck

	rows, err := db.QueryContext(ctx, sqliteLeadsSQL)
	if err != nil {
		return nil, eris.Wrap(err, "source: query sqlite leads")
	}
	defer rows.Close() //nolint:errcheck

	var leads []model.RawLead
	for rows.Next() {
		var (
			l        model.RawLead
			revenue  sql.NullFloat64
			emps     sql.NullInt64
			founded  sql.NullInt64
			profiles string
		)
		if err := rows.Scan(
			&l.Name, &l.Address, &l.Phone, &l.Website, &l.Industry,
			&revenue, &emps, &l.OwnerName, &l.OwnerEmail, &founded, &profiles,
		); err != nil {
			return nil, eris.Wrap(err, "source: scan sqlite lead")
		}
		if revenue.Valid {
			l.EstimatedRevenue = model.Float64(revenue.Float64)
		}
		if emps.Valid {
			l.EmployeeCount = model.Int(int(emps.Int64))
		}
		if founded.Valid {
			l.FoundedYear = model.Int(int(founded.Int64))
		}
		if profiles != "" {
			if err := json.Unmarshal([]byte(profiles), &l.SocialProfiles); err != nil {
				return nil, eris.Wrapf(err, "source: decode social profiles for %q", l.Name)
			}
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "source: iterate sqlite leads")
	}
	return leads, nil
}
