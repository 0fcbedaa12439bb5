package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscout/internal/model"
)

// PostgresName is the source name of the Postgres directory mirror.
const PostgresName = "postgres"

// pool defines the minimal database pool interface used by PostgresDirectory.
type pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

// PostgresDirectory searches a business directory mirrored into Postgres.
type PostgresDirectory struct {
	pool  pool
	ident pgx.Identifier
	table string // sanitized identifier
}

var _ Adapter = (*PostgresDirectory)(nil)

// NewPostgresDirectory connects to the directory database. table may be
// schema-qualified.
func NewPostgresDirectory(ctx context.Context, url, table string) (*PostgresDirectory, error) {
	p, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "source: postgres connect")
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, eris.Wrap(err, "source: postgres ping")
	}
	return newPostgresDirectory(p, table), nil
}

func newPostgresDirectory(p pool, table string) *PostgresDirectory {
	ident := pgx.Identifier(strings.Split(table, "."))
	return &PostgresDirectory{pool: p, ident: ident, table: ident.Sanitize()}
}

// Name implements Adapter.
func (d *PostgresDirectory) Name() string { return PostgresName }

// Close releases the connection pool.
func (d *PostgresDirectory) Close() { d.pool.Close() }

// Search implements Adapter.
func (d *PostgresDirectory) Search(ctx context.Context, q Query) ([]model.RawLead, error) {
	sql, args := d.buildQuery(q)

	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrap(err, "source: postgres search")
	}
	defer rows.Close()

	var leads []model.RawLead
	for rows.Next() {
		var (
			l        model.RawLead
			profiles string
		)
		if err := rows.Scan(
			&l.Name, &l.Address, &l.Phone, &l.Website, &l.Industry,
			&l.EstimatedRevenue, &l.EmployeeCount, &l.OwnerName, &l.OwnerEmail,
			&l.FoundedYear, &profiles,
		); err != nil {
			return nil, eris.Wrap(err, "source: postgres scan")
		}
		if profiles != "" {
			if err := json.Unmarshal([]byte(profiles), &l.SocialProfiles); err != nil {
				return nil, eris.Wrapf(err, "source: decode social profiles for %q", l.Name)
			}
		}
		l.Source = PostgresName
		leads = append(leads, model.NormalizeLead(l))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "source: postgres rows")
	}
	return leads, nil
}

func (d *PostgresDirectory) buildQuery(q Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Industry != "" {
		where = append(where, "LOWER(industry) = LOWER("+arg(q.Industry)+")")
	}
	if q.City != "" {
		where = append(where, "city ILIKE "+arg(q.City))
	}
	if q.State != "" {
		where = append(where, "state ILIKE "+arg(q.State))
	}
	if r := q.Revenue; r != nil {
		where = append(where, "COALESCE(estimated_revenue, 0) >= "+arg(r.Min))
		if r.Max > 0 {
			where = append(where, "COALESCE(estimated_revenue, 0) <= "+arg(r.Max))
		}
	}
	if r := q.Employees; r != nil {
		where = append(where, "COALESCE(employee_count, 0) >= "+arg(r.Min))
		if r.Max > 0 {
			where = append(where, "COALESCE(employee_count, 0) <= "+arg(r.Max))
		}
	}

	var b strings.Builder
	b.WriteString(`SELECT name, COALESCE(address, ''), COALESCE(phone, ''), COALESCE(website, ''),
       COALESCE(industry, ''), estimated_revenue, employee_count,
       COALESCE(owner_name, ''), COALESCE(owner_email, ''), founded_year,
       COALESCE(social_profiles::text, '')
FROM `)
	b.WriteString(d.table)
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\nORDER BY name")
	if q.Limit > 0 {
		b.WriteString("\nLIMIT " + arg(q.Limit))
	}
	return b.String(), args
}

var importColumns = []string{
	"name", "address", "city", "state", "phone", "website", "industry",
	"estimated_revenue", "employee_count", "owner_name", "owner_email",
	"founded_year", "social_profiles",
}

// Import bulk-loads leads into the directory table with COPY. City and
// state are derived from each lead's address.
func (d *PostgresDirectory) Import(ctx context.Context, leads []model.RawLead) (int64, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(leads))
	for _, l := range leads {
		l = model.NormalizeLead(l)
		city, state := model.SplitLocation(l.MarketLocation())

		var profiles any
		if len(l.SocialProfiles) > 0 {
			data, err := json.Marshal(l.SocialProfiles)
			if err != nil {
				return 0, eris.Wrapf(err, "source: encode social profiles for %q", l.Name)
			}
			profiles = string(data)
		}

		rows = append(rows, []any{
			l.Name, l.Address, city, state, l.Phone, l.Website, l.Industry,
			l.EstimatedRevenue, l.EmployeeCount, l.OwnerName, l.OwnerEmail,
			l.FoundedYear, profiles,
		})
	}

	n, err := d.pool.CopyFrom(ctx, d.ident, importColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "source: COPY INTO %s", d.table)
	}
	return n, nil
}
