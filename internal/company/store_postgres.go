package company

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/founder-resolve/internal/db"
)

// PostgresStore implements Directory using pgx.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	domain     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_lower_name ON companies(lower(name));

CREATE TABLE IF NOT EXISTS founder_companies (
	founder_id TEXT NOT NULL REFERENCES founders(id),
	company_id TEXT NOT NULL REFERENCES companies(id),
	role       TEXT NOT NULL DEFAULT 'Founder',
	is_primary BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (founder_id, company_id)
);
`

// Migrate creates the companies and founder_companies tables. The founders
// table must exist first.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "company: migrate")
}

// FindByExactName returns the oldest company with a case-insensitively equal name.
func (s *PostgresStore) FindByExactName(ctx context.Context, name string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	c := &Company{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, domain, created_at FROM companies
		WHERE lower(name) = lower($1)
		ORDER BY created_at, id LIMIT 1`, name).
		Scan(&c.ID, &c.Name, &c.Domain, &c.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "company: find by name %s", name)
	}
	return c, nil
}

// CreateCompany inserts a company, assigning an ID when empty.
func (s *PostgresStore) CreateCompany(ctx context.Context, c *Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO companies (id, name, domain) VALUES ($1, $2, $3)
		RETURNING created_at`, c.ID, c.Name, c.Domain).
		Scan(&c.CreatedAt)
	return eris.Wrapf(err, "company: create %s", c.Name)
}

// LinkFounder upserts the founder/company link.
func (s *PostgresStore) LinkFounder(ctx context.Context, l Link) (bool, error) {
	if l.Role == "" {
		l.Role = DefaultRole
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO founder_companies (founder_id, company_id, role, is_primary)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (founder_id, company_id) DO UPDATE SET
			role = EXCLUDED.role,
			is_primary = EXCLUDED.is_primary,
			updated_at = now()`,
		l.FounderID, l.CompanyID, l.Role, l.IsPrimary)
	if err != nil {
		return false, eris.Wrapf(err, "company: link founder %s to %s", l.FounderID, l.CompanyID)
	}
	return tag.RowsAffected() > 0, nil
}
