package company

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// SQLiteStore implements Directory using database/sql and modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open SQLite handle (see db.OpenSQLite).
func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: conn}
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	domain     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_lower_name ON companies(lower(name));

CREATE TABLE IF NOT EXISTS founder_companies (
	founder_id TEXT NOT NULL REFERENCES founders(id),
	company_id TEXT NOT NULL REFERENCES companies(id),
	role       TEXT NOT NULL DEFAULT 'Founder',
	is_primary INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (founder_id, company_id)
);
`

// Migrate creates the companies and founder_companies tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "company: sqlite migrate")
}

// FindByExactName returns the oldest company with a case-insensitively equal name.
func (s *SQLiteStore) FindByExactName(ctx context.Context, name string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	c := &Company{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, domain, created_at FROM companies
		WHERE lower(name) = lower(?)
		ORDER BY created_at, rowid LIMIT 1`, name).
		Scan(&c.ID, &c.Name, &c.Domain, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "company: sqlite find by name %s", name)
	}
	return c, nil
}

// CreateCompany inserts a company, assigning an ID when empty.
func (s *SQLiteStore) CreateCompany(ctx context.Context, c *Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, domain, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Domain, c.CreatedAt)
	return eris.Wrapf(err, "company: sqlite create %s", c.Name)
}

// LinkFounder upserts the founder/company link.
func (s *SQLiteStore) LinkFounder(ctx context.Context, l Link) (bool, error) {
	if l.Role == "" {
		l.Role = DefaultRole
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO founder_companies (founder_id, company_id, role, is_primary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (founder_id, company_id) DO UPDATE SET
			role = excluded.role,
			is_primary = excluded.is_primary,
			updated_at = excluded.updated_at`,
		l.FounderID, l.CompanyID, l.Role, l.IsPrimary, now, now)
	if err != nil {
		return false, eris.Wrapf(err, "company: sqlite link founder %s to %s", l.FounderID, l.CompanyID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "company: sqlite link rows affected")
	}
	return n > 0, nil
}

// Links returns the companies linked to a founder.
func (s *SQLiteStore) Links(ctx context.Context, founderID string) ([]Link, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT founder_id, company_id, role, is_primary FROM founder_companies
		WHERE founder_id = ? ORDER BY created_at, company_id`, founderID)
	if err != nil {
		return nil, eris.Wrapf(err, "company: sqlite links for %s", founderID)
	}
	defer rows.Close() //nolint:errcheck

	var out []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.FounderID, &l.CompanyID, &l.Role, &l.IsPrimary); err != nil {
			return nil, eris.Wrap(err, "company: sqlite scan link")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "company: sqlite iterate links")
}
