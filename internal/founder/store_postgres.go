package founder

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/founder-resolve/internal/db"
)

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS founders (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	normalized_name TEXT NOT NULL,
	email           TEXT NOT NULL DEFAULT '',
	linkedin_url    TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL DEFAULT '',
	bio             TEXT NOT NULL DEFAULT '',
	location        TEXT NOT NULL DEFAULT '',
	education       TEXT NOT NULL DEFAULT '',
	experience      TEXT NOT NULL DEFAULT '',
	skills          TEXT[] NOT NULL DEFAULT '{}',
	twitter         TEXT NOT NULL DEFAULT '',
	github          TEXT NOT NULL DEFAULT '',
	website         TEXT NOT NULL DEFAULT '',
	source          TEXT NOT NULL DEFAULT 'manual',
	stage           TEXT NOT NULL DEFAULT 'sourced',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_founders_email ON founders(email);
CREATE INDEX IF NOT EXISTS idx_founders_normalized_name ON founders(normalized_name);
`

// Migrate creates the founders table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "founder: migrate")
}

const founderColumns = `id, name, normalized_name, email, linkedin_url, title, bio, location,
	education, experience, skills, twitter, github, website, source, stage, created_at, updated_at`

func founderDests(f *Founder) []any {
	return []any{
		&f.ID, &f.Name, &f.NormalizedName, &f.Email, &f.LinkedInURL, &f.Title, &f.Bio, &f.Location,
		&f.Education, &f.Experience, &f.Skills, &f.Twitter, &f.GitHub, &f.Website, &f.Source, &f.Stage,
		&f.CreatedAt, &f.UpdatedAt,
	}
}

// FindByLinkedIn returns the oldest founder whose LinkedIn URL contains normalized.
func (s *PostgresStore) FindByLinkedIn(ctx context.Context, normalized string) (*Founder, error) {
	if normalized == "" {
		return nil, nil
	}
	f := &Founder{}
	err := s.pool.QueryRow(ctx, `SELECT `+founderColumns+` FROM founders
		WHERE linkedin_url <> '' AND strpos(lower(linkedin_url), lower($1)) > 0
		ORDER BY created_at, id LIMIT 1`, normalized).
		Scan(founderDests(f)...)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "founder: find by linkedin %s", normalized)
	}
	return f, nil
}

// FindByEmail returns the oldest founder with the given email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Founder, error) {
	if email == "" {
		return nil, nil
	}
	f := &Founder{}
	err := s.pool.QueryRow(ctx, `SELECT `+founderColumns+` FROM founders
		WHERE email = lower($1)
		ORDER BY created_at, id LIMIT 1`, email).
		Scan(founderDests(f)...)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "founder: find by email %s", email)
	}
	return f, nil
}

// FindByNameToken returns founders whose normalized name contains token.
func (s *PostgresStore) FindByNameToken(ctx context.Context, token string) ([]Founder, error) {
	if token == "" {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT `+founderColumns+` FROM founders
		WHERE strpos(normalized_name, $1) > 0
		ORDER BY created_at, id`, token)
	if err != nil {
		return nil, eris.Wrapf(err, "founder: find by name token %s", token)
	}
	defer rows.Close()
	return scanFounders(rows)
}

func scanFounders(rows pgx.Rows) ([]Founder, error) {
	var out []Founder
	for rows.Next() {
		var f Founder
		if err := rows.Scan(founderDests(&f)...); err != nil {
			return nil, eris.Wrap(err, "founder: scan")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "founder: iterate rows")
}

// Create inserts a new founder. An empty ID is filled by the caller via NewFounder.
func (s *PostgresStore) Create(ctx context.Context, f *Founder) error {
	if f.ID == "" {
		return eris.New("founder: create requires an id")
	}
	if f.Skills == nil {
		f.Skills = []string{}
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO founders (
			id, name, normalized_name, email, linkedin_url, title, bio, location,
			education, experience, skills, twitter, github, website, source, stage
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at`,
		f.ID, f.Name, f.NormalizedName, f.Email, f.LinkedInURL, f.Title, f.Bio, f.Location,
		f.Education, f.Experience, f.Skills, f.Twitter, f.GitHub, f.Website, f.Source, f.Stage,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return eris.Wrapf(err, "founder: create %s", f.Name)
	}
	return nil
}

// Update overwrites the mutable fields of an existing founder.
func (s *PostgresStore) Update(ctx context.Context, f *Founder) error {
	if f.Skills == nil {
		f.Skills = []string{}
	}
	f.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE founders SET
			name=$2, normalized_name=$3, email=$4, linkedin_url=$5, title=$6, bio=$7, location=$8,
			education=$9, experience=$10, skills=$11, twitter=$12, github=$13, website=$14,
			stage=$15, updated_at=$16
		WHERE id=$1`,
		f.ID,
		f.Name, f.NormalizedName, f.Email, f.LinkedInURL, f.Title, f.Bio, f.Location,
		f.Education, f.Experience, f.Skills, f.Twitter, f.GitHub, f.Website,
		f.Stage, f.UpdatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "founder: update %s", f.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("founder: update %s: not found", f.ID)
	}
	return nil
}
