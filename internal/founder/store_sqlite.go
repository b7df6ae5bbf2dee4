package founder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
)

// SQLiteStore implements Store using database/sql and modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open SQLite handle (see db.OpenSQLite).
func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: conn}
}

const sqliteMigration = `
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
	skills          TEXT NOT NULL DEFAULT '[]',
	twitter         TEXT NOT NULL DEFAULT '',
	github          TEXT NOT NULL DEFAULT '',
	website         TEXT NOT NULL DEFAULT '',
	source          TEXT NOT NULL DEFAULT 'manual',
	stage           TEXT NOT NULL DEFAULT 'sourced',
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_founders_email ON founders(email);
CREATE INDEX IF NOT EXISTS idx_founders_normalized_name ON founders(normalized_name);
`

// Migrate creates the founders table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "founder: sqlite migrate")
}

// rowid breaks ties between founders created within the same clock tick.
const sqliteOrder = ` ORDER BY created_at, rowid`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteFounder(sc rowScanner) (*Founder, error) {
	var (
		f      Founder
		skills string
	)
	err := sc.Scan(
		&f.ID, &f.Name, &f.NormalizedName, &f.Email, &f.LinkedInURL, &f.Title, &f.Bio, &f.Location,
		&f.Education, &f.Experience, &skills, &f.Twitter, &f.GitHub, &f.Website, &f.Source, &f.Stage,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if skills != "" {
		if err := json.Unmarshal([]byte(skills), &f.Skills); err != nil {
			return nil, eris.Wrapf(err, "founder: decode skills for %s", f.ID)
		}
	}
	return &f, nil
}

func (s *SQLiteStore) queryOne(ctx context.Context, where string, arg any) (*Founder, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+founderColumns+` FROM founders WHERE `+where+sqliteOrder+` LIMIT 1`, arg)
	f, err := scanSQLiteFounder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

// FindByLinkedIn returns the oldest founder whose LinkedIn URL contains normalized.
func (s *SQLiteStore) FindByLinkedIn(ctx context.Context, normalized string) (*Founder, error) {
	if normalized == "" {
		return nil, nil
	}
	f, err := s.queryOne(ctx, `linkedin_url <> '' AND instr(lower(linkedin_url), lower(?)) > 0`, normalized)
	return f, eris.Wrapf(err, "founder: sqlite find by linkedin %s", normalized)
}

// FindByEmail returns the oldest founder with the given email.
func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (*Founder, error) {
	if email == "" {
		return nil, nil
	}
	f, err := s.queryOne(ctx, `email = lower(?)`, email)
	return f, eris.Wrapf(err, "founder: sqlite find by email %s", email)
}

// FindByNameToken returns founders whose normalized name contains token.
func (s *SQLiteStore) FindByNameToken(ctx context.Context, token string) ([]Founder, error) {
	if token == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+founderColumns+` FROM founders WHERE instr(normalized_name, ?) > 0`+sqliteOrder, token)
	if err != nil {
		return nil, eris.Wrapf(err, "founder: sqlite find by name token %s", token)
	}
	defer rows.Close() //nolint:errcheck

	var out []Founder
	for rows.Next() {
		f, err := scanSQLiteFounder(rows)
		if err != nil {
			return nil, eris.Wrap(err, "founder: sqlite scan")
		}
		out = append(out, *f)
	}
	return out, eris.Wrap(rows.Err(), "founder: sqlite iterate rows")
}

// Create inserts a new founder.
func (s *SQLiteStore) Create(ctx context.Context, f *Founder) error {
	if f.ID == "" {
		return eris.New("founder: create requires an id")
	}
	skills, err := encodeSkills(f.Skills)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO founders (
			id, name, normalized_name, email, linkedin_url, title, bio, location,
			education, experience, skills, twitter, github, website, source, stage,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.NormalizedName, f.Email, f.LinkedInURL, f.Title, f.Bio, f.Location,
		f.Education, f.Experience, skills, f.Twitter, f.GitHub, f.Website, f.Source, f.Stage,
		now, now,
	)
	if err != nil {
		return eris.Wrapf(err, "founder: sqlite create %s", f.Name)
	}
	f.CreatedAt, f.UpdatedAt = now, now
	return nil
}

// Update overwrites the mutable fields of an existing founder.
func (s *SQLiteStore) Update(ctx context.Context, f *Founder) error {
	skills, err := encodeSkills(f.Skills)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE founders SET
			name = ?, normalized_name = ?, email = ?, linkedin_url = ?, title = ?, bio = ?, location = ?,
			education = ?, experience = ?, skills = ?, twitter = ?, github = ?, website = ?,
			stage = ?, updated_at = ?
		WHERE id = ?`,
		f.Name, f.NormalizedName, f.Email, f.LinkedInURL, f.Title, f.Bio, f.Location,
		f.Education, f.Experience, skills, f.Twitter, f.GitHub, f.Website,
		f.Stage, now, f.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "founder: sqlite update %s", f.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "founder: sqlite update %s", f.ID)
	}
	if n == 0 {
		return eris.Errorf("founder: sqlite update %s: not found", f.ID)
	}
	f.UpdatedAt = now
	return nil
}

func encodeSkills(skills []string) (string, error) {
	if len(skills) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(skills)
	if err != nil {
		return "", eris.Wrap(err, "founder: encode skills")
	}
	return string(b), nil
}
