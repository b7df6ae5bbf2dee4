// Package founder defines the founder record types and their persistence.
package founder

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/founder-resolve/internal/normalize"
)

// Provenance tags recording how a founder entered the system.
const (
	SourceManual    = "manual"
	SourceCSVImport = "csv_import"
)

// DefaultStage is the workflow stage assigned to newly created founders.
const DefaultStage = "sourced"

// Record is one incoming founder, parsed from an import row or a form.
// It is treated as immutable once built.
type Record struct {
	Name        string   `json:"name" yaml:"name"`
	Email       string   `json:"email,omitempty" yaml:"email,omitempty"`
	LinkedInURL string   `json:"linkedin_url,omitempty" yaml:"linkedin_url,omitempty"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Bio         string   `json:"bio,omitempty" yaml:"bio,omitempty"`
	Location    string   `json:"location,omitempty" yaml:"location,omitempty"`
	Education   string   `json:"education,omitempty" yaml:"education,omitempty"`
	Experience  string   `json:"experience,omitempty" yaml:"experience,omitempty"`
	Skills      []string `json:"skills,omitempty" yaml:"skills,omitempty"`
	Twitter     string   `json:"twitter,omitempty" yaml:"twitter,omitempty"`
	GitHub      string   `json:"github,omitempty" yaml:"github,omitempty"`
	Website     string   `json:"website,omitempty" yaml:"website,omitempty"`

	// Company hints used to link the resolved founder to a known company.
	CompanyName string `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	CompanyRole string `json:"company_role,omitempty" yaml:"company_role,omitempty"`
}

// ValidationError rejects a single record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// Validate checks the fields a record needs before it can be matched.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}

// Founder is the persisted founder entity.
type Founder struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	NormalizedName string    `json:"normalized_name" db:"normalized_name"`
	Email          string    `json:"email,omitempty" db:"email"`
	LinkedInURL    string    `json:"linkedin_url,omitempty" db:"linkedin_url"`
	Title          string    `json:"title,omitempty" db:"title"`
	Bio            string    `json:"bio,omitempty" db:"bio"`
	Location       string    `json:"location,omitempty" db:"location"`
	Education      string    `json:"education,omitempty" db:"education"`
	Experience     string    `json:"experience,omitempty" db:"experience"`
	Skills         []string  `json:"skills,omitempty" db:"skills"`
	Twitter        string    `json:"twitter,omitempty" db:"twitter"`
	GitHub         string    `json:"github,omitempty" db:"github"`
	Website        string    `json:"website,omitempty" db:"website"`
	Source         string    `json:"source" db:"source"`
	Stage          string    `json:"stage" db:"stage"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// NewFounder projects a record into a new founder entity with a fresh ID.
func NewFounder(r Record, source string) *Founder {
	if source == "" {
		source = SourceManual
	}
	f := &Founder{
		ID:     uuid.New().String(),
		Source: source,
		Stage:  DefaultStage,
	}
	f.Name = strings.TrimSpace(r.Name)
	f.Merge(r)
	return f
}

// Merge applies a record onto an existing founder. The stored name is kept
// unless it is empty; non-empty incoming fields overwrite stored values and
// skills are unioned. Provenance and stage are left alone.
func (f *Founder) Merge(r Record) {
	if f.Name == "" {
		f.Name = strings.TrimSpace(r.Name)
	}
	if email := normalize.Email(r.Email); email != "" {
		f.Email = email
	}
	setIfPresent(&f.LinkedInURL, r.LinkedInURL)
	setIfPresent(&f.Title, r.Title)
	setIfPresent(&f.Bio, r.Bio)
	setIfPresent(&f.Location, r.Location)
	setIfPresent(&f.Education, r.Education)
	setIfPresent(&f.Experience, r.Experience)
	setIfPresent(&f.Twitter, r.Twitter)
	setIfPresent(&f.GitHub, r.GitHub)
	setIfPresent(&f.Website, r.Website)
	f.Skills = unionSkills(f.Skills, r.Skills)
	f.Email = normalize.Email(f.Email)
	f.NormalizedName = normalize.Name(f.Name)
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func unionSkills(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]bool, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, list := range [][]string{existing, incoming} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			key := strings.ToLower(s)
			if s == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}
