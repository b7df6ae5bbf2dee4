// Package testsupport provides in-memory founder and company stores for tests.
package testsupport

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/founder-resolve/internal/company"
	"github.com/sells-group/founder-resolve/internal/founder"
)

// FounderStore is an in-memory founder.Store. Iteration follows insertion
// order. Set the *Err fields to make the matching call fail.
type FounderStore struct {
	mu       sync.Mutex
	founders []founder.Founder

	LinkedInErr error
	EmailErr    error
	TokenErr    error
	CreateErr   error
	UpdateErr   error

	// FailCreateFor makes Create fail for records with these names.
	FailCreateFor map[string]error

	Creates int
	Updates int
}

var _ founder.Store = (*FounderStore)(nil)

// NewFounderStore returns a store seeded with the given founders.
func NewFounderStore(seed ...*founder.Founder) *FounderStore {
	s := &FounderStore{}
	for _, f := range seed {
		s.founders = append(s.founders, *f)
	}
	return s
}

// All returns a copy of every stored founder in insertion order.
func (s *FounderStore) All() []founder.Founder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]founder.Founder, len(s.founders))
	copy(out, s.founders)
	return out
}

// Get returns the founder with the given ID.
func (s *FounderStore) Get(id string) (founder.Founder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.founders {
		if f.ID == id {
			return f, true
		}
	}
	return founder.Founder{}, false
}

func (s *FounderStore) FindByLinkedIn(_ context.Context, normalized string) (*founder.Founder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LinkedInErr != nil {
		return nil, s.LinkedInErr
	}
	if normalized == "" {
		return nil, nil
	}
	for _, f := range s.founders {
		if f.LinkedInURL != "" && strings.Contains(strings.ToLower(f.LinkedInURL), strings.ToLower(normalized)) {
			return &f, nil
		}
	}
	return nil, nil
}

func (s *FounderStore) FindByEmail(_ context.Context, email string) (*founder.Founder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EmailErr != nil {
		return nil, s.EmailErr
	}
	if email == "" {
		return nil, nil
	}
	for _, f := range s.founders {
		if strings.EqualFold(f.Email, email) {
			return &f, nil
		}
	}
	return nil, nil
}

func (s *FounderStore) FindByNameToken(_ context.Context, token string) ([]founder.Founder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TokenErr != nil {
		return nil, s.TokenErr
	}
	var out []founder.Founder
	for _, f := range s.founders {
		if token != "" && strings.Contains(f.NormalizedName, token) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *FounderStore) Create(_ context.Context, f *founder.Founder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if err, ok := s.FailCreateFor[f.Name]; ok {
		return err
	}
	now := time.Now().UTC()
	f.CreatedAt, f.UpdatedAt = now, now
	s.founders = append(s.founders, *f)
	s.Creates++
	return nil
}

func (s *FounderStore) Update(_ context.Context, f *founder.Founder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	for i := range s.founders {
		if s.founders[i].ID == f.ID {
			f.UpdatedAt = time.Now().UTC()
			s.founders[i] = *f
			s.Updates++
			return nil
		}
	}
	return eris.Errorf("memstore: update %s: not found", f.ID)
}

// Directory is an in-memory company.Directory.
type Directory struct {
	mu        sync.Mutex
	companies []company.Company
	links     map[[2]string]company.Link

	FindErr error
	LinkErr error
}

var _ company.Directory = (*Directory)(nil)

// NewDirectory returns a directory seeded with companies named names. Each
// company gets the ID "c-<name>".
func NewDirectory(names ...string) *Directory {
	d := &Directory{links: make(map[[2]string]company.Link)}
	for _, n := range names {
		d.companies = append(d.companies, company.Company{ID: "c-" + n, Name: n})
	}
	return d
}

func (d *Directory) FindByExactName(_ context.Context, name string) (*company.Company, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FindErr != nil {
		return nil, d.FindErr
	}
	name = strings.TrimSpace(name)
	for _, c := range d.companies {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, nil
}

func (d *Directory) LinkFounder(_ context.Context, l company.Link) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.LinkErr != nil {
		return false, d.LinkErr
	}
	d.links[[2]string{l.FounderID, l.CompanyID}] = l
	return true, nil
}

// Links returns every link recorded for founderID.
func (d *Directory) Links(founderID string) []company.Link {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []company.Link
	for k, l := range d.links {
		if k[0] == founderID {
			out = append(out, l)
		}
	}
	return out
}
