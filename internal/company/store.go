package company

import "context"

// Directory looks up companies by name and records founder links.
type Directory interface {
	// FindByExactName returns the company whose name equals name,
	// ignoring case and surrounding whitespace, or nil.
	FindByExactName(ctx context.Context, name string) (*Company, error)

	// LinkFounder creates or updates the founder/company link. It reports
	// whether a row was written.
	LinkFounder(ctx context.Context, l Link) (bool, error)
}
