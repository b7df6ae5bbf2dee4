package founder

import "context"

// Store defines the founder persistence operations the resolver needs.
// Lookups return (nil, nil) when nothing matches.
type Store interface {
	// FindByLinkedIn returns a founder whose stored LinkedIn URL contains
	// the normalized value, compared case-insensitively.
	FindByLinkedIn(ctx context.Context, normalized string) (*Founder, error)

	// FindByEmail returns the founder with exactly this (lowercased) email.
	FindByEmail(ctx context.Context, email string) (*Founder, error)

	// FindByNameToken returns founders whose normalized name contains token,
	// in a stable order (creation time, then ID).
	FindByNameToken(ctx context.Context, token string) ([]Founder, error)

	Create(ctx context.Context, f *Founder) error
	Update(ctx context.Context, f *Founder) error
}
