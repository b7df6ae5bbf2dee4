package resolve

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/founder-resolve/internal/founder"
	"github.com/sells-group/founder-resolve/internal/normalize"
)

// DefaultNameThreshold is the minimum similarity for a fuzzy name match
// when the caller does not configure one.
const DefaultNameThreshold = 85

// MatchType tags which tier produced a match.
type MatchType string

// Match types.
const (
	MatchExactIdentifier MatchType = "exact_identifier"
	MatchExactEmail      MatchType = "exact_email"
	MatchName            MatchType = "name_match"
	MatchNone            MatchType = "none"
)

// MatchCandidate is the outcome of matching one incoming record.
type MatchCandidate struct {
	Row        int              `json:"row"`
	Name       string           `json:"name"`
	Founder    *founder.Founder `json:"founder,omitempty"`
	MatchType  MatchType        `json:"match_type"`
	Confidence int              `json:"confidence"`
}

// Matched reports whether the candidate points at an existing founder.
func (c MatchCandidate) Matched() bool {
	return c.Founder != nil && c.MatchType != MatchNone
}

// ScoredFounder is a founder with its name similarity to a query.
type ScoredFounder struct {
	Founder    founder.Founder `json:"founder"`
	Similarity int             `json:"similarity"`
}

// MatchOptions configures a Matcher.
type MatchOptions struct {
	// NameThreshold is the minimum similarity (0-100) for the fuzzy name
	// tier. Zero means DefaultNameThreshold.
	NameThreshold int
}

// Matcher finds the existing founder an incoming record refers to.
type Matcher struct {
	store     founder.Store
	threshold int
}

// NewMatcher creates a Matcher over the given store.
func NewMatcher(store founder.Store, opts MatchOptions) *Matcher {
	threshold := opts.NameThreshold
	if threshold <= 0 {
		threshold = DefaultNameThreshold
	}
	if threshold > 100 {
		threshold = 100
	}
	return &Matcher{store: store, threshold: threshold}
}

// Threshold returns the fuzzy name threshold in effect.
func (m *Matcher) Threshold() int {
	return m.threshold
}

// FindMatch runs the tiered lookup for one record:
//  1. LinkedIn profile slug (confidence 100)
//  2. Email (confidence 100)
//  3. Fuzzy name over a token prefilter (confidence = similarity)
//
// Each tier runs only when the record carries that signal and the previous
// tiers found nothing. A record matching nothing yields MatchNone.
func (m *Matcher) FindMatch(ctx context.Context, row int, rec founder.Record) (MatchCandidate, error) {
	mc := MatchCandidate{Row: row, Name: rec.Name, MatchType: MatchNone}

	// Tier 1: LinkedIn profile.
	if slug := normalize.LinkedIn(rec.LinkedInURL); slug != "" {
		f, err := m.store.FindByLinkedIn(ctx, slug)
		if err != nil {
			return mc, eris.Wrap(err, "resolve: match by linkedin")
		}
		if f != nil {
			zap.L().Debug("resolve: matched by linkedin",
				zap.Int("row", row),
				zap.String("slug", slug),
				zap.String("founder_id", f.ID),
			)
			mc.Founder, mc.MatchType, mc.Confidence = f, MatchExactIdentifier, 100
			return mc, nil
		}
	}

	// Tier 2: email.
	if email := normalize.Email(rec.Email); email != "" {
		f, err := m.store.FindByEmail(ctx, email)
		if err != nil {
			return mc, eris.Wrap(err, "resolve: match by email")
		}
		if f != nil {
			zap.L().Debug("resolve: matched by email",
				zap.Int("row", row),
				zap.String("founder_id", f.ID),
			)
			mc.Founder, mc.MatchType, mc.Confidence = f, MatchExactEmail, 100
			return mc, nil
		}
	}

	// Tier 3: fuzzy name.
	scored, err := m.scoreByName(ctx, rec.Name, m.threshold)
	if err != nil {
		return mc, err
	}
	if len(scored) > 0 {
		best := scored[0]
		zap.L().Debug("resolve: matched by name",
			zap.Int("row", row),
			zap.String("name", rec.Name),
			zap.String("founder_id", best.Founder.ID),
			zap.Int("similarity", best.Similarity),
		)
		f := best.Founder
		mc.Founder, mc.MatchType, mc.Confidence = &f, MatchName, best.Similarity
	}
	return mc, nil
}

// SearchByName returns every founder scoring at or above threshold against
// name, best first. A threshold of zero uses the matcher's own threshold.
func (m *Matcher) SearchByName(ctx context.Context, name string, threshold int) ([]ScoredFounder, error) {
	if threshold <= 0 {
		threshold = m.threshold
	}
	return m.scoreByName(ctx, name, threshold)
}

// scoreByName prefilters the store on the first token of the normalized
// name and, when that yields nothing above threshold, on the last token.
// Names sharing neither token verbatim (nicknames plus a misspelled
// surname) are not found; the prefilter trades those for not scanning the
// whole store.
func (m *Matcher) scoreByName(ctx context.Context, name string, threshold int) ([]ScoredFounder, error) {
	norm := normalize.Name(name)
	if norm == "" {
		return nil, nil
	}

	first := normalize.FirstToken(norm)
	scored, err := m.scoreToken(ctx, name, first, threshold)
	if err != nil {
		return nil, err
	}
	if len(scored) > 0 {
		return scored, nil
	}

	if last := normalize.LastToken(norm); last != first {
		return m.scoreToken(ctx, name, last, threshold)
	}
	return nil, nil
}

func (m *Matcher) scoreToken(ctx context.Context, name, token string, threshold int) ([]ScoredFounder, error) {
	candidates, err := m.store.FindByNameToken(ctx, token)
	if err != nil {
		return nil, eris.Wrapf(err, "resolve: name candidates for %q", token)
	}

	var scored []ScoredFounder
	for _, c := range candidates {
		sim := NameSimilarity(name, c.Name)
		if sim >= threshold {
			scored = append(scored, ScoredFounder{Founder: c, Similarity: sim})
		}
	}
	// Stable: equal scores keep store order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	return scored, nil
}
