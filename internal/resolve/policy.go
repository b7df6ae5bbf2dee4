package resolve

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Decision is an explicit caller choice for a matched row.
type Decision string

// Caller decisions. DecisionNone means the caller expressed no preference.
const (
	DecisionNone  Decision = ""
	DecisionMerge Decision = "merge"
	DecisionNew   Decision = "new"
	DecisionSkip  Decision = "skip"
)

// ParseDecision parses a caller decision, case-insensitively.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionNone, DecisionMerge, DecisionNew, DecisionSkip:
		return d, nil
	default:
		return DecisionNone, eris.Errorf("resolve: unknown decision %q (want merge, new or skip)", s)
	}
}

// UnmarshalText lets decisions be read straight from YAML or JSON.
func (d *Decision) UnmarshalText(text []byte) error {
	parsed, err := ParseDecision(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ActionKind is what the importer does with a row.
type ActionKind string

// Action kinds.
const (
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
	ActionSkip   ActionKind = "skip"
)

// Action is the resolved outcome for one row. FounderID is set for updates
// and skips.
type Action struct {
	Kind      ActionKind `json:"kind"`
	FounderID string     `json:"founder_id,omitempty"`
}

// Resolve maps a match and an optional decision to an action. Without a
// match the only possible action is create; decisions are ignored. With a
// match the default is to merge into the existing founder.
func Resolve(mc MatchCandidate, d Decision) Action {
	if !mc.Matched() {
		return Action{Kind: ActionCreate}
	}
	switch d {
	case DecisionNew:
		return Action{Kind: ActionCreate}
	case DecisionSkip:
		return Action{Kind: ActionSkip, FounderID: mc.Founder.ID}
	default:
		return Action{Kind: ActionUpdate, FounderID: mc.Founder.ID}
	}
}
