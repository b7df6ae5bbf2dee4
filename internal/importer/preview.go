package importer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/founder-resolve/internal/founder"
	"github.com/sells-group/founder-resolve/internal/resolve"
)

// PreviewResult lists the match found for every valid row.
type PreviewResult struct {
	Candidates []resolve.MatchCandidate `json:"candidates"`
	Errors     []RowError               `json:"errors"`
}

type previewSlot struct {
	candidate resolve.MatchCandidate
	err       error
}

// Duplicates returns the candidates that matched an existing founder.
func (p *PreviewResult) Duplicates() []resolve.MatchCandidate {
	var out []resolve.MatchCandidate
	for _, c := range p.Candidates {
		if c.Matched() {
			out = append(out, c)
		}
	}
	return out
}

// Preview runs validation and matching for every record without writing.
// Lookups run concurrently; results are returned in row order. Rows are
// matched against the store as it is now, so two rows in the same batch
// never match each other.
func (im *Importer) Preview(ctx context.Context, records []founder.Record) *PreviewResult {
	// Each row owns one slot, so workers never share a write.
	slots := make([]previewSlot, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.opts.PreviewConcurrency)
	for row, rec := range records {
		if err := rec.Validate(); err != nil {
			slots[row].err = err
			continue
		}
		g.Go(func() error {
			slots[row].candidate, slots[row].err = im.matcher.FindMatch(gctx, row, rec)
			return nil
		})
	}
	_ = g.Wait()

	res := &PreviewResult{
		Candidates: []resolve.MatchCandidate{},
		Errors:     []RowError{},
	}
	for row, slot := range slots {
		if slot.err != nil {
			res.Errors = append(res.Errors, RowError{Row: row, Name: records[row].Name, Message: slot.err.Error()})
			continue
		}
		res.Candidates = append(res.Candidates, slot.candidate)
	}
	return res
}
