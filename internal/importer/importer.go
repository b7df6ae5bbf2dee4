// Package importer resolves and commits batches of incoming founder records.
package importer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/founder-resolve/internal/company"
	"github.com/sells-group/founder-resolve/internal/founder"
	"github.com/sells-group/founder-resolve/internal/resilience"
	"github.com/sells-group/founder-resolve/internal/resolve"
)

// DefaultChunkSize is the number of rows processed per chunk.
const DefaultChunkSize = 50

// Options configures an Importer.
type Options struct {
	ChunkSize     int
	NameThreshold int
	// PrimaryLink marks created company links as the founder's primary company.
	PrimaryLink bool
	DefaultRole string
	Source      string
	// PreviewConcurrency bounds concurrent lookups in Preview.
	PreviewConcurrency int
	Retry              resilience.RetryConfig
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ChunkSize:          DefaultChunkSize,
		NameThreshold:      resolve.DefaultNameThreshold,
		PrimaryLink:        true,
		DefaultRole:        company.DefaultRole,
		Source:             founder.SourceCSVImport,
		PreviewConcurrency: 8,
		Retry:              resilience.DefaultRetryConfig(),
	}
}

// RowError records why a single row could not be committed.
type RowError struct {
	Row     int    `json:"row"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Outcome summarizes one Import call.
type Outcome struct {
	BatchID           string     `json:"batch_id"`
	Total             int        `json:"total"`
	Created           int        `json:"created"`
	Merged            int        `json:"merged"`
	Skipped           int        `json:"skipped"`
	CompanyLinks      int        `json:"company_links"`
	CompaniesNotFound int        `json:"companies_not_found"`
	Errors            []RowError `json:"errors"`
}

// Importer runs batches of records through matching, policy and persistence.
type Importer struct {
	founders  founder.Store
	companies company.Directory
	matcher   *resolve.Matcher
	opts      Options

	// mu serializes Import calls so concurrent batches never interleave
	// their match and commit steps.
	mu sync.Mutex
}

// New creates an Importer. Zero-valued numeric and string options fall
// back to DefaultOptions; companies may be nil to disable company linking.
func New(founders founder.Store, companies company.Directory, opts Options) *Importer {
	def := DefaultOptions()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.DefaultRole == "" {
		opts.DefaultRole = def.DefaultRole
	}
	if opts.Source == "" {
		opts.Source = def.Source
	}
	if opts.PreviewConcurrency <= 0 {
		opts.PreviewConcurrency = def.PreviewConcurrency
	}
	return &Importer{
		founders:  founders,
		companies: companies,
		matcher:   resolve.NewMatcher(founders, resolve.MatchOptions{NameThreshold: opts.NameThreshold}),
		opts:      opts,
	}
}

// Matcher returns the matcher the importer resolves records with.
func (im *Importer) Matcher() *resolve.Matcher {
	return im.matcher
}

// Import processes records in order, in chunks of ChunkSize. decisions maps
// 0-based row indexes to a resolution decision; rows without one default to
// merge. A failing row is recorded in Outcome.Errors and the batch continues.
// Rows are not processed once ctx is cancelled; they are reported as errors.
func (im *Importer) Import(ctx context.Context, records []founder.Record, decisions map[int]resolve.Decision) *Outcome {
	im.mu.Lock()
	defer im.mu.Unlock()

	out := &Outcome{
		BatchID: uuid.New().String(),
		Total:   len(records),
		Errors:  []RowError{},
	}
	log := zap.L().With(zap.String("batch_id", out.BatchID))
	start := time.Now()
	log.Info("import: starting batch",
		zap.Int("rows", len(records)),
		zap.Int("chunk_size", im.opts.ChunkSize),
		zap.Int("name_threshold", im.matcher.Threshold()),
	)

	for lo := 0; lo < len(records); lo += im.opts.ChunkSize {
		hi := min(lo+im.opts.ChunkSize, len(records))
		for row := lo; row < hi; row++ {
			if err := ctx.Err(); err != nil {
				out.addError(row, records[row].Name, eris.Wrap(err, "import: batch cancelled"))
				continue
			}
			im.importRow(ctx, row, records[row], decisions[row], out)
		}
		log.Debug("import: chunk done", zap.Int("from", lo), zap.Int("to", hi))
	}

	log.Info("import: batch complete",
		zap.Int("created", out.Created),
		zap.Int("merged", out.Merged),
		zap.Int("skipped", out.Skipped),
		zap.Int("company_links", out.CompanyLinks),
		zap.Int("errors", len(out.Errors)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out
}

func (im *Importer) importRow(ctx context.Context, row int, rec founder.Record, d resolve.Decision, out *Outcome) {
	if err := rec.Validate(); err != nil {
		out.addError(row, rec.Name, err)
		return
	}

	mc, err := im.matcher.FindMatch(ctx, row, rec)
	if err != nil {
		out.addError(row, rec.Name, err)
		return
	}

	action := resolve.Resolve(mc, d)
	var founderID string
	switch action.Kind {
	case resolve.ActionSkip:
		out.Skipped++
		return

	case resolve.ActionCreate:
		f := founder.NewFounder(rec, im.opts.Source)
		if err := im.retry(ctx, "founder.create", func(ctx context.Context) error {
			return im.founders.Create(ctx, f)
		}); err != nil {
			out.addError(row, rec.Name, eris.Wrap(err, "import: create founder"))
			return
		}
		out.Created++
		founderID = f.ID

	case resolve.ActionUpdate:
		f := *mc.Founder
		f.Merge(rec)
		if err := im.retry(ctx, "founder.update", func(ctx context.Context) error {
			return im.founders.Update(ctx, &f)
		}); err != nil {
			out.addError(row, rec.Name, eris.Wrap(err, "import: update founder"))
			return
		}
		out.Merged++
		founderID = f.ID
	}

	im.linkCompany(ctx, row, rec, founderID, out)
}

// linkCompany attaches the founder to the named company. Failures are
// recorded against the row but the founder write stands.
func (im *Importer) linkCompany(ctx context.Context, row int, rec founder.Record, founderID string, out *Outcome) {
	name := strings.TrimSpace(rec.CompanyName)
	if name == "" || im.companies == nil {
		return
	}

	c, err := im.companies.FindByExactName(ctx, name)
	if err != nil {
		out.addError(row, rec.Name, eris.Wrapf(err, "import: find company %q", name))
		return
	}
	if c == nil {
		zap.L().Info("import: company not found",
			zap.Int("row", row),
			zap.String("company", name),
		)
		out.CompaniesNotFound++
		return
	}

	role := strings.TrimSpace(rec.CompanyRole)
	if role == "" {
		role = im.opts.DefaultRole
	}
	var linked bool
	err = im.retry(ctx, "company.link", func(ctx context.Context) error {
		var lerr error
		linked, lerr = im.companies.LinkFounder(ctx, company.Link{
			FounderID: founderID,
			CompanyID: c.ID,
			Role:      role,
			IsPrimary: im.opts.PrimaryLink,
		})
		return lerr
	})
	if err != nil {
		out.addError(row, rec.Name, eris.Wrapf(err, "import: link company %q", name))
		return
	}
	if linked {
		out.CompanyLinks++
	}
}

func (im *Importer) retry(ctx context.Context, op string, fn func(context.Context) error) error {
	cfg := im.opts.Retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger(op)
	}
	return resilience.Do(ctx, cfg, fn)
}

func (o *Outcome) addError(row int, name string, err error) {
	zap.L().Warn("import: row failed",
		zap.Int("row", row),
		zap.String("name", name),
		zap.Error(err),
	)
	o.Errors = append(o.Errors, RowError{Row: row, Name: name, Message: err.Error()})
}
