package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sells-group/founder-resolve/internal/importer"
	"github.com/sells-group/founder-resolve/internal/resolve"
)

// percent renders a 0-100 score cell as "87%".
var percent = text.Transformer(func(v any) string {
	if n, ok := v.(int); ok {
		return strconv.Itoa(n) + "%"
	}
	return fmt.Sprint(v)
})

// count right-aligns a numeric column.
func count(n int) table.ColumnConfig {
	return table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft}
}

// score right-aligns a similarity or confidence column and adds a % sign.
func score(n int) table.ColumnConfig {
	c := count(n)
	c.Transformer = percent
	return c
}

func newTable(header table.Row, columns ...table.ColumnConfig) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	tw.SetColumnConfigs(columns)
	return tw
}

func outcomeTable(out *importer.Outcome) string {
	tw := newTable(
		table.Row{"Batch", "Total", "Created", "Merged", "Skipped", "Links", "No company", "Errors"},
		count(2), count(3), count(4), count(5), count(6), count(7), count(8),
	)
	tw.AppendRow(table.Row{
		out.BatchID, out.Total, out.Created, out.Merged, out.Skipped,
		out.CompanyLinks, out.CompaniesNotFound, len(out.Errors),
	})
	return tw.Render()
}

// candidateTable lists preview rows; an unmatched row has no existing founder.
func candidateTable(cands []resolve.MatchCandidate) string {
	tw := newTable(
		table.Row{"Row", "Name", "Match", "Confidence", "Existing", "Founder ID"},
		count(1), score(4),
	)
	for _, c := range cands {
		existing, id := "", ""
		if c.Founder != nil {
			existing, id = c.Founder.Name, c.Founder.ID
		}
		tw.AppendRow(table.Row{c.Row, c.Name, string(c.MatchType), c.Confidence, existing, id})
	}
	return tw.Render()
}

func searchTable(results []resolve.ScoredFounder) string {
	tw := newTable(table.Row{"Similarity", "Name", "Email", "Founder ID"}, score(1))
	for _, r := range results {
		tw.AppendRow(table.Row{r.Similarity, r.Founder.Name, r.Founder.Email, r.Founder.ID})
	}
	return tw.Render()
}

func rowErrorTable(errs []importer.RowError) string {
	tw := newTable(table.Row{"Row", "Name", "Error"}, count(1))
	for _, e := range errs {
		tw.AppendRow(table.Row{e.Row, e.Name, e.Message})
	}
	return tw.Render()
}
