package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/founder-resolve/internal/founder"
	"github.com/sells-group/founder-resolve/internal/importer"
	"github.com/sells-group/founder-resolve/internal/resolve"
	"github.com/sells-group/founder-resolve/internal/rowsource"
)

var (
	importFile      string
	importDecisions string
	importMapping   string
	importChunkSize int
	importThreshold int
	importPrimary   bool
	importDryRun    bool
	importJSON      bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import founders from a CSV, XLSX or JSON file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		records, err := loadRecords(importFile, importMapping)
		if err != nil {
			return err
		}
		decisions, err := loadDecisions(importDecisions, len(records))
		if err != nil {
			return err
		}

		env, err := openStores(ctx, cfg, !importDryRun)
		if err != nil {
			return err
		}
		defer env.Close()
		if err := env.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate stores")
		}

		opts := importerOptions(cfg)
		if importChunkSize > 0 {
			opts.ChunkSize = importChunkSize
		}
		if importThreshold > 0 {
			opts.NameThreshold = importThreshold
		}
		if cmd.Flags().Changed("primary") {
			opts.PrimaryLink = importPrimary
		}
		im := importer.New(env.Founders, env.Companies, opts)

		w := cmd.OutOrStdout()
		if importDryRun {
			return printPreview(w, im.Preview(ctx, records), importJSON, false)
		}

		out := im.Import(ctx, records, decisions)
		zap.L().Info("import complete",
			zap.String("file", importFile),
			zap.String("batch_id", out.BatchID),
			zap.Int("created", out.Created),
			zap.Int("merged", out.Merged),
			zap.Int("errors", len(out.Errors)),
		)
		return printOutcome(w, out, importJSON)
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to CSV, XLSX or JSON file (required)")
	importCmd.Flags().StringVar(&importDecisions, "decisions", "", "YAML file mapping 0-based row index to merge|new|skip")
	importCmd.Flags().StringVar(&importMapping, "mapping", "", "YAML file overriding column-to-field mapping")
	importCmd.Flags().IntVar(&importChunkSize, "chunk-size", 0, "rows per chunk (default from config)")
	importCmd.Flags().IntVar(&importThreshold, "threshold", 0, "fuzzy name threshold 1-100 (default from config)")
	importCmd.Flags().BoolVar(&importPrimary, "primary", true, "mark company links as primary")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "show matches without writing")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "print JSON instead of a table")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func loadRecords(path, mappingPath string) ([]founder.Record, error) {
	var m *rowsource.Mapping
	if mappingPath != "" {
		var err error
		if m, err = rowsource.LoadMapping(mappingPath); err != nil {
			return nil, err
		}
	}
	records, err := rowsource.Load(path, m)
	if err != nil {
		return nil, eris.Wrapf(err, "load %s", path)
	}
	zap.L().Info("records loaded", zap.String("file", path), zap.Int("rows", len(records)))
	return records, nil
}

// loadDecisions reads a YAML map of row index to decision. Indexes outside
// the batch are dropped with a warning.
func loadDecisions(path string, rows int) (map[int]resolve.Decision, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read decisions %s", path)
	}
	var decisions map[int]resolve.Decision
	if err := yaml.Unmarshal(data, &decisions); err != nil {
		return nil, eris.Wrapf(err, "parse decisions %s", path)
	}
	for row := range decisions {
		if row < 0 || row >= rows {
			zap.L().Warn("decision for row outside batch ignored", zap.Int("row", row), zap.Int("rows", rows))
			delete(decisions, row)
		}
	}
	return decisions, nil
}

func printOutcome(w io.Writer, out *importer.Outcome, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if _, err := fmt.Fprintln(w, outcomeTable(out)); err != nil {
		return err
	}
	return printRowErrors(w, out.Errors)
}

func printRowErrors(w io.Writer, errs []importer.RowError) error {
	if len(errs) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, rowErrorTable(errs))
	return err
}
