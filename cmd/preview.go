package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/founder-resolve/internal/importer"
)

var (
	previewFile    string
	previewMapping string
	previewAll     bool
	previewJSON    bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "List rows in a file that match existing founders",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		records, err := loadRecords(previewFile, previewMapping)
		if err != nil {
			return err
		}

		env, err := openStores(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer env.Close()
		if err := env.Migrate(ctx); err != nil {
			return err
		}

		im := importer.New(env.Founders, env.Companies, importerOptions(cfg))
		return printPreview(cmd.OutOrStdout(), im.Preview(ctx, records), previewJSON, previewAll)
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewFile, "file", "", "path to CSV, XLSX or JSON file (required)")
	previewCmd.Flags().StringVar(&previewMapping, "mapping", "", "YAML file overriding column-to-field mapping")
	previewCmd.Flags().BoolVar(&previewAll, "all", false, "include rows with no match")
	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "print JSON instead of a table")
	_ = previewCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(previewCmd)
}

func printPreview(w io.Writer, res *importer.PreviewResult, asJSON, all bool) error {
	candidates := res.Candidates
	if !all {
		candidates = res.Duplicates()
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(importer.PreviewResult{Candidates: candidates, Errors: res.Errors})
	}

	if _, err := fmt.Fprintln(w, candidateTable(candidates)); err != nil {
		return err
	}
	return printRowErrors(w, res.Errors)
}
