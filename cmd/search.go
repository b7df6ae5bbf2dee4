package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/founder-resolve/internal/resolve"
)

var (
	searchName      string
	searchThreshold int
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find stored founders with a similar name",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("store"); err != nil {
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

		m := resolve.NewMatcher(env.Founders, resolve.MatchOptions{NameThreshold: cfg.Match.NameThreshold})
		results, err := m.SearchByName(ctx, searchName, searchThreshold)
		if err != nil {
			return err
		}
		return printSearch(cmd.OutOrStdout(), results, searchJSON)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchName, "name", "", "name to search for (required)")
	searchCmd.Flags().IntVar(&searchThreshold, "threshold", 0, "minimum similarity 1-100 (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print JSON instead of a table")
	_ = searchCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(searchCmd)
}

func printSearch(w io.Writer, results []resolve.ScoredFounder, asJSON bool) error {
	if asJSON {
		if results == nil {
			results = []resolve.ScoredFounder{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	_, err := fmt.Fprintln(w, searchTable(results))
	return err
}
