package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/reverie/internal/plugins/mood"
)

func newAnalyzeCmd() *cobra.Command {
	var file string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the mood summary of a journalData.json export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			summary := mood.Aggregate(mood.ParseStoredEntries(raw))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			return printSummary(cmd.OutOrStdout(), mood.Default.Taxonomy(), summary)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to journalData.json")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printSummary(w io.Writer, t *mood.Taxonomy, s mood.Summary) error {
	if _, err := fmt.Fprintf(w, "entries: %d\nmood words: %d\n", s.Entries, s.Total); err != nil {
		return err
	}
	for _, name := range t.Names() {
		fmt.Fprintf(w, "  %-8s %4d  %5.1f%%\n", name, s.Totals[name], s.Percentages[name])
	}
	if s.BestDay.Found {
		fmt.Fprintf(w, "best %s day: %s (%d)\n", s.BestDay.Mood, s.BestDay.Date, s.BestDay.Score)
	} else {
		fmt.Fprintf(w, "best %s day: none\n", s.BestDay.Mood)
	}
	return nil
}
