package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the run journal",
	Long:  `Lists recorded sample outcomes, newest first.`,
	RunE:  runJournalList,
}

func init() {
	rootCmd.AddCommand(journalCmd)
}

func runJournalList(cmd *cobra.Command, _ []string) error {
	entries, err := runJournal.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if len(entries) == 0 {
		cmd.Println("Journal is empty.")
		return nil
	}

	for _, entry := range entries {
		line := fmt.Sprintf("%s  %-10s %s (run %s)",
			entry.RecordedAt.Format("2006-01-02 15:04:05"),
			entry.Status, entry.SampleID, entry.RunID)
		if entry.Detail != "" {
			line += ": " + entry.Detail
		}
		cmd.Println(line)
	}
	return nil
}
