package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driving"
	"github.com/clinforge/pgxreport-cli/internal/core/services"
)

var processForce bool

var processCmd = &cobra.Command{
	Use:   "process [sample-id...]",
	Short: "Extract recommendations and update report workbooks",
	Long: `Processes samples end to end: reads the newest scraped content,
extracts clinical-action recommendations, relocates recommended drugs
within a staged copy of the sample's report, and appends the sample's
column to the aggregate summary table.

With no arguments, every sample that has both a report workbook and
scraped content is processed. Samples already recorded in the journal
are skipped unless --force is given.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVar(&processForce, "force", false, "reprocess samples already recorded in the journal")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	processor := services.NewProcessor(contentStore, bookFactory, runJournal, services.ProcessorConfig{
		Grid:          gridLayout(),
		Aggregate:     domain.DefaultAggregateLayout(),
		AggregatePath: aggregatePath(),
		Force:         processForce,
	})

	ctx := cmd.Context()
	var summary *driving.RunSummary
	var err error
	if len(args) > 0 {
		summary, err = processor.ProcessSamples(ctx, args)
	} else {
		summary, err = processor.ProcessAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("process failed: %w", err)
	}

	printSummary(cmd, summary)
	return nil
}

// printSummary writes the run outcome to the command's output.
func printSummary(cmd *cobra.Command, summary *driving.RunSummary) {
	cmd.Printf("Run %s: %d samples, %d processed, %d failed\n",
		summary.RunID, summary.Total, summary.Processed, summary.Failed)
	for _, failure := range summary.Failures {
		cmd.Printf("  %s: %s\n", failure.SampleID, failure.Reason)
	}
}
