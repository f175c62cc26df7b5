package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/services"
)

var populateCmd = &cobra.Command{
	Use:   "populate [sample-id...]",
	Short: "Fill report templates from genotype CSVs",
	Long: `Creates a report workbook per sample by filling the template's
gene table from the sample's genotype CSV. Each saved workbook is
re-opened and verified before the run moves on.

With no arguments, every sample in the master sample list is populated.`,
	RunE: runPopulate,
}

func init() {
	rootCmd.AddCommand(populateCmd)
}

func runPopulate(cmd *cobra.Command, args []string) error {
	populator := services.NewPopulator(contentStore, bookFactory, domain.DefaultTemplateLayout(), templatePath())

	ctx := cmd.Context()
	if len(args) > 0 {
		for _, sampleID := range args {
			if err := populator.Populate(ctx, sampleID); err != nil {
				return fmt.Errorf("populate %s: %w", sampleID, err)
			}
			cmd.Printf("Populated report for %s.\n", sampleID)
		}
		return nil
	}

	summary, err := populator.PopulateAll(ctx)
	if err != nil {
		return fmt.Errorf("populate failed: %w", err)
	}
	printSummary(cmd, summary)
	return nil
}
