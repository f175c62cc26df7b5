// Package cli implements the pgxreport command-line interface.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	configfile "github.com/clinforge/pgxreport-cli/internal/adapters/driven/config/file"
	contentfile "github.com/clinforge/pgxreport-cli/internal/adapters/driven/content/file"
	"github.com/clinforge/pgxreport-cli/internal/adapters/driven/storage/sqlite"
	"github.com/clinforge/pgxreport-cli/internal/adapters/driven/workbook/xlsx"
	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
	"github.com/clinforge/pgxreport-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Shared services, wired by initServices before any command runs.
var (
	configStore  driven.ConfigStore
	contentStore driven.ContentStore
	runJournal   driven.RunJournal
	bookFactory  driven.WorkbookFactory
)

var rootCmd = &cobra.Command{
	Use:   "pgxreport",
	Short: "Pharmacogenomic report pipeline",
	Long: `pgxreport turns scraped pharmacogenomic guidance into structured
report workbooks: it populates report templates from genotype CSVs,
extracts clinical-action recommendations from scraped text, relocates
recommended drugs within each report grid, and appends per-sample
columns to a cross-sample summary table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if runJournal != nil {
			if err := runJournal.Close(); err != nil {
				logger.Warn("closing journal: %v", err)
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.pgxreport)")
}

// initServices wires the driven adapters the commands share. Paths come
// from the config file; anything unset falls back to a directory next to
// the data root.
func initServices() error {
	var err error
	configStore, err = configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dataRoot := configStore.GetString("paths.data")
	if dataRoot == "" {
		dataRoot = "."
	}

	contentStore, err = contentfile.NewStore(contentfile.Config{
		ScrapedDir:     pathOr("paths.scraped", filepath.Join(dataRoot, "scraped")),
		ReportsDir:     pathOr("paths.reports", filepath.Join(dataRoot, "reports")),
		OutputDir:      pathOr("paths.output", filepath.Join(dataRoot, "output")),
		GenotypeDir:    pathOr("paths.genotypes", filepath.Join(dataRoot, "genotypes")),
		SampleListPath: pathOr("paths.sample_list", filepath.Join(dataRoot, "samples.csv")),
	})
	if err != nil {
		return fmt.Errorf("open content store: %w", err)
	}

	runJournal, err = sqlite.NewJournal(configStore.GetString("paths.journal"))
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	bookFactory = xlsx.NewFactory()
	return nil
}

// pathOr reads a path key from the config, falling back to a default.
func pathOr(key, fallback string) string {
	if v := configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

// aggregatePath resolves the aggregate workbook location.
func aggregatePath() string {
	return pathOr("paths.aggregate", "aggregate.xlsx")
}

// gridLayout returns the report grid layout, with config overrides for a
// report template whose window or columns differ from the default.
func gridLayout() domain.GridLayout {
	layout := domain.DefaultGridLayout()
	if v := configStore.GetInt("grid.first_row"); v > 0 {
		layout.FirstRow = v
	}
	if v := configStore.GetInt("grid.last_row"); v > 0 {
		layout.LastRow = v
	}
	if v := configStore.GetString("grid.source_column"); v != "" {
		layout.SourceColumn = v
	}
	if v := configStore.GetString("grid.dosing_column"); v != "" {
		layout.DosingColumn = v
	}
	if v := configStore.GetString("grid.alternate_column"); v != "" {
		layout.AlternateColumn = v
	}
	return layout
}

// templatePath resolves the report template location.
func templatePath() string {
	return pathOr("paths.template", "template.xlsx")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
