package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/services"
	"github.com/clinforge/pgxreport-cli/internal/logger"
)

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process samples as scraped content arrives",
	Long: `Watches the scraped-content directory and processes each sample as
soon as its content file lands. Processing is paced so a burst of
scraper output never hammers the shared aggregate workbook.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "directory to watch (default: configured scraped directory)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	dir := watchDir
	if dir == "" {
		dir = pathOr("paths.scraped", "scraped")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	processor := services.NewProcessor(contentStore, bookFactory, runJournal, services.ProcessorConfig{
		Grid:          gridLayout(),
		Aggregate:     domain.DefaultAggregateLayout(),
		AggregatePath: aggregatePath(),
	})

	interval := configStore.GetInt("watch.interval_seconds")
	if interval <= 0 {
		interval = 2
	}
	limiter := rate.NewLimiter(rate.Every(time.Duration(interval)*time.Second), 1)

	cmd.Printf("Watching %s for scraped content (Ctrl-C to stop)...\n", dir)
	ctx := cmd.Context()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			sampleID := sampleIDFromContentFile(event.Name)
			if sampleID == "" {
				continue
			}

			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			logger.Info("new scraped content for %s", sampleID)
			summary, err := processor.ProcessSamples(ctx, []string{sampleID})
			if err != nil {
				return fmt.Errorf("process %s: %w", sampleID, err)
			}
			printSummary(cmd, summary)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// sampleIDFromContentFile extracts the sample ID from a scraped content
// file name, "" if the name does not match the expected pattern.
func sampleIDFromContentFile(path string) string {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".txt") {
		return ""
	}
	idx := strings.Index(name, "_processed_content_")
	if idx < 1 {
		return ""
	}
	return name[:idx]
}
