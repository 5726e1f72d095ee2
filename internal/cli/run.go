package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maltedev/shopify-product-importer/internal/config"
	"github.com/maltedev/shopify-product-importer/internal/input"
	"github.com/maltedev/shopify-product-importer/internal/logger"
	"github.com/maltedev/shopify-product-importer/internal/shopify"
	"github.com/maltedev/shopify-product-importer/internal/sink"
)

var (
	runURLsFile     string
	runTemplateFile string
	runOutDir       string
	runBatchSize    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Import the product URLs of a file and write Shopify CSV batches",
	Long: `Reads product URLs from the first column of a CSV or XLSX file (the
header row is skipped), imports every page in order and writes the resulting
rows as Shopify import files. Failed URLs are listed with their reason.`,
	RunE: runImport,
}

func init() {
	runCmd.Flags().StringVar(&runURLsFile, "urls", "", "CSV or XLSX file with product URLs in the first column")
	runCmd.Flags().StringVar(&runTemplateFile, "template", "", "Shopify template file used to check the column set")
	runCmd.Flags().StringVar(&runOutDir, "out", "", "write batches to this directory instead of the configured sink")
	runCmd.Flags().IntVar(&runBatchSize, "batch-size", 0, "rows per batch file (default from BATCH_SIZE)")
	_ = runCmd.MarkFlagRequired("urls")

	rootCmd.AddCommand(runCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	batchSize := cfg.Scraper.BatchSize
	if runBatchSize != 0 {
		batchSize = runBatchSize
	}
	if batchSize < 1 {
		return shopify.ErrInvalidBatchSize
	}

	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	urls, err := readFileWith(runURLsFile, input.ReadURLs)
	if err != nil {
		return fmt.Errorf("failed to read urls: %w", err)
	}

	if runTemplateFile != "" {
		columns, err := readFileWith(runTemplateFile, input.ReadColumns)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		report := shopify.CheckTemplate(columns)
		for _, c := range report.Missing {
			cmd.Printf("Warning: template has no column %q\n", c)
		}
		for _, c := range report.Extra {
			cmd.Printf("Note: template column %q is left empty\n", c)
		}
	}

	var out sink.Sink
	if runOutDir != "" {
		out = sink.NewDirSink(runOutDir)
	} else if out, err = newSink(ctx, cfg); err != nil {
		return err
	}

	imp, closeImporter, err := newImporter(cfg, log)
	if err != nil {
		return err
	}
	defer closeImporter()

	cmd.Printf("Importing %d URLs...\n", len(urls))
	result, runErr := imp.Run(ctx, urls, func(done, total int) {
		cmd.Printf("Processed %d/%d\n", done, total)
	})

	for _, f := range result.Failures {
		cmd.Printf("FAILED %s: %s\n", f.URL, f.Message)
	}

	if runErr != nil {
		cmd.Printf("Import aborted after %d rows: %v\n", len(result.Rows), runErr)
	}

	if len(result.Rows) == 0 {
		return shopify.ErrNoRows
	}

	batches, batchErr := shopify.WriteBatches(result.Rows, batchSize)
	for _, b := range batches {
		location, err := out.Put(ctx, "", b)
		if err != nil {
			cmd.Printf("FAILED %s: %v\n", shopify.DisplayName(b), err)
			continue
		}
		if location == "" {
			location = b.Filename
		}
		cmd.Printf("%s -> %s\n", shopify.DisplayName(b), location)
	}

	cmd.Printf("%d products, %d rows, %d failed URLs, %d batches\n",
		result.Products, len(result.Rows), len(result.Failures), len(batches))

	if batchErr != nil {
		return batchErr
	}
	return runErr
}

func readFileWith(path string, read func(name string, r io.Reader) ([]string, error)) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return read(path, f)
}
