package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "importer",
	Short: "Turn product pages into Shopify import CSV batches",
	Long: `importer fetches product pages listed in a CSV or XLSX file, extracts
title, description, image and size variants, and writes Shopify product
import files in batches of 50 rows.`,
	SilenceUsage: true,
}

// SetVersion is called from main with the build version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func Execute() error {
	return rootCmd.Execute()
}
