package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jlcastillov/crm-console/internal/bus"
	"github.com/jlcastillov/crm-console/internal/ingest"
	"github.com/jlcastillov/crm-console/internal/store"
)

var (
	importWatch  bool
	importUserID int64
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import company records from JSON/JSONL files",
	Long: `Import company records from *.json and *.jsonl files in the import
directory. Each record uses the company JSON shape (commercial_name,
legal_name, ruc, contact fields...).

One-shot by default; --watch keeps watching the directory and imports
files as they appear.

Examples:
  # Import everything in ./data/incoming once
  crm-console import

  # Keep watching a custom directory
  crm-console import --import-dir /srv/crm/drops --watch`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importWatch, "watch", false, "Keep watching the directory for new files")
	importCmd.Flags().Int64Var(&importUserID, "user-id", 0, "User id recorded as creator of imported companies")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	logger := log.New(cmd.OutOrStdout(), "[import] ", log.LstdFlags)

	if err := os.MkdirAll(config.Import.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create import directory %s: %w", config.Import.Dir, err)
	}

	st, err := store.NewStore(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	activityBus := bus.NewBus(config.Redis.URL, logger)
	defer activityBus.Close()

	importer := ingest.NewFolderImporter(st, activityBus, ingest.FolderOptions{
		Dir:    config.Import.Dir,
		Watch:  importWatch,
		UserID: importUserID,
		Logger: logger,
	})

	return importer.Run(ctx)
}
