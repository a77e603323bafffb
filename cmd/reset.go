package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jlcastillov/crm-console/internal/store"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all application data",
	Long: `Delete every user, company, follow-up, notification and closed sale
from the database. The schema is kept; run seed afterwards to reload
the demo data set.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()

	logger := log.New(cmd.OutOrStdout(), "[reset] ", log.LstdFlags)

	if !resetYes {
		fmt.Fprintf(cmd.OutOrStdout(), "This deletes ALL data in %s. Continue? [y/N]: ", config.Database.Path)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			logger.Println("Aborted")
			return nil
		}
	}

	st, err := store.NewStore(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	if err := st.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset database: %w", err)
	}

	logger.Println("Database cleared")
	return nil
}
