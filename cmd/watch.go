package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jlcastillov/crm-console/internal/bus"
)

var watchGroup string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail the team activity stream",
	Long: `Tail the Redis Streams activity feed: company and follow-up changes
and import batches, as they happen. Requires a reachable Redis; each
watcher joins a consumer group so multiple supervisors can tail
independently.

Examples:
  crm-console watch
  crm-console watch --group sala-lima`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchGroup, "group", "supervisors", "Consumer group name")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	logger := log.New(cmd.OutOrStdout(), "[watch] ", log.LstdFlags)

	activityBus, err := bus.NewRedisBus(config.Redis.URL, logger)
	if err != nil {
		return fmt.Errorf("activity stream requires Redis: %w", err)
	}
	defer activityBus.Close()

	consumer := "watch-" + uuid.New().String()[:8]
	logger.Printf("Tailing activity stream (group=%s consumer=%s)", watchGroup, consumer)

	handler := func(ctx context.Context, msg bus.ActivityMessage) error {
		ts := time.Unix(msg.Timestamp, 0).Format("15:04:05")
		switch msg.Kind {
		case "import.batch":
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-18s %s\n", ts, msg.Kind, msg.Detail)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-18s company=%d followup=%d user=%d %s\n",
				ts, msg.Kind, msg.CompanyID, msg.FollowUpID, msg.UserID, msg.Detail)
		}
		return nil
	}

	err = activityBus.ReadActivityStream(ctx, watchGroup, consumer, handler)
	if err != nil && ctx.Err() != nil {
		return nil // clean shutdown
	}
	return err
}
