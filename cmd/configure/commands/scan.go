package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/queue"
)

// NewScanCmd creates the scan command
func NewScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Trigger a due-date scan",
		Long:  "Enqueue a one-off due-date scan job so workers create notifications for due and overdue tasks immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			defer func() {
				if err := jobQueue.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close RabbitMQ: %v\n", err)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			job := queue.NewJob(queue.JobTypeDueScan, uuid.Nil, nil)
			if err := jobQueue.Enqueue(ctx, job); err != nil {
				return fmt.Errorf("failed to enqueue due scan: %w", err)
			}

			fmt.Printf("Enqueued due scan job %s\n", job.ID)
			return nil
		},
	}
}
