package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/database"
	"github.com/taskpilot/taskpilot/internal/middleware"
	"github.com/taskpilot/taskpilot/internal/queue"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check service connectivity",
		Long:  "Verify that the database, Redis, and RabbitMQ are reachable with the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			failed := 0

			// Database
			fmt.Println("Checking PostgreSQL...")
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				fmt.Printf("✗ PostgreSQL: %v\n", err)
				failed++
			} else {
				defer func() {
					if err := db.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
					}
				}()
				if err := db.PingContext(ctx); err != nil {
					fmt.Printf("✗ PostgreSQL: %v\n", err)
					failed++
				} else {
					fmt.Println("✓ PostgreSQL is reachable")
				}
			}

			// Redis
			fmt.Println("\nChecking Redis...")
			redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
			if err != nil {
				fmt.Printf("✗ Redis: %v\n", err)
				failed++
			} else {
				defer func() {
					if err := redisLimiter.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close Redis: %v\n", err)
					}
				}()
				if err := redisLimiter.Ping(ctx); err != nil {
					fmt.Printf("✗ Redis: %v\n", err)
					failed++
				} else {
					fmt.Println("✓ Redis is reachable")
				}
			}

			// RabbitMQ
			fmt.Println("\nChecking RabbitMQ...")
			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				fmt.Printf("✗ RabbitMQ: %v\n", err)
				failed++
			} else {
				defer func() {
					if err := jobQueue.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close RabbitMQ: %v\n", err)
					}
				}()
				if err := jobQueue.HealthCheck(ctx); err != nil {
					fmt.Printf("✗ RabbitMQ: %v\n", err)
					failed++
				} else {
					fmt.Println("✓ RabbitMQ is reachable")
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d service check(s) failed", failed)
			}
			fmt.Println("\n✓ All service checks passed")
			return nil
		},
	}

	return cmd
}
