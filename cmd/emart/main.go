// Command emart is the application CLI: it serves HTTP, seeds the database,
// ensures indexes, runs queue workers and lists routes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/emart/app/jobs"
	"github.com/shashiranjanraj/emart/config"
	"github.com/shashiranjanraj/emart/database/indexes"
	"github.com/shashiranjanraj/emart/database/seeders"
	"github.com/shashiranjanraj/emart/internal/server"
	"github.com/shashiranjanraj/emart/pkg/cache"
	"github.com/shashiranjanraj/emart/pkg/database"
	"github.com/shashiranjanraj/emart/pkg/queue"
)

var rootCmd = &cobra.Command{
	Use:   "emart",
	Short: "EMart e-commerce backend",
	Long:  "EMart is a multi-role e-commerce backend: suppliers stock the catalog, admins curate it, customers order and pay.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(_ *cobra.Command, _ []string) error {
		return server.Start()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with bootstrap data",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDatabase(func(ctx context.Context) error {
			fmt.Println("Seeding database:")
			return seeders.RunAll(ctx, database.DB())
		})
	},
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDatabase(func(ctx context.Context) error {
			if err := indexes.Ensure(ctx, database.DB()); err != nil {
				return err
			}
			fmt.Println("Indexes ensured.")
			return nil
		})
	},
}

var workCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Run queue workers without the HTTP server",
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := database.Connect(ctx); err != nil {
			return err
		}
		defer database.Disconnect(context.Background()) //nolint:errcheck

		if err := cache.Connect(); err != nil {
			fmt.Fprintln(os.Stderr, "warning: redis unavailable, using in-memory queue")
		}

		jobs.Register()
		queue.UseCollection(database.Collection("failed_jobs"))
		if cache.RDB != nil {
			queue.SetDriver(queue.NewRedisDriver(cache.RDB))
		}

		workers := config.GetInt("QUEUE_WORKERS", 4)
		fmt.Printf("Processing jobs with %d workers. Ctrl-C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		return nil
	},
}

var routesCmd = &cobra.Command{
	Use:   "route:list",
	Short: "Print the named routes",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDatabase(func(_ context.Context) error {
			listRoutes()
			return nil
		})
	},
}

func listRoutes() {
	r := server.BuildRouter(server.BuildServices())
	routes := r.Routes()

	names := make([]string, 0, len(routes))
	for name := range routes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%-28s %s\n", name, routes[name])
	}
}

// withDatabase runs fn against a connected database and tears it down after.
func withDatabase(fn func(ctx context.Context) error) error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := database.Connect(ctx); err != nil {
		return err
	}
	defer database.Disconnect(context.Background()) //nolint:errcheck

	return fn(ctx)
}

func main() {
	rootCmd.AddCommand(serveCmd, seedCmd, indexesCmd, workCmd, routesCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
