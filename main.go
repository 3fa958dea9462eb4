package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-orders-api/config"
	"github.com/kendall-kelly/cafe-orders-api/routes"
	"github.com/kendall-kelly/cafe-orders-api/services"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the cafe command. Running it without a subcommand serves the application.
func newRootCmd() *cobra.Command {
	var skipMigrate bool

	rootCmd := &cobra.Command{
		Use:   "cafe",
		Short: "Cafe order management: web pages and REST API",
		Long: `Cafe order management keeps the menu (dishes) and the table orders of a cafe.

It serves server-rendered pages for the staff and a JSON API under /api,
backed by PostgreSQL (or SQLite for local development).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), skipMigrate)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), skipMigrate)
		},
	}
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the database schema on start-up")
	rootCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the database schema on start-up")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := connect(); err != nil {
				return err
			}
			return migrate()
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd)
	return rootCmd
}

// connect loads the configuration and opens the database
func connect() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.DatabaseURL != "" {
		db, err := config.OpenDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		config.SetDB(db)
		return cfg, nil
	}
	if err := config.ConnectDatabase(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, nil
}

func migrate() error {
	if err := config.Migrate(config.GetDB()); err != nil {
		return err
	}
	log.Println("Database migration completed successfully")
	return nil
}

// setupImageStorage enables dish photos when an S3 bucket is configured
func setupImageStorage(ctx context.Context, cfg *config.Config) error {
	if !cfg.ImageStorageEnabled() {
		services.SetDishImageService(nil)
		log.Println("AWS_S3_BUCKET not set, dish photo uploads are disabled")
		return nil
	}

	store, err := services.NewS3Store(ctx, cfg)
	if err != nil {
		return err
	}
	services.InitDishImageService(store, cfg.MaxImageSize())
	log.Printf("Dish photos are stored in bucket %s", cfg.AWSS3Bucket)
	return nil
}

// ginMode keeps gin's debug output for LOG_LEVEL=debug and development, and
// silences it in production or when only warnings and errors are wanted
func ginMode(cfg *config.Config) string {
	switch {
	case cfg.DebugLogging():
		return gin.DebugMode
	case cfg.IsProduction(), !cfg.LogsRequests():
		return gin.ReleaseMode
	case cfg.IsTest():
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func serve(ctx context.Context, skipMigrate bool) error {
	log.Println("Starting cafe orders server...")

	cfg, err := connect()
	if err != nil {
		return err
	}
	if !skipMigrate {
		if err := migrate(); err != nil {
			return err
		}
	}
	if err := setupImageStorage(ctx, cfg); err != nil {
		return err
	}

	gin.SetMode(ginMode(cfg))
	router := routes.New(cfg)

	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	return router.Run(addr)
}
