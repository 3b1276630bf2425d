package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fulfillment/cmd"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "fulfillment",
		Short:        "Parcel order, payment and delivery fulfillment service",
		SilenceUsage: true,
		RunE: func(c *cobra.Command, _ []string) error {
			return runServe(c.Context(), envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file read before the environment")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and scheduled jobs",
		RunE: func(c *cobra.Command, _ []string) error {
			return runServe(c.Context(), envFile)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "dispatch <order-id-or-code>",
		Short: "Create the missing delivery jobs of a paid order",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runDispatch(c.Context(), envFile, args[0])
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads the configuration, connects to the database and wires the
// application.
func bootstrap(ctx context.Context, envFile string) (*cmd.CompositionRoot, *slog.Logger) {
	config, err := cmd.LoadConfig(envFile)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.LogLevel}))
	slog.SetDefault(logger)

	db := openDatabase(ctx, config)

	app, err := cmd.NewCompositionRoot(config, db, logger)
	if err != nil {
		log.Fatalf("Error wiring application: %v", err)
	}
	return app, logger
}

func openDatabase(ctx context.Context, config cmd.Config) *gorm.DB {
	dsn := postgres.DSN(config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName, config.DBSslMode)
	db, err := postgres.Open(dsn)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err = postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
	return db
}

func runServe(ctx context.Context, envFile string) error {
	app, logger := bootstrap(ctx, envFile)
	defer func() { _ = app.Close() }()

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, app, app.Config().HTTPPort, logger)
	return nil
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, port string, logger *slog.Logger) {
	e, err := app.CreateHTTPServer().Echo()
	if err != nil {
		log.Fatalf("Error building HTTP server: %v", err)
	}

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Error(err)
	}
}

func runDispatch(ctx context.Context, envFile, identifier string) error {
	app, logger := bootstrap(ctx, envFile)
	defer func() { _ = app.Close() }()

	orderID, err := app.Resolver().ResolveOrder(ctx, identifier)
	if err != nil {
		return err
	}

	command, err := commands.NewDispatchOrderCommand(orderID)
	if err != nil {
		return err
	}

	result, err := app.DispatchOrderCommandHandler().Handle(ctx, command)
	for _, p := range result.Succeeded {
		fmt.Printf("%s\tdispatched\tjob %s\n", p.ShortCode, p.JobRef)
	}
	for _, f := range result.Failed {
		fmt.Printf("%s\tfailed\t%v\n", f.ShortCode, f.Err)
	}
	if err != nil {
		logger.ErrorContext(ctx, "Manual dispatch failed", "order_id", orderID.String(), "error", err)
		return err
	}
	return nil
}
