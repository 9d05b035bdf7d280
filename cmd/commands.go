package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"warmbed/internal/deviceapi"
	"warmbed/internal/handlers"
	"warmbed/internal/logger"
	"warmbed/internal/repository"
	"warmbed/internal/repository/db"
	"warmbed/internal/server"
	"warmbed/internal/service"
)

const (
	defaultPort              = "8080"
	defaultDBPath            = "warmbed.db"
	defaultDeviceTimeout     = 10 * time.Second
	defaultReconcileInterval = 1 * time.Minute
	defaultTokenTTL          = 1 * time.Hour
)

var simulatedAt string

func init() {
	reconcileCmd.Flags().StringVar(&simulatedAt, "at", "", "Simulated time (RFC3339); plans actions without executing them")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reconcileCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the periodic reconciliation loop",
	RunE:  runServe,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run a single reconciliation pass and print the summary",
	Example: `  # Reconcile all profiles now
  warmbed reconcile

  # Dry-run as if it were 01:30 UTC
  warmbed reconcile --at 2026-08-27T01:30:00Z`,
	RunE: runReconcile,
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetDefault("port", defaultPort)
	viper.SetDefault("log_level", logger.InfoLevel)
	viper.SetDefault("db.path", defaultDBPath)
	viper.SetDefault("device_api.timeout", defaultDeviceTimeout)
	viper.SetDefault("auth.token_ttl", defaultTokenTTL)
	viper.SetDefault("reconcile.interval", defaultReconcileInterval)
	return viper.ReadInConfig()
}

// buildServices wires the repository layer, device client, and services from
// configuration. The returned DB handle must be closed by the caller.
func buildServices(log *logger.Logger) (*service.Service, *sql.DB, error) {
	conn, err := db.InitDB(viper.GetString("db.path"))
	if err != nil {
		return nil, nil, fmt.Errorf("init sqlite: %w", err)
	}

	repos := repository.NewRepository(conn)
	device := deviceapi.NewClient(
		viper.GetString("device_api.base_url"),
		viper.GetDuration("device_api.timeout"),
	)

	auth := service.AuthConfig{
		SigningKey: viper.GetString("auth.signing_key"),
		TokenTTL:   viper.GetDuration("auth.token_ttl"),
	}
	retry := service.RetryConfig{
		Attempts:     viper.GetInt("reconcile.retry_attempts"),
		InitialDelay: viper.GetDuration("reconcile.retry_initial_delay"),
		Retryable:    deviceapi.IsRetryable,
	}

	return service.NewService(repos, device, auth, retry, log), conn, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	log := logger.Get(viper.GetString("log_level"))

	services, conn, err := buildServices(log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go reconcileLoop(ctx, services, viper.GetDuration("reconcile.interval"), log)

	srv := &server.Server{}
	go func() {
		port := viper.GetString("port")
		log.Infow("starting http server", "port", port)
		if err := srv.Run(port, apiHandler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()

	waitForShutdown(cancel, srv, log)
	return nil
}

// reconcileLoop runs a reconciliation pass at a fixed interval until the
// context is cancelled. Pass failures are logged and the loop keeps going.
func reconcileLoop(ctx context.Context, services *service.Service, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// The service logs the pass summary itself.
			if _, err := services.Reconciliation.Run(ctx, service.RunOptions{}); err != nil {
				log.Errorw("reconcile_pass_failed", "err", err)
			}
		}
	}
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	log := logger.Get(viper.GetString("log_level"))

	services, conn, err := buildServices(log)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	var opts service.RunOptions
	if simulatedAt != "" {
		at, err := time.Parse(time.RFC3339, simulatedAt)
		if err != nil {
			return fmt.Errorf("invalid --at value %q: use RFC3339", simulatedAt)
		}
		opts.SimulatedTime = &at
	}

	summary, err := services.Reconciliation.Run(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("reconciliation: %w", err)
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
	return nil
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
