package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/medicare-api/internal/config"
	"github.com/harentsoaR/medicare-api/internal/handlers"
	"github.com/harentsoaR/medicare-api/internal/seed"
	"github.com/harentsoaR/medicare-api/internal/services"
	"github.com/harentsoaR/medicare-api/internal/store"
	"github.com/harentsoaR/medicare-api/internal/utils"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "medicare",
		Short:         "MediCare hospital management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
	rootCmd.AddCommand(serveCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("medicare exited")
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo accounts and pharmacy catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client, s, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			_, err = seed.Run(ctx, s)
			return err
		},
	}
}

// setup loads and checks the configuration and prepares logging and error reporting.
func setup() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if cfg.IsDevelopment() {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		})
		if err != nil {
			logrus.WithError(err).Warn("sentry disabled")
		}
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*mongo.Client, *store.MongoStore, error) {
	client, err := store.Connect(ctx, cfg.MongoURI, connectTimeout)
	if err != nil {
		return nil, nil, err
	}
	s := store.NewMongoStore(client.Database(cfg.MongoDatabase))

	ictx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := s.EnsureIndexes(ictx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	logrus.WithField("database", cfg.MongoDatabase).Info("connected to mongodb")
	return client, s, nil
}

func runServer(ctx context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer sentry.Flush(2 * time.Second)

	// --- Database Connection ---
	client, s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	// --- Initialize Services ---
	tokens := utils.NewTokenManager(cfg.JWTSecret, utils.DefaultTokenTTL)
	payments := services.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	if !cfg.PaymentsEnabled() {
		logrus.Warn("razorpay credentials not set, payment endpoints will fail")
	}
	notifier := services.NewNotificationService(cfg.TextbeltAPIKey)

	// --- Router ---
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handlers.NewHandler(s, tokens, payments, notifier)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("port", cfg.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logrus.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	logrus.Info("server stopped")
	return nil
}
