package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/whispr/internal/api"
	"github.com/jon4hz/whispr/internal/config"
	"github.com/jon4hz/whispr/internal/database"
	"github.com/jon4hz/whispr/internal/notify/email"
	"github.com/jon4hz/whispr/internal/scheduler"
	"github.com/jon4hz/whispr/internal/suggest"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Whispr server",
	Long:  `Start the Whispr server to handle signups, message submissions and the dashboard API.`,
	Example: `whispr serve --config config.yml
whispr serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Error("failed to close database connection", "error", err)
		}
	}()

	mailer := email.New(cfg.Email)
	suggester := suggest.New(cfg.Suggest)

	sched, err := scheduler.New(db, cfg.Cleanup)
	if err != nil {
		log.Fatalf("failed to create scheduler: %v", err)
	}

	server, err := api.New(cfg, db, mailer, suggester)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	// Start the background jobs in a goroutine
	go func() {
		if err := sched.Run(ctx); err != nil {
			log.Error("scheduler error", "error", err)
		}
	}()

	// Start the API server in a goroutine
	go func() {
		log.Info("starting API server", "listen", cfg.Listen)
		if err := server.Run(); err != nil {
			log.Error("API server error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	log.Info("whispr started successfully")
	<-c
	log.Info("shutting down gracefully...")

	// Give time for graceful shutdown
	cancel()
	time.Sleep(2 * time.Second)
}
