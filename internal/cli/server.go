package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kidvoice-service/internal/app"
	"kidvoice-service/internal/config"
	fsloader "kidvoice-service/internal/infra/fs"
	"kidvoice-service/internal/infra/memory"
	pgloader "kidvoice-service/internal/infra/postgres"
	redisinfra "kidvoice-service/internal/infra/redis"
	transport "kidvoice-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	contentDir := cfg.Content.Dir
	if contentDir == "" {
		contentDir = "content"
	}
	var loader memory.PoolLoader = fsloader.NewPoolLoader(contentDir)

	var pgPool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pgPool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		loader = pgloader.NewPoolLoader(pgPool)
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var pools app.PoolRepository
	if redisClient != nil {
		pools = redisinfra.NewPoolRepository(redisClient, loader, contentTTL)
	} else {
		pools = memory.NewPoolRepository(loader, contentTTL)
	}

	var profiles app.ProfileStore
	if redisClient != nil {
		profiles = redisinfra.NewProfileStore(redisClient)
	} else {
		profiles = memory.NewProfileStore()
	}

	sessions := memory.NewSessionStore()
	service := app.NewSessionService(sessions, pools, profiles, app.Config{
		QuizSize:      cfg.Quiz.Size,
		WheelSlices:   cfg.Wheel.Slices,
		SliceFiltered: cfg.Wheel.SliceFiltered,
		ChallengePool: cfg.Wheel.Pool,
	})
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting kidvoice service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if pgPool != nil {
		defer pgPool.Close()
	}
	return server.Shutdown(shutdownCtx)
}
