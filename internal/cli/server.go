package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"training-quiz-service/internal/app"
	"training-quiz-service/internal/bank"
	"training-quiz-service/internal/config"
	"training-quiz-service/internal/domain"
	"training-quiz-service/internal/gateway"
	"training-quiz-service/internal/infra/memory"
	"training-quiz-service/internal/infra/postgres"
	redisinfra "training-quiz-service/internal/infra/redis"
	"training-quiz-service/internal/infra/sqlite"
	"training-quiz-service/internal/logger"
	transport "training-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	log := logger.Init(cfg.Log.Format, cfg.Log.Level)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	questions, err := loadBank(ctx, cfg, pool, redisClient, log)
	if err != nil {
		return err
	}

	local, closeLocal, err := snapshotStore(ctx, cfg, redisClient, log)
	if err != nil {
		return err
	}
	defer closeLocal()

	var remote gateway.RemoteSyncer
	if pool != nil {
		remote = postgres.NewSnapshotMirror(pool)
	}
	gw := gateway.New(local, remote, log, gateway.WithTimeout(config.TTLDuration(cfg.Sync.Timeout, 5*time.Second)))

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}
	service := app.NewQuizService(sessions, questions, gw,
		app.WithStorageKey(cfg.Quiz.StorageKey),
		app.WithTeams(cfg.Quiz.Teams...),
		app.WithLogger(log),
	)
	router := transport.NewRouter(service, transport.NewWSHandler(service, log))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	gwCtx, stopGateway := context.WithCancel(context.Background())
	gwDone := make(chan struct{})
	go func() {
		defer close(gwDone)
		gw.Run(gwCtx)
	}()

	go func() {
		log.Info("starting quiz service", "port", finalPort, "bank", questions.ID(), "questions", questions.Total())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)

	// drain pending snapshot writes after the last request finished
	stopGateway()
	<-gwDone
	return err
}

// loadBank resolves the configured bank from Postgres (cached in Redis when
// available), falling back to the built-in bank.
func loadBank(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, client *redis.Client, log *slog.Logger) (*bank.Bank, error) {
	builtin := bank.NewStaticLoader(bank.Default())
	if pool == nil {
		return bank.Load(ctx, builtin, bank.DefaultID)
	}

	var loader bank.Loader = postgres.NewBankStore(pool)
	if client != nil {
		loader = redisinfra.NewBankCache(client, loader, config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute))
	}
	questions, err := bank.Load(ctx, loader, cfg.Quiz.BankID)
	if errors.Is(err, domain.ErrBankNotFound) {
		log.Warn("bank not seeded, using built-in bank", "bank", cfg.Quiz.BankID)
		return bank.Load(ctx, builtin, bank.DefaultID)
	}
	return questions, err
}

// snapshotStore picks where snapshots live: Redis, then SQLite, then memory.
func snapshotStore(ctx context.Context, cfg config.Config, client *redis.Client, log *slog.Logger) (gateway.LocalStore, func(), error) {
	switch {
	case client != nil:
		return redisinfra.NewSnapshotStore(client, 0), func() {}, nil
	case cfg.SQLite.Path != "":
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn("close sqlite", "error", err)
			}
		}, nil
	default:
		log.Warn("no snapshot store configured, progress is kept in memory only")
		return memory.NewSnapshotStore(), func() {}, nil
	}
}
