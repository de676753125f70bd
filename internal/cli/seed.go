package cli

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"training-quiz-service/internal/bank"
	"training-quiz-service/internal/config"
	"training-quiz-service/internal/infra/postgres"
	"training-quiz-service/internal/logger"
)

// NewSeedCmd writes the built-in question bank to Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Store the built-in question bank in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.Init(cfg.Log.Format, cfg.Log.Level)
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}
			return seedBank(cmd.Context(), cfg, log)
		},
	}
}

func seedBank(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	questions, err := bank.New(bank.Default())
	if err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	exported := questions.Export()
	if cfg.Quiz.BankID != "" {
		exported.ID = cfg.Quiz.BankID
	}
	if err := postgres.NewBankStore(pool).SaveBank(ctx, exported); err != nil {
		return err
	}
	log.Info("question bank seeded", "bank", exported.ID, "questions", len(exported.Questions), "maxScore", questions.MaxScore())
	return nil
}
