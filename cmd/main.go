package main

import (
	"context"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/yakoovad/team-expenses/internal/api"
	"github.com/yakoovad/team-expenses/internal/auth"
	"github.com/yakoovad/team-expenses/internal/config"
	"github.com/yakoovad/team-expenses/internal/db"
	"github.com/yakoovad/team-expenses/internal/repository"
	"github.com/yakoovad/team-expenses/internal/service"
	"github.com/yakoovad/team-expenses/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	logger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err = pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	logger.Info("database connection established")

	transactor := db.NewPgxTransactor(pool)

	userRepo := repository.NewPgxUserRepository(pool)
	teamRepo := repository.NewPgxTeamRepository(pool)
	memberRepo := repository.NewPgxMemberRepository(pool)
	expenseRepo := repository.NewPgxExpenseRepository(pool)
	paymentRepo := repository.NewPgxPaymentRepository(pool)

	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	hasher := auth.NewHasher(cfg.BcryptCost)

	user := service.NewUserService(tokens, hasher).WithUserRepo(userRepo)
	team := service.NewTeamService(transactor).WithTeamRepo(teamRepo).WithMemberRepo(memberRepo)
	expense := service.NewExpenseService(transactor).WithExpenseRepo(expenseRepo).WithPaymentRepo(paymentRepo).WithMemberRepo(memberRepo)

	healthChecker := api.MustNewHealthChecker(health.Config{
		Name:    "postgres",
		Timeout: 5 * time.Second,
		Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	})

	e := echo.New()

	handler := api.NewHandler(logger, tokens).
		WithUserService(user).
		WithTeamService(team).
		WithExpenseService(expense).
		WithHealthChecker(healthChecker)

	handler.RegisterRoutes(e)

	logger.Info("server starting", zap.String("addr", cfg.ListenAddr))
	if err = e.Start(cfg.ListenAddr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
