package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/minionops/minionbase/internal/auth"
	"github.com/minionops/minionbase/internal/cache"
	"github.com/minionops/minionbase/internal/config"
	"github.com/minionops/minionbase/internal/db"
	"github.com/minionops/minionbase/internal/dbadmin"
	"github.com/minionops/minionbase/internal/filestore"
	"github.com/minionops/minionbase/internal/handler"
	"github.com/minionops/minionbase/internal/job"
	"github.com/minionops/minionbase/internal/middleware"
	"github.com/minionops/minionbase/internal/pillar"
	"github.com/minionops/minionbase/internal/pkg/dbutil"
	"github.com/minionops/minionbase/internal/repo"
	"github.com/minionops/minionbase/internal/returner"
	"github.com/minionops/minionbase/internal/schedule"
	"github.com/minionops/minionbase/internal/state"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "minionbase",
		Short: "relational data backend for configuration-management masters",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the minionbase server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(configPath)
			if err != nil {
				return err
			}
			if err := db.ApplyMigrations(conn, cfg.Database.Driver); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.ApplyMigrations(conn, cfg.Database.Driver); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			logutil.GetLogger(context.Background()).Info("migrations applied")
			return nil
		},
	}

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "manage API accounts",
	}
	accountAddCmd := &cobra.Command{
		Use:   "add <username> <password>",
		Short: "create an API account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.ApplyMigrations(conn, cfg.Database.Driver); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			accounts := repo.NewAccountRepo(conn)
			svc := auth.NewService(accounts, []byte(cfg.JWTSecret), time.Hour)
			if err := svc.CreateAccount(context.Background(), args[0], args[1]); err != nil {
				return fmt.Errorf("create account: %w", err)
			}
			logutil.GetLogger(context.Background()).Info("account created", zap.String("username", args[0]))
			return nil
		},
	}
	accountCmd.AddCommand(accountAddCmd)

	rootCmd.AddCommand(runCmd, migrateCmd, accountCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup(configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	dbutil.SetDialect(cfg.Database.Driver)
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	return cfg, conn, nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("driver", cfg.Database.Driver),
		zap.String("dbname", cfg.Database.DBName),
	)

	cacheRepo := repo.NewCacheRepo(conn, cfg.Database.Driver, cfg.Cache.TableName)
	returnRepo := repo.NewReturnRepo(conn, cfg.Database.Driver)
	eventRepo := repo.NewEventRepo(conn, cfg.Database.Driver)
	accountRepo := repo.NewAccountRepo(conn)

	cacheStore := cache.NewDBCache(cacheRepo)
	cacheStore = cache.WrapLRU(cacheStore, cfg.Cache.LRUSize, time.Duration(cfg.Cache.LRUTTLSeconds)*time.Second)

	var archive filestore.Store
	if cfg.Returner.Archive != nil {
		store, err := filestore.New(*cfg.Returner.Archive)
		if err != nil {
			return fmt.Errorf("init archive store: %w", err)
		}
		archive = store
	}
	returnerService := returner.NewService(returnRepo, eventRepo, archive)
	pillarService := pillar.New(conn, cfg.Pillar)
	authService := auth.NewService(accountRepo, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Cache:     handler.NewCacheHandler(cacheStore),
		Pillar:    handler.NewPillarHandler(pillarService),
		Returner:  handler.NewReturnerHandler(returnerService),
		JWTSecret: []byte(cfg.JWTSecret),
	}
	if cfg.Database.Driver == dbutil.DriverMySQL {
		admin := dbadmin.New(conn)
		deps.Admin = handler.NewAdminHandler(admin)
		deps.State = handler.NewStateHandler(
			state.NewDatabase(admin),
			state.NewUser(admin),
			state.NewGrants(admin),
		)
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewScheduler()
	pruneJob := job.NewReturnPruneJob(returnerService, cfg.Returner.KeepHours, cfg.Returner.EventKeepHours)
	if err := scheduler.AddJob(pruneJob, cfg.Returner.PruneCron); err != nil {
		return fmt.Errorf("schedule prune job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening",
		zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
