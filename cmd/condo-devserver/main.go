package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Portunus/condo/internal/config"
	"github.com/BrandonDHaskell/Portunus/condo/internal/db"
	"github.com/BrandonDHaskell/Portunus/condo/internal/httpapi"
	"github.com/BrandonDHaskell/Portunus/condo/internal/logger"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/service"
	sqlitestore "github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store/sqlite"
)

func main() {
	envFile := flag.String("env-file", ".env", "optional dotenv file")
	flag.Parse()

	bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if err := config.LoadDotEnv(*envFile); err != nil {
		bootLog.Fatal().Err(err).Str("file", *envFile).Msg("load env file")
	}

	cfg := config.FromEnv()
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Output: "stdout"})
	if err != nil {
		bootLog.Fatal().Err(err).Msg("logger")
	}
	log = logger.WithComponent(log, "condo-devserver")

	loc, err := config.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("timezone")
	}

	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.Env == "prod" {
			log.Fatal().Msg("CONDO_JWT_SECRET is required when CONDO_ENV=prod")
		}
		secret = "dev-insecure-secret"
		log.Warn().Msg("CONDO_JWT_SECRET unset; using the dev secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer conn.Close()

	if cfg.SeedDev && cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn, db.SeedDevOptions{KnownModules: cfg.KnownModules}); err != nil {
			log.Fatal().Err(err).Msg("seed dev data")
		}
	}

	versions, err := db.Applied(ctx, conn)
	if err != nil {
		log.Fatal().Err(err).Msg("read schema version")
	}
	log.Info().Ints("schema_versions", versions).Str("path", cfg.DBPath).Msg("database ready")

	writer := db.NewWorker(conn,
		db.WithQueueSize(cfg.DBWriteQueue),
		db.WithLogger(logger.WithComponent(log, "db"), time.Duration(cfg.DBSlowWriteMs)*time.Millisecond),
	)
	defer func() {
		writer.Close()
		st := writer.Stats()
		log.Info().Int64("committed", st.Committed).Int64("rolled_back", st.RolledBack).Msg("db writer stopped")
	}()

	// Stores
	moduleStore := sqlitestore.NewDoorModuleStore(conn, writer)
	eventStore := sqlitestore.NewAccessEventStore(conn, writer)
	alertStore := sqlitestore.NewAlertStore(conn, writer)
	visitorStore := sqlitestore.NewVisitorStore(conn, writer)
	userStore := sqlitestore.NewUserStore(conn)

	// Services
	registry := service.NewModuleRegistry(moduleStore, logger.WithComponent(log, "modules"))

	allowed := make(map[int64]struct{}, len(cfg.AllowedResidentIDs))
	for _, id := range cfg.AllowedResidentIDs {
		allowed[id] = struct{}{}
	}
	accessSvc := service.NewAccessService(registry, service.AccessPolicy{
		AllowAll:           cfg.AllowAll,
		AllowedResidentIDs: allowed,
		MinConfidence:      cfg.MinConfidence,
	}, eventStore, alertStore, logger.WithComponent(log, "access"))

	authSvc := service.NewAuthService(userStore, service.AuthConfig{
		Secret: []byte(secret),
		TTL:    time.Duration(cfg.TokenTTLHours) * time.Hour,
	}, logger.WithComponent(log, "auth"))

	residentSvc := service.NewResidentService(eventStore, alertStore, visitorStore, service.ResidentConfig{
		FaceDir:  cfg.FaceDir,
		Location: loc,
	}, logger.WithComponent(log, "resident"))

	staffSvc := service.NewStaffService(sqlitestore.NewStaffStore(conn, writer), loc)

	securitySvc := service.NewSecurityService(eventStore, alertStore, visitorStore, userStore, loc,
		logger.WithComponent(log, "security"))

	pruner := service.NewEventPruner(eventStore, service.PrunerConfig{
		RetentionDays: cfg.EventRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger.WithComponent(log, "pruner"))
	pruner.Start(ctx)
	defer pruner.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:          logger.WithComponent(log, "http"),
		Addr:            cfg.HTTPAddr,
		AccessService:   accessSvc,
		AuthService:     authSvc,
		ResidentService: residentSvc,
		StaffService:    staffSvc,
		SecurityService: securitySvc,
	})

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.Env).Msg("listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
