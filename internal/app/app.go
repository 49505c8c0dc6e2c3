package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"handwerk-crm/go_backend/internal/app/config"
	apphttp "handwerk-crm/go_backend/internal/app/http"
	"handwerk-crm/go_backend/internal/app/http/handlers"
	"handwerk-crm/go_backend/internal/chat"
	"handwerk-crm/go_backend/internal/domain/document"
	pdfgen "handwerk-crm/go_backend/internal/domain/document/gofpdf"
	"handwerk-crm/go_backend/internal/infra/db/postgres"
	"handwerk-crm/go_backend/internal/pkg/logx"
	"handwerk-crm/go_backend/internal/tool"
)

func Run() {
	cfg := config.MustLoad()
	logx.Init(cfg.LogDebug, cfg.LogPretty)

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("database migration")
	}

	store := postgres.NewStore(db)
	registry := tool.NewRegistry(store)
	chatSvc := chat.New(cfg, nil, registry)
	pdf := pdfgen.New(document.Company{Name: cfg.CompanyName, Address: cfg.CompanyAddress})

	h := handlers.New(store, registry, chatSvc, pdf, cfg)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           apphttp.NewRouter(cfg, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
