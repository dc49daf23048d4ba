package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mockup/internal/http/handlers"
	httpapi "mockup/internal/http/httpapi"
	"mockup/internal/infra"
	"mockup/internal/mockup"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	rt, err := mockup.NewFromConfig(context.Background(), cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build mockup service")
	}

	app := handlers.NewApp(rt.Service, cfg.GenerationProvider, rt.Model)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		StaticDir:      rt.StaticDir,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("provider", cfg.GenerationProvider).
			Str("model", rt.Model).
			Str("validation_policy", string(cfg.ValidationPolicy)).
			Str("composition_policy", string(cfg.CompositionPolicy)).
			Str("result_store", cfg.ResultStore).
			Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// in-flight generations may run up to the generation timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GenerationTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
