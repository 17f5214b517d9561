package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prefeituradigital/chamados/internal/auth"
	"github.com/prefeituradigital/chamados/internal/chamado"
	"github.com/prefeituradigital/chamados/internal/cliente"
	"github.com/prefeituradigital/chamados/internal/config"
	"github.com/prefeituradigital/chamados/internal/db"
	internalhttp "github.com/prefeituradigital/chamados/internal/http"
	"github.com/prefeituradigital/chamados/internal/service"
	"github.com/prefeituradigital/chamados/internal/setor"
	"github.com/prefeituradigital/chamados/internal/storage"
	"github.com/prefeituradigital/chamados/internal/usuario"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(usuario.NewRepository(pool), redisClient, jwtManager, cfg.JWTRefreshTTL)
	setorService := setor.NewService(setor.NewRepository(pool))
	clienteService := cliente.NewService(cliente.NewRepository(pool))
	chamadoService := chamado.NewService(chamado.NewRepository(pool))

	var avatars storage.AvatarStore = storage.Disabled{}
	if cfg.Avatar.Enabled() {
		store, err := storage.NewS3AvatarStore(storage.S3Config{
			Endpoint:     cfg.Avatar.Endpoint,
			Region:       cfg.Avatar.Region,
			Bucket:       cfg.Avatar.Bucket,
			AccessKey:    cfg.Avatar.AccessKey,
			SecretKey:    cfg.Avatar.SecretKey,
			PublicDomain: cfg.Avatar.PublicDomain,
		})
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		avatars = store
	}

	handler := internalhttp.NewHandler(authService, setorService, clienteService, chamadoService, avatars)
	router := internalhttp.NewRouter(cfg, handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
