package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/TinyGandalf/FullstackOpen-part4/internal/auth"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/config"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/db"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/handlers"
	appmiddleware "github.com/TinyGandalf/FullstackOpen-part4/internal/middleware"
)

func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx := context.Background()
	store, err := db.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect failed")
	}
	defer store.Close()

	// Create tables if not exist
	conn, err := store.Pool().Acquire(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to acquire db connection")
	}
	defer conn.Release()

	usersTableSQL := `CREATE TABLE IF NOT EXISTS users (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    username TEXT NOT NULL UNIQUE,
	    name TEXT NOT NULL DEFAULT '',
	    password_hash TEXT NOT NULL,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	_, err = conn.Exec(ctx, usersTableSQL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create users table")
	}

	blogsTableSQL := `CREATE TABLE IF NOT EXISTS blogs (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    title TEXT NOT NULL,
	    author TEXT NOT NULL DEFAULT '',
	    url TEXT NOT NULL,
	    likes INT NOT NULL DEFAULT 0,
	    user_id UUID REFERENCES users(id),
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	_, err = conn.Exec(ctx, blogsTableSQL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create blogs table")
	}

	tokens := auth.NewTokenService(cfg.TokenSecret)
	blogsHandler := handlers.NewBlogsHandler(store, store, logger)
	usersHandler := handlers.NewUsersHandler(store, tokens, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(appmiddleware.CallerExtractor(tokens))

		// In-memory rate limiter: 5 login attempts per minute per IP
		loginRateLimiter := appmiddleware.NewRateLimiter(5, time.Minute)
		r.With(loginRateLimiter.Limit).Post("/users/login", usersHandler.Login)

		r.Get("/users", usersHandler.List)
		r.Post("/users", usersHandler.Register)

		// Less restrictive rate limiter: 30 requests per minute per IP for public reads
		publicLimiter := appmiddleware.NewRateLimiter(30, time.Minute)
		r.With(publicLimiter.Limit).Get("/blogs", blogsHandler.List)
		r.With(publicLimiter.Limit).Get("/blogs/stats", blogsHandler.Stats)

		r.Post("/blogs", blogsHandler.Create)
		r.Put("/blogs/{id}", blogsHandler.Update)
		r.Delete("/blogs/{id}", blogsHandler.Delete)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
