package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/go-chi/chi/v5"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/auth"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/email"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/handlers"
	httpserver "github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/http"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/ratelimit"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/store"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/tmdb"
)

type Config struct {
	Port        string        `envconfig:"PORT" default:"8080"`
	DatabaseURL string        `envconfig:"DATABASE_URL" required:"true"`
	TokenSecret string        `envconfig:"TOKEN_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"72h"`
	TMDBAPIKey  string        `envconfig:"TMDB_API_KEY" required:"true"`
	TMDBBaseURL string        `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
	ClientURL   string        `envconfig:"CLIENT_URL" default:"http://localhost:3000"`

	SMTPAddr     string `envconfig:"SMTP_ADDR"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"no-reply@moviemonday.local"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
}

func mustLoadEnv(log *zap.Logger) Config {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		log.Fatal("env error", zap.Error(err))
	}
	return c
}

func mustDB(log *zap.Logger, dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("db connect error", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sqlDB, _ := db.DB()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatal("db ping error", zap.Error(err))
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal("db migrate error", zap.Error(err))
	}
	return db
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg := mustLoadEnv(log)
	db := mustDB(log, cfg.DatabaseURL)
	st := store.New(db)
	tmdbClient := tmdb.New(cfg.TMDBAPIKey, cfg.TMDBBaseURL)

	var mailer email.Mailer = &email.LogMailer{Log: log}
	if cfg.SMTPAddr != "" {
		mailer = email.NewSMTP(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword, cfg.ClientURL)
	}

	tokens, err := auth.NewManager(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal("auth setup", zap.Error(err))
	}
	mw := &auth.Middleware{Manager: tokens, Users: st}

	authLimiter := ratelimit.New(10, time.Minute)
	commentLimiter := ratelimit.New(30, time.Minute)

	authHandler := handlers.NewAuthHandler(st, tokens, mailer, log)
	userHandler := handlers.NewUserHandler(st, log)
	groupHandler := handlers.NewGroupHandler(st, tokens, mailer, log)
	mmHandler := handlers.NewMovieMondayHandler(st, tmdbClient, log)
	wlHandler := handlers.NewWatchlistHandler(st, tmdbClient, log)
	commentHandler := handlers.NewCommentHandler(st, log)
	statsHandler := handlers.NewStatsHandler(st, log)

	mounter := func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.ByIP)
			r.Route("/auth", authHandler.Routes)
		})
		r.Route("/api", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(mw.Optional)
				r.Get("/movies/search", wlHandler.SearchMovies)
				r.Get("/movies/{id}", wlHandler.Movie)
			})
			// Anonymous-readable surfaces take the optional middleware so
			// owners still see their private content.
			r.Route("/groups", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(mw.Optional)
					groupHandler.PublicRoutes(r)
				})
				r.Group(func(r chi.Router) {
					r.Use(mw.Required)
					groupHandler.Routes(r)
				})
			})
			r.Route("/watchlists", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(mw.Optional)
					wlHandler.PublicRoutes(r)
				})
				r.Group(func(r chi.Router) {
					r.Use(mw.Required)
					wlHandler.Routes(r)
				})
			})
			r.Route("/comments", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(mw.Optional)
					commentHandler.PublicRoutes(r)
				})
				r.Group(func(r chi.Router) {
					r.Use(mw.Required, commentLimiter.ByUser)
					commentHandler.Routes(r)
				})
			})
			r.Route("/statistics", func(r chi.Router) {
				statsHandler.PublicRoutes(r)
				r.Group(func(r chi.Router) {
					r.Use(mw.Required)
					statsHandler.Routes(r)
				})
			})
			r.Group(func(r chi.Router) {
				r.Use(mw.Required)
				r.Route("/users", userHandler.Routes)
				r.Post("/invites/{id}/respond", groupHandler.Respond)
				r.Route("/movie-monday", mmHandler.Routes)
			})
		})
	}

	srv := httpserver.NewServer(log, mounter)

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, srv.Router); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
