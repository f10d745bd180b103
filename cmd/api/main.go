package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"dealertasks.org/internal/auth"
	"dealertasks.org/internal/cars"
	"dealertasks.org/internal/config"
	"dealertasks.org/internal/httpapi"
	"dealertasks.org/internal/mail"
	"dealertasks.org/internal/migrate"
	"dealertasks.org/internal/obs"
	"dealertasks.org/internal/tasks"
	"dealertasks.org/internal/users"
	"dealertasks.org/internal/valet"
	"dealertasks.org/internal/workshop"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.PGDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migrate.Up(migrateCtx, db); err != nil {
		cancelMigrate()
		log.Fatalf("migrate: %v", err)
	}
	cancelMigrate()

	codec, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	store := auth.NewPGStore(db)
	authenticator := auth.NewAuthenticator(store, codec)
	notifier := mail.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	resetFlow := auth.NewResetFlow(store, notifier, cfg.ResetURL)

	api := httpapi.New(httpapi.Options{
		Auth:           authenticator,
		Reset:          resetFlow,
		Users:          users.New(store),
		Cars:           cars.New(cars.NewPGStore(db)),
		Tasks:          tasks.New(tasks.NewPGStore(db)),
		Workshop:       workshop.New(workshop.NewPGStore(db)),
		Valet:          valet.New(valet.NewPGStore(db)),
		Ready:          httpapi.ReadyProbe{DB: db},
		Version:        version,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting dealertasks-api %s on %s", version, srv.Addr)
	obs.SetReady(true)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	obs.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = db.Close()
	log.Println("Stopped")
}
