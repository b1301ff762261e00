package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/jheinrichs/remindme/api"
	"github.com/jheinrichs/remindme/logger"
	"github.com/jheinrichs/remindme/mailer"
	"github.com/jheinrichs/remindme/model/sql"
	"github.com/jheinrichs/remindme/scheduler"
)

var log = logger.New("main")

func readVersionInfo() {
	var (
		Revision   = "unknown"
		LastCommit time.Time
	)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			Revision = kv.Value
		case "vcs.time":
			LastCommit, _ = time.Parse(time.RFC3339, kv.Value)
		}
	}
	log.Info().Msgf("remindme-%s, %v", Revision, LastCommit)
}

func main() {
	readVersionInfo()

	db, err := sql.New()
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Send()
	}

	log.Info().Msg("Database connection established")

	userService := sql.NewUserService(db)
	tokenService := sql.NewTokenService(db)
	reminderService := sql.NewReminderService(db)
	tagService := sql.NewTagService(db)

	notifier, err := mailer.NewFromEnv()
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	var schedulerOpts []scheduler.Option
	if spec := os.Getenv("SWEEP_SCHEDULE"); spec != "" {
		schedulerOpts = append(schedulerOpts, scheduler.WithSweepSchedule(spec))
	}
	if spec := os.Getenv("REAP_SCHEDULE"); spec != "" {
		schedulerOpts = append(schedulerOpts, scheduler.WithReapSchedule(spec))
	}

	sched := scheduler.New(reminderService, notifier, schedulerOpts...)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Send()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      api.New(userService, tokenService, reminderService, tagService),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	go func() {
		log.Info().Msgf("Listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Send()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
