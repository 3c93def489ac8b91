package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/gitlab-activity-viewer/internal/config"
	"github.com/jrsteele09/gitlab-activity-viewer/server"
	"github.com/jrsteele09/gitlab-activity-viewer/server/loginsession"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() error {
	c, err := config.New()
	if err != nil {
		return err
	}
	setupLogger(c)
	displayAppname(c.GetAppName())

	sessions, closeSessions, err := loginSessionRepo(c)
	if err != nil {
		return err
	}
	defer closeSessions()

	stopCleanup := startSessionCleanup(sessions, c.GetSessionCleanupInterval())
	defer stopCleanup()

	handler, err := server.New(c, sessions)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: c.GetPort(), Handler: handler}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(srv) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func setupLogger(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
}

// loginSessionRepo picks the session store. The returned func releases it.
func loginSessionRepo(c config.SessionConfig) (loginsession.Repo, func(), error) {
	path := c.GetSessionStorePath()
	if path == "" {
		return loginsession.NewInMemoryLoginSessionRepo(), func() {}, nil
	}
	repo, err := loginsession.NewBoltLoginSessionRepoFromFile(path, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}
	log.Info().Str("path", path).Msg("Using persistent session store")
	return repo, func() {
		if err := repo.Close(); err != nil {
			log.Err(err).Msg("Failed to close session store")
		}
	}, nil
}

// startSessionCleanup sweeps expired sessions in the background. The returned
// func stops the sweeper and waits for it, and must run before the store is
// closed.
func startSessionCleanup(repo loginsession.Repo, interval time.Duration) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loginsession.RunCleanup(ctx, repo, interval)
	}()
	return func() {
		cancel()
		<-done
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
