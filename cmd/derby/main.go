package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alexanderramin/derby/internal/cli"
	"github.com/alexanderramin/derby/internal/config"
	"github.com/alexanderramin/derby/internal/db"
	"github.com/alexanderramin/derby/internal/repository"
	"github.com/alexanderramin/derby/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ~/.derby/config.yaml, then ./.derby/config.yaml, then DERBY_* env vars
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DB())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	projectRepo := repository.NewSQLiteProjectRepo(database)
	sessionRepo := repository.NewSQLiteSessionRepo(database)
	settingsRepo := repository.NewSQLiteSettingsRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.LogCalls {
		observer = service.NewLogUseCaseObserver(os.Stderr)
	}

	app := &cli.App{
		Timer:    service.NewTimerService(sessionRepo, projectRepo, uow, time.Now, observer),
		Projects: service.NewProjectService(projectRepo, uow, time.Now, observer),
		Summary:  service.NewSummaryService(sessionRepo, projectRepo, time.Now, observer),
		Export:   service.NewExportService(sessionRepo, observer),
		Settings: service.NewSettingsService(settingsRepo, observer),
		Now:      time.Now,
		Location: loc,
	}

	// Confirmations and the live view need a terminal on stdin.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
