// Command forkmonkey scans a ForkMonkey fork network once and publishes the
// aggregated JSON snapshots for the static front end.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/forkmonkey/internal/adapter/driven/github"
	"github.com/ericfisherdev/forkmonkey/internal/adapter/driven/snapshotfs"
	sqliteadapter "github.com/ericfisherdev/forkmonkey/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/forkmonkey/internal/application"
	"github.com/ericfisherdev/forkmonkey/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration; a missing .env file is not an error.
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	slog.Info("config loaded",
		"repository", cfg.Repository,
		"output_dir", cfg.OutputDir,
		"db_path", cfg.DBPath,
		"max_repos", cfg.MaxRepos,
		"max_fork_pages", cfg.MaxForkPages,
		"sanitize_svg", cfg.SanitizeSVG,
	)
	if !cfg.HasGitHubToken() {
		slog.Warn("GITHUB_TOKEN not set, using the unauthenticated rate limit")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the history database and apply migrations.
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("database ready", "path", db.Path())

	// 4. Wire adapters.
	client := githubadapter.NewClient(cfg.GitHubToken)
	writer := snapshotfs.NewWriter(cfg.OutputDir)
	store := sqliteadapter.NewScanRepo(db)

	var sanitizer *application.SVGSanitizer
	if cfg.SanitizeSVG {
		sanitizer = application.NewSVGSanitizer()
	}

	// 5. Run the scan.
	scanSvc := application.NewScanService(
		client,
		writer,
		store,
		application.NewCollector(client, cfg.MaxRepos, cfg.MaxForkPages, cfg.ForkPageSize),
		application.NewExtractor(client, sanitizer, nil),
		cfg.Repository,
		cfg.HistoryKeep,
	)

	run, err := scanSvc.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("snapshots published",
		"dir", writer.Dir(),
		"root", run.RootRepo,
		"creatures", run.CreaturesFound,
	)
	return nil
}
