package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"vnotes/internal/config"
	"vnotes/internal/db"
	"vnotes/internal/ops"
	"vnotes/internal/planner"
	"vnotes/internal/storage"
	"vnotes/internal/transcribe"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// plannerBaseURL is the document service API root.
const plannerBaseURL = "https://api.notion.com/v1"

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return true
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

func main() {
	// Handle --help/--version before touching the database or config.
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	baseDir := os.Getenv("VNOTES_HOME")
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
			os.Exit(1)
		}
		baseDir = filepath.Join(homeDir, ".vnotes")
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	services, err := buildServices(database, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := newCLIApp(services)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// buildServices wires the real clients behind the operation layer.
func buildServices(database *sql.DB, cfg *config.Config) (*ops.Services, error) {
	uploader, err := storage.NewBucketClient(cfg.StorageURL, cfg.StorageKey, cfg.StorageBucket)
	if err != nil {
		return nil, err
	}
	return &ops.Services{
		DB:          database,
		Cfg:         cfg,
		Uploader:    uploader,
		Transcriber: transcribe.New(cfg.TranscribeURL, cfg.TranscribeToken, cfg.PollInterval, cfg.PollTimeout),
		Planner:     planner.NewClient(plannerBaseURL, cfg.NotionToken),
		Log:         log.New(os.Stderr, "", log.LstdFlags),
	}, nil
}
