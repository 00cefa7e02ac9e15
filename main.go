// ABOUTME: Entry point for the salesseed CLI
// ABOUTME: Parses global flags, loads configuration and routes to seed and run-history commands
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/salesseed/cli"
	"github.com/harperreed/salesseed/config"
	"github.com/harperreed/salesseed/db"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Run store path (default: ~/.local/share/salesseed/runs.db)")
	envFile := flag.String("env-file", "", "Environment file to load (default: .env if present)")
	noStore := flag.Bool("no-store", false, "Do not record the run in the run store")
	flag.Usage = printUsage

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("salesseed version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		if !errors.Is(err, config.ErrCorrupt) {
			log.Fatalf("Failed to load config: %v", err)
		}
		log.Printf("Warning: %v (using defaults)", err)
	}

	// Get remaining args after flags; no command means seed
	args := flag.Args()
	command := "seed"
	var commandArgs []string
	if len(args) > 0 {
		command, commandArgs = args[0], args[1:]
	}

	storePath := *dbPath
	if storePath == "" {
		storePath = cfg.DBPath
	}
	if storePath == "" {
		storePath = db.DefaultPath()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "seed":
		var database *sql.DB
		if !*noStore {
			database = openStore(storePath)
			defer database.Close()
		}
		exitOnError(cli.SeedCommand(ctx, database, cfg, commandArgs, os.Stdout))

	case "validate":
		exitOnError(cli.ValidateCommand(cfg, commandArgs, os.Stdout))

	case "runs":
		database := openStore(storePath)
		defer database.Close()
		exitOnError(cli.RunsCommand(database, commandArgs, os.Stdout))

	case "report":
		database := openStore(storePath)
		defer database.Close()
		exitOnError(cli.ReportCommand(database, commandArgs, os.Stdout))

	case "graph":
		database := openStore(storePath)
		defer database.Close()
		exitOnError(cli.GraphCommand(database, commandArgs, os.Stdout))

	case "browse":
		database := openStore(storePath)
		defer database.Close()
		exitOnError(cli.BrowseCommand(database))

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func openStore(path string) *sql.DB {
	database, err := db.OpenDatabase(path)
	if err != nil {
		log.Fatalf("Failed to open run store: %v", err)
	}
	log.Printf("Run store: %s", path)
	return database
}

// exitOnError prints err with any API detail and exits 1.
func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprint(os.Stderr, cli.FormatError(err))
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`salesseed v%s - Demo tenant seeder for the SalesFlow API

USAGE:
  salesseed [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Run store path (default: ~/.local/share/salesseed/runs.db)
  --env-file <path>      Environment file (default: .env if present)
  --no-store             Do not record the run

COMMANDS:
  seed                   Seed the demo tenant (default command)
    --data <file>          Seed data YAML (default: embedded demo data)
    --base-url <url>       API base URL (env SALESSEED_API_URL)
    --timeout <dur>        Per-request timeout, e.g. 30s (default: none)
    --prompt-password      Read the admin password from the terminal
    --color <mode>         auto, always or never (default: auto)
    --verbose              Show request bodies

  validate               Validate seed data without calling the API
    --data <file>          Seed data YAML (default: embedded demo data)

  runs                   List recorded runs
    --limit <n>            Max results (default: 20)

  report <run-id>        Show the summary and performance table of a run
  graph [flags] <run-id> Render the records a run created as Graphviz
    --output <file>        Output file (default: stdout)
  browse                 Browse recorded runs interactively

ENVIRONMENT:
  SALESSEED_API_URL         API base URL (default: %s)
  SALESSEED_ADMIN_EMAIL     Admin account email
  SALESSEED_ADMIN_PASSWORD  Admin account password
  SALESSEED_TENANT          Tenant name used when registering the admin
  SALESSEED_TIMEOUT         Per-request timeout
  SALESSEED_DB_PATH         Run store path

CONFIG FILE:
  %s
`, version, config.DefaultBaseURL, config.Path())
}
