package main

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/Soypete/streambuddy/config"
	"github.com/Soypete/streambuddy/database"
	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/pipeline"
	"github.com/Soypete/streambuddy/templates"
	"github.com/Soypete/streambuddy/types"
)

func main() {
	var logLevel string
	var configPath string

	// Define subcommands
	syncCmd := flag.NewFlagSet("sync", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	testCmd := flag.NewFlagSet("test", flag.ExitOnError)
	snapCmd := flag.NewFlagSet("snapshots", flag.ExitOnError)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Check for help first
	if os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help" {
		printUsage()
		os.Exit(0)
	}

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sync":
		syncCmd.StringVar(&configPath, "config", "configs/templates.yaml", "Path to template file")
		syncCmd.StringVar(&logLevel, "logLevel", "info", "Log level")
		_ = syncCmd.Parse(os.Args[2:])
		runSync(configPath, logLevel)

	case "list":
		var game string
		listCmd.StringVar(&game, "game", "", "Only list templates for this game id")
		listCmd.StringVar(&logLevel, "logLevel", "info", "Log level")
		_ = listCmd.Parse(os.Args[2:])
		runList(types.GameContext(game), logLevel)

	case "test":
		var templatePath, game string
		testCmd.StringVar(&configPath, "config", "", "Path to the streambuddy config file")
		testCmd.StringVar(&templatePath, "templates", "", "Path to template file (built-in set when empty)")
		testCmd.StringVar(&game, "game", "", "Game the stream is currently showing")
		testCmd.StringVar(&logLevel, "logLevel", "error", "Log level")
		_ = testCmd.Parse(os.Args[2:])
		if testCmd.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Error: test command requires a message argument")
			fmt.Fprintln(os.Stderr, "Usage: templates test [options] \"@streambuddy build lancelot\"")
			os.Exit(1)
		}
		runTest(strings.Join(testCmd.Args(), " "), configPath, templatePath, game, logLevel)

	case "snapshots":
		var streamID string
		var limit int
		snapCmd.StringVar(&streamID, "stream", "", "Stream id (required)")
		snapCmd.IntVar(&limit, "limit", 20, "Number of snapshots to show")
		snapCmd.StringVar(&logLevel, "logLevel", "info", "Log level")
		_ = snapCmd.Parse(os.Args[2:])
		if streamID == "" {
			fmt.Fprintln(os.Stderr, "Error: snapshots command requires -stream")
			os.Exit(1)
		}
		runSnapshots(streamID, limit, logLevel)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Template Management CLI

Usage:
  templates <command> [options]

Commands:
  sync       Replace the templates in the database with a template file
  list       List the templates in the database
  test       Run a chat message through the offline pipeline
  snapshots  Show analytics snapshots for a stream

Global Environment Variables:
  DATABASE_URL      postgres:// or sqlite:// connection string (sync, list, snapshots)

Examples:
  # Sync templates from a file to the database
  templates sync -config configs/templates.yaml

  # List Mobile Legends templates
  templates list -game mobile_legends

  # See what the co-host would answer
  templates test -game mobile_legends "@streambuddy build lancelot dong"`)
}

func connect(logger *logging.Logger) *database.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "Error: DATABASE_URL environment variable is required")
		os.Exit(1)
	}
	db, err := database.New(dsn, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err.Error())
		os.Exit(1)
	}
	return db
}

func runSync(path, logLevel string) {
	logger := logging.NewLogger(logging.LogLevel(logLevel), os.Stdout)
	ctx := context.Background()

	logger.Info("starting template sync", "configPath", path)
	ts, err := templates.LoadFile(path)
	if err != nil {
		logger.Error("failed to load template file", "error", err.Error())
		os.Exit(1)
	}

	db := connect(logger)
	defer db.Close()

	start := time.Now()
	if err := db.SyncTemplates(ctx, ts); err != nil {
		logger.Error("template sync failed", "error", err.Error())
		os.Exit(1)
	}

	perGame := map[types.GameContext]int{}
	for _, t := range ts {
		perGame[t.Game]++
	}

	fmt.Println("\n=== Template Sync Results ===")
	fmt.Printf("Templates written: %d\n", len(ts))
	for _, game := range slices.Sorted(maps.Keys(perGame)) {
		fmt.Printf("  %-16s %d\n", game, perGame[game])
	}
	fmt.Printf("Duration:          %v\n", time.Since(start))
	fmt.Println("\nTemplate sync completed successfully!")
}

func runList(game types.GameContext, logLevel string) {
	logger := logging.NewLogger(logging.LogLevel(logLevel), os.Stdout)
	ctx := context.Background()

	db := connect(logger)
	defer db.Close()

	ts, err := db.ListTemplates(ctx, game)
	if err != nil {
		logger.Error("failed to list templates", "error", err.Error())
		os.Exit(1)
	}

	if len(ts) == 0 {
		fmt.Println("No templates found. Run 'templates sync' to populate from a file.")
		return
	}

	fmt.Printf("\n=== Templates (%d total) ===\n", len(ts))

	current := types.GameContext("")
	for _, t := range ts {
		if t.Game != current {
			current = t.Game
			fmt.Printf("\n[%s]\n", current)
			fmt.Println("-------------------------------------------")
		}

		activeStr := "active"
		if !t.Active {
			activeStr = "inactive"
		}
		fmt.Printf("ID: %s (%s, priority %d)\n", t.ID, activeStr, t.Priority)
		fmt.Printf("Keywords: %s\n", strings.Join(t.Keywords, ", "))
		fmt.Printf("Response: %s\n", truncateString(t.Response, 80))
	}
}

func runTest(message, configPath, templatePath, game, logLevel string) {
	logger := logging.NewLogger(logging.LogLevel(logLevel), os.Stdout)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}
	if templatePath != "" {
		cfg.Templates.File = templatePath
	}

	stack, err := pipeline.Build(cfg, pipeline.Stores{}, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err.Error())
		os.Exit(1)
	}

	var live *types.StreamLiveState
	if game != "" {
		live = &types.StreamLiveState{CurrentGame: game}
	}
	msg := types.IncomingMessage{
		SenderID:     "cli",
		SenderHandle: "cli",
		StreamID:     "cli",
		Text:         message,
		Platform:     types.PlatformCLI,
		Timestamp:    time.Now(),
	}

	resp := stack.ResolveResponse(context.Background(), msg, live)
	if resp == nil {
		fmt.Printf("\n=== No Response ===\n")
		fmt.Println("The message was not addressed to the co-host or was rejected by the classifier.")
		return
	}

	fmt.Printf("\n=== Response ===\n")
	fmt.Printf("Source:   %s\n", resp.Source)
	fmt.Printf("Game:     %s\n", displayGame(resp.Game))
	fmt.Printf("Priority: %d\n", resp.Priority)
	if resp.Cost > 0 {
		fmt.Printf("Cost:     $%.6f\n", resp.Cost)
	}
	fmt.Printf("Text:     %s\n", resp.Text)
}

func runSnapshots(streamID string, limit int, logLevel string) {
	logger := logging.NewLogger(logging.LogLevel(logLevel), os.Stdout)
	ctx := context.Background()

	db := connect(logger)
	defer db.Close()

	snaps, err := db.StreamSnapshots(ctx, streamID, limit)
	if err != nil {
		logger.Error("failed to load snapshots", "error", err.Error())
		os.Exit(1)
	}
	if len(snaps) == 0 {
		fmt.Printf("No snapshots for stream %s.\n", streamID)
		return
	}

	fmt.Printf("\n=== Snapshots for %s ===\n\n", streamID)
	fmt.Printf("%-20s %9s %9s %9s %9s %8s\n", "captured", "messages", "mentions", "responses", "fallback", "viewers")
	for _, s := range snaps {
		fmt.Printf("%-20s %9d %9d %9d %9d %8d\n",
			s.CapturedAt.Format("2006-01-02 15:04:05"),
			s.TotalMessages, s.TotalMentions, s.TotalResponses, s.FallbackResponses, s.UniqueViewers)
	}
}

func displayGame(g types.GameContext) string {
	if g == types.NoGame {
		return "(none)"
	}
	return string(g)
}

func truncateString(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
