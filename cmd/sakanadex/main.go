/*
Package main implements the species search server and CLI application.

sakanadex provides fast prefix-based species name completion for
script-mixed Japanese input (hiragana, katakana, kanji, romaji aliases)
with popularity ranking. It can operate as a msgpack IPC server for
integration with a logging app, or as a CLI application for testing
and debugging.

# Usage

Start the server with the embedded catalog:

	sakanadex

Use a custom catalog file and enable debug mode:

	sakanadex -catalog /path/to/catalog.json -d

Run in CLI mode for interactive testing:

	sakanadex -c -limit 10

The catalog file is a JSON array of raw species records, or a msgpack
snapshot compiled from one. Records carry a stable id, a canonical
name, alias/regional name arrays, category, season and habitat tags,
a popularity score, and a provenance flag.

# Configuration

Runtime configuration is managed through a TOML file:

	[engine]
	max_prefix_length = 3
	default_limit = 10
	fold_kana = true

	[validator]
	min_length = 2
	max_length = 20
	max_entities = 100

The config file is created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via msgpack over stdin/stdout. Search requests
are processed synchronously with microsecond timing information in
responses:

	{"id": "req1", "op": "search", "q": "あじ", "l": 10}
	{"id": "req1", "s": [{"id": "ma-aji", "n": "マアジ", "p": 95}], "c": 1, "t": 120}

Other ops: "detailed" (match explanations), "stats", "validate"
(new-name rules plus catalog capacity), "reload", and "health".
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"sakanadex/internal/cli"
	"sakanadex/internal/jptext"
	"sakanadex/pkg/catalog"
	"sakanadex/pkg/config"
	"sakanadex/pkg/search"
	"sakanadex/pkg/server"
	"sakanadex/pkg/validate"
)

const (
	Version = "1.2.0"
	AppName = "sakanadex"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires the catalog loader, search engine, and validator, then
// hands off to server or CLI mode. It does not implement logic for
// them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	catalogPath := flag.String("catalog", "", "Catalog file (JSON or msgpack snapshot; empty uses the embedded catalog)")
	configPath := flag.String("config", "", "Config file path (TOML)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", 0, "Number of suggestions to return (0 uses the config default)")
	detailed := flag.Bool("detailed", false, "CLI mode: show match field and score for each suggestion")
	sourceFilter := flag.String("source", "", "Catalog source filter: official, user, or all")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, activePath := config.LoadConfigWithPriority(*configPath)
	if activePath != "" {
		log.Debugf("using config file: (%s)", activePath)
	}

	path := *catalogPath
	if path == "" {
		path = cfg.Catalog.Path
	}
	filterName := *sourceFilter
	if filterName == "" {
		filterName = cfg.Catalog.SourceFilter
	}
	filter, err := catalog.ParseSourceFilter(filterName)
	if err != nil {
		log.Fatalf("bad -source value: %v", err)
	}

	loader := catalog.NewLoader(path, filter)
	entities, err := loader.Load(context.Background())
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}
	log.Debugf("catalog ready: %d entities", len(entities))

	engine := search.NewEngine(search.EngineOptions{
		MaxPrefixLength: cfg.Engine.MaxPrefixLength,
		DefaultLimit:    cfg.Engine.DefaultLimit,
		Normalizer: jptext.Options{
			FoldKana:  cfg.Engine.FoldKana,
			FoldCase:  cfg.Engine.FoldCase,
			FoldWidth: cfg.Engine.FoldWidth,
		},
	})
	engine.BuildIndex(entities)

	validator := buildValidator(cfg)

	if *cliMode {
		log.SetReportTimestamp(false)
		cliLimit := *limit
		if cliLimit <= 0 {
			cliLimit = cfg.Engine.DefaultLimit
		}
		inputHandler := cli.NewInputHandler(engine, cliLimit, *detailed)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	showStartupInfo(path, len(entities))

	srv := server.NewServer(engine, loader, validator, cfg.Server.MaxLimit)
	if err := srv.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// buildValidator maps the validator config section onto rules, falling
// back to the default pattern when the configured one doesn't compile.
func buildValidator(cfg *config.Config) *validate.Validator {
	rules := validate.DefaultRules()
	rules.MinLength = cfg.Validator.MinLength
	rules.MaxLength = cfg.Validator.MaxLength
	rules.MaxEntities = cfg.Validator.MaxEntities
	rules.TrimWhitespace = cfg.Validator.TrimWhitespace
	if len(cfg.Validator.ForbiddenWords) > 0 {
		rules.ForbiddenWords = cfg.Validator.ForbiddenWords
	}
	if cfg.Validator.AllowedPattern != "" {
		re, err := regexp.Compile(cfg.Validator.AllowedPattern)
		if err != nil {
			log.Warnf("bad allowed_pattern %q: %v. Using the default pattern...", cfg.Validator.AllowedPattern, err)
		} else {
			rules.AllowedPattern = re
		}
	}
	return validate.NewWithRules(rules)
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ sakanadex ] species name search, fast enough for every keystroke")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(catalogPath string, count int) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	if catalogPath == "" {
		catalogPath = "embedded"
	}

	println("===========")
	println(" sakanadex ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("catalog: ( %s ), %d entities", catalogPath, count)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
