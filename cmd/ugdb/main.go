// Package main is the entry point for the ugdb debugger.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/burrbull/ugdb/internal/app"
	"github.com/burrbull/ugdb/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, cleanup := parseFlags()
	defer cleanup()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown. SIGINT is left to the UI
	// (Ctrl-C interrupts the debuggee, not ugdb).
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM)

	go func() {
		<-signals
		application.Quit()
	}()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() (app.Options, func()) {
	var (
		configPath  string
		gdbPath     string
		layoutSpec  string
		logLevel    string
		logFile     string
		scriptPath  string
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&gdbPath, "gdb", "", "Path to the gdb executable")
	flag.StringVar(&layoutSpec, "layout", "", "Pane layout, e.g. (1s-1c)|(1e-1t)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&logFile, "log-file", "", "Write logs to this file")
	flag.StringVar(&scriptPath, "script", "", "Lua init script")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ugdb - terminal front end for gdb\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ugdb [options] [executable [args...]]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ugdb ./a.out                Debug a binary\n")
		fmt.Fprintf(os.Stderr, "  ugdb -gdb gdb-multiarch ./a.out\n")
		fmt.Fprintf(os.Stderr, "  ugdb -layout 's|c' ./a.out  Source and console side by side\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("ugdb %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	cfg := config.Default()
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.LoadEnv()

	// Command line flags override file and environment.
	if gdbPath != "" {
		cfg.Set("gdb.path", gdbPath)
	}
	if layoutSpec != "" {
		cfg.Set("layout", layoutSpec)
	}
	if logLevel != "" {
		cfg.Set("logging.level", logLevel)
	}
	if logFile != "" {
		cfg.Set("logging.file", logFile)
	}
	if scriptPath != "" {
		cfg.Set("script.path", scriptPath)
	}

	switch cfg.Logging().Level {
	case "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", cfg.Logging().Level)
		os.Exit(1)
	}

	opts := app.Options{Config: cfg}
	cleanup := func() {}

	if file := cfg.Logging().File; file != "" {
		logger, closeLog, err := app.OpenFileLogger(file, app.ParseLogLevel(cfg.Logging().Level))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		opts.Logger = logger
		cleanup = func() { _ = closeLog() }
	}

	// The first positional argument is the debuggee; the rest are its
	// arguments, forwarded to gdb as --args would.
	args := flag.Args()
	if len(args) > 0 {
		opts.Executable = args[0]
		opts.ExecutableArgs = args[1:]
	}

	return opts, cleanup
}
