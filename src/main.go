package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"chunkdb/src/config"
	"chunkdb/src/directors"
	"chunkdb/src/repl"
	"chunkdb/src/server"
	"chunkdb/src/settings"

	"go.uber.org/zap"
)

// printUsage prints helpful usage information
func printUsage() {
	log.Println("ChunkDB - A schema-validated JSON document database")
	log.Println("\nUsage:")
	log.Println("  chunkdb [options]")
	log.Println("\nOptions:")
	flag.PrintDefaults()

	log.Println("\nExamples:")
	log.Println("  chunkdb --config=schema.json")
	log.Println("  chunkdb --serve --port=1791 --datadir=/data")
}

func main() {
	// Get the global settings instance
	args := settings.GetSettings()

	// Define command line flags that map to the Arguments struct
	flag.StringVar(&args.ConfigFile, "config", "schema.json", "Path to the schema configuration file")
	flag.StringVar(&args.DataDir, "datadir", ".", "Directory the database directory is created under")
	flag.StringVar(&args.LogDir, "logdir", "", "Directory to store log files (default: stdout only)")
	flag.StringVar(&args.Host, "host", "127.0.0.1", "Host name or IP address to listen on")
	flag.IntVar(&args.Port, "port", 1791, "Port for the TCP server")
	flag.BoolVar(&args.Serve, "serve", false, "Run the TCP server instead of the interactive console")
	flag.BoolVar(&args.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&args.Debug, "debug", false, "Enable debug mode")
	flag.BoolVar(&args.PrintToScreen, "print", true, "Print log messages to screen")
	flag.StringVar(&args.Version, "version", "0.1.0", "Version string recorded in the settings")

	// Parse the command line
	flag.Parse()

	// Validate the arguments
	if err := validateArguments(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		printUsage()
		os.Exit(1)
	}

	logger, err := buildLogger(args)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if args.Verbose {
		sugar.Infow("ChunkDB starting",
			"configFile", args.ConfigFile,
			"dataDir", args.DataDir,
			"host", args.Host,
			"port", args.Port,
			"serve", args.Serve)
	}

	// Load the schema configuration, writing the default file on first run
	cfg, err := config.Load(args.ConfigFile, sugar)
	if err != nil {
		sugar.Fatalf("Failed to load configuration: %v", err)
	}

	// Build the database and the services
	databaseService, err := directors.NewDatabaseService(cfg, args, sugar)
	if err != nil {
		sugar.Fatalf("Failed to initialize database: %v", err)
	}
	documentService := directors.NewDocumentService(sugar)

	serviceManager := directors.NewServiceManager(databaseService, documentService, sugar)

	if !args.Serve {
		console := repl.NewRepl(os.Stdin, os.Stdout, os.Stderr, sugar)
		if err := console.Run(serviceManager); err != nil {
			sugar.Fatalf("Console error: %v", err)
		}
		return
	}

	// Create and start the server
	srv := server.NewServer(args.Host, args.Port, serviceManager, sugar)
	if err := srv.Start(); err != nil {
		sugar.Fatalf("Failed to start server: %v", err)
	}

	// Handle graceful shutdown
	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)

	<-shutdownSignal
	fmt.Println("\nShutting down server...")

	if err := srv.Stop(); err != nil {
		sugar.Warnf("Error stopping server: %v", err)
	}

	fmt.Println("Server shutdown complete")
}

// buildLogger configures zap for the selected mode. With a log directory
// set, output goes to a timestamped file, and also to stdout when
// printing to screen is enabled.
func buildLogger(args *settings.Arguments) (*zap.Logger, error) {
	var cfg zap.Config
	if args.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		if !args.Verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		}
	}

	outputs := []string{}
	if args.PrintToScreen {
		outputs = append(outputs, "stdout")
	}
	if args.LogDir != "" {
		if err := os.MkdirAll(args.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("could not create log directory: %w", err)
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		logFile := filepath.Join(args.LogDir, fmt.Sprintf("%s_%s_ServerLog.txt", timestamp, args.Host))
		outputs = append(outputs, logFile)
	}
	if len(outputs) == 0 {
		outputs = append(outputs, "stderr")
	}
	cfg.OutputPaths = outputs

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// validateArguments validates the arguments and returns an error if invalid
func validateArguments(args *settings.Arguments) error {
	// Check if data directory exists and is accessible
	dirInfo, err := os.Stat(args.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			// Try to create the directory
			err = os.MkdirAll(args.DataDir, 0755)
			if err != nil {
				return fmt.Errorf("could not create data directory: %w", err)
			}
		} else {
			return fmt.Errorf("error accessing data directory: %w", err)
		}
	} else if !dirInfo.IsDir() {
		return fmt.Errorf("data directory path exists but is not a directory: %s", args.DataDir)
	}

	// Validate port range
	if args.Serve && (args.Port < 1 || args.Port > 65535) {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", args.Port)
	}

	return nil
}
