package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"memorylens/server"
	"memorylens/store"
	"memorylens/utils"
)

var version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("MemoryLens v%s\n", version)
		os.Exit(0)
	}

	// .env is optional; environment variables win over config values
	godotenv.Load()

	logger, err := utils.NewLogger(utils.GetLogPath())
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting MemoryLens v%s", version)

	actualConfigPath := *configPath
	if actualConfigPath == "" {
		actualConfigPath, err = utils.EnsureDefaultConfig()
		if err != nil {
			logger.Error("Failed to create default config: %v", err)
			os.Exit(1)
		}
		logger.Info("Using config file: %s", actualConfigPath)
	}

	config, err := utils.LoadConfig(actualConfigPath)
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	if *addr != "" {
		config.Server.Addr = *addr
	}
	if env := os.Getenv("MEMORYLENS_ADDR"); env != "" {
		config.Server.Addr = env
	}
	if env := os.Getenv("MEMORYLENS_STATE_PATH"); env != "" {
		config.Data.StatePath = env
	}

	sink, closeSink, err := buildSink(config.Data.StatePath)
	if err != nil {
		logger.Error("Failed to initialize persistence: %v", err)
		os.Exit(1)
	}
	defer closeSink()

	st := store.New(sink, logger)
	if err := st.Load(); err != nil {
		// A corrupt snapshot should not brick the app; start fresh
		logger.Warn("Failed to restore state, starting empty: %v", err)
	} else {
		logger.Info("State restored from %s", config.Data.StatePath)
	}

	srv := server.New(st, config, logger)

	logger.Info("Listening on %s", config.Server.Addr)
	if err := http.ListenAndServe(config.Server.Addr, srv.Handler()); err != nil {
		logger.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}

// buildSink picks the persistence backend from the state path extension:
// .db/.sqlite gets the SQLite sink, anything else a JSON file snapshot.
func buildSink(statePath string) (store.Sink, func(), error) {
	if statePath == "" {
		return store.NoopSink{}, func() {}, nil
	}

	if strings.HasSuffix(statePath, ".db") || strings.HasSuffix(statePath, ".sqlite") {
		s, err := store.NewSQLiteSink(statePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}

	s, err := store.NewFileSink(statePath)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {}, nil
}
