package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/patrickmn/go-cache"

	"github.com/username/fundfolio/backend/src/config"
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/parsers"
	"github.com/username/fundfolio/backend/src/services"
	"github.com/username/fundfolio/backend/src/storage"
)

func main() {
	filePath := flag.String("file", "", "path to the statement PDF to import")
	password := flag.String("password", "", "statement password, if the PDF is protected")
	strategy := flag.String("strategy", "", "parser strategy override: heuristic or gemini")
	noPersist := flag.Bool("no-persist", false, "parse only, do not write to the database")
	flag.Parse()

	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Starting statement import", "strategyConfig", config.Cfg.ParserStrategy)

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: fundfolio -file <statement.pdf> [-password ...] [-strategy heuristic|gemini] [-no-persist]")
		os.Exit(2)
	}
	if *strategy != "" {
		if *strategy != "heuristic" && *strategy != "gemini" {
			fmt.Fprintf(os.Stderr, "unknown strategy %q\n", *strategy)
			os.Exit(2)
		}
		config.Cfg.ParserStrategy = *strategy
	}

	persist := !*noPersist
	if persist {
		storage.InitDB(config.Cfg.DatabasePath)
		defer storage.DB.Close()
	}

	importService := services.NewImportService(
		parsers.BuildStrategies(),
		cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval),
		persist,
	)

	result, err := importService.ImportStatement(context.Background(), *filePath, *password)
	if err != nil {
		logger.L.Error("Import failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.L.Error("Failed to render result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if persist {
		if n, err := storage.CountHoldings(context.Background()); err == nil {
			logger.L.Info("Database now holds current snapshot", "holdings", n)
		}
	}
}
