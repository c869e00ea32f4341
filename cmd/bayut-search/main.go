// bayut-search выполняет один поиск по параметрам командной строки и печатает результат в JSON
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bayut-parser-service/internal"
	logger_adapter "bayut-parser-service/internal/adapters/logger"
	"bayut-parser-service/internal/adapters/rest"
	"bayut-parser-service/internal/configs"
	"bayut-parser-service/internal/constants"
	"bayut-parser-service/internal/contextkeys"
	"bayut-parser-service/internal/core/domain"
	"bayut-parser-service/internal/core/port"
)

type options struct {
	filters domain.SearchFilters
	envFile string
	pretty  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("bayut-search", flag.ContinueOnError)
	fs.SetOutput(stderr)

	location := fs.String("location", "", `"Emirate, Area", например "Dubai, Dubai Marina"`)
	minPrice := fs.Int("min-price", 0, "минимальная цена, AED в год")
	maxPrice := fs.Int("max-price", 0, "максимальная цена, AED в год")
	rooms := fs.String("rooms", "", "число спален: 1..6 или 7+")
	baths := fs.Int("baths", 1, "число ванных")
	bills := fs.Bool("bills", false, "оставить только объявления с включенными коммунальными платежами")
	pages := fs.Int("pages", constants.DefaultMaxPages, "сколько страниц выдачи просматривать")
	envFile := fs.String("env", "", "путь к .env")
	pretty := fs.Bool("pretty", true, "форматировать JSON")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if *pages > constants.MaxPagesLimit {
		return options{}, fmt.Errorf("pages must not exceed %d", constants.MaxPagesLimit)
	}

	filters, err := domain.NewSearchFilters(*location, *minPrice, *maxPrice, *rooms, *baths, *bills, *pages)
	if err != nil {
		return options{}, err
	}
	if err := filters.Validate(); err != nil {
		return options{}, err
	}
	return options{filters: filters, envFile: *envFile, pretty: *pretty}, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	appConfig, err := configs.LoadConfig(opts.envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// stdout занят результатом, логи идут в stderr
	logger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Writer:   os.Stderr,
		Level:    internal.ParseLogLevel(appConfig.StdoutLogger.Level),
		UseColor: appConfig.StdoutLogger.Color,
	}).WithFields(port.Fields{"service_name": "bayut-search"})

	pipeline, err := internal.NewPipeline(appConfig.Bayut)
	if err != nil {
		logger.Error("Failed to build search pipeline", err, nil)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = contextkeys.ContextWithLogger(ctx, logger)

	result, err := pipeline.Search.Execute(ctx, opts.filters)
	if err != nil {
		logger.Error("Search failed", err, nil)
		stop()
		os.Exit(1)
	}

	if err := writeResult(os.Stdout, rest.ToSearchResponse(result), opts.pretty); err != nil {
		logger.Error("Failed to write result", err, nil)
		stop()
		os.Exit(1)
	}

	if result.Report.Aborted {
		logger.Warn("Search aborted", port.Fields{"reason": result.Report.AbortReason})
		stop()
		os.Exit(2)
	}
}

func writeResult(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
