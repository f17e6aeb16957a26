package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maltedev/leadtime-scraper/internal/browser"
	"github.com/maltedev/leadtime-scraper/internal/config"
	"github.com/maltedev/leadtime-scraper/internal/models"
	"github.com/maltedev/leadtime-scraper/internal/report"
	"github.com/maltedev/leadtime-scraper/internal/scraper"
	"github.com/maltedev/leadtime-scraper/internal/server"
	"github.com/maltedev/leadtime-scraper/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	var (
		parts       = flag.String("parts", "", "Comma-separated list of part numbers to look up")
		partsFile   = flag.String("file", "", "File containing part numbers (one per line)")
		headless    = flag.Bool("headless", cfg.Browser.Headless, "Run browser in headless mode")
		inputMode   = flag.String("input-mode", cfg.Scraper.InputMode, "Quantity input: per-character or fill")
		output      = flag.String("output", "text", "Output format: text or json")
		logLevel    = flag.String("log-level", cfg.Logging.Level, "Log level: debug, info, warn, error")
		metricsAddr = flag.String("metrics-addr", cfg.Metrics.Addr, "Serve /healthz, /metrics and /status on this address")
	)
	flag.Parse()

	cfg.Browser.Headless = *headless
	cfg.Scraper.InputMode = *inputMode
	cfg.Logging.Level = *logLevel
	cfg.Metrics.Addr = *metricsAddr

	if list, err := partList(*parts, *partsFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	} else if len(list) > 0 {
		cfg.Scraper.Parts = list
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		flag.Usage()
		return 1
	}

	if *output != "text" && *output != "json" {
		fmt.Fprintf(os.Stderr, "Unknown output format %q\n", *output)
		return 1
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := browser.Open(&browser.Options{
		Headless:        cfg.Browser.Headless,
		PageLoadTimeout: cfg.Browser.PageLoadTimeout,
		UserAgents:      cfg.Browser.UserAgents,
		ViewportWidth:   cfg.Browser.ViewportWidth,
		ViewportHeight:  cfg.Browser.ViewportHeight,
		AcceptLanguage:  cfg.Browser.AcceptLanguage,
		TimezoneID:      cfg.Browser.TimezoneID,
		Locale:          cfg.Browser.Locale,
		ProxyServer:     cfg.Browser.ProxyServer,
	}, log)
	if err != nil {
		log.Error("Failed to initialize browser", "error", err)
		if errors.Is(err, browser.ErrDriverInit) {
			return 2
		}
		return 1
	}
	defer session.Close()

	metrics := scraper.NewMetrics()

	storefront, err := scraper.NewStorefront(session, cfg.Scraper, metrics, log)
	if err != nil {
		log.Error("Failed to set up storefront", "error", err)
		return 1
	}

	s := scraper.New(storefront, scraper.Options{
		ProbeQuantity: cfg.Scraper.ProbeQuantity,
		PartPause:     cfg.Scraper.PartPause,
	}, metrics, log)

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	if cfg.Metrics.Addr != "" {
		srv, err := server.Listen(cfg.Metrics.Addr, server.NewRouter(server.NewHandlers(s, log), metrics.Registry), log)
		if err != nil {
			log.Error("Failed to start diagnostics server", "error", err)
			return 1
		}
		go func() {
			if err := srv.Serve(serverCtx); err != nil {
				log.Error("Diagnostics server stopped with error", "error", err)
			}
		}()
	}

	printer := report.NewPrinter(os.Stdout)

	var onResult func(*models.ScrapeResult)
	if *output == "text" {
		printer.PrintBanner(cfg.Scraper.Parts, time.Now())
		onResult = printer.PrintResult
	}

	batch := s.RunBatch(ctx, cfg.Scraper.Parts, onResult)

	switch *output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(batch); err != nil {
			log.Error("Failed to encode results", "error", err)
			return 1
		}
	default:
		printer.PrintSummary(batch)
	}

	if batch.Interrupted {
		log.Warn("Interrupted, browser closing", "run_id", batch.RunID)
		return 130
	}

	return 0
}

// partList merges -parts and -file, in that order.
func partList(parts, file string) ([]string, error) {
	list := config.SplitParts(parts)

	if file != "" {
		fromFile, err := config.ReadPartsFile(file)
		if err != nil {
			return nil, err
		}
		list = append(list, fromFile...)
	}

	return list, nil
}

