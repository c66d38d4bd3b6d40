package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hotelwatch/rate-scraper/internal/browser"
	"github.com/hotelwatch/rate-scraper/internal/config"
	"github.com/hotelwatch/rate-scraper/internal/models"
	"github.com/hotelwatch/rate-scraper/internal/normalize"
	"github.com/hotelwatch/rate-scraper/internal/otas"
	"github.com/hotelwatch/rate-scraper/internal/ratelimit"
	"github.com/hotelwatch/rate-scraper/internal/scraper"
)

// One-shot scrape of a single hotel across whitelisted OTAs, printing the
// canonical records as JSON. Useful for spot checks without the server.
func main() {
	os.Exit(run())
}

func run() int {
	hotel := flag.String("hotel", "", "hotel name to search for")
	checkIn := flag.String("check-in", "", "check-in date (YYYY-MM-DD)")
	checkOut := flag.String("check-out", "", "check-out date (YYYY-MM-DD)")
	adults := flag.Int("adults", models.DefaultAdults, "number of adults")
	ota := flag.String("ota", "", "scrape a single OTA instead of all")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	whitelist, err := otas.Load(cfg.Whitelist.Path)
	if err != nil {
		logger.Error("failed to load OTA whitelist", "error", err)
		return 1
	}

	query := models.RateQuery{
		HotelName: *hotel,
		CheckIn:   *checkIn,
		CheckOut:  *checkOut,
		Adults:    *adults,
	}
	if err := query.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid query: %v\n", err)
		flag.Usage()
		return 2
	}

	ctx := context.Background()

	launcher := browser.NewLauncher(&browser.Options{
		Headless: cfg.Browser.Headless,
		Timeout:  cfg.Browser.Timeout,
	})
	defer launcher.Close()

	env := scraper.Environment{
		Sessions:   launcher.NewSession,
		Normalizer: normalize.New(whitelist),
		LimiterFor: func(string) ratelimit.Limiter {
			return ratelimit.NewSiteLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)
		},
		WaitBudget: cfg.Scraper.WaitBudget,
		Deadline:   cfg.Scraper.Deadline,
	}

	registry, err := scraper.DefaultRegistry(env, whitelist.Contains)
	if err != nil {
		logger.Error("failed to build scraper registry", "error", err)
		return 1
	}

	targets := registry.OTAs()
	if *ota != "" {
		if _, ok := registry.Get(*ota); !ok {
			fmt.Fprintf(os.Stderr, "unknown OTA %q (registered: %v)\n", *ota, registry.OTAs())
			return 2
		}
		targets = []string{*ota}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	exitCode := 0

	for _, name := range targets {
		s, _ := registry.Get(name)

		record, err := s.ScrapeRates(ctx, query)
		if err != nil {
			if errors.Is(err, scraper.ErrNotImplemented) {
				logger.Warn("OTA not supported yet", "ota", name)
			} else {
				logger.Error("scrape failed", "ota", name, "error", err)
				exitCode = 1
			}
			continue
		}

		if err := encoder.Encode(record); err != nil {
			logger.Error("failed to encode record", "ota", name, "error", err)
			exitCode = 1
		}
	}

	return exitCode
}
