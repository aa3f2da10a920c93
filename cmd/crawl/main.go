package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"print-pricing/internal/app"
)

var target = flag.String("target", "crawl_seal_prices_printpac", "crawl selector (crawl_seal_prices_printpac, crawl_sticker_prices_printpac, crawl_multi_sticker_prices_printpac)")

func main() {
	flag.Parse()
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup happens before exit.
func run() int {
	cfg, logg, err := app.Bootstrap()
	if err != nil {
		log.Print(err)
		return 1
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := app.NewCrawlServices(ctx, cfg, logg)
	if err != nil {
		logg.Error("Failed to initialize crawler", "error", err)
		return 1
	}
	defer svc.Close()

	report, err := svc.Crawler.Crawl(ctx, *target)
	if report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(report)
	}
	if err != nil {
		logg.Error("Crawl failed", "target", *target, "error", err)
		return 1
	}
	return 0
}
