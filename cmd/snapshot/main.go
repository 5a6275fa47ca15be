package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"bybitsnap/internal/cli"
	"bybitsnap/internal/config"
	"bybitsnap/pkg/journal"
	"bybitsnap/pkg/market"
	"bybitsnap/pkg/notify"
	"bybitsnap/pkg/snapshot"
	"bybitsnap/pkg/storage"

	// Import for side-effects: registers the bybit provider
	_ "bybitsnap/pkg/market/exchanges/bybit"
)

var errStorageRequired = errors.New("storage config section is required")

var (
	configFile = flag.String("f", "etc/bybitsnap.yaml", "the config file")
	modeFlag   = flag.String("mode", "", "snapshot mode: forecast|review (defaults to MODE env)")
	journalDir = flag.String("journal", "journal", "directory for local run records")
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime)
	flag.Parse()

	mode := snapshot.Mode(*modeFlag)
	if mode == "" {
		mode = snapshot.Mode(os.Getenv("MODE"))
	}
	if mode == "" {
		mode = snapshot.ModeForecast
	}
	if !mode.Valid() {
		log.Fatalf("invalid mode %q: must be forecast or review", mode)
	}

	appCfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	for _, line := range cli.ConfigSummaryLines(appCfg) {
		log.Printf("  - %s", line)
	}

	rec := &journal.RunRecord{Mode: string(mode)}
	started := time.Now()
	err = run(appCfg, mode, rec)
	rec.DurationMS = time.Since(started).Milliseconds()
	rec.Success = err == nil
	if err != nil {
		rec.ErrorMessage = err.Error()
	}
	if _, jerr := journal.NewWriter(*journalDir).WriteRun(rec); jerr != nil {
		log.Printf("journal write failed: %v", jerr)
	}
	if err != nil {
		log.Fatalf("snapshot %s failed: %v", mode, err)
	}
}

func run(appCfg *config.Config, mode snapshot.Mode, rec *journal.RunRecord) error {
	marketCfg := appCfg.Market.Value
	if marketCfg == nil {
		marketCfg = market.MustLoad()
	}
	provider, err := marketCfg.DefaultProvider()
	if err != nil {
		return err
	}

	if appCfg.Storage.Value == nil {
		return errStorageRequired
	}
	store := storage.NewGateway(appCfg.Storage.Value)
	notifier := notify.New(&appCfg.Notify)

	builder := snapshot.NewBuilder(provider, store, &appCfg.Snapshot)
	ctx := context.Background()

	var (
		payload interface{}
		date    string
		invalid bool
	)
	switch mode {
	case snapshot.ModeForecast:
		snap, err := builder.BuildForecast(ctx)
		if err != nil {
			return err
		}
		payload, date, invalid = snap, snap.Meta.SnapshotDateLocal, snap.Meta.Invalid
	case snapshot.ModeReview:
		review, err := builder.BuildReview(ctx)
		if err != nil {
			return err
		}
		payload, date, invalid = review, review.Meta.SnapshotDateLocal, review.Meta.Invalid
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	path := store.SnapshotPath(date, string(mode))
	message := "auto snapshot " + string(mode) + " " + date
	if err := store.Write(ctx, path, body, message); err != nil {
		return err
	}
	log.Printf("snapshot %s %s stored at %s", mode, date, path)
	rec.Date, rec.StorePath, rec.Invalid, rec.DryRun = date, path, invalid, store.DryRun()

	if err := notifier.SnapshotWritten(string(mode), date, path, invalid, store.DryRun()); err != nil {
		log.Printf("telegram notify failed: %v", err)
	}
	return nil
}
