package main

import (
	"context"
	"flag"
	"log"

	"bybitsnap/internal/cli"
	"bybitsnap/internal/config"
	"bybitsnap/pkg/aggregate"
	"bybitsnap/pkg/storage"
)

var configFile = flag.String("f", "etc/bybitsnap.yaml", "the config file")

func main() {
	log.SetFlags(log.Ldate | log.Ltime)
	flag.Parse()

	appCfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	for _, line := range cli.ConfigSummaryLines(appCfg) {
		log.Printf("  - %s", line)
	}

	if appCfg.Storage.Value == nil {
		log.Fatal("storage config section is required")
	}
	store := storage.NewGateway(appCfg.Storage.Value)

	if err := aggregate.New(store).Run(context.Background()); err != nil {
		log.Fatalf("aggregate run failed: %v", err)
	}
	log.Println("analytics rebuilt")
}
