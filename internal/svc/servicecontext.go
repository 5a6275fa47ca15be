package svc

import (
	"log"

	"bybitsnap/internal/config"
	_ "bybitsnap/pkg/market/exchanges/bybit"
	storagepkg "bybitsnap/pkg/storage"
)

type ServiceContext struct {
	Config config.Config

	Store *storagepkg.Gateway
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{Config: c}

	if c.Storage.Value == nil {
		log.Fatal("storage config section is required for the read proxy")
	}
	svc.Store = storagepkg.NewGateway(c.Storage.Value)

	// Market providers are not served by the proxy routes, but a broken
	// provider config should fail at startup rather than on the next cron run.
	if c.Market.Value != nil {
		if _, err := c.Market.Value.BuildProviders(); err != nil {
			log.Fatalf("failed to build market providers: %v", err)
		}
	}
	return svc
}
