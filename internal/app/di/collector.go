// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	collectorusecase "stock_collector/internal/feature/collector/usecase"
	pricesadapters "stock_collector/internal/feature/prices/adapters"
	stocksadapters "stock_collector/internal/feature/stocks/adapters"
	stocksusecase "stock_collector/internal/feature/stocks/usecase"
	"stock_collector/internal/platform/quoteapi"
	"stock_collector/internal/shared/ratelimiter"
	"stock_collector/internal/shared/tradingcal"

	"gorm.io/gorm"
)

// NewQuoteFeed creates a fully configured QuoteFeed with HTTP client.
func NewQuoteFeed() *quoteapi.QuoteFeed {
	cfg := quoteapi.LoadConfig()
	httpClient := quoteapi.NewHTTPClient(cfg.Timeout)
	return quoteapi.NewQuoteFeed(cfg, httpClient)
}

// NewRegistry assembles the registry usecase over the metadata table and
// the per-stock price tables.
func NewRegistry(gdb *gorm.DB) *stocksusecase.RegistryUsecase {
	stocks := stocksadapters.NewStockRepository(gdb)
	bars := pricesadapters.NewDailyPriceStore(gdb)
	return stocksusecase.NewRegistryUsecase(stocks, bars)
}

// NewCollector assembles the collection usecase. The rate limiter caps
// quote bridge requests at the broker's TR limit.
func NewCollector(gdb *gorm.DB) *collectorusecase.CollectUsecase {
	limiter := ratelimiter.NewRateLimiter(5, time.Second)
	return collectorusecase.NewCollectUsecase(
		NewQuoteFeed(),
		pricesadapters.NewDailyPriceStore(gdb),
		NewRegistry(gdb),
		tradingcal.New(),
		limiter,
	)
}
