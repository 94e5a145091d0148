package di

import (
	pricesadapters "stock_collector/internal/feature/prices/adapters"
	stocksadapters "stock_collector/internal/feature/stocks/adapters"
	validationusecase "stock_collector/internal/feature/validation/usecase"
	"stock_collector/internal/platform/cache"
	"stock_collector/internal/shared/tradingcal"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewValidator assembles the data quality validator over the per-stock
// tables, the registry and the trading calendar.
func NewValidator(gdb *gorm.DB) *validationusecase.ValidatorUsecase {
	bars := pricesadapters.NewDailyPriceStore(gdb)
	stocks := stocksadapters.NewStockRepository(gdb)
	return validationusecase.NewValidatorUsecase(bars, stocks, tradingcal.New())
}

// NewReportGenerator assembles the daily report generator behind a Redis
// cache. rdb may be nil, in which case the cache is bypassed.
func NewReportGenerator(gdb *gorm.DB, rdb *goredis.Client) *cache.CachingReportGenerator {
	inner := validationusecase.NewReportUsecase(
		NewValidator(gdb),
		stocksadapters.NewStockRepository(gdb),
	)
	return cache.NewCachingReportGenerator(rdb, 0, inner, "")
}
