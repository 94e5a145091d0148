// Package usecase は日足データ収集のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pricesentity "stock_collector/internal/feature/prices/domain/entity"
	stocksentity "stock_collector/internal/feature/stocks/domain/entity"
	"stock_collector/internal/shared/ratelimiter"
	"stock_collector/internal/shared/tradingcal"
)

// ErrUpToDate signals that a stock's data already covers the last
// trading day and collection was skipped.
var ErrUpToDate = errors.New("stock data is up to date")

// QuoteFetcher is the opaque broker capability: fetch daily bars for a
// code up to a base date. The broker connector behind it (login, TR
// marshalling) is outside this system.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type QuoteFetcher interface {
	FetchDailyBars(ctx context.Context, code, baseDate string) ([]pricesentity.DailyBar, error)
}

// BarWriter is the write surface of the per-stock table store.
type BarWriter interface {
	Create(ctx context.Context, code string) error
	UpsertBars(ctx context.Context, code string, bars []pricesentity.DailyBar) (int, error)
}

// Registry is the slice of registry behavior collection needs.
type Registry interface {
	Register(ctx context.Context, code, name, market string) error
	MarkTableCreated(ctx context.Context, code string) error
	UpdateStats(ctx context.Context, code string) error
	Get(ctx context.Context, code string) (*stocksentity.Stock, error)
	ListActive(ctx context.Context) ([]stocksentity.Stock, error)
}

// Calendar answers the freshness question for the skip policy.
type Calendar interface {
	LastTradingDay(base time.Time) time.Time
}

// Summary は1バッチの収集結果カウンタです。
type Summary struct {
	Collected   int      `json:"collected"`   // 保存した行数の合計
	Succeeded   int      `json:"succeeded"`   // 収集に成功した銘柄数
	Skipped     int      `json:"skipped"`     // 最新だったためスキップした銘柄数
	Failed      int      `json:"failed"`      // 失敗した銘柄数
	FailedCodes []string `json:"failed_codes,omitempty"`
}

// CollectUsecase drives the fetch-and-persist loop for daily bars.
type CollectUsecase struct {
	fetcher  QuoteFetcher
	bars     BarWriter
	registry Registry
	cal      Calendar
	limiter  ratelimiter.RateLimiterInterface
	now      func() time.Time
}

// NewCollectUsecase creates a new CollectUsecase.
func NewCollectUsecase(fetcher QuoteFetcher, bars BarWriter, registry Registry,
	cal Calendar, limiter ratelimiter.RateLimiterInterface) *CollectUsecase {
	return &CollectUsecase{
		fetcher:  fetcher,
		bars:     bars,
		registry: registry,
		cal:      cal,
		limiter:  limiter,
		now:      time.Now,
	}
}

// FreshEnough reports whether data whose newest bar is latestDate needs
// no re-collection as of today: it is fresh when it covers the last
// trading day at or before today.
func FreshEnough(latestDate string, today time.Time, cal Calendar) bool {
	if latestDate == "" {
		return false
	}
	latest, err := tradingcal.ParseYMD(latestDate)
	if err != nil {
		// 壊れた日付は鮮度不明として再収集する
		return false
	}
	return !latest.Before(cal.LastTradingDay(today))
}

// CollectOne registers the stock if needed, provisions its table, and
// fetches and upserts its daily bars unless the data is already fresh
// (force overrides the skip policy). Returns the number of saved rows.
func (u *CollectUsecase) CollectOne(ctx context.Context, code, name, market string, force bool) (int, error) {
	if err := u.registry.Register(ctx, code, name, market); err != nil {
		return 0, fmt.Errorf("register %s: %w", code, err)
	}
	if err := u.bars.Create(ctx, code); err != nil {
		return 0, fmt.Errorf("prepare table for %s: %w", code, err)
	}
	if err := u.registry.MarkTableCreated(ctx, code); err != nil {
		return 0, fmt.Errorf("mark table for %s: %w", code, err)
	}

	if !force {
		s, err := u.registry.Get(ctx, code)
		if err != nil {
			return 0, fmt.Errorf("read registry for %s: %w", code, err)
		}
		if s.LatestDate != nil && FreshEnough(*s.LatestDate, u.now(), u.cal) {
			return 0, ErrUpToDate
		}
	}

	u.limiter.WaitIfNeeded()
	baseDate := tradingcal.FormatYMD(u.now())
	fetched, err := u.fetcher.FetchDailyBars(ctx, code, baseDate)
	if err != nil {
		return 0, fmt.Errorf("fetch bars for %s: %w", code, err)
	}

	saved, err := u.bars.UpsertBars(ctx, code, fetched)
	if err != nil {
		return saved, fmt.Errorf("save bars for %s: %w", code, err)
	}

	// 統計の再計算はテーブル変更のたびに必須
	if err := u.registry.UpdateStats(ctx, code); err != nil {
		return saved, fmt.Errorf("refresh stats for %s: %w", code, err)
	}
	return saved, nil
}

// CollectAll runs CollectOne for every active instrument. A failing
// stock is logged and counted; it never aborts the batch.
func (u *CollectUsecase) CollectAll(ctx context.Context, force bool) (Summary, error) {
	stocks, err := u.registry.ListActive(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list active stocks: %w", err)
	}

	var sum Summary
	for _, s := range stocks {
		saved, err := u.CollectOne(ctx, s.Code, s.Name, s.Market, force)
		switch {
		case errors.Is(err, ErrUpToDate):
			sum.Skipped++
		case err != nil:
			slog.Error("failed to collect stock", "code", s.Code, "error", err)
			sum.Failed++
			sum.FailedCodes = append(sum.FailedCodes, s.Code)
		default:
			sum.Succeeded++
			sum.Collected += saved
		}
	}
	return sum, nil
}
