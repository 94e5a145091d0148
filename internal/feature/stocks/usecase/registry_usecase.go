// Package usecase は銘柄レジストリ操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"

	"stock_collector/internal/feature/stocks/domain"
	"stock_collector/internal/feature/stocks/domain/entity"
)

// StockRepository abstracts the persistence layer for registry rows.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type StockRepository interface {
	Register(ctx context.Context, code, name, market string) error
	MarkTableCreated(ctx context.Context, code string) error
	SetStats(ctx context.Context, code string, count int64, first, latest *string) error
	Deactivate(ctx context.Context, code string) error
	Get(ctx context.Context, code string) (*entity.Stock, error)
	ListActive(ctx context.Context) ([]entity.Stock, error)
	CountSummary(ctx context.Context) (total, created, records int64, err error)
}

// BarStatsSource は日足テーブルから統計を直接読むための抽象です。
// レジストリのキャッシュ統計はこの経路でのみ実データと同期されます。
type BarStatsSource interface {
	Exists(ctx context.Context, code string) (bool, error)
	DateRange(ctx context.Context, code string) (first, latest string, count int64, err error)
}

// RegistryUsecase provides registry operations over the stock metadata table.
type RegistryUsecase struct {
	repo StockRepository
	bars BarStatsSource
}

// NewRegistryUsecase creates a new RegistryUsecase.
func NewRegistryUsecase(repo StockRepository, bars BarStatsSource) *RegistryUsecase {
	return &RegistryUsecase{repo: repo, bars: bars}
}

// Register upserts an instrument. Safe to call repeatedly, also with
// partial information.
func (u *RegistryUsecase) Register(ctx context.Context, code, name, market string) error {
	if code == "" {
		return fmt.Errorf("register: %w", domain.ErrStockNotFound)
	}
	return u.repo.Register(ctx, code, name, market)
}

// MarkTableCreated records that the instrument's physical price table exists.
func (u *RegistryUsecase) MarkTableCreated(ctx context.Context, code string) error {
	return u.repo.MarkTableCreated(ctx, code)
}

// Deactivate removes an instrument from the active collection set
// without deleting its registry row or price table.
func (u *RegistryUsecase) Deactivate(ctx context.Context, code string) error {
	return u.repo.Deactivate(ctx, code)
}

// Get returns one registry row with its cached stats.
func (u *RegistryUsecase) Get(ctx context.Context, code string) (*entity.Stock, error) {
	return u.repo.Get(ctx, code)
}

// UpdateStats recomputes data_count / first_date / latest_date from the
// instrument's physical table and writes them back. This is the only
// path that keeps the cached registry stats in sync with the table, so
// callers must invoke it after every bar mutation.
func (u *RegistryUsecase) UpdateStats(ctx context.Context, code string) error {
	ok, err := u.bars.Exists(ctx, code)
	if err != nil {
		return fmt.Errorf("check table for %s: %w", code, err)
	}
	if !ok {
		return fmt.Errorf("stats for %s: %w", code, domain.ErrTableMissing)
	}

	first, latest, count, err := u.bars.DateRange(ctx, code)
	if err != nil {
		return fmt.Errorf("read stats for %s: %w", code, err)
	}

	if count == 0 {
		return u.repo.SetStats(ctx, code, 0, nil, nil)
	}
	return u.repo.SetStats(ctx, code, count, &first, &latest)
}

// ListActive returns all active instruments with their cached stats.
// Stats are not live-recomputed here.
func (u *RegistryUsecase) ListActive(ctx context.Context) ([]entity.Stock, error) {
	return u.repo.ListActive(ctx)
}

// CollectionStatus returns the aggregate collection progress counters.
// The completion rate is created/total*100, and 0 when no stock is active.
func (u *RegistryUsecase) CollectionStatus(ctx context.Context) (entity.CollectionStatus, error) {
	total, created, records, err := u.repo.CountSummary(ctx)
	if err != nil {
		return entity.CollectionStatus{}, err
	}
	st := entity.CollectionStatus{
		TotalStocks:   total,
		CreatedTables: created,
		TotalRecords:  records,
	}
	if total > 0 {
		st.CompletionRate = float64(created) / float64(total) * 100
	}
	return st, nil
}
