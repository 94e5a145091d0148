// Package adapters はstocksフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"stock_collector/internal/feature/stocks/domain"
	"stock_collector/internal/feature/stocks/domain/entity"
	"stock_collector/internal/feature/stocks/usecase"

	"gorm.io/gorm"
)

// stockGorm はStockRepositoryインターフェースのGORM実装です。
type stockGorm struct {
	db *gorm.DB
}

var _ usecase.StockRepository = (*stockGorm)(nil)

// NewStockRepository は指定されたDB接続でstockGormリポジトリの新しいインスタンスを生成します。
func NewStockRepository(db *gorm.DB) *stockGorm {
	return &stockGorm{db: db}
}

// Register upserts a registry row. A new code is inserted active; an
// existing row only has its display attributes refreshed, and empty
// name/market arguments leave the stored values intact.
func (r *stockGorm) Register(ctx context.Context, code, name, market string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s entity.Stock
		err := tx.Where("code = ?", code).First(&s).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s = entity.Stock{
				Code:     code,
				Name:     name,
				Market:   market,
				IsActive: true,
			}
			return tx.Create(&s).Error
		}
		if err != nil {
			return fmt.Errorf("lookup stock %s: %w", code, err)
		}

		// 部分情報での再登録は既存値を保持する
		if name != "" {
			s.Name = name
		}
		if market != "" {
			s.Market = market
		}
		return tx.Save(&s).Error
	})
}

// MarkTableCreated flips the table_created flag for a registered code.
func (r *stockGorm) MarkTableCreated(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Stock{}).
		Where("code = ?", code).
		Update("table_created", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStockNotFound
	}
	return nil
}

// SetStats writes the recomputed cached statistics back to the registry row.
func (r *stockGorm) SetStats(ctx context.Context, code string, count int64, first, latest *string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Stock{}).
		Where("code = ?", code).
		Updates(map[string]any{
			"data_count":  count,
			"first_date":  first,
			"latest_date": latest,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStockNotFound
	}
	return nil
}

// Deactivate clears is_active for a code. Registry rows are never
// hard-deleted by the collection pipeline.
func (r *stockGorm) Deactivate(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Stock{}).
		Where("code = ?", code).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStockNotFound
	}
	return nil
}

// Get returns the registry row for a code.
func (r *stockGorm) Get(ctx context.Context, code string) (*entity.Stock, error) {
	var s entity.Stock
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStockNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListActive はコード順にすべてのアクティブな銘柄を返します。
func (r *stockGorm) ListActive(ctx context.Context) ([]entity.Stock, error) {
	var stocks []entity.Stock
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// CountSummary returns the aggregate counters over active rows used by
// the collection status surface.
func (r *stockGorm) CountSummary(ctx context.Context) (total, created, records int64, err error) {
	var row struct {
		Total   int64
		Created int64
		Records int64
	}
	err = r.db.WithContext(ctx).
		Model(&entity.Stock{}).
		Select("COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN table_created THEN 1 ELSE 0 END), 0) AS created, " +
			"COALESCE(SUM(data_count), 0) AS records").
		Where("is_active = ?", true).
		Scan(&row).Error
	if err != nil {
		return 0, 0, 0, err
	}
	return row.Total, row.Created, row.Records, nil
}
