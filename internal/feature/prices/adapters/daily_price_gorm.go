// Package adapters は銘柄別日足テーブルのGORM実装を提供します。
//
// 一銘柄につき一つの物理テーブル（daily_prices_<code>）を動的に作成する
// 非正規化構造です。テーブル名に流れ込むコードは必ず ValidateCode を
// 通してから使用します。
package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"stock_collector/internal/feature/prices/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TablePrefix is prepended to the stock code to form the physical table name.
const TablePrefix = "daily_prices_"

// codePattern bounds what may be interpolated into a table identifier.
// Korean stock codes are 6 digits; the pattern is slightly wider to
// admit test fixtures but still strictly alphanumeric.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,10}$`)

// ErrInvalidCode indicates a stock code that is not safe to use as part
// of a physical table identifier.
var ErrInvalidCode = errors.New("invalid stock code")

// nullableColumns are the measured bar columns that may be NULL in
// legacy data, keyed by their physical column name. Column names used in
// NullCount must come from this set.
var nullableColumns = map[string]struct{}{
	"start_price":   {},
	"high_price":    {},
	"low_price":     {},
	"current_price": {},
	"volume":        {},
}

// DailyPriceModel is the row shape of every per-stock table. Column
// names match the broker feed fields (始値=start_price, 終値=current_price)
// so collected data round-trips without renaming. Measured fields are
// pointers because historical tables contain NULLs the validator must
// detect.
type DailyPriceModel struct {
	ID           uint      `gorm:"primaryKey"`
	Date         string    `gorm:"column:date;size:8;not null"`
	Open         *int64    `gorm:"column:start_price"`
	High         *int64    `gorm:"column:high_price"`
	Low          *int64    `gorm:"column:low_price"`
	Close        *int64    `gorm:"column:current_price"`
	Volume       *int64    `gorm:"column:volume"`
	TradingValue *int64    `gorm:"column:trading_value"`
	PrevDayDiff  int64     `gorm:"column:prev_day_diff;not null;default:0"`
	ChangeRate   int64     `gorm:"column:change_rate;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

// ValidateCode rejects codes that are unsafe to interpolate into a
// dynamically addressed table name.
func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return nil
}

// TableName maps a stock code to its physical table identifier. The
// mapping is deterministic and injective over valid codes.
func TableName(code string) (string, error) {
	if err := ValidateCode(code); err != nil {
		return "", err
	}
	return TablePrefix + code, nil
}

// dailyPriceGorm implements the per-stock bar table store.
type dailyPriceGorm struct {
	db *gorm.DB
}

// NewDailyPriceStore は指定されたDB接続で日足ストアの新しいインスタンスを生成します。
func NewDailyPriceStore(db *gorm.DB) *dailyPriceGorm {
	return &dailyPriceGorm{db: db}
}

// Exists reports whether the physical table for code exists.
func (r *dailyPriceGorm) Exists(ctx context.Context, code string) (bool, error) {
	name, err := TableName(code)
	if err != nil {
		return false, err
	}
	return r.db.WithContext(ctx).Migrator().HasTable(name), nil
}

// Create provisions the bar table for code with a uniqueness constraint
// on date. Idempotent: creating an existing table is a no-op success and
// never alters existing data.
func (r *dailyPriceGorm) Create(ctx context.Context, code string) error {
	name, err := TableName(code)
	if err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	if db.Migrator().HasTable(name) {
		return nil
	}
	if err := db.Table(name).AutoMigrate(&DailyPriceModel{}); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}
	// 日付の一意制約。name は検証済みなので埋め込みは安全。
	idx := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS uq_%s_date ON %s (date)", name, name)
	if err := db.Exec(idx).Error; err != nil {
		return fmt.Errorf("create unique index on %s: %w", name, err)
	}
	return nil
}

// Drop deletes the physical table. The registry's table_created flag is
// not touched here; callers reconcile it themselves.
func (r *dailyPriceGorm) Drop(ctx context.Context, code string) error {
	name, err := TableName(code)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Migrator().DropTable(name)
}

// UpsertBar writes one bar. An existing row for the same date is
// overwritten in full and its ingestion timestamp refreshed, because the
// source feed resends overlapping ranges. The table is auto-created on
// first write.
func (r *dailyPriceGorm) UpsertBar(ctx context.Context, code string, bar entity.DailyBar) error {
	name, err := TableName(code)
	if err != nil {
		return err
	}
	if err := r.Create(ctx, code); err != nil {
		return err
	}

	m := toModel(bar)
	m.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Table(name).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"start_price", "high_price", "low_price", "current_price",
			"volume", "trading_value", "prev_day_diff", "change_rate",
			"created_at",
		}),
	}).Create(&m).Error
}

// UpsertBars writes a batch of bars one by one, returning how many were
// saved. A single bad row does not abort the batch.
func (r *dailyPriceGorm) UpsertBars(ctx context.Context, code string, bars []entity.DailyBar) (int, error) {
	saved := 0
	for _, b := range bars {
		if err := r.UpsertBar(ctx, code, b); err != nil {
			return saved, fmt.Errorf("upsert %s/%s: %w", code, b.Date, err)
		}
		saved++
	}
	return saved, nil
}

// Count returns the number of rows in the instrument's table.
func (r *dailyPriceGorm) Count(ctx context.Context, code string) (int64, error) {
	name, err := TableName(code)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.WithContext(ctx).Table(name).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// DateRange returns min(date), max(date) and the row count. first/latest
// are empty when the table has no rows.
func (r *dailyPriceGorm) DateRange(ctx context.Context, code string) (first, latest string, count int64, err error) {
	name, e := TableName(code)
	if e != nil {
		return "", "", 0, e
	}
	row := r.db.WithContext(ctx).Table(name).
		Select("COALESCE(MIN(date), ''), COALESCE(MAX(date), ''), COUNT(*)").
		Row()
	if e := row.Scan(&first, &latest, &count); e != nil {
		return "", "", 0, e
	}
	return first, latest, count, nil
}

// Dates returns every date present, ascending, duplicates included.
func (r *dailyPriceGorm) Dates(ctx context.Context, code string) ([]string, error) {
	name, err := TableName(code)
	if err != nil {
		return nil, err
	}
	var dates []string
	if err := r.db.WithContext(ctx).Table(name).
		Order("date ASC").
		Pluck("date", &dates).Error; err != nil {
		return nil, err
	}
	return dates, nil
}

// NullCount returns how many rows have a NULL in the given measured
// column. The column name must be one of the known nullable columns.
func (r *dailyPriceGorm) NullCount(ctx context.Context, code, column string) (int64, error) {
	name, err := TableName(code)
	if err != nil {
		return 0, err
	}
	if _, ok := nullableColumns[column]; !ok {
		return 0, fmt.Errorf("unknown nullable column %q", column)
	}
	var n int64
	if err := r.db.WithContext(ctx).Table(name).
		Where(column + " IS NULL").
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// CloseStats returns avg/min/max of the close price over rows with a
// positive close, plus how many rows qualified.
func (r *dailyPriceGorm) CloseStats(ctx context.Context, code string) (avg, min, max float64, n int64, err error) {
	name, e := TableName(code)
	if e != nil {
		return 0, 0, 0, 0, e
	}
	var a, lo, hi sql.NullFloat64
	row := r.db.WithContext(ctx).Table(name).
		Select("AVG(current_price), MIN(current_price), MAX(current_price), COUNT(*)").
		Where("current_price IS NOT NULL AND current_price > 0").
		Row()
	if e := row.Scan(&a, &lo, &hi, &n); e != nil {
		return 0, 0, 0, 0, e
	}
	return a.Float64, lo.Float64, hi.Float64, n, nil
}

// PriceOutliers returns up to limit rows whose close falls outside
// [low, high], most recent first. NULL closes never match.
func (r *dailyPriceGorm) PriceOutliers(ctx context.Context, code string, low, high float64, limit int) ([]entity.PricePoint, error) {
	name, err := TableName(code)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Date  string `gorm:"column:date"`
		Close int64  `gorm:"column:current_price"`
	}
	if err := r.db.WithContext(ctx).Table(name).
		Select("date, current_price").
		Where("current_price < ? OR current_price > ?", low, high).
		Order("date DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PricePoint, 0, len(rows))
	for _, x := range rows {
		out = append(out, entity.PricePoint{Date: x.Date, Close: x.Close})
	}
	return out, nil
}

// ZeroPriceCount returns the number of rows whose close is 0 or NULL.
func (r *dailyPriceGorm) ZeroPriceCount(ctx context.Context, code string) (int64, error) {
	return r.zeroOrNullCount(ctx, code, "current_price")
}

// ZeroVolumeCount returns the number of rows whose volume is 0 or NULL.
func (r *dailyPriceGorm) ZeroVolumeCount(ctx context.Context, code string) (int64, error) {
	return r.zeroOrNullCount(ctx, code, "volume")
}

func (r *dailyPriceGorm) zeroOrNullCount(ctx context.Context, code, column string) (int64, error) {
	name, err := TableName(code)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.WithContext(ctx).Table(name).
		Where(column+" = ? OR "+column+" IS NULL", 0).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// AvgPositiveVolume returns the mean volume over rows with volume > 0,
// or 0 when no such row exists.
func (r *dailyPriceGorm) AvgPositiveVolume(ctx context.Context, code string) (float64, error) {
	name, err := TableName(code)
	if err != nil {
		return 0, err
	}
	var avg sql.NullFloat64
	row := r.db.WithContext(ctx).Table(name).
		Select("AVG(volume)").
		Where("volume > 0").
		Row()
	if err := row.Scan(&avg); err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

// DuplicateDates returns every date that appears more than once together
// with its row count, most recent first.
func (r *dailyPriceGorm) DuplicateDates(ctx context.Context, code string) ([]entity.DateCount, error) {
	name, err := TableName(code)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Date string `gorm:"column:date"`
		Cnt  int64  `gorm:"column:cnt"`
	}
	if err := r.db.WithContext(ctx).Table(name).
		Select("date, COUNT(*) AS cnt").
		Group("date").
		Having("COUNT(*) > 1").
		Order("date DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.DateCount, 0, len(rows))
	for _, x := range rows {
		out = append(out, entity.DateCount{Date: x.Date, Count: x.Cnt})
	}
	return out, nil
}

func toModel(b entity.DailyBar) DailyPriceModel {
	open, high, low, closePrice, volume, value := b.Open, b.High, b.Low, b.Close, b.Volume, b.TradingValue
	return DailyPriceModel{
		Date:         b.Date,
		Open:         &open,
		High:         &high,
		Low:          &low,
		Close:        &closePrice,
		Volume:       &volume,
		TradingValue: &value,
		PrevDayDiff:  b.PrevDayDiff,
		ChangeRate:   b.ChangeRate,
	}
}
