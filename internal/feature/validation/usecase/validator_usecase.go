// Package usecase はデータ品質検証のビジネスロジックを実装します。
//
// 検証は銘柄ごとに固定の検査バッテリーを順番に実行します:
//  1. テーブル存在チェック（無ければ即終了）
//  2. 基本品質（件数・NULL値）
//  3. 営業日の欠落
//  4. 価格の異常値・ゼロ価格
//  5. 出来高ゼロ
//  6. 日付の重複
//
// どの検査も内部の失敗を外へ伝播させません。ストア障害はその検査に
// スコープされた ERROR 結果へ降格され、検証全体は必ず結果リストを返します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	pricesentity "stock_collector/internal/feature/prices/domain/entity"
	stocksentity "stock_collector/internal/feature/stocks/domain/entity"
	"stock_collector/internal/feature/validation/domain/entity"
)

const (
	// missingDayErrorFloor を超える欠落営業日数は ERROR に昇格します。
	missingDayErrorFloor = 5
	// anomalyLowFactor / anomalyHighFactor bound the accepted close
	// price band around the mean.
	anomalyLowFactor  = 0.5
	anomalyHighFactor = 3.0
	// zeroVolumeErrorRatio 以上のゼロ出来高比率（%）は ERROR になります。
	zeroVolumeErrorRatio = 10.0
	// detailSampleLimit caps the sample lists carried in result details.
	detailSampleLimit = 10
)

// BarStore is the read surface the validator needs from the per-stock
// table store.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type BarStore interface {
	Exists(ctx context.Context, code string) (bool, error)
	Count(ctx context.Context, code string) (int64, error)
	NullCount(ctx context.Context, code, column string) (int64, error)
	DateRange(ctx context.Context, code string) (first, latest string, count int64, err error)
	Dates(ctx context.Context, code string) ([]string, error)
	CloseStats(ctx context.Context, code string) (avg, min, max float64, n int64, err error)
	PriceOutliers(ctx context.Context, code string, low, high float64, limit int) ([]pricesentity.PricePoint, error)
	ZeroPriceCount(ctx context.Context, code string) (int64, error)
	ZeroVolumeCount(ctx context.Context, code string) (int64, error)
	AvgPositiveVolume(ctx context.Context, code string) (float64, error)
	DuplicateDates(ctx context.Context, code string) ([]pricesentity.DateCount, error)
}

// StockLister exposes the active instrument set from the registry.
type StockLister interface {
	ListActive(ctx context.Context) ([]stocksentity.Stock, error)
}

// TradingCalendar answers which days the market was open.
type TradingCalendar interface {
	TradingDaysBetweenYMD(start, end string) ([]string, error)
}

// ValidatorUsecase runs the data quality check battery.
type ValidatorUsecase struct {
	store  BarStore
	stocks StockLister
	cal    TradingCalendar
}

// NewValidatorUsecase creates a new ValidatorUsecase.
func NewValidatorUsecase(store BarStore, stocks StockLister, cal TradingCalendar) *ValidatorUsecase {
	return &ValidatorUsecase{store: store, stocks: stocks, cal: cal}
}

// Validate runs every check against one instrument and returns the
// ordered findings. It never returns an error: infrastructure failures
// become ERROR results.
func (v *ValidatorUsecase) Validate(ctx context.Context, code string) (results []entity.Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("validation panicked", "code", code, "panic", r)
			results = append(results, entity.Result{
				StockCode: code,
				CheckType: entity.CheckValidationError,
				Status:    entity.StatusError,
				Message:   fmt.Sprintf("validation aborted: %v", r),
			})
		}
	}()

	ok, err := v.store.Exists(ctx, code)
	if err != nil {
		return []entity.Result{{
			StockCode: code,
			CheckType: entity.CheckTableExists,
			Status:    entity.StatusError,
			Message:   fmt.Sprintf("table check failed: %v", err),
		}}
	}
	if !ok {
		// 物理テーブルが無ければ以降の検査は意味を持たない
		return []entity.Result{{
			StockCode: code,
			CheckType: entity.CheckTableExists,
			Status:    entity.StatusError,
			Message:   "stock price table does not exist",
		}}
	}

	results = append(results, v.checkBasicQuality(ctx, code)...)
	results = append(results, v.checkMissingTradingDays(ctx, code)...)
	results = append(results, v.checkPriceAnomalies(ctx, code)...)
	results = append(results, v.checkVolume(ctx, code)...)
	results = append(results, v.checkDuplicateDates(ctx, code)...)
	return results
}

// ValidateAll runs Validate for every active instrument. A failing
// instrument never aborts the batch; its failure shows up as an ERROR
// result under its own code.
func (v *ValidatorUsecase) ValidateAll(ctx context.Context) (map[string][]entity.Result, error) {
	stocks, err := v.stocks.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active stocks: %w", err)
	}

	all := make(map[string][]entity.Result, len(stocks))
	for _, s := range stocks {
		all[s.Code] = v.Validate(ctx, s.Code)
	}
	return all, nil
}

// checkBasicQuality は総件数とNULL値を確認します。
func (v *ValidatorUsecase) checkBasicQuality(ctx context.Context, code string) []entity.Result {
	total, err := v.store.Count(ctx, code)
	if err != nil {
		return []entity.Result{checkFailed(code, entity.CheckBasic, "basic check failed", err)}
	}

	if total == 0 {
		return []entity.Result{{
			StockCode: code,
			CheckType: entity.CheckDataCount,
			Status:    entity.StatusWarning,
			Message:   "no data collected yet",
			Details:   map[string]any{"total_count": int64(0)},
		}}
	}

	var results []entity.Result

	nullChecks := []struct {
		column string
		label  string
	}{
		{"current_price", "close price"},
		{"volume", "volume"},
		{"start_price", "open price"},
		{"high_price", "high price"},
		{"low_price", "low price"},
	}
	for _, nc := range nullChecks {
		n, err := v.store.NullCount(ctx, code, nc.column)
		if err != nil {
			results = append(results, checkFailed(code, entity.CheckBasic, "basic check failed", err))
			continue
		}
		if n > 0 {
			results = append(results, entity.Result{
				StockCode: code,
				CheckType: entity.CheckNullData,
				Status:    entity.StatusWarning,
				Message:   fmt.Sprintf("%s is NULL in %d rows", nc.label, n),
				Details: map[string]any{
					"field":       nc.column,
					"null_count":  n,
					"total_count": total,
				},
			})
		}
	}

	results = append(results, entity.Result{
		StockCode: code,
		CheckType: entity.CheckDataCount,
		Status:    entity.StatusPass,
		Message:   fmt.Sprintf("%d rows present", total),
		Details:   map[string]any{"total_count": total},
	})
	return results
}

// checkMissingTradingDays はテーブルの日付範囲に対して期待される営業日
// との差分を取ります。
func (v *ValidatorUsecase) checkMissingTradingDays(ctx context.Context, code string) []entity.Result {
	first, latest, actual, err := v.store.DateRange(ctx, code)
	if err != nil {
		return []entity.Result{checkFailed(code, entity.CheckMissingTradingDays, "trading day check failed", err)}
	}
	if actual == 0 || first == "" {
		// 空テーブルでは判定できない
		return nil
	}

	expected, err := v.cal.TradingDaysBetweenYMD(first, latest)
	if err != nil {
		return []entity.Result{checkFailed(code, entity.CheckMissingTradingDays, "trading day check failed", err)}
	}
	expectedCount := int64(len(expected))
	missing := expectedCount - actual

	if missing <= 0 {
		return []entity.Result{{
			StockCode: code,
			CheckType: entity.CheckMissingTradingDays,
			Status:    entity.StatusPass,
			Message:   fmt.Sprintf("trading day coverage complete (%d rows)", actual),
			Details: map[string]any{
				"expected_count": expectedCount,
				"actual_count":   actual,
			},
		}}
	}

	// 実際に欠落した日付を期待リストとの差集合で求める
	var missingDates []string
	existing, err := v.store.Dates(ctx, code)
	if err != nil {
		return []entity.Result{checkFailed(code, entity.CheckMissingTradingDays, "trading day check failed", err)}
	}
	present := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		present[d] = struct{}{}
	}
	for _, d := range expected {
		if _, ok := present[d]; !ok {
			missingDates = append(missingDates, d)
			if len(missingDates) == detailSampleLimit {
				break
			}
		}
	}

	status := entity.StatusWarning
	if missing > missingDayErrorFloor {
		status = entity.StatusError
	}
	return []entity.Result{{
		StockCode: code,
		CheckType: entity.CheckMissingTradingDays,
		Status:    status,
		Message:   fmt.Sprintf("missing trading days: %d", missing),
		Details: map[string]any{
			"expected_count": expectedCount,
			"actual_count":   actual,
			"missing_count":  missing,
			"missing_dates":  missingDates,
			"date_range":     fmt.Sprintf("%s ~ %s", first, latest),
		},
	}}
}

// checkPriceAnomalies flags closes far outside the mean band, and counts
// zero/NULL closes separately. A structurally absent price is always an
// error; a present but unusual one is only a warning.
func (v *ValidatorUsecase) checkPriceAnomalies(ctx context.Context, code string) []entity.Result {
	avg, min, max, n, err := v.store.CloseStats(ctx, code)
	if err != nil {
		return []entity.Result{checkFailed(code, entity.CheckPriceAnomalies, "price anomaly check failed", err)}
	}
	if n == 0 {
		return nil
	}

	lowThreshold := avg * anomalyLowFactor
	highThreshold := avg * anomalyHighFactor

	anomalies, err := v.store.PriceOutliers(ctx, code, lowThreshold, highThreshold, detailSampleLimit)
	if err != nil {
		return []entity.Result{checkFailed(code, entity.CheckPriceAnomalies, "price anomaly check failed", err)}
	}
	zeroCount, err := v.store.ZeroPriceCount(ctx, code)
	if err != nil {
		return []entity.Result{checkFailed(code, entity.CheckPriceAnomalies, "price anomaly check failed", err)}
	}

	var results []entity.Result
	if len(anomalies) > 0 {
		results = append(results, entity.Result{
			StockCode: code,
			CheckType: entity.CheckPriceAnomalies,
			Status:    entity.StatusWarning,
			Message:   fmt.Sprintf("price anomalies found: %d", len(anomalies)),
			Details: map[string]any{
				"avg_price":      int64(avg),
				"anomalies":      anomalies,
				"threshold_low":  int64(lowThreshold),
				"threshold_high": int64(highThreshold),
			},
		})
	}
	if zeroCount > 0 {
		results = append(results, entity.Result{
			StockCode: code,
			CheckType: entity.CheckZeroPrice,
			Status:    entity.StatusError,
			Message:   fmt.Sprintf("zero or NULL close price rows: %d", zeroCount),
			Details:   map[string]any{"zero_count": zeroCount},
		})
	}
	if len(anomalies) == 0 && zeroCount == 0 {
		results = append(results, entity.Result{
			StockCode: code,
			CheckType: entity.CheckPriceQuality,
			Status:    entity.StatusPass,
			Message:   "price data looks healthy",
			Details: map[string]any{
				"avg_price": int64(avg),
				"min_price": int64(min),
				"max_price": int64(max),
			},
		})
	}
	return results
}

// checkVolume は出来高0またはNULLの行を数え、比率で重大度を決めます。
func (v *ValidatorUsecase) checkVolume(ctx context.Context, code string) []entity.Result {
	zeroCount, err := v.store.ZeroVolumeCount(ctx, code)
	if err != nil {
		return []entity.Result{checkFailed(code, entity.CheckVolume, "volume check failed", err)}
	}

	if zeroCount == 0 {
		avg, err := v.store.AvgPositiveVolume(ctx, code)
		if err != nil {
			return []entity.Result{checkFailed(code, entity.CheckVolume, "volume check failed", err)}
		}
		return []entity.Result{{
			StockCode: code,
			CheckType: entity.CheckVolumeQuality,
			Status:    entity.StatusPass,
			Message:   "volume data looks healthy",
			Details:   map[string]any{"avg_volume": int64(avg)},
		}}
	}

	total, err := v.store.Count(ctx, code)
	if err != nil {
		return []entity.Result{checkFailed(code, entity.CheckVolume, "volume check failed", err)}
	}
	ratio := 0.0
	if total > 0 {
		ratio = float64(zeroCount) / float64(total) * 100
	}
	status := entity.StatusWarning
	if ratio >= zeroVolumeErrorRatio {
		status = entity.StatusError
	}
	return []entity.Result{{
		StockCode: code,
		CheckType: entity.CheckZeroVolume,
		Status:    status,
		Message:   fmt.Sprintf("zero volume rows: %d (%.1f%%)", zeroCount, ratio),
		Details: map[string]any{
			"zero_count":  zeroCount,
			"total_count": total,
			"zero_ratio":  ratio,
		},
	}}
}

// checkDuplicateDates finds dates appearing more than once. Any
// duplicate is a data integrity error since the store enforces
// uniqueness; a violation means the table was written around the store.
func (v *ValidatorUsecase) checkDuplicateDates(ctx context.Context, code string) []entity.Result {
	dups, err := v.store.DuplicateDates(ctx, code)
	if err != nil {
		return []entity.Result{checkFailed(code, entity.CheckDuplicate, "duplicate check failed", err)}
	}

	if len(dups) == 0 {
		return []entity.Result{{
			StockCode: code,
			CheckType: entity.CheckDuplicateDates,
			Status:    entity.StatusPass,
			Message:   "no duplicate dates",
		}}
	}

	var totalDuplicates int64
	for _, d := range dups {
		totalDuplicates += d.Count - 1
	}
	sample := dups
	if len(sample) > detailSampleLimit {
		sample = sample[:detailSampleLimit]
	}
	return []entity.Result{{
		StockCode: code,
		CheckType: entity.CheckDuplicateDates,
		Status:    entity.StatusError,
		Message: fmt.Sprintf("duplicate dates: %d dates, %d extra rows",
			len(dups), totalDuplicates),
		Details: map[string]any{
			"duplicate_dates":         sample,
			"total_duplicate_records": totalDuplicates,
		},
	}}
}

// checkFailed converts an infrastructure failure into an ERROR result
// scoped to a single check.
func checkFailed(code string, check entity.CheckType, label string, err error) entity.Result {
	slog.Error(label, "code", code, "error", err)
	return entity.Result{
		StockCode: code,
		CheckType: check,
		Status:    entity.StatusError,
		Message:   fmt.Sprintf("%s: %v", label, err),
	}
}
