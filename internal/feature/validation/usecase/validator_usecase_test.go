package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	pricesadapters "stock_collector/internal/feature/prices/adapters"
	pricesentity "stock_collector/internal/feature/prices/domain/entity"
	stocksadapters "stock_collector/internal/feature/stocks/adapters"
	stocksentity "stock_collector/internal/feature/stocks/domain/entity"
	"stock_collector/internal/feature/validation/domain/entity"
	"stock_collector/internal/feature/validation/usecase"
	"stock_collector/internal/shared/tradingcal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupValidator は実アダプタとインメモリSQLiteで検証器を組み立てます。
func setupValidator(t *testing.T) (*usecase.ValidatorUsecase, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&stocksentity.Stock{}))

	store := pricesadapters.NewDailyPriceStore(db)
	stocks := stocksadapters.NewStockRepository(db)
	v := usecase.NewValidatorUsecase(store, stocks, tradingcal.New())
	return v, db
}

// seedBars は指定した日付の日足を投入します。テーブルは自動作成されます。
func seedBars(t *testing.T, db *gorm.DB, code string, dates []string, close, volume int64) {
	t.Helper()

	store := pricesadapters.NewDailyPriceStore(db)
	bars := make([]pricesentity.DailyBar, 0, len(dates))
	for _, d := range dates {
		bars = append(bars, pricesentity.DailyBar{
			Date:         d,
			Open:         close - 100,
			High:         close + 200,
			Low:          close - 300,
			Close:        close,
			Volume:       volume,
			TradingValue: close * volume,
		})
	}
	_, err := store.UpsertBars(context.Background(), code, bars)
	require.NoError(t, err)
}

// findResult は指定チェックの結果を返します。
func findResult(t *testing.T, results []entity.Result, check entity.CheckType) entity.Result {
	t.Helper()

	for _, r := range results {
		if r.CheckType == check {
			return r
		}
	}
	t.Fatalf("no result with check type %s in %+v", check, results)
	return entity.Result{}
}

func hasCheck(results []entity.Result, check entity.CheckType) bool {
	for _, r := range results {
		if r.CheckType == check {
			return true
		}
	}
	return false
}

// TestValidate_TableMissing はテーブルが無い場合に単一のERRORで打ち切ることを検証します。
func TestValidate_TableMissing(t *testing.T) {
	t.Parallel()

	v, _ := setupValidator(t)

	results := v.Validate(context.Background(), "005930")
	require.Len(t, results, 1)
	assert.Equal(t, entity.CheckTableExists, results[0].CheckType)
	assert.Equal(t, entity.StatusError, results[0].Status)
	assert.Equal(t, "stock price table does not exist", results[0].Message)
}

// TestValidate_EmptyTable は空テーブルがDATA_COUNTのWARNINGのみになることを検証します。
func TestValidate_EmptyTable(t *testing.T) {
	t.Parallel()

	v, db := setupValidator(t)
	store := pricesadapters.NewDailyPriceStore(db)
	require.NoError(t, store.Create(context.Background(), "005930"))

	results := v.Validate(context.Background(), "005930")

	r := findResult(t, results, entity.CheckDataCount)
	assert.Equal(t, entity.StatusWarning, r.Status)
	assert.Equal(t, int64(0), r.Details["total_count"])

	// 空テーブルでは欠落・価格の検査は発動しない
	assert.False(t, hasCheck(results, entity.CheckMissingTradingDays))
	assert.False(t, hasCheck(results, entity.CheckPriceQuality))
	assert.False(t, hasCheck(results, entity.CheckPriceAnomalies))
}

// TestValidate_HealthyData は欠落なしの健全なデータが全チェックPASSになることを検証します。
func TestValidate_HealthyData(t *testing.T) {
	t.Parallel()

	v, db := setupValidator(t)
	// 2025-01-06(月)〜01-10(金)、営業日連続
	seedBars(t, db, "005930", []string{
		"20250106", "20250107", "20250108", "20250109", "20250110",
	}, 55000, 1000)

	results := v.Validate(context.Background(), "005930")

	assert.Equal(t, entity.StatusPass, findResult(t, results, entity.CheckDataCount).Status)
	assert.Equal(t, entity.StatusPass, findResult(t, results, entity.CheckMissingTradingDays).Status)
	assert.Equal(t, entity.StatusPass, findResult(t, results, entity.CheckPriceQuality).Status)
	assert.Equal(t, entity.StatusPass, findResult(t, results, entity.CheckVolumeQuality).Status)
	assert.Equal(t, entity.StatusPass, findResult(t, results, entity.CheckDuplicateDates).Status)

	for _, r := range results {
		assert.Equal(t, entity.StatusPass, r.Status, "unexpected non-PASS result: %+v", r)
	}

	cover := findResult(t, results, entity.CheckMissingTradingDays)
	assert.Equal(t, int64(5), cover.Details["expected_count"])
	assert.Equal(t, int64(5), cover.Details["actual_count"])
}

// TestValidate_MissingTradingDays は少数の欠落がWARNING、多数がERRORになることを検証します。
func TestValidate_MissingTradingDays(t *testing.T) {
	t.Parallel()

	t.Run("few missing days is a warning", func(t *testing.T) {
		t.Parallel()

		v, db := setupValidator(t)
		// 2025-01-03(金)が欠落: 期待営業日は 01-02, 01-03, 01-06
		seedBars(t, db, "005930", []string{"20250102", "20250106"}, 55000, 1000)

		r := findResult(t, v.Validate(context.Background(), "005930"), entity.CheckMissingTradingDays)
		assert.Equal(t, entity.StatusWarning, r.Status)
		assert.Equal(t, int64(3), r.Details["expected_count"])
		assert.Equal(t, int64(2), r.Details["actual_count"])
		assert.Equal(t, int64(1), r.Details["missing_count"])
		assert.Equal(t, []string{"20250103"}, r.Details["missing_dates"])
		assert.Equal(t, "20250102 ~ 20250106", r.Details["date_range"])
	})

	t.Run("many missing days is an error with capped sample", func(t *testing.T) {
		t.Parallel()

		v, db := setupValidator(t)
		// 1月の両端のみ: 間の営業日が大量に欠落する
		seedBars(t, db, "005930", []string{"20250102", "20250131"}, 55000, 1000)

		r := findResult(t, v.Validate(context.Background(), "005930"), entity.CheckMissingTradingDays)
		assert.Equal(t, entity.StatusError, r.Status)
		// 2025年1月は祝日（1/1、ソルラル1/28-30）を除いて19営業日
		assert.Equal(t, int64(19), r.Details["expected_count"])
		assert.Equal(t, int64(17), r.Details["missing_count"])
		missing, ok := r.Details["missing_dates"].([]string)
		require.True(t, ok)
		assert.Len(t, missing, 10)
		assert.Equal(t, "20250103", missing[0])
	})
}

// TestValidate_PriceAnomalies は平均帯域外の終値がWARNINGになることを検証します。
func TestValidate_PriceAnomalies(t *testing.T) {
	t.Parallel()

	v, db := setupValidator(t)
	// 9行の通常値で平均を安定させる
	seedBars(t, db, "005930", []string{
		"20250106", "20250107", "20250108", "20250109", "20250110",
		"20250113", "20250114", "20250115", "20250116",
	}, 50000, 1000)
	// 平均の3倍を大きく超える終値
	seedBars(t, db, "005930", []string{"20250117"}, 500000, 1000)

	results := v.Validate(context.Background(), "005930")

	r := findResult(t, results, entity.CheckPriceAnomalies)
	assert.Equal(t, entity.StatusWarning, r.Status)
	anomalies, ok := r.Details["anomalies"].([]pricesentity.PricePoint)
	require.True(t, ok)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "20250117", anomalies[0].Date)
	assert.Equal(t, int64(500000), anomalies[0].Close)

	// 異常があるときはPRICE_QUALITYのPASSは出ない
	assert.False(t, hasCheck(results, entity.CheckPriceQuality))
}

// TestValidate_ZeroPrice は終値ゼロの行がERRORになることを検証します。
func TestValidate_ZeroPrice(t *testing.T) {
	t.Parallel()

	v, db := setupValidator(t)
	seedBars(t, db, "005930", []string{
		"20250106", "20250107", "20250108", "20250109",
	}, 55000, 1000)
	seedBars(t, db, "005930", []string{"20250110"}, 0, 1000)

	r := findResult(t, v.Validate(context.Background(), "005930"), entity.CheckZeroPrice)
	assert.Equal(t, entity.StatusError, r.Status)
	assert.Equal(t, int64(1), r.Details["zero_count"])
}

// TestValidate_ZeroVolume はゼロ出来高比率による重大度の切り替えを検証します。
func TestValidate_ZeroVolume(t *testing.T) {
	t.Parallel()

	t.Run("low ratio is a warning", func(t *testing.T) {
		t.Parallel()

		v, db := setupValidator(t)
		// 20行中1行 = 5.0% < 10%
		dates := make([]string, 0, 19)
		for i := 1; i <= 19; i++ {
			dates = append(dates, fmt.Sprintf("202502%02d", i))
		}
		seedBars(t, db, "005930", dates, 55000, 1000)
		seedBars(t, db, "005930", []string{"20250220"}, 55000, 0)

		r := findResult(t, v.Validate(context.Background(), "005930"), entity.CheckZeroVolume)
		assert.Equal(t, entity.StatusWarning, r.Status)
		assert.Equal(t, int64(1), r.Details["zero_count"])
		assert.Equal(t, int64(20), r.Details["total_count"])
		assert.InDelta(t, 5.0, r.Details["zero_ratio"].(float64), 0.001)
	})

	t.Run("high ratio is an error", func(t *testing.T) {
		t.Parallel()

		v, db := setupValidator(t)
		// 10行中9行 = 90% >= 10%
		seedBars(t, db, "005930", []string{"20250203"}, 55000, 1000)
		dates := make([]string, 0, 9)
		for i := 4; i <= 12; i++ {
			dates = append(dates, fmt.Sprintf("202502%02d", i))
		}
		seedBars(t, db, "005930", dates, 55000, 0)

		r := findResult(t, v.Validate(context.Background(), "005930"), entity.CheckZeroVolume)
		assert.Equal(t, entity.StatusError, r.Status)
		assert.Equal(t, int64(9), r.Details["zero_count"])
		assert.InDelta(t, 90.0, r.Details["zero_ratio"].(float64), 0.001)
	})
}

// TestValidate_DuplicateDates は重複日付がERRORになることを検証します。
// ストアの一意制約を外して直接INSERTし、壊れたテーブルを再現します。
func TestValidate_DuplicateDates(t *testing.T) {
	t.Parallel()

	v, db := setupValidator(t)
	store := pricesadapters.NewDailyPriceStore(db)
	require.NoError(t, store.Create(context.Background(), "005930"))
	require.NoError(t, db.Exec(`DROP INDEX uq_daily_prices_005930_date`).Error)
	for _, date := range []string{"20250106", "20250107", "20250107"} {
		require.NoError(t, db.Exec(fmt.Sprintf(
			`INSERT INTO daily_prices_005930 (date, current_price, volume) VALUES ('%s', 55000, 1000)`, date)).Error)
	}

	r := findResult(t, v.Validate(context.Background(), "005930"), entity.CheckDuplicateDates)
	assert.Equal(t, entity.StatusError, r.Status)
	assert.Equal(t, int64(1), r.Details["total_duplicate_records"])
	dups, ok := r.Details["duplicate_dates"].([]pricesentity.DateCount)
	require.True(t, ok)
	require.Len(t, dups, 1)
	assert.Equal(t, "20250107", dups[0].Date)
	assert.Equal(t, int64(2), dups[0].Count)
}

// TestValidateAll は1銘柄の失敗がバッチを止めないことを検証します。
func TestValidateAll(t *testing.T) {
	t.Parallel()

	v, db := setupValidator(t)
	stocks := stocksadapters.NewStockRepository(db)
	ctx := context.Background()

	require.NoError(t, stocks.Register(ctx, "005930", "Samsung Electronics", "KOSPI"))
	require.NoError(t, stocks.Register(ctx, "000660", "SK Hynix", "KOSPI"))
	// 005930のみテーブルを持つ
	seedBars(t, db, "005930", []string{"20250106", "20250107"}, 55000, 1000)

	all, err := v.ValidateAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// テーブルの無い銘柄はTABLE_EXISTSのERRORに畳まれる
	require.Len(t, all["000660"], 1)
	assert.Equal(t, entity.CheckTableExists, all["000660"][0].CheckType)
	assert.Equal(t, entity.StatusError, all["000660"][0].Status)

	assert.Equal(t, entity.StatusPass, findResult(t, all["005930"], entity.CheckDataCount).Status)
}

// failingLister はListActiveが常に失敗するスタブです。
type failingLister struct{}

func (failingLister) ListActive(ctx context.Context) ([]stocksentity.Stock, error) {
	return nil, errors.New("registry unavailable")
}

// TestValidateAll_ListError は銘柄一覧の取得失敗がエラーとして返ることを検証します。
func TestValidateAll_ListError(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	store := pricesadapters.NewDailyPriceStore(db)
	v := usecase.NewValidatorUsecase(store, failingLister{}, tradingcal.New())

	_, err = v.ValidateAll(context.Background())
	assert.ErrorContains(t, err, "registry unavailable")
}
