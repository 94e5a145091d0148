// Package entity defines the domain models for the prices feature.
package entity

// DailyBar is one day's aggregated trade data for an instrument, in the
// broker feed's representation: prices are integer KRW and the change
// rate is stored scaled by 100 (two decimal places).
type DailyBar struct {
	Date         string // 日付 (YYYYMMDD)
	Open         int64  // 始値
	High         int64  // 高値
	Low          int64  // 安値
	Close        int64  // 終値
	Volume       int64  // 出来高
	TradingValue int64  // 売買代金
	PrevDayDiff  int64  // 前日比
	ChangeRate   int64  // 騰落率 (×100)
}

// PricePoint is a (date, close) pair reported by anomaly scans.
type PricePoint struct {
	Date  string `json:"date"`
	Close int64  `json:"close"`
}

// DateCount is a (date, row count) pair reported by duplicate scans.
type DateCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
