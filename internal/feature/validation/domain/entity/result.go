// Package entity defines the domain models for the validation feature.
package entity

// Severity classifies the outcome of one data quality check.
type Severity string

const (
	// StatusPass は問題なし。
	StatusPass Severity = "PASS"
	// StatusWarning は注意が必要だが致命的ではない。
	StatusWarning Severity = "WARNING"
	// StatusError はデータ整合性が壊れている。
	StatusError Severity = "ERROR"
)

// CheckType identifies which validation check produced a result.
type CheckType string

const (
	CheckTableExists        CheckType = "TABLE_EXISTS"
	CheckDataCount          CheckType = "DATA_COUNT"
	CheckNullData           CheckType = "NULL_DATA"
	CheckBasic              CheckType = "BASIC_CHECK"
	CheckMissingTradingDays CheckType = "MISSING_TRADING_DAYS"
	CheckPriceAnomalies     CheckType = "PRICE_ANOMALIES"
	CheckZeroPrice          CheckType = "ZERO_PRICE"
	CheckPriceQuality       CheckType = "PRICE_QUALITY"
	CheckZeroVolume         CheckType = "ZERO_VOLUME"
	CheckVolumeQuality      CheckType = "VOLUME_QUALITY"
	CheckVolume             CheckType = "VOLUME_CHECK"
	CheckDuplicateDates     CheckType = "DUPLICATE_DATES"
	CheckDuplicate          CheckType = "DUPLICATE_CHECK"
	CheckValidationError    CheckType = "VALIDATION_ERROR"
)

// Result is one immutable validation finding for one instrument. It is
// produced by the validator and consumed by the report builder; it is
// never written back to the registry.
type Result struct {
	StockCode string         `json:"stock_code"`
	CheckType CheckType      `json:"check_type"`
	Status    Severity       `json:"status"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}
