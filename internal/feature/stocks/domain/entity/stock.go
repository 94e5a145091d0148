// Package entity defines the domain models for the stocks feature.
package entity

import "time"

// Stock is one instrument's registry row: identity, display attributes and
// the cached statistics of its daily price table. The cached stats
// (DataCount, FirstDate, LatestDate) are refreshed only through the
// registry's UpdateStats path; reads return whatever was last written.
type Stock struct {
	Code         string  `gorm:"size:10;primaryKey"`       // 종目コード
	Name         string  `gorm:"size:100;not null"`        // 銘柄名
	Market       string  `gorm:"size:10"`                  // KOSPI / KOSDAQ
	TableCreated bool    `gorm:"not null;default:false"`   // 日足テーブル作成済みか
	DataCount    int64   `gorm:"not null;default:0"`       // キャッシュ済み行数
	FirstDate    *string `gorm:"size:8"`                   // 最古日付 (YYYYMMDD)
	LatestDate   *string `gorm:"size:8"`                   // 最新日付 (YYYYMMDD)
	IsActive     bool    `gorm:"not null;default:true"`    // 収集対象フラグ
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName maps the model to the stock_metadata table.
func (Stock) TableName() string {
	return "stock_metadata"
}

// CollectionStatus aggregates the registry into collection progress
// counters for the status surfaces.
type CollectionStatus struct {
	TotalStocks    int64   `json:"total_stocks"`    // アクティブ銘柄数
	CreatedTables  int64   `json:"created_tables"`  // テーブル作成済み銘柄数
	TotalRecords   int64   `json:"total_records"`   // data_count の合計
	CompletionRate float64 `json:"completion_rate"` // created/total*100 (total 0 のとき 0)
}
