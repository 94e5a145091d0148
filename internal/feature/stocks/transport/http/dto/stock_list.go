// Package dto defines data transfer objects for the stocks HTTP API.
package dto

// StockItem represents a registered instrument in the API response.
// It contains only the public-facing fields needed by clients.
type StockItem struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Market       string  `json:"market"`
	TableCreated bool    `json:"table_created"`
	DataCount    int64   `json:"data_count"`
	FirstDate    *string `json:"first_date"`
	LatestDate   *string `json:"latest_date"`
}
