package router

import (
	stockshandler "stock_collector/internal/feature/stocks/transport/handler"
	validationhandler "stock_collector/internal/feature/validation/transport/handler"
	platformhandler "stock_collector/internal/platform/http/handler"

	"github.com/gin-gonic/gin"
)

func NewRouter(stocks *stockshandler.StockHandler, validation *validationhandler.ValidationHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", platformhandler.Health)

	v1 := r.Group("/api/v1")
	{
		// 銘柄レジストリ
		v1.POST("/stocks", stocks.Register)
		v1.GET("/stocks", stocks.List)
		v1.GET("/stocks/:code", stocks.Get)
		// 収集進捗サマリ
		v1.GET("/status", stocks.Status)
		// データ品質検証
		v1.POST("/validate/:code", validation.Validate)
		v1.GET("/report", validation.Report)
	}

	return r
}
