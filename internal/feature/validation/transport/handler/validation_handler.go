package handler

import (
	"context"
	"net/http"

	"stock_collector/internal/feature/validation/domain/entity"

	"github.com/gin-gonic/gin"
)

// Validator は単一銘柄のデータ品質検証を実行するインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type Validator interface {
	Validate(ctx context.Context, code string) []entity.Result
}

// ReportGenerator は全銘柄のデータ品質レポートを生成するインターフェースです。
// キャッシュデコレータを挟めるよう usecase 本体ではなく抽象に依存します。
type ReportGenerator interface {
	GenerateDailyReport(ctx context.Context) (string, error)
}

// ValidationHandler はデータ品質検証に関するHTTPリクエストを処理します。
type ValidationHandler struct {
	validator Validator
	reports   ReportGenerator
}

// NewValidationHandler は新しい ValidationHandler を作成します。
func NewValidationHandler(validator Validator, reports ReportGenerator) *ValidationHandler {
	return &ValidationHandler{validator: validator, reports: reports}
}

// Validate は1銘柄に対する検証バッテリーを実行し、チェック結果の
// 一覧をJSONで返すAPIです。検証自体は失敗してもエラー結果として
// 返るため、このエンドポイントは常に200を返します。
func (h *ValidationHandler) Validate(c *gin.Context) {
	code := c.Param("code")
	results := h.validator.Validate(c.Request.Context(), code)
	c.JSON(http.StatusOK, gin.H{
		"stock_code": code,
		"results":    results,
	})
}

// Report は全銘柄のデータ品質レポートをプレーンテキストで返すAPIです。
func (h *ValidationHandler) Report(c *gin.Context) {
	report, err := h.reports.GenerateDailyReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.String(http.StatusOK, report)
}
