package handler

import (
	"context"
	"errors"
	"net/http"

	"stock_collector/internal/feature/stocks/domain"
	"stock_collector/internal/feature/stocks/domain/entity"
	"stock_collector/internal/feature/stocks/transport/http/dto"

	"github.com/gin-gonic/gin"
)

// RegistryUsecase は銘柄レジストリに関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type RegistryUsecase interface {
	Register(ctx context.Context, code, name, market string) error
	Get(ctx context.Context, code string) (*entity.Stock, error)
	ListActive(ctx context.Context) ([]entity.Stock, error)
	CollectionStatus(ctx context.Context) (entity.CollectionStatus, error)
}

// StockHandler は銘柄レジストリに関するHTTPリクエストを処理します。
type StockHandler struct {
	uc RegistryUsecase
}

// NewStockHandler は新しい StockHandler を作成します。
func NewStockHandler(uc RegistryUsecase) *StockHandler {
	return &StockHandler{uc: uc}
}

// registerRequest は銘柄登録リクエストのボディです。
type registerRequest struct {
	Code   string `json:"code" binding:"required"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// Register は銘柄をレジストリに登録するAPIです。登録は冪等で、
// 既存銘柄に対しては名称・市場の補完のみ行います。
func (h *StockHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.uc.Register(c.Request.Context(), req.Code, req.Name, req.Market); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": req.Code})
}

// Get は1銘柄のレジストリ情報を取得するAPIです。
func (h *StockHandler) Get(c *gin.Context) {
	code := c.Param("code")
	s, err := h.uc.Get(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrStockNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toItem(*s))
}

// List は有効な銘柄の一覧を取得するAPIです。
// Usecaseを呼び出して銘柄一覧を取得し、DTOに変換してJSONレスポンスとして返します。
func (h *StockHandler) List(c *gin.Context) {
	stocks, err := h.uc.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.StockItem, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, toItem(s))
	}
	c.JSON(http.StatusOK, out)
}

// Status は収集全体の進捗サマリを返すAPIです。
func (h *StockHandler) Status(c *gin.Context) {
	st, err := h.uc.CollectionStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

func toItem(s entity.Stock) dto.StockItem {
	return dto.StockItem{
		Code:         s.Code,
		Name:         s.Name,
		Market:       s.Market,
		TableCreated: s.TableCreated,
		DataCount:    s.DataCount,
		FirstDate:    s.FirstDate,
		LatestDate:   s.LatestDate,
	}
}
