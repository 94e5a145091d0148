package quoteapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"stock_collector/internal/feature/collector/usecase"
	"stock_collector/internal/feature/prices/domain/entity"
)

// QuoteFeed はブローカー側ブリッジから日足データを取得するQuoteFetcher実装です。
type QuoteFeed struct {
	cfg    Config
	client *http.Client
}

// QuoteFeedがQuoteFetcherを実装していることをコンパイル時に検証します。
var _ usecase.QuoteFetcher = (*QuoteFeed)(nil)

// NewQuoteFeed は指定された設定とHTTPクライアントでQuoteFeedの新しいインスタンスを生成します。
func NewQuoteFeed(cfg Config, client *http.Client) *QuoteFeed {
	return &QuoteFeed{cfg: cfg, client: client}
}

// dailyBarsResponse is the bridge's wire shape for a daily bar query.
type dailyBarsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Bars    []struct {
		Date         string `json:"date"`
		Open         int64  `json:"start_price"`
		High         int64  `json:"high_price"`
		Low          int64  `json:"low_price"`
		Close        int64  `json:"current_price"`
		Volume       int64  `json:"volume"`
		TradingValue int64  `json:"trading_value"`
		PrevDayDiff  int64  `json:"prev_day_diff"`
		ChangeRate   int64  `json:"change_rate"`
	} `json:"bars"`
}

// FetchDailyBars fetches daily bars for a code up to baseDate (YYYYMMDD)
// and returns them as domain entities.
func (f *QuoteFeed) FetchDailyBars(ctx context.Context, code, baseDate string) ([]entity.DailyBar, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("base_date", baseDate)
	if f.cfg.APIKey != "" {
		q.Set("apikey", f.cfg.APIKey)
	}

	u := fmt.Sprintf("%s/daily?%s", f.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("quote bridge http %d", res.StatusCode)
	}

	var body dailyBarsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("quote bridge: %s", body.Message)
	}

	bars := make([]entity.DailyBar, 0, len(body.Bars))
	for _, v := range body.Bars {
		if len(v.Date) != 8 {
			return nil, fmt.Errorf("unexpected date %q in feed", v.Date)
		}
		bars = append(bars, entity.DailyBar{
			Date:         v.Date,
			Open:         v.Open,
			High:         v.High,
			Low:          v.Low,
			Close:        v.Close,
			Volume:       v.Volume,
			TradingValue: v.TradingValue,
			PrevDayDiff:  v.PrevDayDiff,
			ChangeRate:   v.ChangeRate,
		})
	}
	return bars, nil
}

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
// http.DefaultClient にはタイムアウトが無いため、必ずこちらを使用します。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
