package cache

import (
	"time"
)

// TimeUntilNextMarketOpen は次の午前9時（韓国時間、市場オープン）までの期間を返します。
func TimeUntilNextMarketOpen() time.Duration {
	loc, _ := time.LoadLocation("Asia/Seoul")
	now := time.Now().In(loc)

	// 次の午前9時を計算
	nextOpen := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, loc)

	// 今日の午前9時が既に過ぎている場合は翌日の午前9時を使用
	if now.After(nextOpen) {
		nextOpen = nextOpen.Add(24 * time.Hour)
	}

	return nextOpen.Sub(now)
}
