package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stock_collector/internal/app/di"
	collectorusecase "stock_collector/internal/feature/collector/usecase"
	"stock_collector/internal/platform/db"
)

var collectForce bool

// collectCmd は日足データを収集します。
var collectCmd = &cobra.Command{
	Use:   "collect [code]...",
	Short: "日足データを収集（全銘柄または指定銘柄）",
	Long: `クォートブリッジから日足データを取得し、銘柄別テーブルに保存します。
コードを省略すると全アクティブ銘柄を対象にします。最新データが
直近取引日まで揃っている銘柄はスキップされます。

Examples:
  stockctl collect                # 全アクティブ銘柄
  stockctl collect 005930         # 1銘柄のみ
  stockctl collect --force        # スキップ判定を無視して再収集`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().BoolVar(&collectForce, "force", false, "最新でも再収集する")
}

func runCollect(cmd *cobra.Command, args []string) error {
	collector := di.NewCollector(db.OpenDB())
	ctx := context.Background()

	if len(args) == 0 {
		sum, err := collector.CollectAll(ctx, collectForce)
		if err != nil {
			return err
		}
		fmt.Printf("collected %d rows: %d succeeded, %d skipped, %d failed\n",
			sum.Collected, sum.Succeeded, sum.Skipped, sum.Failed)
		if len(sum.FailedCodes) > 0 {
			fmt.Printf("failed codes: %s\n", strings.Join(sum.FailedCodes, ", "))
		}
		return nil
	}

	for _, code := range args {
		saved, err := collector.CollectOne(ctx, code, "", "", collectForce)
		switch {
		case errors.Is(err, collectorusecase.ErrUpToDate):
			fmt.Printf("%s: up to date, skipped\n", code)
		case err != nil:
			return fmt.Errorf("collect %s: %w", code, err)
		default:
			fmt.Printf("%s: saved %d rows\n", code, saved)
		}
	}
	return nil
}
