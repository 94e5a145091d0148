package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"stock_collector/internal/app/di"
	"stock_collector/internal/platform/db"
)

var (
	validateAll bool
	reportDir   string
)

// validateCmd はデータ品質を検証します。
var validateCmd = &cobra.Command{
	Use:   "validate [code]",
	Short: "データ品質を検証しレポートを生成",
	Long: `銘柄別テーブルのデータ品質を検証します。1銘柄を指定するとチェック
結果をJSONで表示し、--all で全銘柄のレポートを生成してファイルに
保存します。

Examples:
  stockctl validate 005930
  stockctl validate --all`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateAll, "all", false, "全アクティブ銘柄を検証しレポートを保存")
	validateCmd.Flags().StringVar(&reportDir, "report-dir", "reports", "レポートの出力先ディレクトリ")
}

func runValidate(cmd *cobra.Command, args []string) error {
	gdb := db.OpenDB()
	ctx := context.Background()

	if validateAll {
		// バッチ実行からはRedisキャッシュを挟まず毎回生成する
		report, err := di.NewReportGenerator(gdb, nil).GenerateDailyReport(ctx)
		if err != nil {
			return err
		}
		fmt.Println(report)

		if err := os.MkdirAll(reportDir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
		path := filepath.Join(reportDir,
			fmt.Sprintf("data_quality_report_%s.txt", time.Now().Format("20060102")))
		if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("report saved: %s\n", path)
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("specify one stock code or --all")
	}

	results := di.NewValidator(gdb).Validate(ctx, args[0])
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
