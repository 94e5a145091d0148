// Package cmd - stockctl CLI commands
package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd はバッチ運用用のルートコマンドです。
var rootCmd = &cobra.Command{
	Use:   "stockctl",
	Short: "Daily stock data collection and quality validation",
	Long: `stockctl manages the daily price tables: registering instruments,
collecting daily bars from the quote bridge, validating data quality
and building reports.

Commands:
    register    銘柄をレジストリに登録
    collect     日足データを収集（全銘柄または指定銘柄）
    validate    データ品質を検証しレポートを生成
    status      収集進捗サマリを表示
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute はルートコマンドを実行します。
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
}

// initConfig reads the .env file and environment variables if set.
func initConfig() error {
	if err := godotenv.Load(); err != nil {
		// .env が無くても環境変数だけで動かせる
		if verbose {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}
	return nil
}
