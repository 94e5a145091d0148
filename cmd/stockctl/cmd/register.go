package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"stock_collector/internal/app/di"
	"stock_collector/internal/platform/db"
)

var (
	registerName   string
	registerMarket string
)

// registerCmd は銘柄をレジストリに登録します。
var registerCmd = &cobra.Command{
	Use:   "register <code>...",
	Short: "銘柄をレジストリに登録",
	Long: `銘柄コードをレジストリに登録します。登録は冪等で、既存銘柄に
対しては名称・市場の補完のみ行います。

Examples:
  stockctl register 005930 --name "Samsung Electronics" --market KOSPI
  stockctl register 005930 000660 035420`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRegister,
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <code>",
	Short: "銘柄を収集対象から外す",
	Long:  `銘柄を収集対象から外します。レジストリ行と日足テーブルは残ります。`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDeactivate,
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "銘柄名（複数コード指定時は無視）")
	registerCmd.Flags().StringVar(&registerMarket, "market", "", "市場（KOSPI / KOSDAQ）")
	rootCmd.AddCommand(deactivateCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	registry := di.NewRegistry(db.OpenDB())
	ctx := context.Background()

	name, market := registerName, registerMarket
	if len(args) > 1 {
		// 複数登録ではコードのみ。属性は後続の収集・登録で補完する
		name = ""
	}
	for _, code := range args {
		if err := registry.Register(ctx, code, name, market); err != nil {
			return fmt.Errorf("register %s: %w", code, err)
		}
		fmt.Printf("registered: %s\n", code)
	}
	return nil
}

func runDeactivate(cmd *cobra.Command, args []string) error {
	registry := di.NewRegistry(db.OpenDB())
	if err := registry.Deactivate(context.Background(), args[0]); err != nil {
		return fmt.Errorf("deactivate %s: %w", args[0], err)
	}
	fmt.Printf("deactivated: %s\n", args[0])
	return nil
}
