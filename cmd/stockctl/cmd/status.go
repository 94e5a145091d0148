package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"stock_collector/internal/app/di"
	"stock_collector/internal/platform/db"
)

// statusCmd は収集進捗サマリを表示します。
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "収集進捗サマリを表示",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	registry := di.NewRegistry(db.OpenDB())

	st, err := registry.CollectionStatus(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("active stocks:  %d\n", st.TotalStocks)
	fmt.Printf("tables created: %d\n", st.CreatedTables)
	fmt.Printf("total records:  %d\n", st.TotalRecords)
	fmt.Printf("completion:     %.1f%%\n", st.CompletionRate)

	if verbose {
		stocks, err := registry.ListActive(context.Background())
		if err != nil {
			return err
		}
		fmt.Println()
		for _, s := range stocks {
			latest := "-"
			if s.LatestDate != nil {
				latest = *s.LatestDate
			}
			fmt.Printf("%-10s %-24s rows=%-6d latest=%s\n", s.Code, s.Name, s.DataCount, latest)
		}
	}
	return nil
}
