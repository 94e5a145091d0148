package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"stock_collector/internal/feature/validation/domain/entity"
)

const reportRule = "================================================================================"
const reportThinRule = "--------------------------------------------------------------------------------"

// EmptyReportMessage is returned when there is nothing to report on.
const EmptyReportMessage = "no validation results."

// ReportUsecase turns validation findings into the daily quality report.
type ReportUsecase struct {
	validator *ValidatorUsecase
	stocks    StockLister
}

// NewReportUsecase creates a new ReportUsecase.
func NewReportUsecase(validator *ValidatorUsecase, stocks StockLister) *ReportUsecase {
	return &ReportUsecase{validator: validator, stocks: stocks}
}

// GenerateDailyReport validates every active instrument and renders the
// aggregated report.
func (r *ReportUsecase) GenerateDailyReport(ctx context.Context) (string, error) {
	results, err := r.validator.ValidateAll(ctx)
	if err != nil {
		return "", err
	}
	return r.BuildReport(ctx, results, time.Now()), nil
}

// BuildReport renders a deterministic text report: global tally first,
// then one section per instrument (errors before warnings, a compact
// pass line when neither is present), then remediation guidance keyed
// off what occurred. Instruments are ordered by code.
func (r *ReportUsecase) BuildReport(ctx context.Context, results map[string][]entity.Result, generatedAt time.Time) string {
	if len(results) == 0 {
		return EmptyReportMessage
	}

	names := r.stockNames(ctx)

	var totalPass, totalWarnings, totalErrors int
	for _, rs := range results {
		for _, res := range rs {
			switch res.Status {
			case entity.StatusPass:
				totalPass++
			case entity.StatusWarning:
				totalWarnings++
			case entity.StatusError:
				totalErrors++
			}
		}
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(reportRule)
	line("Data Quality Validation Report")
	line(reportRule)
	line("Generated at:     %s", generatedAt.Format("2006-01-02 15:04:05"))
	line("Stocks validated: %d", len(results))
	line("")
	line("Summary:")
	line("   PASS:    %d", totalPass)
	line("   WARNING: %d", totalWarnings)
	line("   ERROR:   %d", totalErrors)
	line("")
	line("Per-stock results:")
	line(reportThinRule)

	codes := make([]string, 0, len(results))
	for code := range results {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		rs := results[code]

		var errs, warns []entity.Result
		for _, res := range rs {
			switch res.Status {
			case entity.StatusError:
				errs = append(errs, res)
			case entity.StatusWarning:
				warns = append(warns, res)
			}
		}

		marker := "[OK ]"
		if len(errs) > 0 {
			marker = "[ERR]"
		} else if len(warns) > 0 {
			marker = "[WRN]"
		}

		name := names[code]
		if name == "" {
			name = "unknown"
		}
		line("%s %s (%s)", marker, code, name)

		for _, res := range errs {
			line("   ERROR   %s: %s", res.CheckType, res.Message)
		}
		for _, res := range warns {
			line("   WARNING %s: %s", res.CheckType, res.Message)
		}
		if len(errs) == 0 && len(warns) == 0 {
			passCount := 0
			for _, res := range rs {
				if res.Status == entity.StatusPass {
					passCount++
				}
			}
			line("   all checks passed (%d checks)", passCount)
		}
		line("")
	}

	if totalErrors > 0 || totalWarnings > 0 {
		line("Recommendations:")
		line("----------------------------------------")
		if totalErrors > 0 {
			line("To resolve errors:")
			line("   - duplicate dates: run the cleanup script for the affected tables")
			line("   - zero price rows: re-collect the affected dates from the broker feed")
			line("   - missing ranges:  re-collect the missing period from the broker feed")
			line("")
		}
		if totalWarnings > 0 {
			line("To review warnings:")
			line("   - zero volume:     check for trading halts or market holidays")
			line("   - price anomalies: check for stock splits, mergers or other corporate actions")
			line("")
		}
	}

	line(reportRule)
	return b.String()
}

// stockNames resolves display names for report sections. Best effort:
// a registry failure degrades to code-only sections.
func (r *ReportUsecase) stockNames(ctx context.Context) map[string]string {
	names := map[string]string{}
	stocks, err := r.stocks.ListActive(ctx)
	if err != nil {
		return names
	}
	for _, s := range stocks {
		names[s.Code] = s.Name
	}
	return names
}
