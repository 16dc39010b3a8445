// Package analytics derives aggregate views over the expense ledger. All
// operations are read-only and idempotent; each call is a self-contained
// query against the store.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"spendtrack/internal/core"
)

// Store is the slice of the ledger the engine reads from.
type Store interface {
	PeriodTotals(ctx context.Context, p core.Period, category string) (float64, int64, error)
	CategoryAggregates(ctx context.Context, p core.Period) ([]core.CategoryAggregate, error)
}

// Engine computes summaries, period comparisons, and category rankings.
type Engine struct {
	store Store
	clock func() time.Time
}

// NewEngine creates an engine reading from store, using wall-clock time to
// resolve the "monthly"/"yearly"/"current" selectors.
func NewEngine(store Store) *Engine {
	return NewEngineWithClock(store, time.Now)
}

// NewEngineWithClock injects the clock. Tests pin it to a fixed instant.
func NewEngineWithClock(store Store, clock func() time.Time) *Engine {
	return &Engine{store: store, clock: clock}
}

// Summary holds the headline aggregate over a filtered set.
type Summary struct {
	TotalAmount      float64 `json:"total_amount"`
	TransactionCount int64   `json:"transaction_count"`
	AverageAmount    float64 `json:"average_amount"`
}

// CategorySummary is a per-category subtotal with its row count.
type CategorySummary struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// SummaryReport is the result of the summary operation. Breakdown is nil
// when the caller restricted the summary to a single category.
type SummaryReport struct {
	Summary   Summary           `json:"summary"`
	Breakdown []CategorySummary `json:"category_breakdown,omitempty"`
}

// Summarize returns total, count, and average over the period, optionally
// restricted to one category. Without a category filter it adds a
// per-category breakdown sorted by total descending.
func (e *Engine) Summarize(ctx context.Context, period, category string) (SummaryReport, error) {
	p := core.ResolvePeriod(period, e.clock())

	total, count, err := e.store.PeriodTotals(ctx, p, category)
	if err != nil {
		return SummaryReport{}, fmt.Errorf("summarize %s: %w", p, err)
	}

	report := SummaryReport{
		Summary: Summary{
			TotalAmount:      total,
			TransactionCount: count,
			AverageAmount:    safeAverage(total, count),
		},
	}

	if category == "" {
		aggs, err := e.store.CategoryAggregates(ctx, p)
		if err != nil {
			return SummaryReport{}, fmt.Errorf("summarize %s: %w", p, err)
		}
		report.Breakdown = make([]CategorySummary, len(aggs))
		for i, a := range aggs {
			report.Breakdown[i] = CategorySummary{Category: a.Category, Total: a.Total, Count: a.Count}
		}
	}

	return report, nil
}

// MonthlyReport aggregates one calendar month. TotalSpending is the sum of
// the category subtotals and TotalTransactions the sum of their counts.
type MonthlyReport struct {
	Month             string            `json:"month"`
	TotalSpending     float64           `json:"total_spending"`
	TotalTransactions int64             `json:"total_transactions"`
	Breakdown         []CategorySummary `json:"category_breakdown"`
}

// MonthlySpending aggregates a specific YYYY-MM bucket. Year and month zero
// mean the current calendar month; the tool layer guards the
// one-without-the-other case before calling in.
func (e *Engine) MonthlySpending(ctx context.Context, year, month int) (MonthlyReport, error) {
	var p core.Period
	if year == 0 && month == 0 {
		p = core.MonthOf(e.clock())
	} else {
		var err error
		p, err = core.YearMonth(year, month)
		if err != nil {
			return MonthlyReport{}, err
		}
	}

	aggs, err := e.store.CategoryAggregates(ctx, p)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("monthly spending %s: %w", p, err)
	}

	report := MonthlyReport{
		Month:     p.String(),
		Breakdown: make([]CategorySummary, len(aggs)),
	}
	for i, a := range aggs {
		report.Breakdown[i] = CategorySummary{Category: a.Category, Total: a.Total, Count: a.Count}
		report.TotalSpending += a.Total
		report.TotalTransactions += a.Count
	}

	return report, nil
}

// CategoryTotalsReport ranks categories by total spend over a period.
type CategoryTotalsReport struct {
	Period             string                   `json:"period"`
	TotalAllCategories float64                  `json:"total_all_categories"`
	Categories         []core.CategoryAggregate `json:"categories"`
}

// CategoryTotals returns per-category total, count, average, min, and max
// over the period, plus the overall total, sorted by total descending.
func (e *Engine) CategoryTotals(ctx context.Context, period string) (CategoryTotalsReport, error) {
	p := core.ResolvePeriod(period, e.clock())

	aggs, err := e.store.CategoryAggregates(ctx, p)
	if err != nil {
		return CategoryTotalsReport{}, fmt.Errorf("category totals %s: %w", p, err)
	}

	// The overall total comes from the authoritative period query, not from
	// refolding the per-category rows.
	total, _, err := e.store.PeriodTotals(ctx, p, "")
	if err != nil {
		return CategoryTotalsReport{}, fmt.Errorf("category totals %s: %w", p, err)
	}

	if aggs == nil {
		aggs = []core.CategoryAggregate{}
	}
	return CategoryTotalsReport{
		Period:             p.String(),
		TotalAllCategories: total,
		Categories:         aggs,
	}, nil
}

// TopCategories truncates CategoryTotals to the limit highest-spending
// categories. Limit must be positive.
func (e *Engine) TopCategories(ctx context.Context, limit int, period string) (CategoryTotalsReport, error) {
	if limit <= 0 {
		return CategoryTotalsReport{}, core.NewInvalidArgument("limit must be a positive integer, got %d", limit)
	}

	report, err := e.CategoryTotals(ctx, period)
	if err != nil {
		return CategoryTotalsReport{}, err
	}

	if len(report.Categories) > limit {
		report.Categories = report.Categories[:limit]
	}
	return report, nil
}

// CategoryTrend compares one category's spend between two periods.
type CategoryTrend struct {
	Category         string  `json:"category"`
	Period1Total     float64 `json:"period1_total"`
	Period1Count     int64   `json:"period1_count"`
	Period2Total     float64 `json:"period2_total"`
	Period2Count     int64   `json:"period2_count"`
	ChangeAmount     float64 `json:"change_amount"`
	ChangePercentage float64 `json:"change_percentage"`
}

// TrendReport compares spending between two periods across the union of
// their categories.
type TrendReport struct {
	Period1               string          `json:"period1"`
	Period2               string          `json:"period2"`
	TotalChange           float64         `json:"total_change"`
	TotalChangePercentage float64         `json:"total_change_percentage"`
	Trends                []CategoryTrend `json:"trends"`
}

// SpendingTrends compares two periods. Both selectors accept the full
// period grammar plus "current" for the present month. Per category,
// change = period2 - period1 and the percentage is relative to period1
// (zero when period1 has no spend). The grand totals come straight from
// each period's own sum query.
func (e *Engine) SpendingTrends(ctx context.Context, period1, period2 string) (TrendReport, error) {
	now := e.clock()
	p1 := core.ResolveTrendPeriod(period1, now)
	p2 := core.ResolveTrendPeriod(period2, now)

	aggs1, err := e.store.CategoryAggregates(ctx, p1)
	if err != nil {
		return TrendReport{}, fmt.Errorf("trends %s: %w", p1, err)
	}
	aggs2, err := e.store.CategoryAggregates(ctx, p2)
	if err != nil {
		return TrendReport{}, fmt.Errorf("trends %s: %w", p2, err)
	}

	byCategory := make(map[string]*CategoryTrend)
	for _, a := range aggs1 {
		byCategory[a.Category] = &CategoryTrend{
			Category:     a.Category,
			Period1Total: a.Total,
			Period1Count: a.Count,
		}
	}
	for _, a := range aggs2 {
		trend, ok := byCategory[a.Category]
		if !ok {
			trend = &CategoryTrend{Category: a.Category}
			byCategory[a.Category] = trend
		}
		trend.Period2Total = a.Total
		trend.Period2Count = a.Count
	}

	trends := make([]CategoryTrend, 0, len(byCategory))
	for _, t := range byCategory {
		t.ChangeAmount = t.Period2Total - t.Period1Total
		if t.Period1Total != 0 {
			t.ChangePercentage = t.ChangeAmount / t.Period1Total * 100
		}
		trends = append(trends, *t)
	}

	sort.Slice(trends, func(i, j int) bool {
		ai, aj := math.Abs(trends[i].ChangeAmount), math.Abs(trends[j].ChangeAmount)
		if ai != aj {
			return ai > aj
		}
		return trends[i].Category < trends[j].Category
	})

	// Grand totals from the period sums themselves, never from folding the
	// per-category rows.
	total1, _, err := e.store.PeriodTotals(ctx, p1, "")
	if err != nil {
		return TrendReport{}, fmt.Errorf("trends %s: %w", p1, err)
	}
	total2, _, err := e.store.PeriodTotals(ctx, p2, "")
	if err != nil {
		return TrendReport{}, fmt.Errorf("trends %s: %w", p2, err)
	}

	report := TrendReport{
		Period1:     p1.String(),
		Period2:     p2.String(),
		TotalChange: total2 - total1,
		Trends:      trends,
	}
	if total1 != 0 {
		report.TotalChangePercentage = report.TotalChange / total1 * 100
	}

	return report, nil
}

// safeAverage guards the empty-set division: zero rows means average 0.
func safeAverage(total float64, count int64) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
