package analytics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrack/internal/core"
	"spendtrack/internal/storage"
)

var fixedNow = time.Date(2024, time.February, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "expenses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return NewEngineWithClock(repo, func() time.Time { return fixedNow }), repo
}

func seedLedger(t *testing.T, repo *storage.SQLiteRepository) {
	t.Helper()
	seed := []struct {
		date     string
		amount   float64
		category string
	}{
		{"2024-01-01", 10, "food"},
		{"2024-01-02", 20, "food"},
		{"2024-02-01", 5, "transport"},
	}
	for _, s := range seed {
		_, err := repo.Insert(context.Background(), s.date, s.amount, s.category, "", "")
		require.NoError(t, err)
	}
}

func TestSummarizeAll(t *testing.T) {
	engine, repo := newTestEngine(t)
	seedLedger(t, repo)

	report, err := engine.Summarize(context.Background(), "all", "")
	require.NoError(t, err)

	assert.Equal(t, 35.0, report.Summary.TotalAmount)
	assert.Equal(t, int64(3), report.Summary.TransactionCount)
	assert.InDelta(t, 11.67, report.Summary.AverageAmount, 0.01)

	require.Len(t, report.Breakdown, 2)
	assert.Equal(t, CategorySummary{Category: "food", Total: 30, Count: 2}, report.Breakdown[0])
	assert.Equal(t, CategorySummary{Category: "transport", Total: 5, Count: 1}, report.Breakdown[1])
}

func TestSummarizeWithCategory(t *testing.T) {
	engine, repo := newTestEngine(t)
	seedLedger(t, repo)

	report, err := engine.Summarize(context.Background(), "all", "food")
	require.NoError(t, err)

	assert.Equal(t, 30.0, report.Summary.TotalAmount)
	assert.Equal(t, int64(2), report.Summary.TransactionCount)
	assert.Equal(t, 15.0, report.Summary.AverageAmount)
	assert.Nil(t, report.Breakdown, "no breakdown when a category filter is given")
}

func TestSummarizePeriodSelectors(t *testing.T) {
	engine, repo := newTestEngine(t)
	seedLedger(t, repo)

	// "monthly" resolves against the injected clock (February 2024).
	report, err := engine.Summarize(context.Background(), "monthly", "")
	require.NoError(t, err)
	assert.Equal(t, 5.0, report.Summary.TotalAmount)
	assert.Equal(t, int64(1), report.Summary.TransactionCount)

	report, err = engine.Summarize(context.Background(), "yearly", "")
	require.NoError(t, err)
	assert.Equal(t, 35.0, report.Summary.TotalAmount)

	report, err = engine.Summarize(context.Background(), "2024-01", "")
	require.NoError(t, err)
	assert.Equal(t, 30.0, report.Summary.TotalAmount)
}

func TestSummarizeEmptyPeriod(t *testing.T) {
	engine, repo := newTestEngine(t)
	seedLedger(t, repo)

	report, err := engine.Summarize(context.Background(), "2019-07", "")
	require.NoError(t, err)

	assert.Zero(t, report.Summary.TotalAmount)
	assert.Zero(t, report.Summary.TransactionCount)
	assert.Zero(t, report.Summary.AverageAmount, "empty set reports average 0, never a division failure")
	assert.Empty(t, report.Breakdown)
}

func TestMonthlySpending(t *testing.T) {
	engine, repo := newTestEngine(t)
	seedLedger(t, repo)

	report, err := engine.MonthlySpending(context.Background(), 2024, 1)
	require.NoError(t, err)

	assert.Equal(t, "2024-01", report.Month)
	assert.Equal(t, 30.0, report.TotalSpending)
	assert.Equal(t, int64(2), report.TotalTransactions)
	require.Len(t, report.Breakdown, 1)
	assert.Equal(t, "food", report.Breakdown[0].Category)
}

func TestMonthlySpendingDefaultsToCurrentMonth(t *testing.T) {
	engine, repo := newTestEngine(t)
	seedLedger(t, repo)

	report, err := engine.MonthlySpending(context.Background(), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, "2024-02", report.Month)
	assert.Equal(t, 5.0, report.TotalSpending)
	assert.Equal(t, int64(1), report.TotalTransactions)
}

func TestMonthlySpendingRejectsBadMonth(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.MonthlySpending(context.Background(), 2024, 13)
	assert.True(t, core.IsInvalidArgument(err), "month 13 should be rejected, got %v", err)
}

func TestCategoryTotals(t *testing.T) {
	engine, repo := newTestEngine(t)
	seedLedger(t, repo)

	report, err := engine.CategoryTotals(context.Background(), "all")
	require.NoError(t, err)

	assert.Equal(t, "all", report.Period)
	assert.Equal(t, 35.0, report.TotalAllCategories)
	require.Len(t, report.Categories, 2)

	food := report.Categories[0]
	assert.Equal(t, "food", food.Category)
	assert.Equal(t, 30.0, food.Total)
	assert.Equal(t, int64(2), food.Count)
	assert.Equal(t, 15.0, food.Average)
	assert.Equal(t, 10.0, food.Min)
	assert.Equal(t, 20.0, food.Max)
}

func TestCategoryTotalsEmptyPeriod(t *testing.T) {
	engine, repo := newTestEngine(t)
	seedLedger(t, repo)

	report, err := engine.CategoryTotals(context.Background(), "2019-07")
	require.NoError(t, err)
	assert.Zero(t, report.TotalAllCategories)
	assert.Empty(t, report.Categories)
}

func TestTopCategories(t *testing.T) {
	engine, repo := newTestEngine(t)
	seedLedger(t, repo)

	report, err := engine.TopCategories(context.Background(), 1, "all")
	require.NoError(t, err)
	require.Len(t, report.Categories, 1)
	assert.Equal(t, "food", report.Categories[0].Category)

	// A limit above the category count returns everything.
	report, err = engine.TopCategories(context.Background(), 10, "all")
	require.NoError(t, err)
	assert.Len(t, report.Categories, 2)
}

func TestTopCategoriesRejectsNonPositiveLimit(t *testing.T) {
	engine, _ := newTestEngine(t)

	for _, limit := range []int{0, -3} {
		_, err := engine.TopCategories(context.Background(), limit, "all")
		assert.True(t, core.IsInvalidArgument(err), "limit %d should be rejected, got %v", limit, err)
	}
}

func TestSpendingTrends(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	seed := []struct {
		date     string
		amount   float64
		category string
	}{
		{"2024-01-05", 100, "food"},
		{"2024-01-10", 50, "transport"},
		{"2024-02-05", 150, "food"},
		{"2024-02-12", 30, "books"},
	}
	for _, s := range seed {
		_, err := repo.Insert(ctx, s.date, s.amount, s.category, "", "")
		require.NoError(t, err)
	}

	report, err := engine.SpendingTrends(ctx, "2024-01", "2024-02")
	require.NoError(t, err)

	assert.Equal(t, "2024-01", report.Period1)
	assert.Equal(t, "2024-02", report.Period2)
	assert.Equal(t, 30.0, report.TotalChange)
	assert.InDelta(t, 20.0, report.TotalChangePercentage, 0.001)

	// Sorted by absolute change descending: food +50, transport -50 (name
	// tie-break puts food first), books +30.
	require.Len(t, report.Trends, 3)
	assert.Equal(t, "food", report.Trends[0].Category)
	assert.Equal(t, 50.0, report.Trends[0].ChangeAmount)
	assert.InDelta(t, 50.0, report.Trends[0].ChangePercentage, 0.001)
	assert.Equal(t, "transport", report.Trends[1].Category)
	assert.Equal(t, -50.0, report.Trends[1].ChangeAmount)
	assert.Equal(t, "books", report.Trends[2].Category)
	assert.Equal(t, 30.0, report.Trends[2].ChangeAmount)
	assert.Zero(t, report.Trends[2].ChangePercentage, "percentage is 0 when period1 has no spend")
}

func TestSpendingTrendsAntisymmetry(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	seed := []struct {
		date     string
		amount   float64
		category string
	}{
		{"2024-01-05", 100, "food"},
		{"2024-02-05", 150, "food"},
		{"2024-02-12", 30, "books"},
	}
	for _, s := range seed {
		_, err := repo.Insert(ctx, s.date, s.amount, s.category, "", "")
		require.NoError(t, err)
	}

	forward, err := engine.SpendingTrends(ctx, "2024-01", "2024-02")
	require.NoError(t, err)
	backward, err := engine.SpendingTrends(ctx, "2024-02", "2024-01")
	require.NoError(t, err)

	assert.Equal(t, -backward.TotalChange, forward.TotalChange)

	changes := func(r TrendReport) map[string]float64 {
		m := make(map[string]float64)
		for _, tr := range r.Trends {
			m[tr.Category] = tr.ChangeAmount
		}
		return m
	}
	fw, bw := changes(forward), changes(backward)
	require.Equal(t, len(fw), len(bw))
	for category, change := range fw {
		assert.Equal(t, -bw[category], change, "category %s", category)
	}
}

func TestSpendingTrendsCurrentSynonym(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, "2024-01-05", 100, "food", "", "")
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "2024-02-05", 40, "food", "", "")
	require.NoError(t, err)

	// "current" resolves to the clock's month, February 2024.
	report, err := engine.SpendingTrends(ctx, "2024-01", "current")
	require.NoError(t, err)

	assert.Equal(t, "2024-02", report.Period2)
	assert.Equal(t, -60.0, report.TotalChange)
}

func TestSpendingTrendsEmptyPeriods(t *testing.T) {
	engine, _ := newTestEngine(t)

	report, err := engine.SpendingTrends(context.Background(), "2019-01", "2019-02")
	require.NoError(t, err)

	assert.Zero(t, report.TotalChange)
	assert.Zero(t, report.TotalChangePercentage)
	assert.Empty(t, report.Trends)
}
