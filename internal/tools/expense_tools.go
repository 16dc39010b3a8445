package tools

import (
	"context"
	"log/slog"

	"spendtrack/internal/analytics"
	"spendtrack/internal/core"
	"spendtrack/internal/events"
)

// Ledger is the slice of the store the expense tools write to and read
// from.
type Ledger interface {
	Insert(ctx context.Context, date string, amount float64, category, subcategory, note string) (int64, error)
	ListAll(ctx context.Context) ([]core.Expense, error)
	ListByCategory(ctx context.Context, category string) ([]core.Expense, error)
	ListByDateRange(ctx context.Context, start, end string) ([]core.Expense, error)
	DeleteByDateAndNote(ctx context.Context, date, note string) (int64, error)
}

// ExpenseTools returns the full toolset over the given ledger and analytics
// engine, ready for registration. The events feed may be nil; publish
// failures are logged and never fail the originating call.
func ExpenseTools(ledger Ledger, engine *analytics.Engine, feed *events.Publisher) []Tool {
	return []Tool{
		addExpenseTool(ledger, feed),
		getAllExpensesTool(ledger),
		getExpensesByCategoryTool(ledger),
		getExpensesByDateRangeTool(ledger),
		deleteExpenseByDateAndTitleTool(ledger, feed),
		getExpenseSummaryTool(engine),
		getMonthlySpendingTool(engine),
		getCategoryTotalsTool(engine),
		getSpendingTrendsTool(engine),
		getTopCategoriesTool(engine),
	}
}

func addExpenseTool(ledger Ledger, feed *events.Publisher) Tool {
	return Tool{
		Name:        "add_expense",
		Description: "Add a new expense entry to the ledger.",
		Mutates:     true,
		InputSchema: objectSchema(map[string]any{
			"date":        stringProp("Expense date, YYYY-MM-DD"),
			"amount":      numberProp("Amount spent"),
			"category":    stringProp("Expense category, e.g. food"),
			"subcategory": stringProp("Optional subcategory"),
			"note":        stringProp("Optional note; doubles as the title for deletion"),
		}, "date", "amount", "category"),
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			date, err := args.RequiredString("date")
			if err != nil {
				return nil, err
			}
			amount, err := args.RequiredNumber("amount")
			if err != nil {
				return nil, err
			}
			category, err := args.RequiredString("category")
			if err != nil {
				return nil, err
			}
			subcategory, err := args.String("subcategory", "")
			if err != nil {
				return nil, err
			}
			note, err := args.String("note", "")
			if err != nil {
				return nil, err
			}

			id, err := ledger.Insert(ctx, date, amount, category, subcategory, note)
			if err != nil {
				return nil, err
			}

			if feed != nil {
				if err := feed.PublishExpenseAdded(ctx, id, core.Normalize(date), amount, core.Normalize(category)); err != nil {
					slog.ErrorContext(ctx, "failed to publish expense.added", "id", id, "error", err)
				}
			}

			return map[string]any{"id": id}, nil
		},
	}
}

func getAllExpensesTool(ledger Ledger) Tool {
	return Tool{
		Name:        "get_all_expenses",
		Description: "Retrieve all expenses, newest date first.",
		InputSchema: objectSchema(map[string]any{}),
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			expenses, err := ledger.ListAll(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{"expenses": nonNil(expenses)}, nil
		},
	}
}

func getExpensesByCategoryTool(ledger Ledger) Tool {
	return Tool{
		Name:        "get_expenses_by_category",
		Description: "Retrieve expenses for one category, newest date first.",
		InputSchema: objectSchema(map[string]any{
			"category": stringProp("Category to filter on (case-insensitive)"),
		}, "category"),
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			category, err := args.RequiredString("category")
			if err != nil {
				return nil, err
			}
			expenses, err := ledger.ListByCategory(ctx, category)
			if err != nil {
				return nil, err
			}
			return map[string]any{"expenses": nonNil(expenses)}, nil
		},
	}
}

func getExpensesByDateRangeTool(ledger Ledger) Tool {
	return Tool{
		Name:        "get_expenses_by_date_range",
		Description: "Retrieve expenses with start_date <= date <= end_date.",
		InputSchema: objectSchema(map[string]any{
			"start_date": stringProp("Inclusive lower bound, YYYY-MM-DD"),
			"end_date":   stringProp("Inclusive upper bound, YYYY-MM-DD"),
		}, "start_date", "end_date"),
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			start, err := args.RequiredString("start_date")
			if err != nil {
				return nil, err
			}
			end, err := args.RequiredString("end_date")
			if err != nil {
				return nil, err
			}
			expenses, err := ledger.ListByDateRange(ctx, start, end)
			if err != nil {
				return nil, err
			}
			return map[string]any{"expenses": nonNil(expenses)}, nil
		},
	}
}

func deleteExpenseByDateAndTitleTool(ledger Ledger, feed *events.Publisher) Tool {
	return Tool{
		Name:        "delete_expense_by_date_and_title",
		Description: "Delete every expense matching both the date and the title (note) exactly. Returns the number of rows removed.",
		Mutates:     true,
		InputSchema: objectSchema(map[string]any{
			"date":  stringProp("Expense date, YYYY-MM-DD"),
			"title": stringProp("Note of the expense(s) to delete"),
		}, "date", "title"),
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			date, err := args.RequiredString("date")
			if err != nil {
				return nil, err
			}
			title, err := args.RequiredString("title")
			if err != nil {
				return nil, err
			}

			rows, err := ledger.DeleteByDateAndNote(ctx, date, title)
			if err != nil {
				return nil, err
			}

			if feed != nil {
				if err := feed.PublishExpenseDeleted(ctx, core.Normalize(date), core.Normalize(title), rows); err != nil {
					slog.ErrorContext(ctx, "failed to publish expense.deleted", "error", err)
				}
			}

			return map[string]any{"deleted_rows": rows}, nil
		},
	}
}

func getExpenseSummaryTool(engine *analytics.Engine) Tool {
	return Tool{
		Name:        "get_expense_summary",
		Description: "Total, count, and average over a period; includes a per-category breakdown unless a category is given.",
		InputSchema: objectSchema(map[string]any{
			"period":   periodProp(),
			"category": stringProp("Optional category to restrict the summary to"),
		}),
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			period, err := args.String("period", "all")
			if err != nil {
				return nil, err
			}
			category, err := args.String("category", "")
			if err != nil {
				return nil, err
			}

			report, err := engine.Summarize(ctx, period, category)
			if err != nil {
				return nil, err
			}

			payload := map[string]any{"summary": report.Summary}
			if report.Breakdown != nil {
				payload["category_breakdown"] = report.Breakdown
			}
			return payload, nil
		},
	}
}

func getMonthlySpendingTool(engine *analytics.Engine) Tool {
	return Tool{
		Name:        "get_monthly_spending",
		Description: "Per-category spending for one month. Defaults to the current month when year and month are omitted.",
		InputSchema: objectSchema(map[string]any{
			"year":  integerProp("Calendar year, e.g. 2024"),
			"month": integerProp("Calendar month, 1-12"),
		}),
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			if args.Has("year") != args.Has("month") {
				return nil, core.NewInvalidArgument("year and month must be provided together")
			}

			year, err := args.Int("year", 0)
			if err != nil {
				return nil, err
			}
			month, err := args.Int("month", 0)
			if err != nil {
				return nil, err
			}

			report, err := engine.MonthlySpending(ctx, year, month)
			if err != nil {
				return nil, err
			}

			return map[string]any{
				"month":              report.Month,
				"total_spending":     report.TotalSpending,
				"total_transactions": report.TotalTransactions,
				"category_breakdown": report.Breakdown,
			}, nil
		},
	}
}

func getCategoryTotalsTool(engine *analytics.Engine) Tool {
	return Tool{
		Name:        "get_category_totals",
		Description: "Per-category total, count, average, min, and max over a period, ranked by total.",
		InputSchema: objectSchema(map[string]any{
			"period": periodProp(),
		}),
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			period, err := args.String("period", "all")
			if err != nil {
				return nil, err
			}

			report, err := engine.CategoryTotals(ctx, period)
			if err != nil {
				return nil, err
			}

			return map[string]any{
				"period":               report.Period,
				"total_all_categories": report.TotalAllCategories,
				"categories":           report.Categories,
			}, nil
		},
	}
}

func getSpendingTrendsTool(engine *analytics.Engine) Tool {
	return Tool{
		Name:        "get_spending_trends",
		Description: "Compare per-category spending between two periods. Accepts 'current' for the present month.",
		InputSchema: objectSchema(map[string]any{
			"period1": stringProp("Baseline period: all, monthly, yearly, current, or YYYY-MM"),
			"period2": stringProp("Comparison period: all, monthly, yearly, current, or YYYY-MM"),
		}, "period1", "period2"),
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			period1, err := args.RequiredString("period1")
			if err != nil {
				return nil, err
			}
			period2, err := args.RequiredString("period2")
			if err != nil {
				return nil, err
			}

			report, err := engine.SpendingTrends(ctx, period1, period2)
			if err != nil {
				return nil, err
			}

			return map[string]any{
				"period1":                 report.Period1,
				"period2":                 report.Period2,
				"total_change":            report.TotalChange,
				"total_change_percentage": report.TotalChangePercentage,
				"trends":                  report.Trends,
			}, nil
		},
	}
}

func getTopCategoriesTool(engine *analytics.Engine) Tool {
	return Tool{
		Name:        "get_top_categories",
		Description: "The highest-spending categories over a period, default top 5.",
		InputSchema: objectSchema(map[string]any{
			"limit":  integerProp("How many categories to return, default 5"),
			"period": periodProp(),
		}),
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			limit, err := args.Int("limit", 5)
			if err != nil {
				return nil, err
			}
			period, err := args.String("period", "all")
			if err != nil {
				return nil, err
			}

			report, err := engine.TopCategories(ctx, limit, period)
			if err != nil {
				return nil, err
			}

			return map[string]any{
				"period":         report.Period,
				"limit":          limit,
				"top_categories": report.Categories,
			}, nil
		},
	}
}

// nonNil keeps empty expense lists serializing as [] rather than null.
func nonNil(expenses []core.Expense) []core.Expense {
	if expenses == nil {
		return []core.Expense{}
	}
	return expenses
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func numberProp(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func integerProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func periodProp() map[string]any {
	return stringProp("Period selector: all, monthly, yearly, or a literal YYYY-MM bucket")
}
