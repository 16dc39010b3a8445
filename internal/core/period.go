// Package core holds the domain types of the expense ledger: the Expense
// record, the period selector grammar, and the error taxonomy shared by the
// store, the analytics engine, and the tool surface.
package core

import (
	"fmt"
	"time"
)

// Period is a resolved calendar window over the ledger. Dates are stored as
// text, so every window reduces to a prefix match on the date column:
// "2024-03" selects a month, "2024" a year, and the zero filter selects
// everything.
type Period struct {
	kind   periodKind
	bucket string
}

type periodKind int

const (
	periodAll periodKind = iota
	periodMonth
	periodYear
)

// ResolvePeriod interprets a period selector against the given instant.
// The grammar:
//
//	"all" (or empty)  no date filter
//	"monthly"         the calendar month containing now
//	"yearly"          the calendar year containing now
//	anything else     a literal YYYY-MM bucket, matched exactly
//
// The fallthrough branch is deliberately unvalidated: a selector that is
// not a well-formed year-month simply matches no records.
func ResolvePeriod(selector string, now time.Time) Period {
	switch selector {
	case "", "all":
		return Period{kind: periodAll}
	case "monthly":
		return MonthOf(now)
	case "yearly":
		return Period{kind: periodYear, bucket: now.Format("2006")}
	default:
		return Period{kind: periodMonth, bucket: selector}
	}
}

// ResolveTrendPeriod is ResolvePeriod extended with the "current" synonym
// for the present month. Only the trend comparison accepts it; everywhere
// else "current" falls through to the literal-bucket branch.
func ResolveTrendPeriod(selector string, now time.Time) Period {
	if selector == "current" {
		return MonthOf(now)
	}
	return ResolvePeriod(selector, now)
}

// MonthOf returns the period covering the calendar month containing t.
func MonthOf(t time.Time) Period {
	return Period{kind: periodMonth, bucket: t.Format("2006-01")}
}

// YearMonth returns the period for a specific year and month. Month must be
// in [1, 12].
func YearMonth(year, month int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, NewInvalidArgument("invalid month %d: must be between 1 and 12", month)
	}
	if year < 0 {
		return Period{}, NewInvalidArgument("invalid year %d", year)
	}
	return Period{kind: periodMonth, bucket: fmt.Sprintf("%04d-%02d", year, month)}, nil
}

// DatePrefix returns the textual date prefix this period matches and whether
// a filter applies at all.
func (p Period) DatePrefix() (string, bool) {
	if p.kind == periodAll {
		return "", false
	}
	return p.bucket, true
}

// String reports the window for logs and results: the bucket for bounded
// periods, "all" otherwise.
func (p Period) String() string {
	if p.kind == periodAll {
		return "all"
	}
	return p.bucket
}
