package core

import "strings"

// Expense is the single persistent entity of the ledger. Records are
// immutable once written: there is no edit operation, only insertion and
// deletion by date+note.
type Expense struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Note        string  `json:"note"`
}

// Normalize applies the write-boundary text policy: trim surrounding
// whitespace and lowercase. The store applies it uniformly to every text
// field on writes and to the corresponding arguments on filters, so a
// caller that wrote "Food" can read it back by asking for "food".
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CategoryAggregate is one row of a per-category aggregation over a
// filtered slice of the ledger.
type CategoryAggregate struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
	Average  float64 `json:"average"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}
