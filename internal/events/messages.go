package events

import (
	"encoding/json"
	"time"
)

// Event kinds published on the ledger change feed.
const (
	KindExpenseAdded   = "expense.added"
	KindExpenseDeleted = "expense.deleted"
)

// ExpenseAddedMessage announces a newly persisted expense. It carries the
// already-normalized fields so consumers never re-apply the write policy.
type ExpenseAddedMessage struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseAddedMessage creates an expense.added message.
func NewExpenseAddedMessage(id int64, date string, amount float64, category string) *ExpenseAddedMessage {
	return &ExpenseAddedMessage{
		Kind:      KindExpenseAdded,
		ID:        id,
		Date:      date,
		Amount:    amount,
		Category:  category,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseAddedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseDeletedMessage announces a delete-by-date-and-note, including how
// many rows it removed (possibly zero).
type ExpenseDeletedMessage struct {
	Kind        string    `json:"kind"`
	Date        string    `json:"date"`
	Note        string    `json:"note"`
	DeletedRows int64     `json:"deleted_rows"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseDeletedMessage creates an expense.deleted message.
func NewExpenseDeletedMessage(date, note string, deletedRows int64) *ExpenseDeletedMessage {
	return &ExpenseDeletedMessage{
		Kind:        KindExpenseDeleted,
		Date:        date,
		Note:        note,
		DeletedRows: deletedRows,
		Timestamp:   time.Now(),
	}
}

func (m *ExpenseDeletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseAddedMessageFromJSON decodes an expense.added message.
func ExpenseAddedMessageFromJSON(data []byte) (*ExpenseAddedMessage, error) {
	var msg ExpenseAddedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ExpenseDeletedMessageFromJSON decodes an expense.deleted message.
func ExpenseDeletedMessageFromJSON(data []byte) (*ExpenseDeletedMessage, error) {
	var msg ExpenseDeletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
