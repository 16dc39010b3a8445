package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestStorageErrorHidesCause(t *testing.T) {
	cause := errors.New("open /var/lib/spendtrack/ledger.db: permission denied")
	err := NewStorageError("insert expense", cause)

	if !IsStorageError(err) {
		t.Fatal("IsStorageError should match")
	}
	// The display message must not leak the underlying path.
	if got := err.Error(); got != "storage failure: insert expense" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should stay reachable through Unwrap for the log")
	}
}

func TestErrorPredicates(t *testing.T) {
	if !IsInvalidArgument(NewInvalidArgument("limit must be positive, got %d", -1)) {
		t.Error("IsInvalidArgument should match")
	}
	if !IsNotFound(NewNotFound("expenses table missing")) {
		t.Error("IsNotFound should match")
	}
	if IsInvalidArgument(NewNotFound("nope")) {
		t.Error("predicates must not cross kinds")
	}

	// Predicates see through wrapping.
	wrapped := fmt.Errorf("summary: %w", NewInvalidArgument("bad period"))
	if !IsInvalidArgument(wrapped) {
		t.Error("IsInvalidArgument should match wrapped errors")
	}
}
