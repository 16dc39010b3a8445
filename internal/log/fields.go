package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldTool      = "tool"
	FieldMethod    = "method"
	FieldPeriod    = "period"
	FieldCategory  = "category"
	FieldExpenseID = "expense_id"
	FieldAmount    = "amount"
	FieldDate      = "date"
	FieldRows      = "rows"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentStorage   = "storage"
	ComponentAnalytics = "analytics"
	ComponentTools     = "tools"
	ComponentRPC       = "rpc"
	ComponentEvents    = "events"
	ComponentCache     = "cache"
)
