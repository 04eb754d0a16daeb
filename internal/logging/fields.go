package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldAssetID is the standardized structured logging key for remote asset identifiers.
	FieldAssetID = "asset_id"
	// FieldStackParentID is the standardized structured logging key for the primary asset of a stack.
	FieldStackParentID = "stack_parent_id"
	// FieldEventType is the standardized structured logging key for machine-readable event names.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized structured logging key for operator guidance on failures.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldSessionID tags log lines emitted during a debug session.
	FieldSessionID = "session_id"
)
