package models

import "fmt"

// ============================================================
// Error taxonomy
// ============================================================

// ExtractionError — один битый параметр при извлечении. Логируется и
// пропускается, батч продолжается.
type ExtractionError struct {
	ElementID string
	Key       string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %q on element %s: %v", e.Key, e.ElementID, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ValidationError — значение не прошло классификацию/коэрцию.
type ValidationError struct {
	ParameterID string
	Reason      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate parameter %s: %s", e.ParameterID, e.Reason)
}

// InitializationError — сбой на уровне пайплайна. Recoverable=true
// (например, таймаут готовности сцены) допускает retry с backoff,
// Recoverable=false поднимается сразу и не ретраится.
type InitializationError struct {
	Reason      string
	Recoverable bool
	Err         error
}

func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("initialize: %s: %v", e.Reason, e.Err)
	}
	return "initialize: " + e.Reason
}

func (e *InitializationError) Unwrap() error { return e.Err }

// ColumnStateError — некорректная операция над колонками со стороны UI
// (несуществующий field, попытка тронуть неудаляемую колонку).
// Возвращается синхронно, не проглатывается.
type ColumnStateError struct {
	Field  string
	Op     string
	Reason string
}

func (e *ColumnStateError) Error() string {
	return fmt.Sprintf("column %s: %s: %s", e.Field, e.Op, e.Reason)
}
