package errors

import (
	"sync"
	"time"
)

// Warning records a recoverable per-item failure encountered during a run.
type Warning struct {
	Role      string
	Path      string
	Message   string
	Err       error
	Timestamp time.Time
}

// Error implements the error interface.
func (w *Warning) Error() string {
	msg := w.Message
	if w.Path != "" {
		msg = w.Path + ": " + msg
	}
	if w.Err != nil {
		msg += ": " + w.Err.Error()
	}
	return msg
}

// ErrorCollector collects recoverable failures across an entire run so the
// final report can enumerate them. One failed item never aborts the batch.
type ErrorCollector struct {
	warnings []Warning
	errors   []error
	mutex    sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		warnings: make([]Warning, 0),
		errors:   make([]error, 0),
	}
}

// Add adds a warning to the collector
func (ec *ErrorCollector) Add(w Warning) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	w.Timestamp = time.Now()
	ec.warnings = append(ec.warnings, w)
}

// AddError adds a general error to the collector
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// Warnings returns all collected warnings
func (ec *ErrorCollector) Warnings() []Warning {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	// Return a copy to avoid race conditions
	result := make([]Warning, len(ec.warnings))
	copy(result, ec.warnings)
	return result
}

// GetAllErrors returns all collected errors (warnings and general)
func (ec *ErrorCollector) GetAllErrors() []error {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	allErrors := make([]error, 0, len(ec.warnings)+len(ec.errors))

	for i := range ec.warnings {
		allErrors = append(allErrors, &ec.warnings[i])
	}

	allErrors = append(allErrors, ec.errors...)

	return allErrors
}

// HasErrors returns true if there are any collected failures
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.warnings) > 0 || len(ec.errors) > 0
}

// Clear clears all collected failures
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.warnings = ec.warnings[:0]
	ec.errors = ec.errors[:0]
}

// WarningsForPath returns warnings recorded against a specific path
func (ec *ErrorCollector) WarningsForPath(path string) []Warning {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var matched []Warning
	for _, w := range ec.warnings {
		if w.Path == path {
			matched = append(matched, w)
		}
	}
	return matched
}
