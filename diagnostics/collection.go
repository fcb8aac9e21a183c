package diagnostics

import (
	"bytes"
	"fmt"
	"sync"
)

// Diagnostics accumulates expansion errors and warnings so that every failed
// call site can be reported at once instead of stopping at the first one.
// It is safe for concurrent use.
type Diagnostics struct {
	mu       sync.Mutex
	errors   []ExpansionError
	warnings []ExpansionWarning
}

// NewDiagnostics creates a new empty Diagnostics collection.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		errors:   make([]ExpansionError, 0),
		warnings: make([]ExpansionWarning, 0),
	}
}

// Warnings returns a copy of all warnings in the collection.
func (d *Diagnostics) Warnings() []ExpansionWarning {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ExpansionWarning(nil), d.warnings...)
}

// Errors returns a copy of all errors in the collection.
func (d *Diagnostics) Errors() []ExpansionError {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ExpansionError(nil), d.errors...)
}

// PushError adds an error to the collection.
func (d *Diagnostics) PushError(err ExpansionError) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = append(d.errors, err)
}

// PushWarning adds a warning to the collection.
func (d *Diagnostics) PushWarning(warning ExpansionWarning) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.warnings = append(d.warnings, warning)
}

// HasErrors returns true if there is at least one error in this collection.
func (d *Diagnostics) HasErrors() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.errors) > 0
}

// ToResult returns an error if there are errors, otherwise returns nil.
func (d *Diagnostics) ToResult() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.errors) > 0 {
		return fmt.Errorf("expansion failed with %d errors", len(d.errors))
	}
	return nil
}

// ForFile returns the diagnostics located in file.
func (d *Diagnostics) ForFile(file FileID) *Diagnostics {
	out := NewDiagnostics()
	for _, err := range d.Errors() {
		if err.Span().FileID == file {
			out.errors = append(out.errors, err)
		}
	}
	for _, warn := range d.Warnings() {
		if warn.Span().FileID == file {
			out.warnings = append(out.warnings, warn)
		}
	}
	return out
}

// ToPrettyString formats all errors as a pretty-printed string.
func (d *Diagnostics) ToPrettyString(fileName, text string) string {
	var buf bytes.Buffer
	for _, err := range d.Errors() {
		_ = err.PrettyPrint(&buf, fileName, text)
	}
	return buf.String()
}

// WarningsToPrettyString formats all warnings as a pretty-printed string.
func (d *Diagnostics) WarningsToPrettyString(fileName, text string) string {
	var buf bytes.Buffer
	for _, warn := range d.Warnings() {
		_ = warn.PrettyPrint(&buf, fileName, text)
	}
	return buf.String()
}
