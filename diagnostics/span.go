// Package diagnostics provides error and warning handling for macro
// expansion: spans, a collection of expansion errors and warnings, and a
// colored pretty printer.
package diagnostics

// FileID represents the stable identifier for a source file.
type FileID uint32

// Span represents a byte range in a source file.
type Span struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	FileID FileID `json:"file_id"`
}

// NewSpan creates a new span with the given parameters.
func NewSpan(start, end int, fileID FileID) Span {
	return Span{
		Start:  start,
		End:    end,
		FileID: fileID,
	}
}
