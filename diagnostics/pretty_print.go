package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// DiagnosticColorer defines the interface for coloring diagnostic output.
type DiagnosticColorer interface {
	Title() string
	PrimaryColor(text string) string
}

// ErrorColorer provides coloring for error diagnostics.
type ErrorColorer struct{}

// Title returns the title for errors.
func (e ErrorColorer) Title() string {
	return "error"
}

// PrimaryColor returns the colored text for errors.
func (e ErrorColorer) PrimaryColor(text string) string {
	return color.New(color.FgRed, color.Bold).Sprint(text)
}

// WarningColorer provides coloring for warning diagnostics.
type WarningColorer struct{}

// Title returns the title for warnings.
func (w WarningColorer) Title() string {
	return "warning"
}

// PrimaryColor returns the colored text for warnings.
func (w WarningColorer) PrimaryColor(text string) string {
	return color.New(color.FgYellow, color.Bold).Sprint(text)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PrettyPrint writes an error or warning together with the offending
// portion of the source code, underlined.
func PrettyPrint(
	w io.Writer,
	fileName string,
	text string,
	span Span,
	description string,
	colorer DiagnosticColorer,
) error {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	start := clamp(span.Start, 0, len(text))
	end := clamp(span.End, start, len(text))

	startLineNumber := strings.Count(text[:start], "\n")
	endLineNumber := strings.Count(text[:end], "\n")
	fileLines := strings.Split(text, "\n")

	lineStart := strings.LastIndex(text[:start], "\n") + 1
	line := fileLines[startLineNumber]
	startInLine := start - lineStart
	endInLine := clamp(startInLine+(end-start), startInLine, len(line))

	prefix := line[:startInLine]
	offending := line[startInLine:endInLine]
	suffix := line[endInLine:]

	titleColor := color.New(color.Bold)
	arrowColor := color.New(color.FgCyan, color.Bold)
	filePathColor := color.New(color.Underline)
	lineNumColor := color.New(color.FgCyan, color.Bold)

	if _, err := titleColor.Fprintf(w, "%s: %s\n", colorer.Title(), description); err != nil {
		return err
	}

	arrowColor.Fprintf(w, "  --> ")
	filePathColor.Fprintf(w, "%s:%d:%d\n", fileName, startLineNumber+1, startInLine+1)

	lineNumColor.Fprintf(w, "   | \n")

	// Previous line for context
	if startLineNumber > 0 {
		lineNumColor.Fprintf(w, "%2d | ", startLineNumber)
		fmt.Fprintf(w, "%s\n", fileLines[startLineNumber-1])
	}

	lineNumColor.Fprintf(w, "%2d | ", startLineNumber+1)
	fmt.Fprintf(w, "%s%s%s\n", prefix, colorer.PrimaryColor(offending), suffix)

	lineNumColor.Fprintf(w, "   | ")
	fmt.Fprintf(w, "%s", strings.Repeat(" ", startInLine))
	if len(offending) == 0 {
		fmt.Fprintf(w, "%s\n", colorer.PrimaryColor("^"))
	} else {
		fmt.Fprintf(w, "%s\n", colorer.PrimaryColor(strings.Repeat("^", len(offending))))
	}

	for lineNumber := startLineNumber + 1; lineNumber <= endLineNumber && lineNumber < len(fileLines); lineNumber++ {
		lineNumColor.Fprintf(w, "%2d | ", lineNumber+1)
		fmt.Fprintf(w, "%s\n", fileLines[lineNumber])
	}

	lineNumColor.Fprintf(w, "   | \n")

	return nil
}
