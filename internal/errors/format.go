package errors

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
)

var (
	// Color functions with auto-detection for terminal support.
	// These fall back gracefully when colors are unavailable.
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	errorMsg   = color.New(color.FgRed).SprintFunc()
	kindFmt    = color.New(color.FgYellow).SprintFunc()
	detailKey  = color.New(color.FgCyan).SprintFunc()
	codeFmt    = color.New(color.Faint).SprintFunc()
)

// FormatError formats an engine error for display in the terminal.
// It uses colors when available and falls back to plain text otherwise.
func FormatError(err *Error) string {
	if err == nil {
		return ""
	}
	return formatError(err, true)
}

// FormatErrorPlain formats an engine error without colors.
func FormatErrorPlain(err *Error) string {
	if err == nil {
		return ""
	}
	return formatError(err, false)
}

func formatError(err *Error, useColors bool) string {
	var sb strings.Builder

	if useColors {
		sb.WriteString(errorLabel("Error"))
		sb.WriteString(" [")
		sb.WriteString(kindFmt(err.Kind.String()))
		sb.WriteString("]: ")
		sb.WriteString(errorMsg(err.Message))
	} else {
		sb.WriteString("Error [")
		sb.WriteString(err.Kind.String())
		sb.WriteString("]: ")
		sb.WriteString(err.Message)
	}
	sb.WriteString("\n")

	if err.Code != "" {
		sb.WriteString("  code: ")
		if useColors {
			sb.WriteString(codeFmt(err.Code))
		} else {
			sb.WriteString(err.Code)
		}
		sb.WriteString("\n")
	}

	if cycle := err.Cycle(); len(cycle) > 0 {
		sb.WriteString("  cycle: ")
		sb.WriteString(strings.Join(cycle, " -> "))
		sb.WriteString("\n")
	}

	keys := make([]string, 0, len(err.Details))
	for k := range err.Details {
		if k == "cycle" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString("  ")
		if useColors {
			sb.WriteString(detailKey(k))
		} else {
			sb.WriteString(k)
		}
		sb.WriteString(": ")
		sb.WriteString(fmt.Sprintf("%v", err.Details[k]))
		sb.WriteString("\n")
	}

	return sb.String()
}

// PrintError writes a formatted engine error to the writer. Non-engine
// errors are printed with a plain "Error:" prefix.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if e := As(err); e != nil {
		fmt.Fprint(w, FormatError(e))
		return
	}
	fmt.Fprintf(w, "%s %v\n", errorLabel("Error:"), err)
}

// PrintErrorStderr writes a formatted engine error to stderr.
func PrintErrorStderr(err error) {
	PrintError(os.Stderr, err)
}
