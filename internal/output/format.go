// Package output provides terminal output formatting for the playbook CLI.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/kestrelworks/playbook/internal/inherit"
	"github.com/kestrelworks/playbook/internal/playbook"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintSuccess prints a green checkmark followed by the message.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), message)
}

// PrintHeading prints a bold section heading.
func PrintHeading(out io.Writer, heading string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s\n", bold(heading))
}

// PrintChain renders a resolved inheritance chain, root ancestors first.
func PrintChain(out io.Writer, chain *inherit.Chain) {
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	PrintHeading(out, "Inheritance chain:")
	for i, pb := range chain.Playbooks {
		marker := "├─"
		if i == len(chain.Playbooks)-1 {
			marker = "└─"
		}
		label := ""
		if i == len(chain.Playbooks)-1 {
			label = dim(" (target)")
		}
		fmt.Fprintf(out, "  %s %s %s%s\n", dim(marker), cyan(pb.Name), dim(fmt.Sprintf("v%d", pb.Version)), label)
	}
}

// PrintResolved renders the merged view of a resolved playbook: the chain,
// the merged variables, and the merged steps in order.
func PrintResolved(out io.Writer, resolved *inherit.Resolved) {
	PrintChain(out, resolved.Chain)

	if len(resolved.Variables) > 0 {
		fmt.Fprintln(out)
		PrintHeading(out, "Variables:")
		for _, v := range resolved.Variables {
			printVariable(out, v)
		}
	}

	if len(resolved.Steps) > 0 {
		fmt.Fprintln(out)
		PrintHeading(out, "Steps:")
		for i, s := range resolved.Steps {
			printStep(out, i+1, s)
		}
	}
}

func printVariable(out io.Writer, v playbook.Variable) {
	yellow := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	attrs := []string{string(v.Type)}
	if v.Required {
		attrs = append(attrs, "required")
	}
	if v.Default != nil {
		attrs = append(attrs, fmt.Sprintf("default=%v", v.Default))
	}
	if len(v.Enum) > 0 {
		attrs = append(attrs, fmt.Sprintf("enum=%v", v.Enum))
	}
	fmt.Fprintf(out, "  %s %s\n", yellow(v.Name), dim("("+strings.Join(attrs, ", ")+")"))
}

func printStep(out io.Writer, num int, s playbook.Step) {
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(out, "  %s %s %s\n", dim(fmt.Sprintf("%d.", num)), cyan(s.ID), s.Title)
	if len(s.DependsOn) > 0 {
		fmt.Fprintf(out, "     %s %s\n", dim("depends on:"), strings.Join(s.DependsOn, ", "))
	}
	if s.Condition != "" {
		fmt.Fprintf(out, "     %s %s\n", dim("condition:"), s.Condition)
	}
	if s.Type == playbook.StepFunction {
		fmt.Fprintf(out, "     %s %s\n", dim("runtime:"), string(s.Runtime))
	}
}
