package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/kestrelworks/playbook/internal/condition"
	"github.com/kestrelworks/playbook/internal/errors"
	"github.com/kestrelworks/playbook/internal/inherit"
	"github.com/kestrelworks/playbook/internal/output"
	"github.com/kestrelworks/playbook/internal/playbook"
	"github.com/kestrelworks/playbook/internal/template"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve a playbook's inheritance into a merged view",
	Long: `Resolve the named playbook's extends graph into an ordered inheritance
chain, merge variables and steps across it, and re-validate cross-playbook
dependencies.

With --var flags, variable values are resolved, per-step conditions are
evaluated to filter the step list, and {{name}} placeholders in step text
are substituted, previewing what an instantiation would produce.

Exit codes:
  0 - Resolved successfully
  1 - Resolution failed (missing parent, cycle, invalid merged graph)`,
	Example: `  # Show the merged view of a playbook
  playbook resolve incident-response

  # Preview an instantiation with concrete values
  playbook resolve incident-response --var severity=high --var dry_run=false`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringArray("var", nil, "variable value as name=value (repeatable)")
	resolveCmd.Flags().Bool("json", false, "emit the resolved playbook as JSON")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	loader, closer, err := buildLoader(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	name := args[0]
	asJSON, _ := cmd.Flags().GetBool("json")

	var spin *spinner.Spinner
	if !asJSON && !cfg.NoColor {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " resolving " + name
		spin.Start()
	}

	resolved, err := resolveByName(cmd, name, loader)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	varFlags, _ := cmd.Flags().GetStringArray("var")
	if len(varFlags) > 0 {
		provided, err := parseVarFlags(varFlags, resolved.Variables)
		if err != nil {
			return err
		}
		if err := instantiate(resolved, provided); err != nil {
			return err
		}
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resolvedView(resolved))
	}

	output.PrintResolved(cmd.OutOrStdout(), resolved)
	return nil
}

func resolveByName(cmd *cobra.Command, name string, loader playbook.Loader) (*inherit.Resolved, error) {
	ctx := cmd.Context()
	pb, found, err := loader.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFound("playbook_not_found", "playbook %q does not exist", name).
			WithDetail("playbook", name)
	}
	return inherit.Resolve(ctx, pb, loader)
}

// instantiate applies variable resolution, condition filtering, and
// template substitution to the merged steps, in place.
func instantiate(resolved *inherit.Resolved, provided map[string]any) error {
	values, err := playbook.ResolveVariables(resolved.Variables, provided)
	if err != nil {
		return err
	}

	steps := make([]playbook.Step, 0, len(resolved.Steps))
	for _, s := range resolved.Steps {
		if s.Condition != "" {
			include, err := condition.EvaluateString(s.Condition, values)
			if err != nil {
				return err
			}
			if !include {
				continue
			}
		}
		rendered, err := template.SubstituteStep(s, values)
		if err != nil {
			return err
		}
		steps = append(steps, rendered)
	}
	resolved.Steps = steps
	return nil
}

// parseVarFlags turns --var name=value flags into typed values using the
// merged variable declarations: numbers and booleans are converted, other
// values stay strings.
func parseVarFlags(flags []string, vars []playbook.Variable) (map[string]any, error) {
	types := make(map[string]playbook.VarType, len(vars))
	for _, v := range vars {
		types[v.Name] = v.Type
	}

	provided := make(map[string]any, len(flags))
	for _, f := range flags {
		name, raw, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", f)
		}
		provided[name] = coerceValue(raw, types[name])
	}
	return provided, nil
}

func coerceValue(raw string, t playbook.VarType) any {
	switch t {
	case playbook.TypeNumber:
		var n float64
		if _, err := fmt.Sscanf(raw, "%g", &n); err == nil {
			return n
		}
	case playbook.TypeBoolean:
		if raw == "true" {
			return true
		}
		if raw == "false" {
			return false
		}
	}
	return raw
}

// resolvedView is the JSON shape emitted by --json.
func resolvedView(r *inherit.Resolved) map[string]any {
	chain := make([]string, len(r.Chain.Playbooks))
	for i, pb := range r.Chain.Playbooks {
		chain[i] = pb.Name
	}
	return map[string]any{
		"name":      r.Original.Name,
		"chain":     chain,
		"variables": r.Variables,
		"steps":     r.Steps,
	}
}
