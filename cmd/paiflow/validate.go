package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/paiflow/dag"
	"github.com/kbukum/paiflow/executor"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/nodes"
	"github.com/kbukum/paiflow/workflow"
)

// validation is what validate prints with --json.
type validation struct {
	Name       string     `json:"name"`
	EngineType string     `json:"engineType"`
	Order      []string   `json:"order"`
	Levels     [][]string `json:"levels"`
}

func newValidateCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate <workflow-file>",
		Short: "Check a workflow file and print its execution order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := validateFile(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			}
			return printValidation(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func validateFile(path string) (*validation, error) {
	wf, err := workflow.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}

	known := executor.NewRegistry()
	if err := nodes.Register(known, nodes.Deps{Logger: logger.Nop()}); err != nil {
		return nil, err
	}
	for _, n := range wf.Graph.Nodes {
		if !known.Has(n.Type) {
			return nil, fmt.Errorf("node %s: unknown type %q (known: %s)", n.ID, n.Type, strings.Join(known.Types(), ", "))
		}
	}

	plan, err := dag.Schedule(&wf.Graph)
	if err != nil {
		return nil, err
	}
	return &validation{
		Name:       wf.Name,
		EngineType: workflow.NormalizeEngineType(wf.EngineType),
		Order:      plan.Order,
		Levels:     plan.Levels,
	}, nil
}

func printValidation(w io.Writer, v *validation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s is valid (engine: %s, %d nodes)\n\n", v.Name, v.EngineType, len(v.Order))
	fmt.Fprintf(&b, "Order:  %s\n", strings.Join(v.Order, " → "))
	fmt.Fprintf(&b, "Levels:\n")
	for i, level := range v.Levels {
		fmt.Fprintf(&b, "  %d: %s\n", i, strings.Join(level, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
