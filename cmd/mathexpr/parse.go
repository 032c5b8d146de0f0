package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathexpr"
)

func newParseCmd(a *app) *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "parse [expression...]",
		Short: "Print parsed expressions without evaluating them",
		Long: `parse prints each expression in canonical form, with every operation
parenthesized. With --tree, it prints the syntax tree instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs, err := a.sources(cmd, args)
			if err != nil {
				a.log.Error().Err(err).Msg("reading input")
				return err
			}
			out := cmd.OutOrStdout()
			for _, src := range srcs {
				n, err := mathexpr.Parse(src.text)
				if err != nil {
					a.log.Error().Str("source", src.name).Err(err).Msg("parse error")
					return err
				}
				if !tree {
					fmt.Fprintln(out, n)
					continue
				}
				printTree(out, n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "print syntax trees")
	cmd.Flags().BoolVarP(&a.lines, "lines", "n", false, "parse separate input lines as separate expressions")
	return cmd
}

// printTree writes one line per node, indented by depth.
func printTree(w io.Writer, n mathexpr.Node) {
	depth := map[mathexpr.Node]int{}
	mathexpr.Traverse(n, func(n mathexpr.Node, path string, parent mathexpr.Node) {
		d := 0
		if parent != nil {
			d = depth[parent] + 1
		}
		depth[n] = d
		if path != "" {
			path += ": "
		}
		fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat("  ", d), path, nodeKind(n), nodeDetail(n))
	})
}

func nodeKind(n mathexpr.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*mathexpr.")
}

func nodeDetail(n mathexpr.Node) string {
	switch n := n.(type) {
	case *mathexpr.ConstantNode, *mathexpr.SymbolNode:
		return " " + n.String()
	case *mathexpr.OperatorNode:
		return " " + n.Op + " (" + n.Fn + ")"
	case *mathexpr.AssignmentNode:
		return " " + n.Name
	case *mathexpr.FunctionAssignmentNode:
		return " " + n.Name + "(" + strings.Join(n.Params, ", ") + ")"
	}
	return ""
}
