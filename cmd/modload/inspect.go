// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oriolang/modload/pkg/modload"
)

var (
	// fromDir resolves relative specifiers against this directory
	// instead of the process working directory.
	fromDir string
	// asAlias applies a rename clause when building a graph.
	asAlias string

	resolveCmd = &cobra.Command{
		Use:   "resolve <specifier>",
		Short: "Resolve a specifier to its canonical location",
		Long: `Resolve a REQUIRE specifier to its canonical fetch location.

Every candidate in a preference list is tried in order, exactly as the
script runtime would: host capability checks first, then security
policy, then fetchability probing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			location, err := a.Resolve(cmd.Context(), args[0], modload.RequestContext{Dir: fromDir})
			if err != nil {
				return reportError(a, err)
			}
			fmt.Println(LocationStyle.Render(location))
			return nil
		},
	}

	graphCmd = &cobra.Command{
		Use:   "graph <specifier>",
		Short: "Print a module's dependency graph in load order",
		Long: `Build a specifier's dependency graph from declared metadata and
print it in load order: dependencies first, the requested module last.

Module bodies are never fetched, so this is safe to run against
modules whose side effects you do not want.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			graph, err := a.Graph(cmd.Context(), args[0], asAlias, modload.RequestContext{Dir: fromDir})
			if err != nil {
				return reportError(a, err)
			}

			root := graph.Root().Key
			for i, key := range graph.LoadOrder() {
				node := graph.Node(key)
				line := fmt.Sprintf("%2d. %s", i+1, LocationStyle.Render(key.Location))
				if node.Meta.Name != "" {
					line += SubtitleStyle.Render(fmt.Sprintf("  (%s %s)", node.Meta.Name, node.Meta.Version))
				}
				if key == root {
					line += SuccessStyle.Render("  <- requested")
				}
				fmt.Println(line)
			}
			return nil
		},
	}
)

func init() {
	resolveCmd.Flags().StringVar(&fromDir, "from", "", "directory the require call originates from")
	graphCmd.Flags().StringVar(&fromDir, "from", "", "directory the require call originates from")
	graphCmd.Flags().StringVar(&asAlias, "as", "", "rename clause to apply to the requested module")
}
