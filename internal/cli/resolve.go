package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roshangit23/ReadyTestAPI/internal/config"
)

func newResolveCmd(g *globalOptions) *cobra.Command {
	var (
		queries bool
		expand  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve NAME",
		Short: "Print the value stored under a name",
		Long: `Print the value stored under NAME in the apiPaths table, or the queries
table with --queries. List values are printed one item per line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.settings()
			if err != nil {
				return err
			}

			path := s.APIPaths
			if queries {
				path = s.Queries
			}
			table, err := config.LoadCheckedTable(path)
			if err != nil {
				return err
			}

			entry, ok := table.Find(args[0])
			if !ok {
				return &config.NotFoundError{Name: args[0], Source: table.Source}
			}

			values := []string{entry.Value}
			if entry.IsList {
				values = entry.List
			}
			for _, v := range values {
				if expand {
					v = config.ExpandEnvironment(v)
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&queries, "queries", "q", false, "look the name up in the queries table")
	cmd.Flags().BoolVarP(&expand, "expand", "e", false, "expand ${VAR} references from the environment")

	return cmd
}
