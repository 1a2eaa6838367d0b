package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roshangit23/ReadyTestAPI/internal/config"
	"github.com/roshangit23/ReadyTestAPI/internal/output"
)

func newCheckCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [tables...]",
		Short: "Check name tables for duplicate names",
		Long: `Check that no name appears twice in a table. Without arguments the
apiPaths and queries tables from the settings file are checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				s, err := g.settings()
				if err != nil {
					return err
				}
				paths = []string{s.APIPaths, s.Queries}
			}

			noColor := g.colorDisabled()
			var failed int
			for _, path := range paths {
				table, err := config.LoadCheckedTable(path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %v\n", output.ErrorIcon(noColor), path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d names, %d groups\n", output.SuccessIcon(noColor), path, table.Len(), len(table.Groups))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d tables failed the check", failed, len(paths))
			}
			return nil
		},
	}
}
