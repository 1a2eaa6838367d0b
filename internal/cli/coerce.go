package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roshangit23/ReadyTestAPI/internal/coerce"
)

func newCoerceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coerce VALUE...",
		Short: "Show how table cell values are typed",
		Long: `Show the kind each value is coerced to when it appears in a data table,
and how it is written into a JSON body.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VALUE\tKIND\tJSON")
			for _, raw := range args {
				v := coerce.Coerce(raw)
				fmt.Fprintf(w, "%s\t%s\t%s\n", raw, v.Kind, v)
			}
			return w.Flush()
		},
	}
}
