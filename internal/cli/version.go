package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pointzapp/bhakti-console/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bhakti-console %s\n", version.GetInfo())
		},
	}
}
