package cli

import (
	"github.com/compozy/docsplit/cli/helpers"
	"github.com/compozy/docsplit/pkg/version"
	"github.com/spf13/cobra"
)

type versionInfo version.Info

func (v versionInfo) Table() helpers.Table {
	return helpers.Table{
		Headers: []string{"VERSION", "COMMIT", "BUILT", "GO"},
		Rows:    [][]string{{v.Version, v.CommitHash, v.BuildDate, v.GoVersion}},
	}
}

// VersionCmd prints build information.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		Args:  helpers.UsageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.NewOutputWriter(cmd.OutOrStdout(), outputFormat(cmd)).WriteData(versionInfo(version.Get()))
		},
	}
}
