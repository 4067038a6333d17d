package cli

import (
	"fmt"
	"strings"

	"github.com/compozy/docsplit/cli/helpers"
	"github.com/compozy/docsplit/engine/knowledge/extract"
	"github.com/compozy/docsplit/pkg/config"
	"github.com/spf13/cobra"
)

type formatInfo struct {
	Extension string `json:"extension"`
	Adapter   string `json:"adapter"`
}

type formatList []formatInfo

func (l formatList) Table() helpers.Table {
	rows := make([][]string, len(l))
	for i, f := range l {
		rows[i] = []string{f.Extension, f.Adapter}
	}
	return helpers.Table{Headers: []string{"EXTENSION", "ADAPTER"}, Rows: rows}
}

// FormatsCmd lists the supported file extensions.
func FormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported file formats",
		Args:  helpers.UsageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			registry := extract.NewRegistry(extractOptions(&cfg.Extraction))
			exts := registry.Extensions()
			list := make(formatList, 0, len(exts))
			for _, ext := range exts {
				adapter, err := registry.Lookup(ext)
				if err != nil {
					return err
				}
				name := strings.TrimPrefix(fmt.Sprintf("%T", adapter), "*extract.")
				list = append(list, formatInfo{Extension: ext, Adapter: name})
			}
			return helpers.NewOutputWriter(cmd.OutOrStdout(), outputFormat(cmd)).WriteData(list)
		},
	}
}
