package cli

import (
	"fmt"

	"github.com/compozy/docsplit/cli/helpers"
	"github.com/compozy/docsplit/pkg/config"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type configEntry struct {
	Key    string            `json:"key"              yaml:"key"`
	Value  any               `json:"value"            yaml:"value"`
	Source config.SourceType `json:"source"           yaml:"source"`
	Env    string            `json:"env,omitempty"    yaml:"env,omitempty"`
}

type configReport []configEntry

func (r configReport) Table() helpers.Table {
	rows := make([][]string, len(r))
	for i, e := range r {
		rows[i] = []string{e.Key, fmt.Sprintf("%q", fmt.Sprint(e.Value)), string(e.Source), e.Env}
	}
	return helpers.Table{Headers: []string{"KEY", "VALUE", "SOURCE", "ENV"}, Rows: rows}
}

// ConfigCmd groups configuration diagnostics.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show configuration values and the source that set each one",
		Args:  helpers.UsageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := config.ManagerFromContext(cmd.Context())
			report, err := buildConfigReport(manager)
			if err != nil {
				return err
			}
			if asYAML {
				encoder := yaml.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent(2)
				defer encoder.Close()
				return encoder.Encode(report)
			}
			return helpers.NewOutputWriter(cmd.OutOrStdout(), outputFormat(cmd)).WriteData(report)
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print as YAML")
	return cmd
}

func buildConfigReport(manager *config.Manager) (configReport, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(manager.Get(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	keys := k.Keys()
	report := make(configReport, 0, len(keys))
	for _, key := range keys {
		report = append(report, configEntry{
			Key:    key,
			Value:  k.Get(key),
			Source: manager.Service.GetSource(key),
			Env:    config.EnvForKey(key),
		})
	}
	return report, nil
}
