package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pipelab/multishot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the project configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a project config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("pass a path or set --config")
		}

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		_, reg, _, err := config.Assemble(cfg)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (version %s, project %s)\n", path, cfg.Version, cfg.Project.Code)

		tw := table.NewWriter()
		tw.SetOutputMirror(cmd.OutOrStdout())
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Template", "Pattern"})
		for _, name := range reg.Names() {
			raw, _ := reg.Get(name)
			tw.AppendRow(table.Row{name, raw})
		}
		tw.Render()

		platforms := make([]string, 0, len(cfg.PlatformMapping))
		for p := range cfg.PlatformMapping {
			platforms = append(platforms, p)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tokens: %d, roots: %d, platforms: %s\n",
			len(cfg.Tokens), len(cfg.Roots), strings.Join(platforms, ", "))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
