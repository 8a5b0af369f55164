package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pipelab/multishot/internal/naming"
)

var parseCmd = &cobra.Command{
	Use:   "parse [name]",
	Short: "Parse a filename or namespace against the naming convention",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codec := naming.DefaultCodec()
		if configPath != "" {
			parts, err := loadEngine()
			if err != nil {
				return err
			}
			codec = parts.codec
		}

		name := args[0]
		var fields naming.Fields
		switch codec.DetectFormat(name) {
		case naming.FullNameFormat:
			fields, _ = codec.ParseFullName(name)
		case naming.NamespaceFormat:
			fields, _ = codec.ParseNamespace(name)
		default:
			return fmt.Errorf("%q does not match the naming convention", name)
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(cmd.OutOrStdout())
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Field", "Value"})
		rows := []struct{ k, v string }{
			{"format", codec.DetectFormat(name).String()},
			{"episode", fields.Episode},
			{"sequence", fields.Sequence},
			{"shot", fields.Shot},
			{"assetType", fields.AssetType},
			{"assetName", fields.AssetName},
			{"variant", fields.Variant},
			{"ext", fields.Ext},
			{"assetID", fields.AssetID()},
		}
		for _, r := range rows {
			if r.v == "" {
				continue
			}
			tw.AppendRow(table.Row{r.k, r.v})
		}
		tw.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
