package cmd

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pipelab/multishot/internal/store"
)

var scanCmd = &cobra.Command{
	Use:   "scan [publish-dir]...",
	Short: "Scan publish directories into the version cache",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := loadEngine()
		if err != nil {
			return err
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(cmd.OutOrStdout())
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Directory", "Assets", "Versions", "Warnings", "Failed"})

		for _, dir := range args {
			report, err := parts.cache.Refresh(dir)
			if err != nil {
				return err
			}
			tw.AppendRow(table.Row{
				report.Dir,
				strconv.Itoa(report.Assets),
				strconv.Itoa(report.Versions),
				strconv.Itoa(len(report.Warnings)),
				strconv.Itoa(len(report.Failed)),
			})
			for _, w := range report.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			for _, f := range report.Failed {
				fmt.Fprintln(cmd.ErrOrStderr(), "failed:", f)
			}
		}
		tw.Render()

		if sessionPath != "" {
			db, err := store.Open(sessionPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.SaveCache(parts.cache); err != nil {
				return fmt.Errorf("save cache: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
