package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	resolveCtx     map[string]string
	resolveVersion string
	resolveCheck   bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [template]",
	Short: "Resolve a path template against a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := loadEngine()
		if err != nil {
			return err
		}

		p, err := parts.resolver.Resolve(args[0], resolveCtx, resolveVersion)
		if err != nil {
			return err
		}
		if resolveCheck {
			if _, err := os.Stat(p); err != nil {
				return fmt.Errorf("resolved path does not exist: %s", p)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringToStringVar(&resolveCtx, "set", nil, "Context values as token=value pairs")
	resolveCmd.Flags().StringVar(&resolveVersion, "version", "", "Pinned version, or empty/\"latest\" for the newest cached one")
	resolveCmd.Flags().BoolVar(&resolveCheck, "check", false, "Fail when the resolved path does not exist")
	rootCmd.AddCommand(resolveCmd)
}
