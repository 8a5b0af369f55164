package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pipelab/multishot/internal/store"
	"github.com/pipelab/multishot/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [publish-dir]...",
	Short: "Watch publish directories and rescan the version cache on change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := loadEngine()
		if err != nil {
			return err
		}

		var db *store.Store
		if sessionPath != "" {
			db, err = store.Open(sessionPath)
			if err != nil {
				return err
			}
			defer db.Close()
		}

		log := slog.Default()
		w, err := watch.New(func(dir string) {
			report, err := parts.cache.Refresh(dir)
			if err != nil {
				log.Error("rescan failed", "dir", dir, "error", err)
				return
			}
			log.Info("rescanned", "dir", dir, "assets", report.Assets, "versions", report.Versions)
			if db != nil {
				if err := db.SaveCache(parts.cache); err != nil {
					log.Error("save cache failed", "error", err)
				}
			}
		}, log)
		if err != nil {
			return err
		}
		defer w.Close()

		for _, dir := range args {
			if _, err := parts.cache.Refresh(dir); err != nil {
				return err
			}
			if err := w.Add(dir); err != nil {
				return err
			}
			log.Info("watching", "dir", dir)
		}
		if db != nil {
			if err := db.SaveCache(parts.cache); err != nil {
				return err
			}
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		fmt.Fprintln(cmd.OutOrStdout(), "stopping")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
