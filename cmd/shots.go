package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pipelab/multishot/internal/host"
	"github.com/pipelab/multishot/internal/model"
	"github.com/pipelab/multishot/internal/naming"
	"github.com/pipelab/multishot/internal/store"
	"github.com/pipelab/multishot/internal/switcher"
)

var shotsCmd = &cobra.Command{
	Use:   "shots",
	Short: "Manage shot contexts in the session file",
}

func openSession() (*store.Store, error) {
	if sessionPath == "" {
		return nil, errors.New("--session is required")
	}
	return store.Open(sessionPath)
}

var shotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shot contexts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()
		m, err := db.LoadModel()
		if err != nil {
			return err
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(cmd.OutOrStdout())
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Shot", "Frames", "Group", "Bindings", "Active"})
		for _, s := range m.Shots() {
			active := ""
			if s.Active {
				active = "*"
			}
			tw.AppendRow(table.Row{
				s.ID.String(),
				fmt.Sprintf("%d-%d", s.FrameStart, s.FrameEnd),
				s.GroupHandle,
				strconv.Itoa(len(s.Bindings())),
				active,
			})
		}
		tw.Render()
		return nil
	},
}

var (
	shotFrames string
	shotGroup  string
)

var shotsAddCmd = &cobra.Command{
	Use:   "add [shot-id]",
	Short: "Add a shot context (e.g. Ep04_sq0070_SH0170)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseShotID(args[0])
		if err != nil {
			return err
		}
		start, end, err := parseFrameRange(shotFrames)
		if err != nil {
			return err
		}

		db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()
		m, err := db.LoadModel()
		if err != nil {
			return err
		}
		if _, err := m.CreateShot(id, start, end, shotGroup); err != nil {
			return err
		}
		return db.SaveModel(m)
	},
}

var shotsRemoveCmd = &cobra.Command{
	Use:   "remove [shot-id]",
	Short: "Remove a shot context and its bindings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseShotID(args[0])
		if err != nil {
			return err
		}
		db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()
		m, err := db.LoadModel()
		if err != nil {
			return err
		}
		if err := m.RemoveShot(id); err != nil {
			return err
		}
		return db.SaveModel(m)
	},
}

var (
	bindTarget   string
	bindKind     string
	bindDept     string
	bindVersion  string
	bindTemplate string
	bindExt      string
)

var shotsBindCmd = &cobra.Command{
	Use:   "bind [shot-id] [asset-namespace]",
	Short: "Bind an asset (e.g. CHAR_CatStompie_001) to a shot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseShotID(args[0])
		if err != nil {
			return err
		}
		fields, ok := naming.DefaultCodec().ParseNamespace(args[1])
		if !ok {
			return fmt.Errorf("%q is not a valid asset namespace", args[1])
		}
		kind, ok := host.ParseKind(bindKind)
		if !ok {
			return fmt.Errorf("unknown target kind %q (supported: %v)", bindKind, host.Kinds())
		}

		db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()
		m, err := db.LoadModel()
		if err != nil {
			return err
		}
		_, err = m.AddBinding(id, model.Binding{
			Key: model.BindingKey{
				AssetType: fields.AssetType,
				AssetName: fields.AssetName,
				Variant:   fields.Variant,
			},
			Dept:     bindDept,
			Version:  bindVersion,
			Template: bindTemplate,
			Ext:      bindExt,
			Target:   host.TargetRef{Handle: bindTarget, Kind: kind},
		})
		if err != nil {
			return err
		}
		return db.SaveModel(m)
	},
}

var shotsSwitchCmd = &cobra.Command{
	Use:   "switch [shot-id]",
	Short: "Switch the active shot (dry-run host; prints what would be applied)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseShotID(args[0])
		if err != nil {
			return err
		}
		parts, err := loadEngine()
		if err != nil {
			return err
		}
		db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()
		m, err := db.LoadModel()
		if err != nil {
			return err
		}
		// Unpinned bindings resolve against the last persisted scan.
		if err := db.LoadCache(parts.cache); err != nil {
			return err
		}

		rec := host.NewRecorder()
		coord := &switcher.Coordinator{Model: m, Resolver: parts.resolver, Host: rec}
		report, err := coord.SwitchTo(id)
		if err != nil {
			return err
		}
		if report.NoOp {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is already active\n", id)
			return nil
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(cmd.OutOrStdout())
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Target", "Path"})
		for _, call := range rec.Applies {
			tw.AppendRow(table.Row{call.Handle, call.Path})
		}
		tw.Render()

		for _, f := range report.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %v\n", f.Asset, f.Err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d, failed %d\n", report.Applied, len(report.Failed))
		return db.SaveModel(m)
	},
}

func parseFrameRange(s string) (int, int, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid frame range %q (want start-end)", s)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid frame range %q: %v", s, err)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid frame range %q: %v", s, err)
	}
	return start, end, nil
}

func init() {
	shotsAddCmd.Flags().StringVar(&shotFrames, "frames", "1-1", "Frame range as start-end")
	shotsAddCmd.Flags().StringVar(&shotGroup, "group", "", "Visibility group handle")

	shotsBindCmd.Flags().StringVar(&bindTarget, "target", "", "External target handle")
	shotsBindCmd.Flags().StringVar(&bindKind, "kind", string(host.KindStandIn), "Target kind")
	shotsBindCmd.Flags().StringVar(&bindDept, "dept", "anim", "Department token value")
	shotsBindCmd.Flags().StringVar(&bindVersion, "version", "", "Pinned version (empty = latest)")
	shotsBindCmd.Flags().StringVar(&bindTemplate, "template", "publish_file", "Path template name")
	shotsBindCmd.Flags().StringVar(&bindExt, "ext", "abc", "File extension")
	_ = shotsBindCmd.MarkFlagRequired("target")

	shotsCmd.AddCommand(shotsListCmd, shotsAddCmd, shotsRemoveCmd, shotsBindCmd, shotsSwitchCmd)
	rootCmd.AddCommand(shotsCmd)
}
