package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/calumari/neatgen/internal/batch"
	"github.com/calumari/neatgen/internal/config"
	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/logger"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
}

// setup loads the configuration and initializes logging. Commands that do
// not convert anything skip it.
func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	a.cfg = cfg
	if cfg.File != "" {
		logger.Infow("Loaded configuration", "file", cfg.File)
	}
	logger.Debugw("Effective configuration", "runtime_namespace", cfg.RuntimeNamespace,
		"workers", cfg.Workers, "output_extension", cfg.OutputExtension)
	return nil
}

func (a *app) runner() (*batch.Runner, error) {
	if err := a.setup(); err != nil {
		return nil, err
	}
	gc, err := a.cfg.Generator(logger.Logger)
	if err != nil {
		return nil, err
	}
	return batch.New(batch.Options{
		Generator: gc,
		Extension: a.cfg.OutputExtension,
		Workers:   a.cfg.Workers,
		Logger:    logger.Logger,
	}), nil
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "neatgen [<input.ifc.yaml> <output.cpp>]",
		Short: "Generate C++ reflection registration code from module interface snapshots",
		Long: `neatgen reads the object graph of a compiled C++ module interface and
generates a source file registering reflection metadata (bases, fields and
methods) of every exported class and struct into the runtime type registry.

Examples:
  neatgen game.ifc.yaml game.cpp            # convert one snapshot
  neatgen scan snapshots/ generated/         # convert every snapshot of a directory
  neatgen check snapshots/ generated/        # fail when generated files are stale
  neatgen watch snapshots/ generated/        # regenerate on change`,
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return cmd.Help()
			case 2:
				return runConvert(a, cmd.OutOrStdout(), args[0], args[1])
			}
			return errors.WithHint(errors.New("expected an input snapshot and an output file"),
				"run 'neatgen <input.ifc.yaml> <output.cpp>' or 'neatgen scan <in_dir> <out_dir>'")
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Configuration file (default: neatgen.toml found from the working directory up)")
	flags.CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	flags.Bool("json", false, "Log as JSON")
	flags.String("namespace", "", "Runtime namespace of the type registry (default Neat)")
	flags.Int("workers", 0, "Parallel conversions for directory commands")
	_ = a.v.BindPFlag("log.verbosity", flags.Lookup("verbose"))
	_ = a.v.BindPFlag("log.json", flags.Lookup("json"))
	_ = a.v.BindPFlag("runtime_namespace", flags.Lookup("namespace"))
	_ = a.v.BindPFlag("workers", flags.Lookup("workers"))

	root.AddCommand(
		newConvertCmd(a),
		newScanCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
		newSnapshotCmd(a),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func newConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input.ifc.yaml> <output.cpp>",
		Short: "Convert one snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(a, cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func runConvert(a *app, out io.Writer, in, target string) error {
	r, err := a.runner()
	if err != nil {
		return err
	}
	if err := r.Convert(in, target); err != nil {
		return err
	}
	fmt.Fprintf(out, "Converted %s -> %s\n", in, target)
	return nil
}

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <in_dir> <out_dir>",
		Short: "Convert every snapshot of a directory",
		Long: `Convert every snapshot directly inside in_dir into out_dir. A snapshot
named game.ifc.yaml generates out_dir/game.cpp. Every snapshot is attempted;
the command fails when any of them failed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.runner()
			if err != nil {
				return err
			}
			report, err := r.Scan(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, it := range report.Converted {
				fmt.Fprintf(out, "Converted %s -> %s\n", it.Input, it.Output)
			}
			for _, f := range report.Failed {
				fmt.Fprintf(out, "Failed    %s: %s\n", f.Input, errors.Describe(f.Err))
			}
			return report.Err()
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <in_dir> <out_dir>",
		Short: "Check that generated files are up to date",
		Long: `Regenerate every snapshot of in_dir in memory and compare the result with
the files in out_dir. Nothing is written.

Exit codes:
  0 - generated files are up to date
  1 - files are missing, stale or could not be generated`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.runner()
			if err != nil {
				return err
			}
			result, err := r.Check(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.UpToDate() {
				fmt.Fprintln(out, "Generated files are up to date")
				return nil
			}
			for _, it := range result.Missing {
				fmt.Fprintf(out, "  missing %s\n", it.Output)
			}
			for _, it := range result.Stale {
				fmt.Fprintf(out, "  stale   %s\n", it.Output)
			}
			for _, f := range result.Failed {
				fmt.Fprintf(out, "  failed  %s: %s\n", f.Input, errors.Describe(f.Err))
			}
			return errors.WithHintf(errors.New("generated files are out of date"),
				"run 'neatgen scan %s %s' to regenerate them", args[0], args[1])
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <in_dir> <out_dir>",
		Short: "Convert snapshots whenever they change",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.runner()
			if err != nil {
				return err
			}
			if a.cfg.Watch.Debounce == 0 {
				logger.Warnw("Watch debounce is zero, using the default", "debounce", batch.DefaultDebounce)
			}
			return r.Watch(cmd.Context(), args[0], args[1], a.cfg.Watch.Debounce)
		},
	}
}

func newSnapshotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <input> <output>",
		Short: "Re-encode a snapshot between YAML and MessagePack",
		Long: `Re-encode a graph snapshot. Formats follow the file suffixes:
.ifc.yaml and .ifc.yml for YAML, .ifc.msgpack for MessagePack.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			if err := batch.Snapshot(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[1])
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	var output string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(output, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", config.FileName, "Destination file")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage neatgen configuration",
	}
	cmd.AddCommand(initCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "neatgen %s\n", version())
		},
	}
}
