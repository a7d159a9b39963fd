package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sameehj/locgate/pkg/capability"
	"github.com/sameehj/locgate/pkg/config"
	"github.com/sameehj/locgate/pkg/env"
	"github.com/sameehj/locgate/pkg/location"
	"github.com/sameehj/locgate/pkg/logging"
	"github.com/sameehj/locgate/pkg/platform"
	"github.com/sameehj/locgate/pkg/version"
	"github.com/sameehj/locgate/pkg/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// errUnsupported makes `check --exit-code` exit non-zero without an error message.
var errUnsupported = errors.New("capability unsupported")

// errStopped ends the watch group after a shutdown signal.
var errStopped = errors.New("watch stopped by signal")

type cli struct {
	cfgFile  string
	apiLevel string
	cfg      *config.Config
	logger   *slog.Logger
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errUnsupported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "locgate",
		Short:         "Platform capability gate for location accuracy fields",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: ~/.locgate/config.yaml)")
	root.PersistentFlags().StringVar(&c.apiLevel, "api-level", "", "override the platform API level (number or code name)")

	root.AddCommand(
		c.checkCmd(),
		c.capabilitiesCmd(),
		c.locationCmd(),
		c.doctorCmd(),
		c.watchCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if wd, err := os.Getwd(); err == nil {
		if _, err := env.ApplyFromDir(wd); err != nil {
			return err
		}
	}
	cfg, err := config.LoadConfig(c.cfgFile)
	if err != nil {
		return err
	}
	if c.apiLevel != "" {
		if _, err := platform.ParseAPILevel(c.apiLevel); err != nil {
			return fmt.Errorf("--api-level: %w", err)
		}
	}
	c.cfg = cfg
	c.logger = logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	return nil
}

func (c *cli) source() platform.Source {
	if c.apiLevel != "" {
		level, _ := platform.ParseAPILevel(c.apiLevel)
		return platform.Fixed(level)
	}
	return c.cfg.Source()
}

func (c *cli) checkCmd() *cobra.Command {
	var exitCode bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether speed and bearing accuracy are supported",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := capability.NewSpeedAndBearingAccuracy(c.source()).Evaluate()
			c.logger.Debug("gate_evaluated", "capability", st.Name, "api_level", int(st.Level), "known", st.Known, "supported", st.Supported)
			fmt.Fprintln(cmd.OutOrStdout(), st.Supported)
			if exitCode && !st.Supported {
				return errUnsupported
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit with status 1 when unsupported")
	return cmd
}

func (c *cli) capabilitiesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "List known capabilities and their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := capability.Default().Inspect(cmd.Context(), c.source())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, report)
			}
			if report.Known {
				fmt.Fprintf(out, "API level: %s via %s\n", report.APILevel, report.Source)
			} else {
				fmt.Fprintln(out, "API level: unknown")
			}
			for _, st := range report.Capabilities {
				fmt.Fprintf(out, "%s\tmin %s\t%v\n", st.Name, st.Min, st.Supported)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *cli) locationCmd() *cobra.Command {
	var (
		asJSON bool
		ttff   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Print the sample location fix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gate := capability.NewSpeedAndBearingAccuracy(c.source())
			fix := location.Sample(gate)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), location.NewReport(fix, gate))
			}
			return location.NewCard(fix, gate, ttff).Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON report")
	cmd.Flags().DurationVar(&ttff, "ttff", 3*time.Second, "time to first fix shown on the card")
	return cmd
}

func (c *cli) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Show platform info and gate status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := c.source()
			profile := platform.Detect(src)
			level := "unknown"
			if profile.Known {
				level = fmt.Sprintf("%s via %s", profile.APILevel, profile.Source)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OS: %s\nArch: %s\nKernel: %s\nRelease: %s\nAPI level: %s\nSpeed/bearing accuracy: %v\nConfig: %s\n",
				profile.OS, profile.Arch, profile.Kernel, profile.Release, level,
				capability.NewSpeedAndBearingAccuracy(src).Supported(), c.configPath())
			return nil
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate the gate whenever the config file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			return c.runWatch(cmd.Context(), sigCh, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "delay before re-evaluating after a change")
	return cmd
}

// runWatch re-evaluates the gate on every config change until ctx is done or
// a value arrives on sigCh.
func (c *cli) runWatch(ctx context.Context, sigCh <-chan os.Signal, debounce time.Duration) error {
	path := c.configPath()
	c.evaluate(c.source())

	w := watch.New(path, func() {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			c.logger.Warn("config_reload_failed", "path", path, "error", err)
			c.evaluate(platform.Fixed(platform.Unknown))
			return
		}
		c.cfg = cfg
		c.evaluate(c.source())
	})
	w.SetLogger(c.logger)
	w.SetDebounce(debounce)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Start(gctx)
	})
	g.Go(func() error {
		return c.waitForSignal(gctx, sigCh)
	})
	err := g.Wait()
	if errors.Is(err, errStopped) || ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *cli) waitForSignal(ctx context.Context, sigCh <-chan os.Signal) error {
	select {
	case <-ctx.Done():
		return nil
	case sig := <-sigCh:
		c.logger.Info("watch_stopping", "signal", sig.String())
		return errStopped
	}
}

func (c *cli) evaluate(src platform.Source) {
	st := capability.NewSpeedAndBearingAccuracy(src).Evaluate()
	c.logger.Info("gate_evaluated", "capability", st.Name, "api_level", int(st.Level), "known", st.Known, "supported", st.Supported)
}

func (c *cli) configPath() string {
	if c.cfgFile != "" {
		return c.cfgFile
	}
	return config.DefaultConfigPath()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get())
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
