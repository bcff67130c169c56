package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/openfroyo/lzconfig/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newWatchCommand(opts *globalOptions) *cobra.Command {
	var (
		debounce    time.Duration
		watchPolicy bool
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Revalidate global-config.yaml whenever it changes",
		Long: `Watch a configuration directory and revalidate global-config.yaml on every
change. Each reload is logged; the command runs until interrupted.

With --metrics-addr the load and reload metrics are served for Prometheus.`,
		Example: `  # Watch the current directory
  lzconfig watch

  # Serve metrics while watching
  lzconfig watch --metrics-addr :9090 ./config

  # Also reload policies when .rego files change
  lzconfig watch --policy ./policies --watch-policies ./config`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}

			if opts.metricsAddr != "" {
				if err := opts.tel.Metrics.StartMetricsServer(opts.tel.Logger); err != nil {
					return err
				}
				log.Info().Str("address", opts.metricsAddr).Msg("Serving metrics")
			}

			loader, engine, err := opts.newLoader(ctx)
			if err != nil {
				return err
			}

			if watchPolicy && engine != nil && len(opts.policyPaths) > 0 {
				policyLoader, err := engine.Watch(ctx, opts.policyPaths)
				if err != nil {
					return err
				}
				defer func() { _ = policyLoader.StopWatching() }()
			}

			out := cmd.OutOrStdout()
			onChange := func(cfg *config.GlobalConfig, err error) {
				stamp := time.Now().Format(time.RFC3339)
				if err != nil {
					fmt.Fprintf(out, "%s invalid\n%v\n", stamp, err)
					return
				}
				fmt.Fprintf(out, "%s valid (homeRegion %s, %d enabled regions)\n",
					stamp, cfg.HomeRegion, len(cfg.EnabledRegions))
			}

			w := config.NewWatcher(dir, loader, onChange,
				config.WithDebounce(debounce),
				config.WithReloadMetrics(opts.tel.Metrics),
			)
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			w.Reload(ctx)

			log.Info().Str("dir", dir).Msg("Watching configuration")
			<-ctx.Done()
			log.Info().Msg("Stopped watching")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().DurationVar(&debounce, "debounce", config.DefaultDebounce, "delay before reloading after a change")
	cmd.Flags().BoolVar(&watchPolicy, "watch-policies", false, "reload --policy paths when they change")

	return cmd
}
