package main

import (
	"context"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dhttp"
	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/datawire/webassay/pkg/cliutil"
	"github.com/datawire/webassay/pkg/config"
	"github.com/datawire/webassay/pkg/webui"
)

func init() {
	var (
		flagIndex    indexFlags
		flagListen   string
		flagConfig   string
		flagPackages []string
	)
	cmd := &cobra.Command{
		Use:   "serve [flags]",
		Short: "Serve the interactive web UI",

		Long: "Serve a web UI where package names can be entered and the resulting " +
			"asset charts, tables, and summaries are displayed.  Every analysis is " +
			"a fresh download and scan; the server keeps no state between requests." +
			"\n\n" +
			"A JSON variant of the results is available at /api/analyze?packages=...",

		Args: cliutil.WrapPositionalArgs(cobra.ExactArgs(0)),
		RunE: func(flags *cobra.Command, _ []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			flagIndex.apply(flags.Flags(), &cfg)
			if flags.Flags().Changed("listen") {
				cfg.ListenAddr = flagListen
			}
			if flags.Flags().Changed("default-packages") {
				cfg.DefaultPackages = flagPackages
			}

			server := &webui.Server{
				Assayer:         newAssayer(cfg),
				DefaultPackages: cfg.DefaultPackages,
			}

			grp := dgroup.NewGroup(flags.Context(), dgroup.GroupConfig{
				EnableSignalHandling: true,
			})
			grp.Go("http", func(ctx context.Context) error {
				dlog.Infof(ctx, "listening on %s", cfg.ListenAddr)
				sc := &dhttp.ServerConfig{
					Handler: server.Handler(),
				}
				return sc.ListenAndServe(ctx, cfg.ListenAddr)
			})
			return grp.Wait()
		},
	}
	flagIndex.register(cmd.Flags())
	cmd.Flags().StringVar(&flagListen, "listen", ":8080",
		"Address to listen on")
	cmd.Flags().StringVar(&flagConfig, "config", "",
		"Path to a YAML config `FILE` (flags override it)")
	cmd.Flags().StringSliceVar(&flagPackages, "default-packages", nil,
		"Package names to seed the web form with")
	argparser.AddCommand(cmd)
}
