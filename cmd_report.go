package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/datawire/webassay/pkg/charts"
	"github.com/datawire/webassay/pkg/cliutil"
	"github.com/datawire/webassay/pkg/pypi"
	"github.com/datawire/webassay/pkg/webassets"
)

func init() {
	var (
		flagIndex  indexFlags
		flagOutDir string
		flagFormat string
		flagBins   int
	)
	cmd := &cobra.Command{
		Use:   "report [flags] PACKAGE[==VERSION]...",
		Short: "Download packages and render their asset charts to files",

		Long: "Like `webassay analyze`, but instead of printing tables this renders " +
			"the two charts the web UI shows -- size share by asset type, and the " +
			"size-distribution histogram -- to image files: " +
			"NAME-types.FORMAT and NAME-sizes.FORMAT in the output directory, plus " +
			"cumulative-*.FORMAT when more than one package was scanned.",

		Args: cliutil.WrapPositionalArgs(cobra.MinimumNArgs(1)),
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()

			var render func(charts.Chart) ([]byte, error)
			switch flagFormat {
			case "png":
				render = charts.RenderPNG
			case "svg":
				render = charts.RenderSVG
			default:
				return cliutil.FlagErrorFunc(flags,
					fmt.Errorf("invalid --format %q: must be one of \"png\" or \"svg\"", flagFormat))
			}

			writeCharts := func(slug string, report webassets.Report) error {
				for _, part := range []struct {
					suffix string
					chart  charts.Chart
				}{
					{"types", charts.Pie(report)},
					{"sizes", charts.SizeHistogram(report, flagBins)},
				} {
					img, err := render(part.chart)
					if err != nil {
						return err
					}
					filename := filepath.Join(flagOutDir,
						fmt.Sprintf("%s-%s.%s", slug, part.suffix, flagFormat))
					if err := os.WriteFile(filename, img, 0666); err != nil {
						return err
					}
					dlog.Infof(ctx, "wrote %s", filename)
				}
				return nil
			}

			assayer := flagIndex.assayer()
			var reports []webassets.Report
			var failed int
			for _, spec := range args {
				report, err := assayer.Assay(ctx, spec)
				if err == nil {
					if report.Count() == 0 {
						dlog.Warnf(ctx, "%s: no web assets found in package", spec)
						continue
					}
					reports = append(reports, report)
					err = writeCharts(pypi.NormalizeName(report.Package), report)
				}
				if err != nil && !errors.Is(err, charts.ErrNoAssets) {
					dlog.Errorf(ctx, "error reporting on %s: %v", spec, err)
					failed++
				}
			}
			if len(reports) == 0 && failed > 0 {
				return fmt.Errorf("all %d packages failed", failed)
			}
			if len(reports) > 1 {
				if err := writeCharts("cumulative", webassets.Merge(reports...)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flagIndex.register(cmd.Flags())
	cmd.Flags().StringVar(&flagOutDir, "out-dir", ".",
		"Directory to write chart files into")
	cmd.Flags().StringVar(&flagFormat, "format", "png",
		"Image format to render: \"png\" or \"svg\"")
	cmd.Flags().IntVar(&flagBins, "bins", webassets.DefaultBins,
		"Number of size-distribution histogram bins")
	argparser.AddCommand(cmd)
}
