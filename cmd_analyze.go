package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/datawire/webassay/pkg/cliutil"
	"github.com/datawire/webassay/pkg/webassets"
)

func init() {
	var (
		flagIndex indexFlags
		flagJSON  bool
		flagFiles []string
	)
	cmd := &cobra.Command{
		Use:   "analyze [flags] [PACKAGE[==VERSION]...]",
		Short: "Download packages and report on their bundled web assets",

		Long: "For each named package, download its source distribution from the " +
			"package index, scan the archive for web-asset files (scripts, " +
			"stylesheets, markup, images), and print an asset listing plus summary " +
			"statistics.  A cumulative summary covering everything scanned is " +
			"printed last." +
			"\n\n" +
			"A failing package is reported and skipped; the command only fails " +
			"outright when nothing could be analyzed.",

		Args: cliutil.WrapPositionalArgs(cobra.ArbitraryArgs),
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()
			if len(args) == 0 && len(flagFiles) == 0 {
				return fmt.Errorf("nothing to analyze: give a package name or --file")
			}
			assayer := flagIndex.assayer()
			out := flags.OutOrStdout()

			var reports []webassets.Report
			var failed int
			for _, file := range flagFiles {
				filename, content, err := ReadSdist(file)
				if err == nil {
					var report webassets.Report
					report, err = assayer.AssayFile(ctx, filename, content)
					if err == nil {
						report.Package = filename
						reports = append(reports, report)
					}
				}
				if err != nil {
					dlog.Errorf(ctx, "error analyzing %s: %v", file, err)
					failed++
				}
			}
			for _, spec := range args {
				report, err := assayer.Assay(ctx, spec)
				if err != nil {
					dlog.Errorf(ctx, "error analyzing %s: %v", spec, err)
					failed++
					continue
				}
				reports = append(reports, report)
			}
			if len(reports) == 0 {
				return fmt.Errorf("all %d packages failed", failed)
			}

			if flagJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			for _, report := range reports {
				printReport(out, report)
			}
			if merged := webassets.Merge(reports...); merged.Count() > 0 {
				printReport(out, merged)
			}
			return nil
		},
	}
	flagIndex.register(cmd.Flags())
	cmd.Flags().BoolVar(&flagJSON, "json", false,
		"Emit reports as JSON instead of text")
	cmd.Flags().StringArrayVar(&flagFiles, "file", nil,
		"Analyze a local sdist `FILE` instead of downloading (\"-\" for stdin; repeatable)")
	argparser.AddCommand(cmd)
}

func printReport(out io.Writer, report webassets.Report) {
	title := report.Package
	if report.Version != "" {
		title += " " + report.Version
	}
	fmt.Fprintf(out, "== %s ==\n", title)
	if report.Count() == 0 {
		fmt.Fprintln(out, "No web assets found in package")
		fmt.Fprintln(out)
		return
	}

	table := tabwriter.NewWriter(
		out, // output
		0,   // minwidth
		1,   // tabwidth
		1,   // padding
		' ', // padchar
		0)   // flags
	fmt.Fprintln(table, "\tEXTENSION\tSIZE (MB)\tPATH")
	for _, asset := range report.SortedBySize() {
		fmt.Fprintf(table, "\t%s\t%9.2f\t%s\n",
			asset.Ext, webassets.MB(asset.Size), asset.Path)
	}
	_ = table.Flush()

	fmt.Fprintf(out, "Total assets: %d\n", report.Count())
	fmt.Fprintf(out, "Total size: %.2f MB\n", webassets.MB(report.TotalSize()))
	fmt.Fprintf(out, "Average size: %.2f MB\n", report.MeanSize()/webassets.BytesPerMB)
	fmt.Fprintf(out, "Median size: %.2f MB\n", report.MedianSize()/webassets.BytesPerMB)
	fmt.Fprintln(out)
}
