package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/choropleth-cli/internal/enrich"
	"github.com/sells-group/choropleth-cli/internal/export"
	"github.com/sells-group/choropleth-cli/internal/region"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize unmet need across regions",
	Long:  "Prints the mean metric, the per-category counts and the highest and lowest regions of the (optionally filtered) view.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if top, _ := cmd.Flags().GetInt("top"); top > 0 {
			env.TopK = top
		}
		if bottom, _ := cmd.Flags().GetInt("bottom"); bottom > 0 {
			env.BottomK = bottom
		}

		return writeSummary(cmd.OutOrStdout(), env, filterOptions(cmd), format)
	},
}

func init() {
	summaryCmd.Flags().String("format", "text", "output format: text, yaml or json")
	summaryCmd.Flags().Int("top", 0, "number of highest regions (default summary.top_k)")
	summaryCmd.Flags().Int("bottom", 0, "number of lowest regions (default summary.bottom_k)")
	addFilterFlags(summaryCmd)
	rootCmd.AddCommand(summaryCmd)
}

// writeSummary filters the view and prints its summary in format.
func writeSummary(out io.Writer, env *pipelineEnv, opts enrich.FilterOptions, format string) error {
	view := env.filter(opts)
	doc := export.SummaryDocument{
		Filters: opts,
		Summary: enrich.Summarize(view, env.TopK, env.BottomK),
		Legend:  enrich.Legend(view, env.Palette),
	}

	switch format {
	case "", "text":
		formatSummary(out, doc, env.Palette)
		if view.Len() == 1 {
			formatRegion(out, view.At(0), env.Palette)
		}
		return nil
	case "yaml", "yml", "json":
		return export.WriteSummary(out, doc, format)
	default:
		return eris.Errorf("summary: unknown format %q", format)
	}
}

// formatSummary writes a human-readable summary to out.
func formatSummary(out io.Writer, doc export.SummaryDocument, p enrich.Palette) {
	s := doc.Summary
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Regions:\t%d\n", s.Count)
	if mean, err := s.MeanValue(); err != nil {
		_, _ = fmt.Fprintf(w, "Mean:\tno data\n")
	} else {
		_, _ = fmt.Fprintf(w, "Mean:\t%.2f%%\n", mean)
		_, _ = fmt.Fprintf(w, "Range:\t%.2f%% - %.2f%%\n", s.Min, s.Max)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CATEGORY\tLABEL\tCOLOR\tCOUNT")
	_, _ = fmt.Fprintln(w, "--------\t-----\t-----\t-----")
	for _, cc := range s.CategoryCounts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", cc.Category, p.Label(cc.Category), p.Color(cc.Category), cc.Count)
	}
	_ = w.Flush()

	formatRanked(out, "Highest", s.Top)
	formatRanked(out, "Lowest", s.Bottom)
}

func formatRanked(out io.Writer, title string, regions []region.Attribute) {
	if len(regions) == 0 {
		return
	}
	_, _ = fmt.Fprintf(out, "\n%s %d:\n", title, len(regions))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, r := range regions {
		_, _ = fmt.Fprintf(w, "  %d.\t%s\t(%s)\t%.2f%%\n", i+1, r.Name, r.ID, r.Value)
	}
	_ = w.Flush()
}

// formatRegion writes the detail block shown when a single region is selected.
func formatRegion(out io.Writer, r region.Enriched, p enrich.Palette) {
	_, _ = fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Region:\t%s (%s)\n", r.Name, r.ID)
	_, _ = fmt.Fprintf(w, "Unmet need:\t%.2f%%\n", r.Value)
	_, _ = fmt.Fprintf(w, "Category:\t%s\n", p.Label(r.Category))
	if r.Quality != "" {
		_, _ = fmt.Fprintf(w, "Quality:\t%s\n", r.Quality)
	}
	_, _ = fmt.Fprintf(w, "Centroid:\t%.4f, %.4f\n", r.Centroid.Y(), r.Centroid.X())
	_ = w.Flush()
}
