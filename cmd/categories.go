package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/choropleth-cli/internal/enrich"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the legend of categories present in the data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		legend := enrich.Legend(env.filter(filterOptions(cmd)), env.Palette)
		return writeLegend(cmd.OutOrStdout(), legend, format)
	},
}

func init() {
	categoriesCmd.Flags().String("format", "text", "output format: text, yaml or json")
	addFilterFlags(categoriesCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func writeLegend(out io.Writer, legend []enrich.LegendEntry, format string) error {
	switch format {
	case "", "text":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "CATEGORY\tLABEL\tCOLOR\tCOUNT")
		_, _ = fmt.Fprintln(w, "--------\t-----\t-----\t-----")
		for _, e := range legend {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", e.Category, e.Label, e.Color, e.Count)
		}
		return w.Flush()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(legend)
	case "yaml", "yml":
		data, err := yaml.Marshal(legend)
		if err != nil {
			return eris.Wrap(err, "categories: marshal yaml")
		}
		_, err = out.Write(data)
		return err
	default:
		return eris.Errorf("categories: unknown format %q", format)
	}
}
