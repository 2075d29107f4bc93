package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/choropleth-cli/internal/enrich"
	"github.com/sells-group/choropleth-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered view to a file",
	Long:  "Writes the filtered regions as GeoJSON, CSV, XLSX or a SQLite database with regions and category_counts tables.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := export.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		outPath, _ := cmd.Flags().GetString("out")
		if outPath == "" {
			return eris.New("export: --out is required")
		}

		env, err := initPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		view := env.filter(filterOptions(cmd))
		summary := enrich.Summarize(view, env.TopK, env.BottomK)
		if err := export.WriteFile(cmd.Context(), outPath, format, view, summary, env.Palette); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d regions to %s\n", view.Len(), outPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "geojson", "export format: geojson, csv, xlsx or sqlite")
	exportCmd.Flags().String("out", "", "output path")
	addFilterFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
