package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/export"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Write the filtered map view as GeoJSON",
	Long:  "Filters the joined regions and writes them as a GeoJSON FeatureCollection with legend label, color and centroid per region.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		view := env.filter(filterOptions(cmd))
		if view.Len() == 0 {
			zap.L().Warn("view is empty", zap.String("component", "view"))
		}

		outPath, _ := cmd.Flags().GetString("out")
		if outPath == "" || outPath == "-" {
			return export.WriteGeoJSON(cmd.OutOrStdout(), view, env.Palette)
		}

		f, err := os.Create(outPath)
		if err != nil {
			return eris.Wrapf(err, "view: create %s", outPath)
		}
		defer f.Close() //nolint:errcheck
		if err := export.WriteGeoJSON(f, view, env.Palette); err != nil {
			return err
		}
		return eris.Wrap(f.Close(), "view: close output")
	},
}

func init() {
	viewCmd.Flags().String("out", "", "output file (default stdout)")
	addFilterFlags(viewCmd)
	rootCmd.AddCommand(viewCmd)
}
