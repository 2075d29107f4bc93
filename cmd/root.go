package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/config"
	"github.com/sells-group/choropleth-cli/internal/enrich"
)

var (
	cfg     *config.Config
	cache   *enrich.Cache
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "choropleth",
	Short: "Region enrichment pipeline for choropleth maps",
	Long:  "Joins a region attribute table with region boundaries, classifies regions by unmet need and produces filtered summaries and map-ready exports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applySourceFlags(cmd, c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		zap.ReplaceGlobals(zap.L().With(zap.String("run_id", uuid.NewString())))

		cache = enrich.NewCache()
		cmd.SetContext(enrich.WithCache(cmd.Context(), cache))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cache != nil {
			cache.Close()
		}
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("attributes", "", "attribute table path or URI (overrides sources.attributes)")
	rootCmd.PersistentFlags().String("geometries", "", "boundary file path or URI (overrides sources.geometries)")
}

// applySourceFlags lets --attributes and --geometries override the config.
func applySourceFlags(cmd *cobra.Command, c *config.Config) {
	if v, _ := cmd.Flags().GetString("attributes"); v != "" {
		c.Sources.Attributes = v
	}
	if v, _ := cmd.Flags().GetString("geometries"); v != "" {
		c.Sources.Geometries = v
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
