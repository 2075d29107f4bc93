package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/choropleth-cli/internal/enrich"
)

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("category", enrich.All, "category filter (Low, Medium, High, Very High or all)")
	cmd.Flags().String("quality", enrich.All, "quality tier filter or all")
	cmd.Flags().String("region", enrich.All, "region id or name, or all")
}

func filterOptions(cmd *cobra.Command) enrich.FilterOptions {
	category, _ := cmd.Flags().GetString("category")
	quality, _ := cmd.Flags().GetString("quality")
	regionFilter, _ := cmd.Flags().GetString("region")
	return enrich.FilterOptions{Category: category, Quality: quality, Region: regionFilter}
}
