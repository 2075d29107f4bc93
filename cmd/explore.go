package main

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/enrich"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Interactively filter and summarize regions",
	Long: `Reads filter selections from stdin, one per line, and prints the summary of the
resulting view. Selections persist between lines until changed or reset:

  category=Very High quality=Reliable
  region=Kab Bogor
  reset
  quit`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		return runExplore(cmd.InOrStdin(), cmd.OutOrStdout(), env, format)
	},
}

func init() {
	exploreCmd.Flags().String("format", "text", "output format per selection: text, yaml or json")
	rootCmd.AddCommand(exploreCmd)
}

var selectionKey = regexp.MustCompile(`(?i)(?:^|\s)(category|quality|region)=`)

// parseSelection applies a "key=value ..." line to current. Values may
// contain spaces and run until the next key.
func parseSelection(line string, current enrich.FilterOptions) (enrich.FilterOptions, error) {
	matches := selectionKey.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return current, eris.Errorf("explore: expected key=value, got %q", line)
	}
	if lead := strings.TrimSpace(line[:matches[0][0]]); lead != "" {
		return current, eris.Errorf("explore: unexpected %q", lead)
	}

	next := current
	for i, m := range matches {
		end := len(line)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		key := strings.ToLower(line[m[2]:m[3]])
		value := strings.TrimSpace(line[m[1]:end])
		if value == "" {
			value = enrich.All
		}
		switch key {
		case "category":
			next.Category = value
		case "quality":
			next.Quality = value
		case "region":
			next.Region = value
		}
	}
	return next, nil
}

func allFilters() enrich.FilterOptions {
	return enrich.FilterOptions{Category: enrich.All, Quality: enrich.All, Region: enrich.All}
}

// runExplore reads selections from in until EOF or quit.
func runExplore(in io.Reader, out io.Writer, env *pipelineEnv, format string) error {
	log := zap.L().With(zap.String("component", "explore"))
	opts := allFilters()

	if err := writeSummary(out, env, opts, format); err != nil {
		return err
	}
	if qualities := enrich.QualityOptions(env.View); len(qualities) > 0 {
		_, _ = fmt.Fprintf(out, "\nQuality tiers: %s\n", strings.Join(qualities, ", "))
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "reset":
			opts = allFilters()
		default:
			next, err := parseSelection(line, opts)
			if err != nil {
				log.Debug("invalid selection", zap.String("line", line))
				_, _ = fmt.Fprintln(out, err.Error())
				continue
			}
			opts = next
		}

		_, _ = fmt.Fprintf(out, "\n== category=%s quality=%s region=%s ==\n", opts.Category, opts.Quality, opts.Region)
		if err := writeSummary(out, env, opts, format); err != nil {
			return err
		}
	}
	return eris.Wrap(scanner.Err(), "explore: read input")
}
