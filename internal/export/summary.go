package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/choropleth-cli/internal/enrich"
)

// SummaryDocument is the serialized form of a summary with its legend.
type SummaryDocument struct {
	Filters enrich.FilterOptions `json:"filters" yaml:"filters"`
	Summary enrich.Summary       `json:"summary" yaml:"summary"`
	Legend  []enrich.LegendEntry `json:"legend" yaml:"legend"`
}

// WriteSummary encodes doc as "yaml" or "json".
func WriteSummary(w io.Writer, doc SummaryDocument, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "export: encode yaml summary")
		}
		return eris.Wrap(enc.Close(), "export: close yaml encoder")
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(doc), "export: encode json summary")
	default:
		return eris.Errorf("export: unknown summary format %q", format)
	}
}
