package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/choropleth-cli/internal/enrich"
)

// WriteCSV writes one row per region, without geometry.
func WriteCSV(w io.Writer, v enrich.View, p enrich.Palette) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range Records(v, p) {
		row := []string{
			r.ID, r.Name, formatFloat(r.Value), r.Category,
			r.Label, r.Color, r.Quality, formatFloat(r.Lon), formatFloat(r.Lat),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", r.ID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
