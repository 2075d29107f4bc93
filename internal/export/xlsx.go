package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/choropleth-cli/internal/enrich"
)

// Sheet names of the xlsx export.
const (
	RegionsSheet = "Regions"
	SummarySheet = "Summary"
)

// WriteXLSX writes a workbook with a Regions sheet (one row per region) and a
// Summary sheet (mean and per-category counts).
func WriteXLSX(w io.Writer, v enrich.View, s enrich.Summary, p enrich.Palette) error {
	f := xlsx.NewFile()

	regions, err := f.AddSheet(RegionsSheet)
	if err != nil {
		return eris.Wrap(err, "export: add regions sheet")
	}
	addStringRow(regions, recordHeader...)
	for _, r := range Records(v, p) {
		row := regions.AddRow()
		row.AddCell().SetString(r.ID)
		row.AddCell().SetString(r.Name)
		row.AddCell().SetFloat(r.Value)
		row.AddCell().SetString(r.Category)
		row.AddCell().SetString(r.Label)
		row.AddCell().SetString(r.Color)
		row.AddCell().SetString(r.Quality)
		row.AddCell().SetFloat(r.Lon)
		row.AddCell().SetFloat(r.Lat)
	}

	summary, err := f.AddSheet(SummarySheet)
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addStringRow(summary, "metric", "value")
	countRow := summary.AddRow()
	countRow.AddCell().SetString("count")
	countRow.AddCell().SetInt(s.Count)
	if !s.NoData {
		meanRow := summary.AddRow()
		meanRow.AddCell().SetString("mean")
		meanRow.AddCell().SetFloat(s.Mean)
	}
	for _, cc := range s.CategoryCounts {
		row := summary.AddRow()
		row.AddCell().SetString(p.Label(cc.Category))
		row.AddCell().SetInt(cc.Count)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addStringRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
