package enrich

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrNoData signals an aggregate over zero regions.
var ErrNoData = eris.New("enrich: no data")

// DataLoadError reports an unreadable source, an unsupported format or a
// missing required column. No partial dataset accompanies it.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("enrich: load %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// InvalidCategoryError reports a supplied category label outside the recognized tiers.
type InvalidCategoryError struct {
	RegionID string
	Label    string
	Row      int
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("enrich: region %q (row %d): invalid category %q", e.RegionID, e.Row, e.Label)
}

// DuplicateKeyError reports a region id that occurs twice on one side of a join.
type DuplicateKeyError struct {
	Side     string
	RegionID string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("enrich: duplicate region id %q in %s", e.RegionID, e.Side)
}

// asLoadError wraps err in a DataLoadError unless it already carries a
// pipeline error type.
func asLoadError(source string, err error) error {
	var dle *DataLoadError
	var ice *InvalidCategoryError
	if errors.As(err, &dle) || errors.As(err, &ice) {
		return err
	}
	return &DataLoadError{Source: source, Err: err}
}
