package enrich

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsLoadError(t *testing.T) {
	base := errors.New("open failed")
	err := asLoadError("a.csv", base)

	var dle *DataLoadError
	assert.True(t, errors.As(err, &dle))
	assert.Equal(t, "a.csv", dle.Source)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "enrich: load a.csv: open failed", err.Error())

	ice := &InvalidCategoryError{RegionID: "01", Label: "x", Row: 3}
	assert.Same(t, ice, asLoadError("a.csv", ice))
	assert.Equal(t, `enrich: region "01" (row 3): invalid category "x"`, ice.Error())
}

func TestDuplicateKeyError(t *testing.T) {
	err := &DuplicateKeyError{Side: "attributes", RegionID: "01"}
	assert.Equal(t, `enrich: duplicate region id "01" in attributes`, err.Error())
}
