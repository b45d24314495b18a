package model

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestValidCensusYear(t *testing.T) {
	for _, y := range CensusYears {
		assert.True(t, ValidCensusYear(y))
	}
	assert.False(t, ValidCensusYear(1890))
	assert.False(t, ValidCensusYear(1950))
	assert.False(t, ValidCensusYear(0))
}

func TestCountyPolygonID(t *testing.T) {
	c := CountyPolygon{StateCode: "41", CountyCode: "0010"}
	assert.Equal(t, "41-0010", c.ID())
}

func TestCountyPolygonLess(t *testing.T) {
	a := CountyPolygon{StateCode: "41", CountyCode: "0010"}
	b := CountyPolygon{StateCode: "41", CountyCode: "0030"}
	c := CountyPolygon{StateCode: "42", CountyCode: "0010"}

	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.True(t, a.Less(c))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a))
}

func TestErrorSentinels(t *testing.T) {
	err := eris.Wrap(ErrConfiguration, "crosswalk: bad threshold")
	assert.True(t, eris.Is(err, ErrConfiguration))
	assert.False(t, eris.Is(err, ErrDataLoad))
}
