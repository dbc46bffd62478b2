package mgrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakMGRSString(t *testing.T) {
	tests := []struct {
		in   string
		want Parts
	}{
		{"31NAA6602100000", Parts{Zone: 31, Letters: "NAA", Easting: 66021, Northing: 0, Precision: 5}},
		{"4QFJ1234", Parts{Zone: 4, Letters: "QFJ", Easting: 12000, Northing: 34000, Precision: 2}},
		{"4qfj 12 34", Parts{Zone: 4, Letters: "QFJ", Easting: 12000, Northing: 34000, Precision: 2}},
		{"'02Q MD 0000'", Parts{Zone: 2, Letters: "QMD", Precision: 2}},
		{"YZG9922199208", Parts{Zone: 0, Letters: "YZG", Easting: 99221, Northing: 99208, Precision: 5}},
		{"18SUJ", Parts{Zone: 18, Letters: "SUJ"}},
	}
	for _, tt := range tests {
		got, err := BreakMGRSString(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestBreakMGRSStringSubMetre(t *testing.T) {
	got, err := BreakMGRSString("31NAA66021400001234")
	require.NoError(t, err)
	assert.InDelta(t, 66021.4, got.Easting, 1e-9)
	assert.InDelta(t, 12.34, got.Northing, 1e-9)
	assert.Equal(t, 7, got.Precision)
}

func TestBreakMGRSStringFailures(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"4QFJ123456789", ErrOddPrecision},
		{"", ErrInvalidZone},
		{"123QFJ12", ErrInvalidZone},
		{"61QFJ12", ErrInvalidZone},
		{"QFJ1234", ErrInvalidZone},
		{"4QF1234", ErrInvalidLetters},
		{"4QFJK1234", ErrInvalidLetters},
		{"4QIJ1234", ErrInvalidLetters},
		{"4QFO1234", ErrInvalidLetters},
		{"4QFJ12A4", ErrInvalidLetters},
	}
	for _, tt := range tests {
		_, err := BreakMGRSString(tt.in)
		require.Error(t, err, tt.in)
		assert.ErrorIs(t, err, tt.want, tt.in)
		assert.NotEmpty(t, err.Error())
	}
}
