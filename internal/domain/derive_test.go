package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaporPressureDeficit(t *testing.T) {
	assert.Equal(t, Num(0), VaporPressureDeficit(Num(20), Num(100)))
	assert.InDelta(t, 1.17, VaporPressureDeficit(Num(20), Num(50)).Value, 0.01)
	assert.InDelta(t, 3.52, VaporPressureDeficit(Num(33), Num(30)).Value, 0.02)
	assert.Equal(t, Missing, VaporPressureDeficit(Missing, Num(50)))
	assert.Equal(t, Missing, VaporPressureDeficit(Num(20), Missing))
}

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(23.81, 90.41, 23.81, 90.41), 1e-9)
	// Dhaka to Chattogram.
	assert.InDelta(t, 214, HaversineKm(23.8103, 90.4125, 22.3569, 91.7832), 5)
	// One degree of latitude.
	assert.InDelta(t, 111.2, HaversineKm(0, 0, 1, 0), 0.2)
}

func TestCelsiusFrom(t *testing.T) {
	tests := []struct {
		name string
		in   Number
		unit TemperatureUnit
		want float64
	}{
		{"celsius", Num(21), Celsius, 21},
		{"fahrenheit", Num(98.6), Fahrenheit, 37},
		{"kelvin", Num(300), Kelvin, 26.85},
		{"lowercase", Num(32), "f", 0},
		{"long name", Num(0), "celsius", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CelsiusFrom(tt.in, tt.unit)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.Value, 1e-9)
		})
	}

	t.Run("missing stays missing", func(t *testing.T) {
		got, err := CelsiusFrom(Missing, Fahrenheit)
		require.NoError(t, err)
		assert.Equal(t, Missing, got)
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, err := CelsiusFrom(Num(300), "R")
		assert.Error(t, err)
	})
}

func TestSumLast(t *testing.T) {
	series := []Number{Num(1), Num(2), Missing, Num(4)}

	assert.Equal(t, Num(6), SumLast(series, 3))
	assert.Equal(t, Num(7), SumLast(series, 10))
	assert.Equal(t, Missing, SumLast(nil, 24))
	assert.Equal(t, Missing, SumLast(series, 0))
}
