package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYears(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		expected []int
	}{
		{"single year", 2005, 2005, []int{2005}},
		{"ascending range", 2000, 2003, []int{2000, 2001, 2002, 2003}},
		{"inverted bounds", 2010, 2000, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Years(tt.min, tt.max))
		})
	}
}

func TestFullYearRangeHasNoGaps(t *testing.T) {
	years := Years(MinYear, MaxYear)
	assert.Len(t, years, MaxYear-MinYear+1)
	for i := 1; i < len(years); i++ {
		assert.Equal(t, years[i-1]+1, years[i])
	}
	assert.Equal(t, MinYear, DefaultYear())
}

func TestLookups(t *testing.T) {
	assert.Equal(t, "CAN", CountryCode(0))
	assert.Equal(t, "AG.LND.FRST.ZS", IndicatorAt(PrimaryIndicator).Code)
	assert.True(t, PrimaryIndicator.IsPrimary())
	assert.False(t, IndicatorSelector(1).IsPrimary())

	sel, ok := CountryByCode("FRA")
	assert.True(t, ok)
	assert.Equal(t, "France", CountryAt(sel).Name)

	_, ok = CountryByCode("XXX")
	assert.False(t, ok)

	ind, ok := IndicatorByCode("EN.ATM.CO2E.PC")
	assert.True(t, ok)
	assert.Equal(t, IndicatorSelector(1), ind)
}

func TestOutOfRangeSelectorsPanic(t *testing.T) {
	assert.Panics(t, func() { CountryAt(CountrySelector(len(Countries))) })
	assert.Panics(t, func() { CountryAt(-1) })
	assert.Panics(t, func() { IndicatorAt(IndicatorSelector(len(Indicators))) })
	assert.False(t, ValidCountry(CountrySelector(len(Countries))))
	assert.True(t, ValidIndicator(0))
}

func TestValidYear(t *testing.T) {
	assert.True(t, ValidYear(MinYear))
	assert.True(t, ValidYear(MaxYear))
	assert.False(t, ValidYear(MinYear-1))
	assert.False(t, ValidYear(MaxYear+1))
}
