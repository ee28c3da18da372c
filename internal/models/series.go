package models

import "sort"

// Series maps a year to its value. Keys need not be contiguous. A Series is
// built once per fetch and never mutated after it is published in a State.
type Series map[int]DataValue

// NewSeries returns an empty series.
func NewSeries() Series {
	return make(Series)
}

// Get returns the value for year. A missing year reads as Absent.
func (s Series) Get(year int) DataValue {
	v, ok := s[year]
	if !ok {
		return AbsentValue()
	}
	return v
}

// Has reports whether year holds a usable value.
func (s Series) Has(year int) bool {
	return s.Get(year).Usable()
}

// Years returns the series keys in ascending order.
func (s Series) Years() []int {
	years := make([]int, 0, len(s))
	for y := range s {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Clone returns an independent copy. Cloning a nil series yields an empty one.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	for y, v := range s {
		out[y] = v
	}
	return out
}

// Equal reports whether both series hold the same years and values.
func (s Series) Equal(other Series) bool {
	if len(s) != len(other) {
		return false
	}
	for y, v := range s {
		o, ok := other[y]
		if !ok || o != v {
			return false
		}
	}
	return true
}
