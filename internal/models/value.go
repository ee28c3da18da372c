// Package models defines the core domain entities for countrystats.
// These models represent per-year indicator values, the series built from them,
// and the analysis state handed to rendering collaborators.
//
// Terminology (matching the World Bank's own naming):
//   - Indicator: a statistical measure identified by a stable code (e.g. AG.LND.FRST.ZS).
//   - Series: the year-to-value mapping returned for one country and one indicator.
package models

import (
	"encoding/json"
	"strconv"
)

// NullToken is the literal the indicator service uses for missing values.
// A Text value equal to it is treated as absent.
const NullToken = "null"

// Kind tags the variant held by a DataValue.
type Kind int

const (
	// Absent means no usable data for the year.
	Absent Kind = iota
	// Number is a numeric observation.
	Number
	// Text is a quoted literal from the response.
	Text
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	default:
		return "absent"
	}
}

// DataValue is a tagged union of Number, Text and Absent.
type DataValue struct {
	Kind Kind
	Num  float64
	Str  string
}

// NumberValue wraps a numeric observation.
func NumberValue(f float64) DataValue {
	return DataValue{Kind: Number, Num: f}
}

// TextValue wraps a quoted literal.
func TextValue(s string) DataValue {
	return DataValue{Kind: Text, Str: s}
}

// AbsentValue is the value for a year with no usable data.
func AbsentValue() DataValue {
	return DataValue{Kind: Absent}
}

// Usable reports whether the value counts as present for validation:
// absent values and the literal null token do not.
func (v DataValue) Usable() bool {
	switch v.Kind {
	case Number:
		return true
	case Text:
		return v.Str != NullToken
	default:
		return false
	}
}

// Float returns the numeric reading of the value. Text values are parsed,
// so a quoted "12.5" still plots.
func (v DataValue) Float() (float64, bool) {
	switch v.Kind {
	case Number:
		return v.Num, true
	case Text:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func (v DataValue) String() string {
	switch v.Kind {
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Text:
		return v.Str
	default:
		return NullToken
	}
}

// MarshalJSON encodes numbers as numbers, text as strings and absent as null.
func (v DataValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Number:
		return json.Marshal(v.Num)
	case Text:
		return json.Marshal(v.Str)
	default:
		return []byte(NullToken), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *DataValue) UnmarshalJSON(data []byte) error {
	if string(data) == NullToken {
		*v = AbsentValue()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = TextValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = NumberValue(f)
	return nil
}
