package worldbank

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rewired-gh/countrystats/internal/models"
)

// ErrParse classifies responses whose record structure cannot be followed.
var ErrParse = errors.New("indicator response malformed")

// ParseError reports where scanning stopped. It matches ErrParse with errors.Is.
type ParseError struct {
	Offset int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse at offset %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse at offset %d: %s", e.Offset, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

const (
	dateKey  = `"date"`
	valueKey = `"value"`
)

type scanState int

const (
	seekDate scanState = iota
	readYear
	seekValue
	readValue
	emit
	done
)

// Parse scans body for records carrying a "date" and a "value" field and
// returns them as a Series. Pagination metadata and nested objects that precede
// a record's date are skipped. Quoted values become Text, numeric values become
// Number, anything else (null included) becomes Absent. A repeated year keeps
// the last value seen.
func Parse(body string) (models.Series, error) {
	series := models.NewSeries()

	var (
		state = seekDate
		pos   int
		year  int
		value models.DataValue
	)

	for state != done {
		switch state {
		case seekDate:
			next, ok := findKey(body, pos, dateKey)
			if !ok {
				state = done
				continue
			}
			pos = next
			state = readYear

		case readYear:
			raw, next, err := scanYear(body, pos)
			if err != nil {
				return nil, err
			}
			y, convErr := strconv.Atoi(raw)
			if convErr != nil {
				return nil, &ParseError{Offset: pos, Reason: fmt.Sprintf("malformed year %q", raw), Err: convErr}
			}
			year = y
			pos = next
			state = seekValue

		case seekValue:
			next, ok := recordKey(body, pos, valueKey)
			if !ok {
				return nil, &ParseError{Offset: pos, Reason: fmt.Sprintf("value marker not found for year %d", year)}
			}
			pos = next
			state = readValue

		case readValue:
			v, next, err := scanValue(body, pos)
			if err != nil {
				return nil, err
			}
			value = v
			pos = next
			state = emit

		case emit:
			series[year] = value
			state = seekDate
		}
	}

	return series, nil
}

// findKey locates key at or after pos followed by a colon and returns the
// offset of the first non-space byte after the colon. Occurrences of key not
// followed by a colon (e.g. inside string values) are skipped.
func findKey(body string, pos int, key string) (int, bool) {
	for pos < len(body) {
		i := strings.Index(body[pos:], key)
		if i < 0 {
			return 0, false
		}
		p := skipSpace(body, pos+i+len(key))
		if p < len(body) && body[p] == ':' {
			return skipSpace(body, p+1), true
		}
		pos += i + len(key)
	}
	return 0, false
}

// recordKey locates key among the fields that follow pos in the same record.
// Nested objects and arrays are skipped, and the search stops at the brace
// closing the record.
func recordKey(body string, pos int, key string) (int, bool) {
	depth := 0
	for i := pos; i < len(body); i++ {
		switch body[i] {
		case '"':
			end, ok := closingQuote(body, i+1)
			if !ok {
				return 0, false
			}
			if depth == 0 && body[i:end+1] == key {
				p := skipSpace(body, end+1)
				if p < len(body) && body[p] == ':' {
					return skipSpace(body, p+1), true
				}
			}
			i = end
		case '{', '[':
			depth++
		case '}', ']':
			if depth == 0 {
				return 0, false
			}
			depth--
		}
	}
	return 0, false
}

func skipSpace(body string, pos int) int {
	for pos < len(body) {
		switch body[pos] {
		case ' ', '\t', '\r', '\n':
			pos++
		default:
			return pos
		}
	}
	return pos
}

// scanYear reads the year token at pos, quoted or bare.
func scanYear(body string, pos int) (string, int, error) {
	if pos < len(body) && body[pos] == '"' {
		end := strings.IndexByte(body[pos+1:], '"')
		if end < 0 {
			return "", 0, &ParseError{Offset: pos, Reason: "unterminated date"}
		}
		return body[pos+1 : pos+1+end], pos + end + 2, nil
	}
	end := tokenEnd(body, pos)
	if end == pos {
		return "", 0, &ParseError{Offset: pos, Reason: "empty date"}
	}
	return body[pos:end], end, nil
}

// scanValue reads the value token at pos and types it.
func scanValue(body string, pos int) (models.DataValue, int, error) {
	if pos >= len(body) {
		return models.DataValue{}, 0, &ParseError{Offset: pos, Reason: "value truncated"}
	}

	if body[pos] == '"' {
		end, ok := closingQuote(body, pos+1)
		if !ok {
			return models.DataValue{}, 0, &ParseError{Offset: pos, Reason: "unterminated text value"}
		}
		literal := body[pos : end+1]
		text, err := strconv.Unquote(literal)
		if err != nil {
			text = literal[1 : len(literal)-1]
		}
		return models.TextValue(text), end + 1, nil
	}

	end := tokenEnd(body, pos)
	token := body[pos:end]
	f, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return models.AbsentValue(), end, nil
	}
	return models.NumberValue(f), end, nil
}

// closingQuote returns the index of the quote ending a string that starts at
// pos, honouring backslash escapes.
func closingQuote(body string, pos int) (int, bool) {
	for i := pos; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case '"':
			return i, true
		}
	}
	return 0, false
}

// tokenEnd returns the offset of the first top-level separator at or after pos.
func tokenEnd(body string, pos int) int {
	for i := pos; i < len(body); i++ {
		switch body[i] {
		case ',', '}', ']', ' ', '\t', '\r', '\n':
			return i
		}
	}
	return len(body)
}
