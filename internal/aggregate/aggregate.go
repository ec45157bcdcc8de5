// Package aggregate computes totals and averages over parsed numeric records.
package aggregate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmpty is returned when there is nothing to average.
var ErrEmpty = errors.New("aggregate: no values")

// Summary is the sum and mean of a set of values.
type Summary struct {
	Count   int
	Total   int
	Average float64
}

// Summarize sums values and divides by their count in floating point.
func Summarize(values []int) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmpty
	}
	total := 0
	for _, v := range values {
		total += v
	}
	return Summary{
		Count:   len(values),
		Total:   total,
		Average: float64(total) / float64(len(values)),
	}, nil
}

func (s Summary) String() string {
	return fmt.Sprintf("total=%d average=%s", s.Total, FormatFloat(s.Average))
}

// FormatFloat renders f with the fewest digits that round-trip, always
// keeping a fractional part: 1500 prints as "1500.0".
func FormatFloat(f float64) string {
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(out, ".nN") {
		out += ".0"
	}
	return out
}
