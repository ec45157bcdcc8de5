// Package records parses comma-separated flat files into salary values and cat records.
package records

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/smileynet/toolbox/internal/logger"
)

// ErrMalformed indicates a line that does not match the expected record format.
var ErrMalformed = errors.New("records: malformed line")

// LineError reports which line of an input failed to parse and why.
type LineError struct {
	Line   int    // 1-based line number.
	Text   string // Trimmed line content.
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("records: line %d %q: %s", e.Line, e.Text, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformed.
func (e *LineError) Unwrap() error {
	return ErrMalformed
}

// Cat is one positional id,name,age record. Fields are kept as text.
type Cat struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Age  string `json:"age" yaml:"age"`
}

// ParseSalaries reads one salary per line from r, taking the last comma-separated
// field of each line as an integer. The first bad line aborts the parse.
func ParseSalaries(r io.Reader) ([]int, error) {
	var salaries []int
	err := eachLine(r, func(n int, line string) error {
		fields := strings.Split(line, ",")
		raw := strings.TrimSpace(fields[len(fields)-1])
		v, err := strconv.Atoi(raw)
		if err != nil {
			return &LineError{Line: n, Text: line, Reason: fmt.Sprintf("salary %q is not an integer", raw)}
		}
		salaries = append(salaries, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.L().Debug("records.parsed", "kind", "salary", "count", len(salaries))
	return salaries, nil
}

// ParseCats reads id,name,age records from r. Lines with fewer than three
// fields abort the parse; fields beyond the third are ignored.
func ParseCats(r io.Reader) ([]Cat, error) {
	cats := []Cat{}
	err := eachLine(r, func(n int, line string) error {
		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			return &LineError{Line: n, Text: line, Reason: fmt.Sprintf("want 3 fields, got %d", len(parts))}
		}
		cats = append(cats, Cat{ID: parts[0], Name: parts[1], Age: parts[2]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.L().Debug("records.parsed", "kind", "cats", "count", len(cats))
	return cats, nil
}

// ReadSalaryFile opens path and parses it with ParseSalaries.
func ReadSalaryFile(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("records: opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	salaries, err := ParseSalaries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return salaries, nil
}

// ReadCatsFile opens path and parses it with ParseCats.
func ReadCatsFile(path string) ([]Cat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("records: opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cats, err := ParseCats(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cats, nil
}

// eachLine calls fn with every whitespace-trimmed line of r. Blank lines are
// malformed in both formats.
func eachLine(r io.Reader, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			return &LineError{Line: n, Text: line, Reason: "blank line"}
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return &LineError{Line: n + 1, Reason: "line too long"}
		}
		return fmt.Errorf("records: reading: %w", err)
	}
	return nil
}
