package sink

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/naiveq22/internal/view"
)

// WriteResults writes v as "<nationkey>,<value>" lines sorted by key.
func WriteResults(w io.Writer, v *view.View) error {
	for _, e := range v.Entries() {
		if _, err := fmt.Fprintf(w, "%d,%s\n", e.NationKey, FormatValue(e.Value)); err != nil {
			return fmt.Errorf("write result %d: %w", e.NationKey, err)
		}
	}
	return nil
}

// FormatValue renders an aggregate with the fewest digits that round-trip.
func FormatValue(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ReadResults parses result lines. The first comma-separated field is the
// nationkey and the last is the value; fields in between are ignored.
// Blank lines are skipped.
func ReadResults(r io.Reader) (map[int64]float64, error) {
	out := make(map[int64]float64)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: want key,value, got %q", line, text)
		}
		k, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: nationkey: %w", line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[len(fields)-1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: value: %w", line, err)
		}
		if _, dup := out[k]; dup {
			return nil, fmt.Errorf("line %d: duplicate nationkey %d", line, k)
		}
		out[k] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return out, nil
}
