package enrollment

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV parses dataset rows from a CSV export. The header row names the
// columns; order does not matter. Expected columns: term, level, mode,
// metric, variable, description (optional), students.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"term", "level", "mode", "metric", "variable", "students"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("csv missing column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []Row
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		count := strings.ReplaceAll(field(rec, "students"), ",", "")
		students, err := strconv.Atoi(count)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad student count %q", line, field(rec, "students"))
		}
		rows = append(rows, Row{
			Term:        field(rec, "term"),
			Level:       field(rec, "level"),
			Mode:        field(rec, "mode"),
			Metric:      field(rec, "metric"),
			Variable:    field(rec, "variable"),
			Description: field(rec, "description"),
			Students:    students,
		})
	}
	return rows, nil
}
