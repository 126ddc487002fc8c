// Package enrollment loads and queries the enrollment dataset.
package enrollment

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS enrollment (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    term TEXT NOT NULL,
    level TEXT NOT NULL,
    mode TEXT NOT NULL,
    metric TEXT NOT NULL,
    variable TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    students INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_enrollment_term ON enrollment(term, level, mode);
`

// Row is one dataset entry.
type Row struct {
	Term        string
	Level       string // Undergraduate, Graduate, All
	Mode        string // Campus Immersion, Digital Immersion, All
	Metric      string
	Variable    string
	Description string
	Students    int
}

// Params filters a query.
type Params struct {
	Terms    []string
	Level    string
	Mode     string
	Metric   string
	Variable string
}

// Result is one matching row of a query.
type Result struct {
	Term        string `json:"term"`
	Students    int    `json:"student_count"`
	Description string `json:"description"`
	Metric      string `json:"metric,omitempty"`
	Variable    string `json:"variable,omitempty"`
}

// QueryResponse is the complete answer to a query.
type QueryResponse struct {
	Results          []Result `json:"results"`
	Summary          string   `json:"query_summary"`
	TotalAcrossTerms *int     `json:"total_across_terms,omitempty"`
}

// Store is the SQLite-backed dataset with a TTL-cached in-memory snapshot:
// the data changes once a semester, queries run constantly.
type Store struct {
	db  *sql.DB
	ttl time.Duration

	mu       sync.Mutex
	rows     []Row
	loadedAt time.Time
}

// Open opens (and if necessary initializes) the dataset at path.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init dataset schema: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert adds rows to the dataset and invalidates the snapshot.
func (s *Store) Insert(rows []Row) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO enrollment (term, level, mode, metric, variable, description, students)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.Term, r.Level, r.Mode, r.Metric, r.Variable, r.Description, r.Students); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	s.mu.Lock()
	s.loadedAt = time.Time{}
	s.mu.Unlock()
	return nil
}

// Count returns the number of dataset rows.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM enrollment`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// Query filters the dataset. Terms, level and mode match exactly. With
// metric and variable both set the pair matches exactly; metric alone
// returns all its variables; neither returns the Campus/All total rows.
func (s *Store) Query(p Params) (*QueryResponse, error) {
	rows, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	termSet := map[string]bool{}
	for _, t := range p.Terms {
		termSet[t] = true
	}

	var results []Result
	for _, r := range rows {
		if !termSet[r.Term] || r.Level != p.Level || r.Mode != p.Mode {
			continue
		}
		switch {
		case p.Metric != "" && p.Variable != "":
			if r.Metric != p.Metric || r.Variable != p.Variable {
				continue
			}
		case p.Metric != "":
			if r.Metric != p.Metric {
				continue
			}
		default:
			// Total enrollment lives in the Campus metric's "All" rows.
			if r.Metric != "Campus" || r.Variable != "All" {
				continue
			}
		}

		res := Result{Term: r.Term, Students: r.Students, Description: r.Description}
		if p.Metric != "" {
			res.Metric = r.Metric
		}
		if p.Metric != "" || p.Variable != "" {
			res.Variable = r.Variable
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return termYear(results[i].Term) < termYear(results[j].Term)
	})

	resp := &QueryResponse{
		Results: results,
		Summary: summarize(p),
	}
	if len(p.Terms) > 1 && len(results) > 0 {
		total := 0
		for _, r := range results {
			total += r.Students
		}
		resp.TotalAcrossTerms = &total
	}
	return resp, nil
}

func (s *Store) snapshot() ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rows != nil && time.Since(s.loadedAt) < s.ttl {
		return s.rows, nil
	}

	rows, err := s.db.Query(`SELECT term, level, mode, metric, variable, description, students FROM enrollment`)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	defer rows.Close()

	var loaded []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Term, &r.Level, &r.Mode, &r.Metric, &r.Variable, &r.Description, &r.Students); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		loaded = append(loaded, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dataset: %w", err)
	}

	s.rows = loaded
	s.loadedAt = time.Now()
	return s.rows, nil
}

func termYear(term string) int {
	fields := strings.Fields(term)
	if len(fields) != 2 {
		return 0
	}
	y, _ := strconv.Atoi(fields[1])
	return y
}

func summarize(p Params) string {
	parts := []string{
		fmt.Sprintf("Terms: %s", strings.Join(p.Terms, ", ")),
		fmt.Sprintf("Level: %s", p.Level),
		fmt.Sprintf("Mode: %s", p.Mode),
	}
	if p.Metric != "" {
		parts = append(parts, fmt.Sprintf("Metric: %s", p.Metric))
	}
	if p.Variable != "" {
		parts = append(parts, fmt.Sprintf("Variable: %s", p.Variable))
	}
	return strings.Join(parts, " | ")
}
