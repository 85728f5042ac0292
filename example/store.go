package example

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Report is a precomputed report shown by the reports route.
type Report struct {
	ID        string
	Title     string
	Rows      []Row
	CreatedAt time.Time
}

// Row is one line of a report.
type Row struct {
	Label string
	Value int
}

// Total sums the report's rows.
func (r *Report) Total() int {
	var n int
	for _, row := range r.Rows {
		n += row.Value
	}
	return n
}

// Store is an in-memory report store.
type Store struct {
	mu      sync.RWMutex
	reports map[string]*Report
	nextID  int
}

// NewStore creates a new store with sample data.
func NewStore() *Store {
	s := &Store{
		reports: make(map[string]*Report),
		nextID:  1,
	}

	s.Add("Weekly signups", []Row{{"Mon", 12}, {"Tue", 18}, {"Wed", 9}, {"Thu", 21}, {"Fri", 15}})
	s.Add("Open incidents", []Row{{"Critical", 1}, {"High", 4}, {"Low", 11}})
	s.Add("Storage by team", []Row{{"Platform", 420}, {"Data", 1310}, {"Web", 96}})

	return s
}

// Add creates a new report and returns its ID.
func (s *Store) Add(title string, rows []Row) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("%d", s.nextID)
	s.nextID++

	s.reports[id] = &Report{
		ID:        id,
		Title:     title,
		Rows:      rows,
		CreatedAt: time.Now(),
	}
	return id
}

// Get returns a report by ID, or nil.
func (s *Store) Get(id string) *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reports[id]
}

// List returns all reports ordered by ID.
func (s *Store) List() []*Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Report, 0, len(s.reports))
	for _, r := range s.reports {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		if len(list[i].ID) != len(list[j].ID) {
			return len(list[i].ID) < len(list[j].ID)
		}
		return list[i].ID < list[j].ID
	})
	return list
}
