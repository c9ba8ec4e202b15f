package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Conversion is a re-encoded upload held in memory until deleted.
type Conversion struct {
	ID        string   `json:"id"`
	Object    string   `json:"object"`
	Format    string   `json:"format"`
	Bytes     int      `json:"bytes"`
	Elements  []Count  `json:"elements"`
	CreatedAt int64    `json:"created_at"`
	Warnings  []string `json:"warnings,omitempty"`

	data []byte
}

type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ResultStore keeps conversions keyed by id. Once it holds Max entries the
// oldest is evicted on Save.
type ResultStore struct {
	Max int

	mu      sync.Mutex
	results map[string]*Conversion
	order   []string
}

func NewResultStore(max int) *ResultStore {
	return &ResultStore{Max: max, results: make(map[string]*Conversion)}
}

// Save assigns an id to conv and stores it together with data.
func (s *ResultStore) Save(conv Conversion, data []byte, now time.Time) Conversion {
	conv.ID = "conv_" + uuid.NewString()
	conv.Object = "conversion"
	conv.Bytes = len(data)
	conv.CreatedAt = now.Unix()
	conv.data = data

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.Max > 0 && len(s.order) >= s.Max {
		delete(s.results, s.order[0])
		s.order = s.order[1:]
	}
	s.results[conv.ID] = &conv
	s.order = append(s.order, conv.ID)
	return conv
}

func (s *ResultStore) Get(id string) (Conversion, []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.results[id]
	if !ok {
		return Conversion{}, nil, false
	}
	return *rec, rec.data, true
}

func (s *ResultStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[id]; !ok {
		return false
	}
	delete(s.results, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}
