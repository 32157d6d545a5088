package capture

import (
	"sync"

	"github.com/google/uuid"
)

// PreviewPath is the URL prefix under which display handles are served.
const PreviewPath = "/previews/"

// PreviewStore holds encoded frames the UI can render by handle until released.
type PreviewStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewPreviewStore creates an empty store.
func NewPreviewStore() *PreviewStore {
	return &PreviewStore{items: make(map[string][]byte)}
}

// Put registers data and returns its handle.
func (s *PreviewStore) Put(data []byte) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.items[id] = data
	s.mu.Unlock()
	return id
}

// Get returns the data behind a handle.
func (s *PreviewStore) Get(id string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.items[id]
	return data, ok
}

// Release drops a handle. Unknown handles are ignored.
func (s *PreviewStore) Release(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// Len returns the number of live handles.
func (s *PreviewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
