// Package memory stores blob content in-memory for development and tests.
package memory

import (
	"context"
	"sync"
)

// Object is one stored blob with its content type.
type Object struct {
	ContentType string
	Data        []byte
}

// BlobStore keeps written objects in a map, satisfying storage.Provider.
type BlobStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{objects: make(map[string]Object)}
}

// Put records the object under its key.
func (s *BlobStore) Put(_ context.Context, objectKey, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey] = Object{
		ContentType: contentType,
		Data:        append([]byte(nil), data...),
	}
	return nil
}

// Object returns the stored object for key, if any.
func (s *BlobStore) Object(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Keys lists the keys of all stored objects.
func (s *BlobStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

// Len reports how many objects have been stored.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
