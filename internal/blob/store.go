// Package blob stores attachment and avatar bytes and hands back opaque urls.
package blob

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists bytes under a key and returns the public url.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// AttachmentKey builds `{owner_id}/{unix_millis}-{random}.{ext}`.
func AttachmentKey(ownerID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d-%s%s", ownerID, now.UnixMilli(), uuid.NewString(), extension(filename))
}

// AvatarKey builds `{owner_id}/{random}.{ext}`.
func AvatarKey(ownerID, filename string) string {
	return fmt.Sprintf("%s/%s%s", ownerID, uuid.NewString(), extension(filename))
}

func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "." {
		return ""
	}
	return ext
}

// MemoryStore keeps objects in process memory. Used when no bucket is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
	failErr error
}

// NewMemoryStore creates an empty store whose urls start with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string][]byte)}
}

// FailWith makes every subsequent Put return err.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return "", m.failErr
	}
	if _, exists := m.objects[key]; exists {
		return "", fmt.Errorf("object %q already exists", key)
	}
	m.objects[key] = append([]byte(nil), body...)
	return m.baseURL + "/" + key, nil
}

// Object returns the stored bytes for key.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.objects[key]
	return body, ok
}
