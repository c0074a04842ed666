package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/davidbz/tarifa/internal/domain"
	"github.com/davidbz/tarifa/internal/observability"
)

// Document is a served configuration document.
type Document struct {
	Name     string
	Data     []byte
	ETag     string
	LoadedAt time.Time
}

// DocumentInfo describes a document without its content.
type DocumentInfo struct {
	Name     string    `json:"name"`
	ETag     string    `json:"etag"`
	Size     int       `json:"size"`
	LoadedAt time.Time `json:"loaded_at"`
}

// DocumentStore holds the validated documents the server hands out.
// It also satisfies domain.ConfigSource.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]Document
	now  func() time.Time
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		mu:   sync.RWMutex{},
		docs: make(map[string]Document),
		now:  time.Now,
	}
}

// Replace swaps the whole document set at once so readers never see a mix
// of old and new documents.
func (s *DocumentStore) Replace(ctx context.Context, raw map[string][]byte) error {
	if len(raw) == 0 {
		return errors.New("document set cannot be empty")
	}

	loadedAt := s.now().UTC()
	docs := make(map[string]Document, len(raw))
	for name, data := range raw {
		if name == "" {
			return errors.New("document name cannot be empty")
		}
		sum := sha256.Sum256(data)
		docs[name] = Document{
			Name:     name,
			Data:     data,
			ETag:     `"` + hex.EncodeToString(sum[:16]) + `"`,
			LoadedAt: loadedAt,
		}
	}

	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()

	observability.FromContext(ctx).Info("document set replaced", observability.Int("documents", len(docs)))

	return nil
}

// Get retrieves a document by name.
func (s *DocumentStore) Get(_ context.Context, name string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.docs[name]
	if !exists {
		return Document{}, fmt.Errorf("%s: %w", name, domain.ErrDocumentNotFound)
	}

	return doc, nil
}

// Fetch returns the raw bytes of the named document.
func (s *DocumentStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	doc, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

// List returns every document sorted by name.
func (s *DocumentStore) List(_ context.Context) []DocumentInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]DocumentInfo, 0, len(s.docs))
	for _, doc := range s.docs {
		infos = append(infos, DocumentInfo{
			Name:     doc.Name,
			ETag:     doc.ETag,
			Size:     len(doc.Data),
			LoadedAt: doc.LoadedAt,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return infos
}

// Len returns the number of stored documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
