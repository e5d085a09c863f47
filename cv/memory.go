package cv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryPersistence keeps documents in memory (test/dev only).
type MemoryPersistence struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	saves atomic.Int64
}

// NewMemoryPersistence creates an empty in-memory persistence.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{docs: make(map[string][]byte)}
}

// Save stores doc as JSON so loads never alias caller memory.
func (p *MemoryPersistence) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.ID == "" {
		return NewError(KindValidation, "document id is required", nil)
	}
	data, err := MarshalDocument(doc)
	if err != nil {
		return err
	}
	p.saves.Add(1)
	p.mu.Lock()
	p.docs[doc.ID] = data
	p.mu.Unlock()
	return nil
}

// Load returns a stored document.
func (p *MemoryPersistence) Load(ctx context.Context, id string) (Document, error) {
	_ = ctx
	p.mu.RLock()
	data, ok := p.docs[id]
	p.mu.RUnlock()
	if !ok {
		return Document{}, NewError(KindNotFound, fmt.Sprintf("document %q not found", id), nil)
	}
	return UnmarshalDocument(data)
}

// Saves returns the number of successful Save calls.
func (p *MemoryPersistence) Saves() int {
	return int(p.saves.Load())
}

// MemoryArtifacts stores PDFs in memory (test/dev only).
type MemoryArtifacts struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data []byte
	meta ArtifactMeta
}

// NewMemoryArtifacts creates an in-memory artifact store.
func NewMemoryArtifacts() *MemoryArtifacts {
	return &MemoryArtifacts{objects: make(map[string]memoryObject)}
}

// Put stores an artifact.
func (s *MemoryArtifacts) Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error) {
	_ = ctx
	if key == "" {
		return ArtifactRef{}, NewError(KindValidation, "artifact key is required", nil)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ArtifactRef{}, err
	}
	meta.Size = int64(len(data))
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}

	s.mu.Lock()
	s.objects[key] = memoryObject{data: data, meta: meta}
	s.mu.Unlock()
	return ArtifactRef{Key: key, Meta: meta}, nil
}

// Open reads an artifact.
func (s *MemoryArtifacts) Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error) {
	_ = ctx
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ArtifactMeta{}, NewError(KindNotFound, fmt.Sprintf("artifact %q not found", key), nil)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.meta, nil
}

// Delete removes an artifact.
func (s *MemoryArtifacts) Delete(ctx context.Context, key string) error {
	_ = ctx
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// MemoryTracker stores export history in memory (test/dev only).
type MemoryTracker struct {
	mu      sync.RWMutex
	records map[string]ExportRecord
	counter atomic.Uint64
}

// NewMemoryTracker creates an in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{records: make(map[string]ExportRecord)}
}

// Start creates a new record.
func (t *MemoryTracker) Start(ctx context.Context, record ExportRecord) (string, error) {
	_ = ctx
	if record.ID == "" {
		record.ID = fmt.Sprintf("pdf-%d", t.counter.Add(1))
	}
	if record.State == "" {
		record.State = ExportStateRunning
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now()
	}

	t.mu.Lock()
	t.records[record.ID] = record
	t.mu.Unlock()
	return record.ID, nil
}

// Complete marks the export as succeeded.
func (t *MemoryTracker) Complete(ctx context.Context, id string, bytes int64, artifactKey string) error {
	return t.update(ctx, id, func(record *ExportRecord) {
		record.State = ExportStateSucceeded
		record.Bytes = bytes
		record.ArtifactKey = artifactKey
		record.CompletedAt = time.Now()
	})
}

// Fail records failure state.
func (t *MemoryTracker) Fail(ctx context.Context, id string, err error) error {
	return t.update(ctx, id, func(record *ExportRecord) {
		record.State = ExportStateFailed
		if err != nil {
			record.Error = err.Error()
		}
		record.CompletedAt = time.Now()
	})
}

func (t *MemoryTracker) update(ctx context.Context, id string, fn func(*ExportRecord)) error {
	_ = ctx
	t.mu.Lock()
	defer t.mu.Unlock()
	record, ok := t.records[id]
	if !ok {
		return NewError(KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	fn(&record)
	t.records[id] = record
	return nil
}

// List returns a document's exports, newest first.
func (t *MemoryTracker) List(ctx context.Context, documentID string) ([]ExportRecord, error) {
	_ = ctx
	t.mu.RLock()
	out := make([]ExportRecord, 0, len(t.records))
	for _, record := range t.records {
		if documentID == "" || record.DocumentID == documentID {
			out = append(out, record)
		}
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}
