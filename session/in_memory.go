package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/agentcrew/core"
)

var _ core.TranscriptStore = (*InMemoryStore)(nil)

// InMemoryStore is a volatile TranscriptStore keeping transcripts in a
// process local map. It is safe for concurrent access and best suited for
// tests, demos and inspecting recent sessions. Transcripts are cloned on the
// way in and out.
type InMemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string]core.Transcript
	limit       int
}

// NewInMemoryStore constructs an empty store. A positive limit keeps only
// the most recently finished transcripts.
func NewInMemoryStore(limit int) *InMemoryStore {
	return &InMemoryStore{transcripts: make(map[string]core.Transcript), limit: limit}
}

// Save implements core.TranscriptStore.
func (s *InMemoryStore) Save(_ context.Context, t core.Transcript) error {
	if t.SessionID == "" {
		return fmt.Errorf("session: transcript without session id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcripts[t.SessionID] = t.Clone()
	s.evictLocked()

	return nil
}

// Get returns the transcript of sessionID or core.ErrTranscriptNotFound.
func (s *InMemoryStore) Get(sessionID string) (core.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transcripts[sessionID]
	if !ok {
		return core.Transcript{}, fmt.Errorf("%w: %s", core.ErrTranscriptNotFound, sessionID)
	}
	return t.Clone(), nil
}

// List returns the stored session ids ordered by finish time.
func (s *InMemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderedLocked()
}

// Delete removes a transcript. Deleting an unknown id is a no-op.
func (s *InMemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transcripts, sessionID)
}

// Len returns the number of stored transcripts.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcripts)
}

func (s *InMemoryStore) orderedLocked() []string {
	ids := make([]string, 0, len(s.transcripts))
	for id := range s.transcripts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.transcripts[ids[i]], s.transcripts[ids[j]]
		if a.Finished.Equal(b.Finished) {
			return ids[i] < ids[j]
		}
		return a.Finished.Before(b.Finished)
	})
	return ids
}

// evictLocked drops the oldest transcripts beyond the limit; caller must
// hold the write lock.
func (s *InMemoryStore) evictLocked() {
	if s.limit <= 0 || len(s.transcripts) <= s.limit {
		return
	}
	ids := s.orderedLocked()
	for _, id := range ids[:len(ids)-s.limit] {
		delete(s.transcripts, id)
	}
}
