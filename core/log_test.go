package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationLog_AppendAssignsSequence(t *testing.T) {
	log := NewConversationLog()
	seed := log.Append(NewUserMessage("task"))
	reply := log.Append(NewAssistantMessage("Writer", "draft"))

	assert.Equal(t, 1, seed.Sequence)
	assert.Equal(t, 2, reply.Sequence)
	assert.Equal(t, 2, log.Len())

	last, ok := log.Last()
	require.True(t, ok)
	assert.Equal(t, "draft", last.Text())
	assert.Equal(t, "Writer", last.Author)
}

func TestConversationLog_SnapshotIsIsolated(t *testing.T) {
	log := NewConversationLog()
	log.Append(NewTransferMessage("Triage", "Refund", "refund requested"))

	snap := log.Snapshot()
	snap[0].Transfer.Target = "Mutated"
	snap[0].Author = "Mutated"
	log.Append(NewUserMessage("more"))

	again := log.Snapshot()
	require.Len(t, snap, 1)
	require.Len(t, again, 2)
	assert.Equal(t, "Refund", again[0].Transfer.Target)
	assert.Equal(t, "Triage", again[0].Author)
}

func TestConversationLog_EmptyLast(t *testing.T) {
	_, ok := NewConversationLog().Last()
	assert.False(t, ok)
}

func TestConversationLog_ConcurrentReaders(t *testing.T) {
	log := NewConversationLog()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = log.Snapshot()
			}
		}()
	}
	for i := 0; i < 50; i++ {
		log.Append(NewAssistantMessage("A", "x"))
	}
	wg.Wait()

	for i, m := range log.Snapshot() {
		assert.Equal(t, i+1, m.Sequence)
	}
}
