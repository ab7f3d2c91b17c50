package search

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxKeepsArrivalOrder(t *testing.T) {
	m := newMailbox()
	want := make([]uuid.UUID, 10)
	for i := range want {
		want[i] = uuid.New()
		require.True(t, m.push(DeleteCommand{ID: want[i]}))
	}

	<-m.ready
	got := m.take()
	require.Len(t, got, len(want))
	for i, cmd := range got {
		assert.Equal(t, want[i], cmd.(DeleteCommand).ID)
	}
	assert.Empty(t, m.take())
}

func TestMailboxPushNeverBlocks(t *testing.T) {
	m := newMailbox()

	const producers, each = 8, 500
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				m.push(CountCommand{})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, m.take(), producers*each)
}

func TestMailboxCloseReturnsPending(t *testing.T) {
	m := newMailbox()
	require.True(t, m.push(CountCommand{}))
	require.True(t, m.push(CountCommand{}))

	assert.Len(t, m.close(), 2)
	assert.False(t, m.push(CountCommand{}))
	assert.Empty(t, m.take())
}
