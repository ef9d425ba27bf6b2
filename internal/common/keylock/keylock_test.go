package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_SerializesSameKey(t *testing.T) {
	var (
		m       Map
		wg      sync.WaitGroup
		counter int
	)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Do(42, func() { counter++ })
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Zero(t, m.Len())
}

func TestMap_KeysSharingAResidueDoNotBlock(t *testing.T) {
	var m Map

	unlock := m.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		m.Do(65, func() {})
		m.Do(-1, func() {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("distinct key blocked behind key 1")
	}
}

func TestMap_WaiterKeepsEntry(t *testing.T) {
	var m Map

	unlock := m.Lock(7)
	acquired := make(chan func())
	go func() {
		acquired <- m.Lock(7)
	}()

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.locks[7] != nil && m.locks[7].refs == 2
	}, time.Second, 5*time.Millisecond)

	unlock()
	second := <-acquired
	assert.Equal(t, 1, m.Len())
	second()
	assert.Zero(t, m.Len())
}
