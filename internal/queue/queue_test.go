package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidCapacity(t *testing.T) {
	assert.Panics(t, func() { New[int](0) })
	assert.Panics(t, func() { New[int](1) })
	assert.Panics(t, func() { New[int](3) })
	assert.Panics(t, func() { New[int](6) })
	assert.NotPanics(t, func() { New[int](2) })
	assert.NotPanics(t, func() { New[int](1024) })
}

func TestResetRejectsInvalidCapacity(t *testing.T) {
	q := New[int](4)
	assert.Panics(t, func() { q.Reset(5) })
}

func TestSingleThreadedFIFO(t *testing.T) {
	q := New[int](16)
	for i := 0; i < 10; i++ {
		require.True(t, q.TryPush(i))
	}
	for i := 0; i < 10; i++ {
		v, ok := q.TryPop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestCapacityExhaustion(t *testing.T) {
	const n = 8
	q := New[int](n)
	for i := 0; i < n; i++ {
		require.True(t, q.TryPush(i), "push %d should succeed", i)
	}
	assert.False(t, q.TryPush(n), "push n+1-th should fail")

	_, ok := q.TryPop()
	require.True(t, ok)
	assert.True(t, q.TryPush(999), "after a pop, one more push should succeed")
}

func TestConcurrentProducersSingleConsumer(t *testing.T) {
	const (
		producers      = 8
		perProducer    = 20000
		queueCapacity  = 1024
		expectedPushed = producers * perProducer
	)
	q := New[[2]int](queueCapacity) // [producerID, seq]

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !q.TryPush([2]int{id, i}) {
					// busy retry, unlike the producer's best-effort enqueue
					// (which drops on a full queue); the test only cares about
					// ordering, not drops.
				}
			}
		}(p)
	}

	delivered := make([][]int, producers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		received := 0
		for received < expectedPushed {
			if v, ok := q.TryPop(); ok {
				delivered[v[0]] = append(delivered[v[0]], v[1])
				received++
			}
		}
	}()

	wg.Wait()
	<-done

	for p := 0; p < producers; p++ {
		require.Len(t, delivered[p], perProducer)
		for i, v := range delivered[p] {
			assert.Equal(t, i, v, "producer %d sequence out of order at index %d", p, i)
		}
	}
}

func TestProducersWithDropsConserveTotal(t *testing.T) {
	const (
		producers     = 4
		perProducer   = 5000
		queueCapacity = 2
	)
	q := New[struct{}](queueCapacity)

	var wg sync.WaitGroup
	var delivered, dropped int64
	var mu sync.Mutex

	producersDone := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			if _, ok := q.TryPop(); ok {
				mu.Lock()
				delivered++
				mu.Unlock()
				continue
			}
			select {
			case <-producersDone:
				return
			default:
			}
		}
	}()

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if !q.TryPush(struct{}{}) {
					mu.Lock()
					dropped++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	close(producersDone)
	<-drained

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int64(producers*perProducer), delivered+dropped)
}
