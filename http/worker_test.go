package http

import (
	"sync"
	"testing"

	"github.com/freekieb7/hello/test"
)

func TestRingBufferOrder(t *testing.T) {
	q := NewRingBuffer[int]()

	if _, err := q.Dequeue(); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}

	for i := range 10 {
		test.AssertNoError(t, q.Enqueue(i))
	}
	for i := range 10 {
		v, err := q.Dequeue()
		test.AssertNoError(t, err)
		test.AssertEqual(t, i, v)
	}
}

func TestRingBufferFull(t *testing.T) {
	q := NewRingBuffer[int]()

	for i := range ConnCtxPoolSize {
		test.AssertNoError(t, q.Enqueue(i))
	}
	test.AssertErrorIs(t, q.Enqueue(-1), ErrFull)

	v, err := q.Dequeue()
	test.AssertNoError(t, err)
	test.AssertEqual(t, 0, v)
	test.AssertNoError(t, q.Enqueue(-1))
}

func TestRingBufferConcurrent(t *testing.T) {
	q := NewRingBuffer[int]()

	const producers, perProducer = 8, 100
	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				test.AssertNoError(t, q.Enqueue(p*perProducer+i))
			}
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	for {
		v, err := q.Dequeue()
		if err != nil {
			break
		}
		if seen[v] {
			t.Fatalf("value %d dequeued twice", v)
		}
		seen[v] = true
	}
	test.AssertEqual(t, producers*perProducer, len(seen))
}

func TestConnCtxPoolReuse(t *testing.T) {
	pool := NewConnCtxPool()

	first := pool.Get()
	first.N = 42
	pool.Put(first)

	second := pool.Get()
	if first != second {
		t.Error("expected pooled context to be reused")
	}
	test.AssertEqual(t, 0, second.N)
	if second.Conn != nil {
		t.Error("pooled context still references a connection")
	}

	if third := pool.Get(); third == second {
		t.Error("context handed out twice")
	}
}
