package http

import (
	"errors"
	"runtime"
	"sync/atomic"
)

// ConnCtxPool recycles connection contexts so a steady stream of
// connections reuses the same request buffers. It holds at most
// ConnCtxPoolSize idle contexts; extras are left to the garbage collector.
type ConnCtxPool struct {
	Ready RingBuffer[*ConnCtx]
}

func NewConnCtxPool() *ConnCtxPool {
	return &ConnCtxPool{
		Ready: NewRingBuffer[*ConnCtx](),
	}
}

func (pool *ConnCtxPool) Get() *ConnCtx {
	connCtx, err := pool.Ready.Dequeue()
	if err != nil {
		return newConnCtx()
	}
	return connCtx
}

func (pool *ConnCtxPool) Put(connCtx *ConnCtx) {
	connCtx.release()
	_ = pool.Ready.Enqueue(connCtx) // dropped when full
}

var (
	ErrFull  = errors.New("ring buffer is full")
	ErrEmpty = errors.New("ring buffer is empty")
)

type RingBuffer[T any] struct {
	buffer [ConnCtxPoolSize]slot[T]
	mask   uint64
	enqPos uint64
	deqPos uint64
}

type slot[T any] struct {
	sequence uint64
	value    T
}

// NewRingBuffer creates an empty bounded MPMC queue of ConnCtxPoolSize slots
func NewRingBuffer[T any]() RingBuffer[T] {
	var buf [ConnCtxPoolSize]slot[T]
	for i := range buf {
		buf[i].sequence = uint64(i)
	}
	return RingBuffer[T]{
		buffer: buf,
		mask:   ConnCtxPoolSize - 1,
	}
}

// Enqueue adds an item to the ring buffer
func (q *RingBuffer[T]) Enqueue(val T) error {
	for {
		pos := atomic.LoadUint64(&q.enqPos)
		slot := &q.buffer[pos&q.mask]

		seq := atomic.LoadUint64(&slot.sequence)
		delta := int64(seq) - int64(pos)

		if delta == 0 {
			if atomic.CompareAndSwapUint64(&q.enqPos, pos, pos+1) {
				slot.value = val
				atomic.StoreUint64(&slot.sequence, pos+1)
				return nil
			}
		} else if delta < 0 {
			return ErrFull
		} else {
			runtime.Gosched()
		}
	}
}

// Dequeue removes and returns the oldest item
func (q *RingBuffer[T]) Dequeue() (T, error) {
	var zero T
	for {
		pos := atomic.LoadUint64(&q.deqPos)
		slot := &q.buffer[pos&q.mask]

		seq := atomic.LoadUint64(&slot.sequence)
		delta := int64(seq) - int64(pos+1)

		if delta == 0 {
			if atomic.CompareAndSwapUint64(&q.deqPos, pos, pos+1) {
				val := slot.value
				slot.value = zero
				atomic.StoreUint64(&slot.sequence, pos+q.mask+1)
				return val, nil
			}
		} else if delta < 0 {
			return zero, ErrEmpty
		} else {
			runtime.Gosched()
		}
	}
}
