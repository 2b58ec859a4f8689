package apu

import "sync/atomic"

// Queue is an unbounded single-producer/single-consumer FIFO.
//
// Push is called from exactly one goroutine and Pop from exactly one other.
// Neither side ever blocks. Nodes the consumer has moved past are recycled
// by the producer, so once the cache is warm neither side allocates.
type Queue[T any] struct {
	// Consumer side. tail is the last node handed out; its successor holds
	// the next value.
	tail atomic.Pointer[node[T]]
	_    [56]byte

	// Producer side.
	head     *node[T] // Last node pushed
	first    *node[T] // Oldest recyclable node
	tailCopy *node[T] // Producer's view of tail
}

type node[T any] struct {
	next  atomic.Pointer[node[T]]
	value T
}

// NewQueue returns an empty queue with prealloc nodes ready for reuse.
func NewQueue[T any](prealloc int) *Queue[T] {
	stub := &node[T]{}
	q := &Queue[T]{head: stub, first: stub, tailCopy: stub}
	q.tail.Store(stub)

	for i := 0; i < prealloc; i++ {
		n := &node[T]{}
		n.next.Store(q.first)
		q.first = n
	}
	return q
}

// Push appends v. Producer only.
func (q *Queue[T]) Push(v T) {
	n := q.alloc()
	n.value = v
	n.next.Store(nil)
	q.head.next.Store(n)
	q.head = n
}

// Pop removes the oldest value. It returns false when the queue is empty.
// Consumer only.
func (q *Queue[T]) Pop() (T, bool) {
	tail := q.tail.Load()
	n := tail.next.Load()
	if n == nil {
		var zero T
		return zero, false
	}
	v := n.value
	q.tail.Store(n)
	return v, true
}

func (q *Queue[T]) alloc() *node[T] {
	if q.first != q.tailCopy {
		return q.take()
	}
	q.tailCopy = q.tail.Load()
	if q.first != q.tailCopy {
		return q.take()
	}
	return &node[T]{}
}

func (q *Queue[T]) take() *node[T] {
	n := q.first
	q.first = n.next.Load()
	return n
}
