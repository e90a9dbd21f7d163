package engine

import (
	"sync"

	"github.com/petrijr/canvasflow/pkg/api"
)

// statusBus fans out context snapshots to subscribers. Every subscriber
// owns an unbounded mailbox drained by its own goroutine, so publishing
// never blocks the engine and each subscriber sees snapshots in order.
type statusBus struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]*mailbox
}

func newStatusBus() *statusBus {
	return &statusBus{subs: make(map[uint64]*mailbox)}
}

// subscribe starts delivering to fn. onExit, if set, runs on the delivery
// goroutine after the last call to fn.
func (b *statusBus) subscribe(fn func(api.ExecutionContext), onExit func()) (unsubscribe func()) {
	mb := &mailbox{}
	mb.cond = sync.NewCond(&mb.mu)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = mb
	b.mu.Unlock()

	go mb.deliver(fn, onExit)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			mb.close()
		})
	}
}

// publish queues a private copy of snap for every subscriber.
func (b *statusBus) publish(snap api.ExecutionContext) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, mb := range b.subs {
		mb.push(snap.Clone())
	}
}

func (b *statusBus) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

type mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []api.ExecutionContext
	closed bool
}

func (m *mailbox) push(snap api.ExecutionContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.queue = append(m.queue, snap)
	m.cond.Signal()
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.queue = nil
	m.cond.Signal()
}

func (m *mailbox) deliver(fn func(api.ExecutionContext), onExit func()) {
	if onExit != nil {
		defer onExit()
	}
	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.closed {
			m.cond.Wait()
		}
		if m.closed {
			m.mu.Unlock()
			return
		}
		snap := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		fn(snap)
	}
}
