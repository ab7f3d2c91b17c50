package search

import "sync"

// mailbox is an unbounded multi-producer, single-consumer FIFO. push never
// blocks; the consumer waits on ready and then takes everything queued.
type mailbox struct {
	mu     sync.Mutex
	queue  []Command
	closed bool
	ready  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

// push enqueues cmd and reports false if the mailbox no longer accepts work.
func (m *mailbox) push(cmd Command) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, cmd)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
	return true
}

// take removes and returns every queued command in arrival order.
func (m *mailbox) take() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmds := m.queue
	m.queue = nil
	return cmds
}

// close stops accepting commands and returns whatever is still queued.
func (m *mailbox) close() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	cmds := m.queue
	m.queue = nil
	return cmds
}
