package mailbox

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/five82/dialogs/internal/metrics"
	"github.com/five82/dialogs/internal/request"
)

var (
	// ErrClosed is returned by Post once the mailbox has been closed.
	ErrClosed = errors.New("mailbox closed")
	// ErrFull is returned by Post when the pending queue is at capacity.
	ErrFull = errors.New("mailbox full")
)

const defaultCapacity = 256

// Poster is the engine-facing side of the mailbox.
type Poster interface {
	Post(env request.Envelope) error
}

// Options configure a Mailbox.
type Options struct {
	Capacity int // pending envelopes; zero uses the default, negative is unbounded
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Mailbox queues envelopes from any goroutine and hands them, one at a time
// and in post order, to a single delivery sink.
type Mailbox struct {
	mu       sync.Mutex
	queue    []request.Envelope
	seq      uint64
	closed   bool
	capacity int

	wake chan struct{}
	done chan struct{}

	log     *slog.Logger
	metrics *metrics.Metrics
}

var _ Poster = (*Mailbox)(nil)

// New creates an open mailbox.
func New(opts Options) *Mailbox {
	capacity := opts.Capacity
	if capacity == 0 {
		capacity = defaultCapacity
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mailbox{
		capacity: capacity,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		log:      logger,
		metrics:  opts.Metrics,
	}
}

// Post enqueues env without waiting for the UI loop. The returned error is
// ErrClosed or ErrFull when the envelope was not accepted.
func (m *Mailbox) Post(env request.Envelope) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.metrics.DeliveryFailed(metrics.ReasonClosed)
		return ErrClosed
	}
	if m.capacity > 0 && len(m.queue) >= m.capacity {
		m.mu.Unlock()
		m.metrics.DeliveryFailed(metrics.ReasonFull)
		return ErrFull
	}
	m.seq++
	env.Seq = m.seq
	m.queue = append(m.queue, env)
	m.mu.Unlock()

	m.metrics.EnvelopePosted()
	select {
	case m.wake <- struct{}{}:
	default:
	}
	return nil
}

// Len reports the number of envelopes waiting for delivery.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Closed reports whether Close has been called.
func (m *Mailbox) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Run delivers envelopes to deliver until the mailbox is closed or ctx is
// cancelled. Cancelling ctx closes the mailbox. Only one Run may be active.
func (m *Mailbox) Run(ctx context.Context, deliver func(request.Envelope)) error {
	for {
		for _, env := range m.take() {
			if m.Closed() {
				// Close already counted the queue; what we hold is lost too.
				m.metrics.DeliveriesDiscarded(1)
				continue
			}
			deliver(env)
		}

		select {
		case <-ctx.Done():
			m.Close()
			return ctx.Err()
		case <-m.done:
			return nil
		case <-m.wake:
		}
	}
}

func (m *Mailbox) take() []request.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := m.queue
	m.queue = nil
	return batch
}

// Close stops accepting envelopes and discards any still pending. It is safe
// to call more than once.
func (m *Mailbox) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	pending := len(m.queue)
	m.queue = nil
	close(m.done)
	m.mu.Unlock()

	if pending > 0 {
		m.metrics.DeliveriesDiscarded(pending)
		m.log.Warn("mailbox closed with pending envelopes", "discarded", pending)
	}
}
