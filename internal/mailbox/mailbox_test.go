package mailbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/five82/dialogs/internal/metrics"
	"github.com/five82/dialogs/internal/request"
)

type collector struct {
	mu   sync.Mutex
	got  []request.Envelope
	seen chan struct{}
}

func newCollector() *collector {
	return &collector{seen: make(chan struct{}, 1024)}
}

func (c *collector) deliver(env request.Envelope) {
	c.mu.Lock()
	c.got = append(c.got, env)
	c.mu.Unlock()
	c.seen <- struct{}{}
}

func (c *collector) wait(t *testing.T, n int) []request.Envelope {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-c.seen:
		case <-deadline:
			t.Fatalf("timed out after %d of %d deliveries", i, n)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]request.Envelope(nil), c.got...)
}

func startRun(t *testing.T, m *Mailbox, c *collector) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Run(ctx, c.deliver) }()
	t.Cleanup(cancel)
	return cancel, errCh
}

func TestPostDeliversInOrder(t *testing.T) {
	m := New(Options{})
	c := newCollector()
	startRun(t, m, c)

	kinds := []request.Kind{request.KindPlaylist, request.KindMessages, request.KindPreferences}
	for _, k := range kinds {
		if err := m.Post(request.New(k)); err != nil {
			t.Fatalf("Post(%s) returned error: %v", k, err)
		}
	}

	got := c.wait(t, len(kinds))
	for i, env := range got {
		if env.Kind != kinds[i] {
			t.Fatalf("delivery %d kind = %s, want %s", i, env.Kind, kinds[i])
		}
		if env.Seq != uint64(i+1) {
			t.Fatalf("delivery %d seq = %d, want %d", i, env.Seq, i+1)
		}
	}
}

func TestPerSenderOrderingUnderConcurrency(t *testing.T) {
	const senders = 8
	const perSender = 200

	m := New(Options{Capacity: -1})
	c := newCollector()
	c.seen = make(chan struct{}, senders*perSender)
	startRun(t, m, c)

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			name := fmt.Sprintf("engine-%d", s)
			for i := 0; i < perSender; i++ {
				env := request.WithPayload(request.KindInteraction, i).From(name)
				if err := m.Post(env); err != nil {
					t.Errorf("Post returned error: %v", err)
					return
				}
			}
		}(s)
	}
	wg.Wait()

	got := c.wait(t, senders*perSender)
	next := make(map[string]int)
	var lastSeq uint64
	for _, env := range got {
		if env.Seq <= lastSeq {
			t.Fatalf("seq %d delivered after %d", env.Seq, lastSeq)
		}
		lastSeq = env.Seq
		i := env.Payload.(int)
		if i != next[env.Sender] {
			t.Fatalf("%s delivered %d, want %d", env.Sender, i, next[env.Sender])
		}
		next[env.Sender]++
	}
	for s := 0; s < senders; s++ {
		name := fmt.Sprintf("engine-%d", s)
		if next[name] != perSender {
			t.Fatalf("%s delivered %d envelopes, want %d", name, next[name], perSender)
		}
	}
}

func TestPostAfterCloseFails(t *testing.T) {
	mx := metrics.New(nil)
	m := New(Options{Metrics: mx})
	m.Close()
	m.Close()

	err := m.Post(request.New(request.KindPlaylist))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Post after Close = %v, want ErrClosed", err)
	}
	if got := testutil.ToFloat64(mx.Failed.WithLabelValues(metrics.ReasonClosed)); got != 1 {
		t.Fatalf("closed failures = %v, want 1", got)
	}
}

func TestPostWhenFull(t *testing.T) {
	m := New(Options{Capacity: 2})
	for i := 0; i < 2; i++ {
		if err := m.Post(request.New(request.KindPlaylist)); err != nil {
			t.Fatalf("Post %d returned error: %v", i, err)
		}
	}
	if err := m.Post(request.New(request.KindPlaylist)); !errors.Is(err, ErrFull) {
		t.Fatalf("Post over capacity = %v, want ErrFull", err)
	}
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
}

func TestCloseDiscardsPending(t *testing.T) {
	mx := metrics.New(nil)
	m := New(Options{Metrics: mx})
	for i := 0; i < 3; i++ {
		_ = m.Post(request.New(request.KindMessages))
	}
	m.Close()
	if m.Len() != 0 {
		t.Fatalf("Len after Close = %d, want 0", m.Len())
	}
	if got := testutil.ToFloat64(mx.Failed.WithLabelValues(metrics.ReasonDiscarded)); got != 3 {
		t.Fatalf("discarded = %v, want 3", got)
	}
}

func TestRunStopsOnClose(t *testing.T) {
	m := New(Options{})
	c := newCollector()
	_, errCh := startRun(t, m, c)

	m.Close()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Close")
	}
}

func TestRunCancelClosesMailbox(t *testing.T) {
	m := New(Options{})
	c := newCollector()
	cancel, errCh := startRun(t, m, c)

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if err := m.Post(request.New(request.KindPlaylist)); !errors.Is(err, ErrClosed) {
		t.Fatalf("Post after cancel = %v, want ErrClosed", err)
	}
}

func TestPostFromDeliverDoesNotDeadlock(t *testing.T) {
	m := New(Options{})
	done := make(chan struct{})
	var once sync.Once
	deliver := func(env request.Envelope) {
		if env.Kind == request.KindPlaylist {
			if err := m.Post(request.New(request.KindMessages)); err != nil {
				t.Errorf("re-entrant Post returned error: %v", err)
			}
			return
		}
		once.Do(func() { close(done) })
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Run(ctx, deliver) }()

	if err := m.Post(request.New(request.KindPlaylist)); err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("re-entrant envelope was not delivered")
	}
}
