// Package metrics exposes Prometheus counters for the dialog bridge.
//
// All recorder methods are nil-safe so components can run without metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure reasons recorded by DeliveryFailed.
const (
	ReasonClosed    = "closed"
	ReasonFull      = "full"
	ReasonDiscarded = "discarded"
)

// Metrics groups the bridge's collectors.
type Metrics struct {
	Posted        prometheus.Counter
	Failed        *prometheus.CounterVec
	Dispatched    *prometheus.CounterVec
	Unimplemented *prometheus.CounterVec
	RouterMisses  *prometheus.CounterVec
	LiveDialogs   *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which tests use to avoid the default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Posted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dialogs_envelopes_posted_total",
			Help: "Total number of envelopes accepted by the mailbox",
		}),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dialogs_envelopes_failed_total",
			Help: "Total number of envelopes that could not be delivered",
		}, []string{"reason"}),
		Dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dialogs_envelopes_dispatched_total",
			Help: "Total number of envelopes dispatched on the UI loop",
		}, []string{"kind"}),
		Unimplemented: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dialogs_unimplemented_total",
			Help: "Total number of envelopes for unimplemented dialogs",
		}, []string{"kind"}),
		RouterMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dialogs_router_misses_total",
			Help: "Total number of activations for unregistered tokens",
		}, []string{"table"}),
		LiveDialogs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dialogs_live",
			Help: "Current number of live UI dialogs",
		}, []string{"class"}),
	}
	if reg != nil {
		reg.MustRegister(m.Posted, m.Failed, m.Dispatched, m.Unimplemented, m.RouterMisses, m.LiveDialogs)
	}
	return m
}

func (m *Metrics) EnvelopePosted() {
	if m == nil || m.Posted == nil {
		return
	}
	m.Posted.Inc()
}

func (m *Metrics) DeliveryFailed(reason string) {
	m.deliveryFailed(reason, 1)
}

func (m *Metrics) DeliveriesDiscarded(n int) {
	if n <= 0 {
		return
	}
	m.deliveryFailed(ReasonDiscarded, float64(n))
}

func (m *Metrics) deliveryFailed(reason string, n float64) {
	if m == nil || m.Failed == nil {
		return
	}
	m.Failed.WithLabelValues(reason).Add(n)
}

func (m *Metrics) EnvelopeDispatched(kind string) {
	if m == nil || m.Dispatched == nil {
		return
	}
	m.Dispatched.WithLabelValues(kind).Inc()
}

func (m *Metrics) UnimplementedDialog(kind string) {
	if m == nil || m.Unimplemented == nil {
		return
	}
	m.Unimplemented.WithLabelValues(kind).Inc()
}

func (m *Metrics) RouterMiss(table string) {
	if m == nil || m.RouterMisses == nil {
		return
	}
	m.RouterMisses.WithLabelValues(table).Inc()
}

// DialogOpened and DialogClosed track live dialogs per class
// ("singleton", "interaction", "lingering").
func (m *Metrics) DialogOpened(class string) {
	if m == nil || m.LiveDialogs == nil {
		return
	}
	m.LiveDialogs.WithLabelValues(class).Inc()
}

func (m *Metrics) DialogClosed(class string) {
	if m == nil || m.LiveDialogs == nil {
		return
	}
	m.LiveDialogs.WithLabelValues(class).Dec()
}

// Serve exposes gatherer on addr under /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve metrics: %w", err)
	}
}
