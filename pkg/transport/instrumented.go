/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"time"

	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts transport traffic.
type Metrics struct {
	Requests *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Bytes    *prometheus.CounterVec
}

// NewMetrics registers the transport metrics with registry, or the
// default registerer when nil.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parachain_rpc_requests_total",
			Help: "The total number of node requests",
		}, []string{"method"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parachain_rpc_failures_total",
			Help: "The total number of failed node requests",
		}, []string{"method"}),
		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parachain_rpc_duration_seconds",
			Help:    "Node request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		Bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parachain_rpc_received_bytes_total",
			Help: "Payload bytes returned by the node",
		}, []string{"method"}),
	}
}

// Instrumented wraps a Transport with Metrics.
type Instrumented struct {
	next    Transport
	metrics *Metrics
}

func NewInstrumented(next Transport, m *Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: m}
}

func (t *Instrumented) observe(method string, start time.Time, n int, err error) {
	t.metrics.Requests.WithLabelValues(method).Inc()
	t.metrics.Latency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		t.metrics.Failures.WithLabelValues(method).Inc()
		return
	}
	t.metrics.Bytes.WithLabelValues(method).Add(float64(n))
}

func (t *Instrumented) FetchMetadata(ctx context.Context) ([]byte, error) {
	start := time.Now()
	b, err := t.next.FetchMetadata(ctx)
	t.observe(MethodFetchMetadata, start, len(b), err)
	return b, err
}

func (t *Instrumented) StorageQuery(ctx context.Context, key []byte, at *primitives.Hash) ([]byte, bool, error) {
	start := time.Now()
	b, ok, err := t.next.StorageQuery(ctx, key, at)
	t.observe(MethodStorageQuery, start, len(b), err)
	return b, ok, err
}

func (t *Instrumented) StorageRange(ctx context.Context, prefix, from []byte, pageSize int, at *primitives.Hash) ([]KV, []byte, error) {
	start := time.Now()
	kvs, next, err := t.next.StorageRange(ctx, prefix, from, pageSize, at)
	n := 0
	for _, kv := range kvs {
		n += len(kv.Key) + len(kv.Value)
	}
	t.observe(MethodStorageRange, start, n, err)
	return kvs, next, err
}

func (t *Instrumented) SubmitAndWatch(ctx context.Context, ext []byte) (Subscription, error) {
	start := time.Now()
	sub, err := t.next.SubmitAndWatch(ctx, ext)
	t.observe(MethodSubmitAndWatch, start, 0, err)
	return sub, err
}
