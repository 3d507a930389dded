// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blinklabs-io/powd/pow"
)

const namespace = "powd"

// Rejection reasons
const (
	ReasonMalformed  = "malformed"
	ReasonNotConnect = "not_connected"
	ReasonPow        = "bad_pow"
	ReasonBits       = "unexpected_bits"
	ReasonTransition = "illegal_transition"
	ReasonGenesis    = "genesis_mismatch"
)

type Metrics struct {
	retargets       *prometheus.CounterVec
	headersAccepted prometheus.Counter
	headersRejected *prometheus.CounterVec
	powChecks       *prometheus.CounterVec
	tipHeight       prometheus.Gauge
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		retargets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retargets_total",
			Help:      "Number of required-bits computations by algorithm",
		}, []string{"algorithm"}),
		headersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "headers_accepted_total",
			Help:      "Number of headers accepted into the index",
		}),
		headersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "headers_rejected_total",
			Help:      "Number of headers rejected by reason",
		}, []string{"reason"}),
		powChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pow_checks_total",
			Help:      "Number of proof-of-work checks by result",
		}, []string{"result"}),
		tipHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tip_height",
			Help:      "Height of the indexed chain tip",
		}),
	}
	err := errors.Join(
		reg.Register(m.retargets),
		reg.Register(m.headersAccepted),
		reg.Register(m.headersRejected),
		reg.Register(m.powChecks),
		reg.Register(m.tipHeight),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) ObserveRetarget(algorithm pow.Algorithm) {
	m.retargets.WithLabelValues(algorithm.String()).Inc()
}

func (m *Metrics) ObserveProofOfWork(ok bool) {
	result := "pass"
	if !ok {
		result = "fail"
	}
	m.powChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) HeaderAccepted(height int64) {
	m.headersAccepted.Inc()
	m.tipHeight.Set(float64(height))
}

func (m *Metrics) HeaderRejected(reason string) {
	m.headersRejected.WithLabelValues(reason).Inc()
}

// Start serves the collected metrics on /metrics. It blocks until the
// listener fails.
func Start(address string, port uint, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", address, port),
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
	}
	return server.ListenAndServe()
}
