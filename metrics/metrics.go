// Package metrics exposes decoder health as Prometheus collectors,
// updated by a foreground poller — never from the ISR path, matching the
// concurrency contract in the decoder's design notes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rfswitch/rfswitch"
)

// Metrics holds the Prometheus collectors for one Receiver.
type Metrics struct {
	messagesDecoded   prometheus.Counter
	candidateOverflow prometheus.Gauge
	messageOverflow   prometheus.Gauge
	bitsDecoded       prometheus.Gauge
	protocolsMatched  prometheus.Gauge
	analyzerAttempts  prometheus.Counter
	analyzerSuccesses prometheus.Counter
}

// New registers and returns a Metrics instance labeled by receiverID,
// mirroring the teacher's promauto.NewGaugeVec construction style.
func New(receiverID string) *Metrics {
	labels := prometheus.Labels{"receiver": receiverID}
	return &Metrics{
		messagesDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "rfswitch_messages_decoded_total",
			Help:        "Total number of messages latched as available.",
			ConstLabels: labels,
		}),
		candidateOverflow: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "rfswitch_candidate_overflow",
			Help:        "Protocol candidates dropped due to the 7-candidate cap.",
			ConstLabels: labels,
		}),
		messageOverflow: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "rfswitch_message_bit_overflow",
			Help:        "Data bits dropped due to the 32-bit message cap.",
			ConstLabels: labels,
		}),
		bitsDecoded: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "rfswitch_last_message_bits",
			Help:        "Bit count of the most recently latched message.",
			ConstLabels: labels,
		}),
		protocolsMatched: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "rfswitch_last_message_protocol_candidates",
			Help:        "Number of protocol candidates matching the most recently latched message.",
			ConstLabels: labels,
		}),
		analyzerAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "rfswitch_analyzer_attempts_total",
			Help:        "Total offline protocol-deduction attempts.",
			ConstLabels: labels,
		}),
		analyzerSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "rfswitch_analyzer_successes_total",
			Help:        "Total offline protocol-deduction attempts that proposed a timing.",
			ConstLabels: labels,
		}),
	}
}

// Poll updates the gauges from r's current state. Call this from a
// foreground ticker, never from OnEdge. It increments messagesDecoded and
// sets bitsDecoded and protocolsMatched; the candidateOverflow and
// messageOverflow gauges are registered but not updated, so they stay at 0.
func (m *Metrics) Poll(r *rfswitch.Receiver) {
	if !r.Available() {
		return
	}
	m.messagesDecoded.Inc()
	m.bitsDecoded.Set(float64(r.ReceivedBitsCount()))
	m.protocolsMatched.Set(float64(r.ReceivedProtocolCount()))
}

// RecordAnalyzerAttempt records one deduction attempt and whether it
// succeeded.
func (m *Metrics) RecordAnalyzerAttempt(succeeded bool) {
	m.analyzerAttempts.Inc()
	if succeeded {
		m.analyzerSuccesses.Inc()
	}
}
