// Package stats keeps per-device traffic counters and exports them to
// Prometheus.
package stats

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wimax"

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TxPackets uint64
	TxBytes   uint64
	RxPackets uint64
	RxBytes   uint64
}

// Counters implements wimax.Stats and prometheus.Collector.
type Counters struct {
	txPackets uint64
	txBytes   uint64
	rxPackets uint64
	rxBytes   uint64

	packets *prometheus.Desc
	bytes   *prometheus.Desc
	labels  []string
}

// New returns counters labelled with the interface name.
func New(dev string) *Counters {
	return &Counters{
		packets: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "interface", "packets_total"),
			"Frames carried between the network stack and the device.",
			[]string{"dev", "dir"},
			nil),
		bytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "interface", "bytes_total"),
			"Frame bytes carried between the network stack and the device, without HCI headers.",
			[]string{"dev", "dir"},
			nil),
		labels: []string{dev},
	}
}

func (c *Counters) AccountTx(n int) {
	atomic.AddUint64(&c.txPackets, 1)
	atomic.AddUint64(&c.txBytes, uint64(n))
}

func (c *Counters) AccountRx(n int) {
	atomic.AddUint64(&c.rxPackets, 1)
	atomic.AddUint64(&c.rxBytes, uint64(n))
}

func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		TxPackets: atomic.LoadUint64(&c.txPackets),
		TxBytes:   atomic.LoadUint64(&c.txBytes),
		RxPackets: atomic.LoadUint64(&c.rxPackets),
		RxBytes:   atomic.LoadUint64(&c.rxBytes),
	}
}

func (c *Counters) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.packets
	ch <- c.bytes
}

func (c *Counters) Collect(ch chan<- prometheus.Metric) {
	s := c.Snapshot()
	dev := c.labels[0]
	ch <- prometheus.MustNewConstMetric(c.packets, prometheus.CounterValue, float64(s.TxPackets), dev, "tx")
	ch <- prometheus.MustNewConstMetric(c.packets, prometheus.CounterValue, float64(s.RxPackets), dev, "rx")
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.TxBytes), dev, "tx")
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.RxBytes), dev, "rx")
}
