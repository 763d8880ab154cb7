// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports dlpi session traffic to Prometheus.
package metrics

import (
	"strconv"
	"sync"

	"code.hybscloud.com/dlpi"
	"github.com/prometheus/client_golang/prometheus"
)

var labels = []string{"link", "serial"}

// Collector reports the counters of every tracked session. Counters are
// read at scrape time from [dlpi.Ref.Stats]; a closed session keeps its
// last values until it is untracked.
type Collector struct {
	framesSent     *prometheus.Desc
	bytesSent      *prometheus.Desc
	framesReceived *prometheus.Desc
	bytesReceived  *prometheus.Desc
	truncated      *prometheus.Desc
	wouldBlock     *prometheus.Desc
	open           *prometheus.Desc

	mu   sync.Mutex
	refs map[dlpi.Serial]dlpi.Ref
}

var _ prometheus.Collector = (*Collector)(nil)

// New returns a collector whose metric names start with namespace,
// "dlpi" when empty.
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = "dlpi"
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "session", name), help, labels, nil)
	}
	return &Collector{
		framesSent:     desc("frames_sent_total", "Frames sent on the session."),
		bytesSent:      desc("bytes_sent_total", "Payload bytes sent on the session."),
		framesReceived: desc("frames_received_total", "Frames received on the session."),
		bytesReceived:  desc("bytes_received_total", "Payload bytes copied to receive buffers."),
		truncated:      desc("truncated_total", "Receives whose frame did not fit the buffer."),
		wouldBlock:     desc("would_block_total", "Non-blocking receive attempts that found no frame."),
		open:           desc("open", "Whether the session is still open."),
		refs:           make(map[dlpi.Serial]dlpi.Ref),
	}
}

// Track adds the session behind r.
func (c *Collector) Track(r dlpi.Ref) {
	c.mu.Lock()
	c.refs[r.Serial()] = r
	c.mu.Unlock()
}

// Untrack removes the session behind r.
func (c *Collector) Untrack(r dlpi.Ref) {
	c.mu.Lock()
	delete(c.refs, r.Serial())
	c.mu.Unlock()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.framesSent
	ch <- c.bytesSent
	ch <- c.framesReceived
	ch <- c.bytesReceived
	ch <- c.truncated
	ch <- c.wouldBlock
	ch <- c.open
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	refs := make([]dlpi.Ref, 0, len(c.refs))
	for _, r := range c.refs {
		refs = append(refs, r)
	}
	c.mu.Unlock()

	for _, r := range refs {
		st := r.Stats()
		lv := []string{r.Name(), strconv.FormatUint(uint64(r.Serial()), 10)}
		counter := func(d *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), lv...)
		}
		counter(c.framesSent, st.FramesSent)
		counter(c.bytesSent, st.BytesSent)
		counter(c.framesReceived, st.FramesReceived)
		counter(c.bytesReceived, st.BytesReceived)
		counter(c.truncated, st.Truncated)
		counter(c.wouldBlock, st.WouldBlock)
		open := 1.0
		if r.Closed() {
			open = 0
		}
		ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, open, lv...)
	}
}
