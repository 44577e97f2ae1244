package circular_buffer_go

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentedBuffer exports transfer counters and occupancy gauges for the
// buffer it wraps. The gauges read the wrapped buffer when scraped, so a
// buffer that is not a LockingRingBuffer must only be scraped from the
// goroutine that uses it.
type InstrumentedBuffer struct {
	RingBufferInterface

	putBytes       prometheus.Counter
	rejectedBytes  prometheus.Counter
	getBytes       prometheus.Counter
	discardedBytes prometheus.Counter
	flushes        prometheus.Counter
}

var _ RingBufferInterface = &InstrumentedBuffer{}

// NewInstrumentedBuffer wraps inner and registers its metrics with reg under
// the buffer label name. A nil reg leaves the metrics unregistered.
func NewInstrumentedBuffer(inner RingBufferInterface, reg prometheus.Registerer, name string) (*InstrumentedBuffer, error) {
	labels := prometheus.Labels{"buffer": name}

	counter := func(metric string, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ringbuffer",
			Name:        metric,
			Help:        help,
			ConstLabels: labels,
		})
	}

	buffer := &InstrumentedBuffer{
		RingBufferInterface: inner,

		putBytes:       counter("put_bytes_total", "Bytes accepted by put operations"),
		rejectedBytes:  counter("rejected_bytes_total", "Bytes offered to put operations but not accepted"),
		getBytes:       counter("get_bytes_total", "Bytes returned by get operations"),
		discardedBytes: counter("discarded_bytes_total", "Bytes dropped by discard and flush"),
		flushes:        counter("flushes_total", "Number of flush operations"),
	}

	if reg == nil {
		return buffer, nil
	}

	size := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "ringbuffer",
		Name:        "size_bytes",
		Help:        "Bytes currently stored",
		ConstLabels: labels,
	}, func() float64 {
		return float64(inner.Size())
	})

	utilization := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "ringbuffer",
		Name:        "utilization_ratio",
		Help:        "Stored bytes as a fraction of capacity (0.0 to 1.0)",
		ConstLabels: labels,
	}, func() float64 {
		capacity := inner.Capacity()
		if capacity == 0 {
			return 0
		}
		return float64(inner.Size()) / float64(capacity)
	})

	collectors := []prometheus.Collector{
		buffer.putBytes,
		buffer.rejectedBytes,
		buffer.getBytes,
		buffer.discardedBytes,
		buffer.flushes,
		size,
		utilization,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register buffer metrics for %q: %w", name, err)
		}
	}

	return buffer, nil
}

func (buffer *InstrumentedBuffer) PutByte(b byte) int {
	n := buffer.RingBufferInterface.PutByte(b)
	buffer.recordPut(1, n)

	return n
}

func (buffer *InstrumentedBuffer) Put(p []byte, requireAll bool) int {
	n := buffer.RingBufferInterface.Put(p, requireAll)
	buffer.recordPut(len(p), n)

	return n
}

func (buffer *InstrumentedBuffer) GetByte(dst *byte) int {
	n := buffer.RingBufferInterface.GetByte(dst)
	buffer.getBytes.Add(float64(n))

	return n
}

func (buffer *InstrumentedBuffer) Get(p []byte) int {
	n := buffer.RingBufferInterface.Get(p)
	buffer.getBytes.Add(float64(n))

	return n
}

func (buffer *InstrumentedBuffer) Discard(n int) int {
	discarded := buffer.RingBufferInterface.Discard(n)
	buffer.discardedBytes.Add(float64(discarded))

	return discarded
}

func (buffer *InstrumentedBuffer) Flush() {
	size := buffer.RingBufferInterface.Size()
	buffer.RingBufferInterface.Flush()

	buffer.discardedBytes.Add(float64(size))
	buffer.flushes.Inc()
}

// Clone returns an uninstrumented copy of the wrapped buffer. Metrics stay
// with the original; a clone registered under the same name would collide.
func (buffer *InstrumentedBuffer) Clone() RingBufferInterface {
	return buffer.RingBufferInterface.Clone()
}

// CopyFrom replaces the contents with those of src. The previous contents
// count as discarded and the copied bytes as put.
func (buffer *InstrumentedBuffer) CopyFrom(src RingBufferInterface) error {
	if src == RingBufferInterface(buffer) {
		return nil
	}

	previous := buffer.RingBufferInterface.Size()
	if err := buffer.RingBufferInterface.CopyFrom(src); err != nil {
		return err
	}

	buffer.discardedBytes.Add(float64(previous))
	buffer.putBytes.Add(float64(buffer.RingBufferInterface.Size()))

	return nil
}

func (buffer *InstrumentedBuffer) recordPut(offered int, accepted int) {
	buffer.putBytes.Add(float64(accepted))
	if offered > accepted {
		buffer.rejectedBytes.Add(float64(offered - accepted))
	}
}
