// Package framer splits a byte stream into delimiter-terminated frames using a
// fixed-size ring buffer, the way a serial receive path feeds a message
// parser.
package framer

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	rb "github.com/sushydev/circular_buffer_go"
)

// Frame is one complete message.
type Frame struct {
	Seq  uint64 `cbor:"seq" json:"seq"`
	Data []byte `cbor:"data" json:"data"`
}

// Stats is a snapshot of framer counters.
type Stats struct {
	BytesRead    uint64 `json:"bytes_read"`
	Frames       uint64 `json:"frames"`
	Overruns     uint64 `json:"overruns"`
	DroppedBytes uint64 `json:"dropped_bytes"`
	PartialBytes uint64 `json:"partial_bytes"`
}

// Framer reads from an io.Reader and emits frames. A Framer is not safe for
// concurrent use; Stats may be called from any goroutine.
type Framer struct {
	r      io.Reader
	cfg    Config
	logger *zap.Logger

	buffer *rb.DelimitedBuffer
	input  rb.RingBufferInterface // buffer, possibly instrumented

	message []byte
	seq     uint64

	// resync is set after an overrun; the next message is the tail of the
	// dropped one and is discarded too.
	resync bool

	bytesRead    atomic.Uint64
	frames       atomic.Uint64
	overruns     atomic.Uint64
	droppedBytes atomic.Uint64
	partialBytes atomic.Uint64
}

// New returns a Framer reading from r. A nil logger disables logging.
func New(r io.Reader, cfg Config, logger *zap.Logger) (*Framer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid framer config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	buffer := rb.NewDelimitedBuffer(cfg.Capacity, cfg.Delimiter, rb.WithModel(cfg.Model))

	f := &Framer{
		r:       r,
		cfg:     cfg,
		logger:  logger,
		buffer:  buffer,
		input:   buffer,
		message: make([]byte, cfg.Capacity),
	}

	if cfg.Registerer != nil {
		instrumented, err := rb.NewInstrumentedBuffer(buffer, cfg.Registerer, cfg.MetricsName)
		if err != nil {
			return nil, errors.Wrap(err, "instrument framer buffer")
		}
		f.input = instrumented

		if err := f.registerMetrics(cfg.Registerer, cfg.MetricsName); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Run reads until the input is exhausted, calling fn for every complete
// frame. The Data slice passed to fn is owned by the callee. Run returns nil
// at end of input, the first error returned by fn, a read error, or the
// context error. The context is checked between reads only.
func (f *Framer) Run(ctx context.Context, fn func(Frame) error) error {
	chunk := make([]byte, f.cfg.ReadSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := f.r.Read(chunk)
		if n > 0 {
			f.bytesRead.Add(uint64(n))
			if ferr := f.push(chunk[:n], fn); ferr != nil {
				return ferr
			}
		}

		if err == io.EOF {
			f.finish()
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read input")
		}
	}
}

// push stores p and drains frames until all of p has been stored.
func (f *Framer) push(p []byte, fn func(Frame) error) error {
	for len(p) > 0 {
		accepted := f.input.Put(p, false)
		p = p[accepted:]

		if err := f.drain(fn); err != nil {
			return err
		}

		// Full with no delimiter in sight: the pending message can never
		// complete, so drop it and resynchronise on the next delimiter.
		if len(p) > 0 && f.buffer.IsFull() && f.buffer.Count() == 0 {
			dropped := f.buffer.Size()
			f.input.Flush()
			f.droppedBytes.Add(uint64(dropped))

			// Later fills while resyncing belong to the same message.
			if !f.resync {
				f.resync = true
				f.overruns.Inc()
				f.logger.Warn("Message exceeds buffer capacity, dropping",
					zap.Int("dropped_bytes", dropped),
					zap.Int("capacity", f.buffer.Capacity()),
				)
			}
		}
	}

	return nil
}

func (f *Framer) drain(fn func(Frame) error) error {
	for f.buffer.Count() > 0 {
		// Read through input so instrumentation sees the bytes.
		n := f.buffer.MessageLen()
		if n == 0 || f.input.Get(f.message[:n]) != n {
			return errors.New("delimited buffer reported a message it could not return")
		}

		if f.resync {
			f.resync = false
			f.droppedBytes.Add(uint64(n))
			continue
		}

		data := f.message[:n]
		if f.cfg.StripDelimiter {
			data = data[:n-1]
		}

		f.seq++
		f.frames.Inc()

		frame := Frame{Seq: f.seq, Data: append([]byte(nil), data...)}
		if err := fn(frame); err != nil {
			return errors.Wrapf(err, "handle frame %d", frame.Seq)
		}
	}

	return nil
}

func (f *Framer) finish() {
	if partial := f.buffer.Size(); partial > 0 {
		if f.resync {
			f.droppedBytes.Add(uint64(partial))
		} else {
			f.partialBytes.Add(uint64(partial))
			f.logger.Info("Discarding trailing partial message", zap.Int("bytes", partial))
		}
		f.input.Flush()
	}
	f.resync = false

	f.logger.Info("Input finished",
		zap.Uint64("bytes_read", f.bytesRead.Load()),
		zap.Uint64("frames", f.frames.Load()),
		zap.Uint64("overruns", f.overruns.Load()),
	)
}

func (f *Framer) Stats() Stats {
	return Stats{
		BytesRead:    f.bytesRead.Load(),
		Frames:       f.frames.Load(),
		Overruns:     f.overruns.Load(),
		DroppedBytes: f.droppedBytes.Load(),
		PartialBytes: f.partialBytes.Load(),
	}
}

func (f *Framer) registerMetrics(reg prometheus.Registerer, name string) error {
	labels := prometheus.Labels{"framer": name}

	counters := []struct {
		name  string
		help  string
		value *atomic.Uint64
	}{
		{"frames_total", "Complete frames emitted", &f.frames},
		{"overruns_total", "Messages dropped for exceeding buffer capacity", &f.overruns},
		{"dropped_bytes_total", "Bytes dropped by overruns", &f.droppedBytes},
		{"read_bytes_total", "Bytes read from the input", &f.bytesRead},
	}

	for _, c := range counters {
		value := c.value
		collector := prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   "ringframe",
			Name:        c.name,
			Help:        c.help,
			ConstLabels: labels,
		}, func() float64 {
			return float64(value.Load())
		})

		if err := reg.Register(collector); err != nil {
			return errors.Wrapf(err, "register %s", c.name)
		}
	}

	return nil
}
