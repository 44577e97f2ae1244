package circular_buffer_go

import (
	"fmt"
	"strings"
)

// Model selects the index arithmetic of a buffer built by New.
type Model int

const (
	// CapacityPlusOne keeps one spare slot so that full and empty never share
	// a cursor state. It is the default.
	CapacityPlusOne Model = iota

	// FullUtilization uses every slot and runs the cursors over twice the
	// capacity instead.
	FullUtilization
)

// String returns the name accepted by ParseModel.
func (m Model) String() string {
	switch m {
	case CapacityPlusOne:
		return "capacity-plus-one"
	case FullUtilization:
		return "full-utilization"
	default:
		return "unknown"
	}
}

// ParseModel maps a model name to a Model.
func ParseModel(name string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "capacity-plus-one", "plus-one", "plusone":
		return CapacityPlusOne, nil
	case "full", "full-utilization", "full-utilisation":
		return FullUtilization, nil
	default:
		return CapacityPlusOne, fmt.Errorf("unknown buffer model %q", name)
	}
}

// Option configures a buffer at construction time.
type Option func(*bufferOptions)

type bufferOptions struct {
	model     Model
	observers []Observer
}

// WithModel selects the index arithmetic used by New and NewDelimitedBuffer.
// The concrete constructors ignore it.
func WithModel(model Model) Option {
	return func(opts *bufferOptions) {
		opts.model = model
	}
}

// WithObserver registers an observer for byte insert and remove events.
// Several observers may be registered; they are notified in order.
func WithObserver(observer Observer) Option {
	return func(opts *bufferOptions) {
		if observer != nil {
			opts.observers = append(opts.observers, observer)
		}
	}
}

func applyOptions(options ...Option) *bufferOptions {
	opts := &bufferOptions{
		model: CapacityPlusOne,
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}

// observer collapses the registered observers into one, or nil.
func (opts *bufferOptions) observer() Observer {
	switch len(opts.observers) {
	case 0:
		return nil
	case 1:
		return opts.observers[0]
	default:
		return multiObserver(opts.observers)
	}
}

type multiObserver []Observer

func (m multiObserver) Inserted(b byte) {
	for _, o := range m {
		o.Inserted(b)
	}
}

func (m multiObserver) Removed(b byte) {
	for _, o := range m {
		o.Removed(b)
	}
}

// New returns a buffer of the given capacity using the model selected with
// WithModel.
func New(capacity int, options ...Option) RingBufferInterface {
	opts := applyOptions(options...)

	return newCore(capacity, opts.model, opts.observer())
}

// core is implemented by the two arithmetic models. It gives decorators in
// this package access to stored bytes without consuming them.
type core interface {
	RingBufferInterface

	// indexByte returns the offset from the read cursor of the first stored
	// byte equal to c, or -1.
	indexByte(c byte) int

	// cloneWith copies the buffer and installs observer on the copy.
	cloneWith(observer Observer) core
}

func newCore(capacity int, model Model, observer Observer) core {
	if model == FullUtilization {
		return newFullRingBuffer(capacity, observer)
	}

	return newRingBuffer(capacity, observer)
}

func clampCapacity(capacity int, limit int) int {
	if capacity < 0 {
		return 0
	}
	if capacity > limit {
		return limit
	}

	return capacity
}

// snapshot returns the bytes stored in src, oldest first, without consuming
// them.
func snapshot(src RingBufferInterface) []byte {
	clone := src.Clone()
	p := make([]byte, clone.Size())
	n := clone.Get(p)

	return p[:n]
}

// copyContents replaces the contents of dst with a copy of src. Observers of
// dst see every old byte removed and every new byte inserted.
func copyContents(dst RingBufferInterface, src RingBufferInterface) error {
	if dst.Capacity() != src.Capacity() {
		return fmt.Errorf("%w: %d != %d", ErrCapacityMismatch, dst.Capacity(), src.Capacity())
	}

	data := snapshot(src)
	dst.Flush()
	dst.Put(data, true)

	return nil
}
