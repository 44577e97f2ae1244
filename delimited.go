package circular_buffer_go

// DelimiterCounter is an Observer that tracks how many stored bytes equal
// its delimiter.
type DelimiterCounter struct {
	delimiter byte
	count     int
}

func NewDelimiterCounter(delimiter byte) *DelimiterCounter {
	return &DelimiterCounter{delimiter: delimiter}
}

func (counter *DelimiterCounter) Inserted(b byte) {
	if b == counter.delimiter {
		counter.count++
	}
}

func (counter *DelimiterCounter) Removed(b byte) {
	if b == counter.delimiter {
		counter.count--
	}
}

func (counter *DelimiterCounter) Count() int {
	return counter.count
}

func (counter *DelimiterCounter) Delimiter() byte {
	return counter.delimiter
}

// DelimitedBuffer is a ring buffer that keeps count of the delimiter bytes it
// stores, i.e. of the complete messages waiting to be read. The tally is
// maintained by an observer on the underlying buffer, so every transfer,
// discard and flush keeps it exact.
type DelimitedBuffer struct {
	core
	counter *DelimiterCounter
}

var _ RingBufferInterface = &DelimitedBuffer{}

// NewDelimitedBuffer returns an empty buffer of the given capacity counting
// occurrences of delimiter. WithModel selects the index arithmetic.
func NewDelimitedBuffer(capacity int, delimiter byte, options ...Option) *DelimitedBuffer {
	counter := NewDelimiterCounter(delimiter)
	opts := applyOptions(append(options[:len(options):len(options)], WithObserver(counter))...)

	return &DelimitedBuffer{
		core:    newCore(capacity, opts.model, opts.observer()),
		counter: counter,
	}
}

// Count returns the number of delimiter bytes currently stored.
func (buffer *DelimitedBuffer) Count() int {
	return buffer.counter.Count()
}

func (buffer *DelimitedBuffer) Delimiter() byte {
	return buffer.counter.Delimiter()
}

// MessageLen returns the length of the oldest complete message including its
// delimiter, or 0 when no complete message is stored.
func (buffer *DelimitedBuffer) MessageLen() int {
	if buffer.counter.Count() == 0 {
		return 0
	}

	return buffer.core.indexByte(buffer.counter.Delimiter()) + 1
}

// GetMessage copies the oldest complete message, delimiter included, into p
// and returns its length. Nothing is read when there is no complete message
// or it does not fit in p.
func (buffer *DelimitedBuffer) GetMessage(p []byte) int {
	n := buffer.MessageLen()
	if n == 0 || n > len(p) {
		return 0
	}

	return buffer.core.Get(p[:n])
}

// Clone returns an independent copy with its own tally.
func (buffer *DelimitedBuffer) Clone() RingBufferInterface {
	counter := &DelimiterCounter{
		delimiter: buffer.counter.delimiter,
		count:     buffer.counter.count,
	}

	return &DelimitedBuffer{
		core:    buffer.core.cloneWith(counter),
		counter: counter,
	}
}

// CopyFrom replaces the contents with those of src, recounting delimiters.
func (buffer *DelimitedBuffer) CopyFrom(src RingBufferInterface) error {
	if src == RingBufferInterface(buffer) {
		return nil
	}

	return copyContents(buffer.core, src)
}
