package circular_buffer_go

import (
	"bytes"
	"io"
)

// RingBuffer is a fixed-capacity byte ring using the capacity-plus-one model:
// the backing array holds one slot more than the capacity and that slot never
// carries data, so the buffer is empty exactly when both cursors are equal and
// full exactly when the write cursor sits one slot behind the read cursor.
//
// Put-family calls move only the write cursor and get-family calls move only
// the read cursor, each after the data copy has completed.
type RingBuffer struct {
	data []byte // len(data) == capacity + 1

	readIndex  int // [0, len(data))
	writeIndex int // [0, len(data))

	observer Observer
}

// NewRingBuffer returns an empty buffer able to hold capacity bytes. Negative
// capacities are treated as zero.
func NewRingBuffer(capacity int, options ...Option) *RingBuffer {
	opts := applyOptions(options...)

	return newRingBuffer(capacity, opts.observer())
}

func newRingBuffer(capacity int, observer Observer) *RingBuffer {
	capacity = clampCapacity(capacity, RingBufferLimit)

	return &RingBuffer{
		data:     make([]byte, capacity+1),
		observer: observer,
	}
}

// advance moves index forward by n slots without forming index+n, which
// could overflow for very large buffers. n must not exceed len(data).
func (buffer *RingBuffer) advance(index int, n int) int {
	distanceToWrap := len(buffer.data) - index
	if n >= distanceToWrap {
		return n - distanceToWrap
	}

	return index + n
}

func (buffer *RingBuffer) PutByte(b byte) int {
	if buffer.IsFull() {
		return 0
	}

	buffer.data[buffer.writeIndex] = b
	buffer.writeIndex = buffer.advance(buffer.writeIndex, 1)

	if buffer.observer != nil {
		buffer.observer.Inserted(b)
	}

	return 1
}

func (buffer *RingBuffer) Put(p []byte, requireAll bool) int {
	if p == nil {
		return 0
	}

	n := len(p)
	if free := buffer.Free(); n > free {
		if requireAll {
			return 0
		}
		n = free
	}
	if n == 0 {
		return 0
	}

	// The spare slot guarantees the copy never reaches unread data.
	first := copy(buffer.data[buffer.writeIndex:], p[:n])
	if first < n {
		copy(buffer.data, p[first:n])
	}

	buffer.writeIndex = buffer.advance(buffer.writeIndex, n)

	if buffer.observer != nil {
		for _, b := range p[:n] {
			buffer.observer.Inserted(b)
		}
	}

	return n
}

func (buffer *RingBuffer) GetByte(dst *byte) int {
	if dst == nil || buffer.IsEmpty() {
		return 0
	}

	b := buffer.data[buffer.readIndex]
	*dst = b
	buffer.readIndex = buffer.advance(buffer.readIndex, 1)

	if buffer.observer != nil {
		buffer.observer.Removed(b)
	}

	return 1
}

func (buffer *RingBuffer) Get(p []byte) int {
	if p == nil {
		return 0
	}

	n := min(len(p), buffer.Size())
	if n == 0 {
		return 0
	}

	first := copy(p[:n], buffer.data[buffer.readIndex:])
	if first < n {
		copy(p[first:n], buffer.data)
	}

	buffer.readIndex = buffer.advance(buffer.readIndex, n)

	if buffer.observer != nil {
		for _, b := range p[:n] {
			buffer.observer.Removed(b)
		}
	}

	return n
}

func (buffer *RingBuffer) PeekByte(dst *byte) int {
	if dst == nil || buffer.IsEmpty() {
		return 0
	}

	*dst = buffer.data[buffer.readIndex]

	return 1
}

func (buffer *RingBuffer) Discard(n int) int {
	if n <= 0 {
		return 0
	}

	size := buffer.Size()
	if n >= size {
		buffer.Flush()
		return size
	}

	buffer.notifyRemoved(n)
	buffer.readIndex = buffer.advance(buffer.readIndex, n)

	return n
}

func (buffer *RingBuffer) Size() int {
	if buffer.writeIndex >= buffer.readIndex {
		return buffer.writeIndex - buffer.readIndex
	}

	return len(buffer.data) - (buffer.readIndex - buffer.writeIndex)
}

func (buffer *RingBuffer) Free() int {
	return buffer.Capacity() - buffer.Size()
}

func (buffer *RingBuffer) Capacity() int {
	return len(buffer.data) - 1
}

func (buffer *RingBuffer) IsEmpty() bool {
	return buffer.readIndex == buffer.writeIndex
}

func (buffer *RingBuffer) IsFull() bool {
	return buffer.readIndex == buffer.advance(buffer.writeIndex, 1)
}

func (buffer *RingBuffer) Flush() {
	buffer.notifyRemoved(buffer.Size())
	buffer.readIndex = buffer.writeIndex
}

func (buffer *RingBuffer) Limit() int {
	return RingBufferLimit
}

// Clone returns an independent copy. Observers are not carried over.
func (buffer *RingBuffer) Clone() RingBufferInterface {
	return buffer.cloneWith(nil)
}

func (buffer *RingBuffer) cloneWith(observer Observer) core {
	data := make([]byte, len(buffer.data))
	copy(data, buffer.data)

	return &RingBuffer{
		data:       data,
		readIndex:  buffer.readIndex,
		writeIndex: buffer.writeIndex,
		observer:   observer,
	}
}

// CopyFrom replaces the contents of the buffer with those of src, which must
// have the same capacity.
func (buffer *RingBuffer) CopyFrom(src RingBufferInterface) error {
	if src == RingBufferInterface(buffer) {
		return nil
	}

	if other, ok := src.(*RingBuffer); ok && buffer.observer == nil && len(other.data) == len(buffer.data) {
		copy(buffer.data, other.data)
		buffer.readIndex = other.readIndex
		buffer.writeIndex = other.writeIndex
		return nil
	}

	return copyContents(buffer, src)
}

func (buffer *RingBuffer) indexByte(c byte) int {
	size := buffer.Size()
	if size == 0 {
		return -1
	}

	if buffer.readIndex < buffer.writeIndex {
		return bytes.IndexByte(buffer.data[buffer.readIndex:buffer.writeIndex], c)
	}

	head := buffer.data[buffer.readIndex:]
	if i := bytes.IndexByte(head, c); i >= 0 {
		return i
	}
	if i := bytes.IndexByte(buffer.data[:buffer.writeIndex], c); i >= 0 {
		return len(head) + i
	}

	return -1
}

// notifyRemoved reports the next n stored bytes as removed.
func (buffer *RingBuffer) notifyRemoved(n int) {
	if buffer.observer == nil {
		return
	}

	index := buffer.readIndex
	for i := 0; i < n; i++ {
		buffer.observer.Removed(buffer.data[index])
		index = buffer.advance(index, 1)
	}
}

// Write stores as much of p as fits and returns ErrFull if that is not all
// of it.
func (buffer *RingBuffer) Write(p []byte) (int, error) {
	return writeTo(buffer, p)
}

// WriteByte stores c or returns ErrFull.
func (buffer *RingBuffer) WriteByte(c byte) error {
	return writeByteTo(buffer, c)
}

// Read drains up to len(p) bytes and returns io.EOF when the buffer is empty.
func (buffer *RingBuffer) Read(p []byte) (int, error) {
	return readFrom(buffer, p)
}

// ReadByte removes one byte and returns io.EOF when the buffer is empty.
func (buffer *RingBuffer) ReadByte() (byte, error) {
	return readByteFrom(buffer)
}

func writeTo(buffer RingBufferInterface, p []byte) (int, error) {
	n := buffer.Put(p, false)
	if n < len(p) {
		return n, ErrFull
	}

	return n, nil
}

func writeByteTo(buffer RingBufferInterface, c byte) error {
	if buffer.PutByte(c) == 0 {
		return ErrFull
	}

	return nil
}

func readFrom(buffer RingBufferInterface, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := buffer.Get(p)
	if n == 0 {
		return 0, io.EOF
	}

	return n, nil
}

func readByteFrom(buffer RingBufferInterface) (byte, error) {
	var c byte
	if buffer.GetByte(&c) == 0 {
		return 0, io.EOF
	}

	return c, nil
}
