package circular_buffer_go

import "bytes"

// FullRingBuffer is a fixed-capacity byte ring that uses every slot of its
// backing array. The cursors run over [0, 2*capacity) and address storage
// modulo capacity; the extra lap tells a full buffer (cursors one lap apart)
// from an empty one (cursors equal).
//
// This model trades an extra modulus per step for the spare byte saved by
// RingBuffer, and is usually the slower of the two.
type FullRingBuffer struct {
	data []byte // len(data) == capacity

	readCursor  int // [0, 2*capacity)
	writeCursor int // [0, 2*capacity)

	observer Observer
}

// NewFullRingBuffer returns an empty buffer able to hold capacity bytes.
// Negative capacities are treated as zero.
func NewFullRingBuffer(capacity int, options ...Option) *FullRingBuffer {
	opts := applyOptions(options...)

	return newFullRingBuffer(capacity, opts.observer())
}

func newFullRingBuffer(capacity int, observer Observer) *FullRingBuffer {
	capacity = clampCapacity(capacity, FullRingBufferLimit)

	return &FullRingBuffer{
		data:     make([]byte, capacity),
		observer: observer,
	}
}

// position maps a cursor to its storage index.
func (buffer *FullRingBuffer) position(cursor int) int {
	if len(buffer.data) == 0 {
		return 0
	}

	return cursor % len(buffer.data)
}

// advance moves cursor forward by n within [0, 2*capacity) using the
// distance to the wrap point, so cursor+n is never formed. n must not exceed
// 2*capacity.
func (buffer *FullRingBuffer) advance(cursor int, n int) int {
	if len(buffer.data) == 0 {
		return 0
	}

	distanceToWrap := 2*len(buffer.data) - cursor
	if n >= distanceToWrap {
		return n - distanceToWrap
	}

	return cursor + n
}

func (buffer *FullRingBuffer) PutByte(b byte) int {
	if buffer.IsFull() {
		return 0
	}

	buffer.data[buffer.position(buffer.writeCursor)] = b
	buffer.writeCursor = buffer.advance(buffer.writeCursor, 1)

	if buffer.observer != nil {
		buffer.observer.Inserted(b)
	}

	return 1
}

func (buffer *FullRingBuffer) Put(p []byte, requireAll bool) int {
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

	start := buffer.position(buffer.writeCursor)
	first := copy(buffer.data[start:], p[:n])
	if first < n {
		copy(buffer.data, p[first:n])
	}

	buffer.writeCursor = buffer.advance(buffer.writeCursor, n)

	if buffer.observer != nil {
		for _, b := range p[:n] {
			buffer.observer.Inserted(b)
		}
	}

	return n
}

func (buffer *FullRingBuffer) GetByte(dst *byte) int {
	if dst == nil || buffer.IsEmpty() {
		return 0
	}

	b := buffer.data[buffer.position(buffer.readCursor)]
	*dst = b
	buffer.readCursor = buffer.advance(buffer.readCursor, 1)

	if buffer.observer != nil {
		buffer.observer.Removed(b)
	}

	return 1
}

func (buffer *FullRingBuffer) Get(p []byte) int {
	if p == nil {
		return 0
	}

	n := min(len(p), buffer.Size())
	if n == 0 {
		return 0
	}

	start := buffer.position(buffer.readCursor)
	first := copy(p[:n], buffer.data[start:])
	if first < n {
		copy(p[first:n], buffer.data)
	}

	buffer.readCursor = buffer.advance(buffer.readCursor, n)

	if buffer.observer != nil {
		for _, b := range p[:n] {
			buffer.observer.Removed(b)
		}
	}

	return n
}

func (buffer *FullRingBuffer) PeekByte(dst *byte) int {
	if dst == nil || buffer.IsEmpty() {
		return 0
	}

	*dst = buffer.data[buffer.position(buffer.readCursor)]

	return 1
}

func (buffer *FullRingBuffer) Discard(n int) int {
	if n <= 0 {
		return 0
	}

	size := buffer.Size()
	if n >= size {
		buffer.Flush()
		return size
	}

	buffer.notifyRemoved(n)
	buffer.readCursor = buffer.advance(buffer.readCursor, n)

	return n
}

func (buffer *FullRingBuffer) Size() int {
	size := buffer.writeCursor - buffer.readCursor
	if size < 0 {
		size += 2 * len(buffer.data)
	}

	return size
}

func (buffer *FullRingBuffer) Free() int {
	return len(buffer.data) - buffer.Size()
}

func (buffer *FullRingBuffer) Capacity() int {
	return len(buffer.data)
}

func (buffer *FullRingBuffer) IsEmpty() bool {
	return buffer.readCursor == buffer.writeCursor
}

func (buffer *FullRingBuffer) IsFull() bool {
	return buffer.Size() == len(buffer.data)
}

// Flush copies the write cursor into the read cursor. Both must agree on the
// lap as well as the slot, otherwise a flushed buffer would read as full.
func (buffer *FullRingBuffer) Flush() {
	buffer.notifyRemoved(buffer.Size())
	buffer.readCursor = buffer.writeCursor
}

func (buffer *FullRingBuffer) Limit() int {
	return FullRingBufferLimit
}

// Clone returns an independent copy. Observers are not carried over.
func (buffer *FullRingBuffer) Clone() RingBufferInterface {
	return buffer.cloneWith(nil)
}

func (buffer *FullRingBuffer) cloneWith(observer Observer) core {
	data := make([]byte, len(buffer.data))
	copy(data, buffer.data)

	return &FullRingBuffer{
		data:        data,
		readCursor:  buffer.readCursor,
		writeCursor: buffer.writeCursor,
		observer:    observer,
	}
}

// CopyFrom replaces the contents of the buffer with those of src, which must
// have the same capacity.
func (buffer *FullRingBuffer) CopyFrom(src RingBufferInterface) error {
	if src == RingBufferInterface(buffer) {
		return nil
	}

	if other, ok := src.(*FullRingBuffer); ok && buffer.observer == nil && len(other.data) == len(buffer.data) {
		copy(buffer.data, other.data)
		buffer.readCursor = other.readCursor
		buffer.writeCursor = other.writeCursor
		return nil
	}

	return copyContents(buffer, src)
}

func (buffer *FullRingBuffer) indexByte(c byte) int {
	size := buffer.Size()
	if size == 0 {
		return -1
	}

	start := buffer.position(buffer.readCursor)
	if start+size <= len(buffer.data) {
		return bytes.IndexByte(buffer.data[start:start+size], c)
	}

	head := buffer.data[start:]
	if i := bytes.IndexByte(head, c); i >= 0 {
		return i
	}
	if i := bytes.IndexByte(buffer.data[:size-len(head)], c); i >= 0 {
		return len(head) + i
	}

	return -1
}

func (buffer *FullRingBuffer) notifyRemoved(n int) {
	if buffer.observer == nil {
		return
	}

	cursor := buffer.readCursor
	for i := 0; i < n; i++ {
		buffer.observer.Removed(buffer.data[buffer.position(cursor)])
		cursor = buffer.advance(cursor, 1)
	}
}

func (buffer *FullRingBuffer) Write(p []byte) (int, error) {
	return writeTo(buffer, p)
}

func (buffer *FullRingBuffer) WriteByte(c byte) error {
	return writeByteTo(buffer, c)
}

func (buffer *FullRingBuffer) Read(p []byte) (int, error) {
	return readFrom(buffer, p)
}

func (buffer *FullRingBuffer) ReadByte() (byte, error) {
	return readByteFrom(buffer)
}
