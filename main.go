package circular_buffer_go

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/atomic"
)

var _ RingBufferInterface = &LockingRingBuffer{}
var _ io.ReadWriteCloser = &LockingRingBuffer{}

// LockingRingBuffer serialises access to a RingBufferInterface so that a
// producer and a consumer may run in different goroutines.
//
// The RingBufferInterface methods keep their non-blocking semantics. Write
// and Read additionally provide a blocking stream on top of them: Write waits
// for free space, Read waits for data.
type LockingRingBuffer struct {
	buffer RingBufferInterface
	mu     sync.Mutex

	notFull  *sync.Cond
	notEmpty *sync.Cond

	eof    atomic.Bool
	closed atomic.Bool
}

const waitPollInterval = 20 * time.Millisecond

func NewLockingRingBuffer(buffer RingBufferInterface) *LockingRingBuffer {
	locking := &LockingRingBuffer{
		buffer: buffer,
	}
	locking.notFull = sync.NewCond(&locking.mu)
	locking.notEmpty = sync.NewCond(&locking.mu)

	return locking
}

func (buffer *LockingRingBuffer) PutByte(b byte) int {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	n := buffer.buffer.PutByte(b)
	if n > 0 {
		buffer.notEmpty.Broadcast()
	}

	return n
}

func (buffer *LockingRingBuffer) Put(p []byte, requireAll bool) int {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	n := buffer.buffer.Put(p, requireAll)
	if n > 0 {
		buffer.notEmpty.Broadcast()
	}

	return n
}

func (buffer *LockingRingBuffer) GetByte(dst *byte) int {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	n := buffer.buffer.GetByte(dst)
	if n > 0 {
		buffer.notFull.Broadcast()
	}

	return n
}

func (buffer *LockingRingBuffer) Get(p []byte) int {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	n := buffer.buffer.Get(p)
	if n > 0 {
		buffer.notFull.Broadcast()
	}

	return n
}

func (buffer *LockingRingBuffer) PeekByte(dst *byte) int {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	return buffer.buffer.PeekByte(dst)
}

func (buffer *LockingRingBuffer) Discard(n int) int {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	discarded := buffer.buffer.Discard(n)
	if discarded > 0 {
		buffer.notFull.Broadcast()
	}

	return discarded
}

func (buffer *LockingRingBuffer) Size() int {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	return buffer.buffer.Size()
}

func (buffer *LockingRingBuffer) Free() int {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	return buffer.buffer.Free()
}

func (buffer *LockingRingBuffer) Capacity() int {
	return buffer.buffer.Capacity()
}

func (buffer *LockingRingBuffer) IsEmpty() bool {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	return buffer.buffer.IsEmpty()
}

func (buffer *LockingRingBuffer) IsFull() bool {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	return buffer.buffer.IsFull()
}

func (buffer *LockingRingBuffer) Flush() {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	buffer.buffer.Flush()
	buffer.notFull.Broadcast()
}

func (buffer *LockingRingBuffer) Limit() int {
	return buffer.buffer.Limit()
}

// Clone returns a new LockingRingBuffer around a copy of the wrapped buffer.
// The copy is open regardless of the state of the original.
func (buffer *LockingRingBuffer) Clone() RingBufferInterface {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	return NewLockingRingBuffer(buffer.buffer.Clone())
}

func (buffer *LockingRingBuffer) CopyFrom(src RingBufferInterface) error {
	if src == RingBufferInterface(buffer) {
		return nil
	}

	// Take the copy before locking so two buffers copying from each other
	// cannot deadlock.
	snapshot := src.Clone()

	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	if err := buffer.buffer.CopyFrom(snapshot); err != nil {
		return err
	}

	buffer.notEmpty.Broadcast()
	buffer.notFull.Broadcast()

	return nil
}

// Write blocks until all of p has been stored. It returns ErrClosed if the
// buffer is closed, or closed for writing, before that happens.
func (buffer *LockingRingBuffer) Write(p []byte) (int, error) {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	if len(p) > 0 && buffer.buffer.Capacity() == 0 {
		return 0, ErrFull
	}

	written := 0
	for written < len(p) {
		if buffer.closed.Load() || buffer.eof.Load() {
			return written, ErrClosed
		}

		n := buffer.buffer.Put(p[written:], false)
		if n == 0 {
			buffer.notFull.Wait()
			continue
		}

		written += n
		buffer.notEmpty.Broadcast()
	}

	return written, nil
}

// Read blocks until at least one byte is stored and then drains up to
// len(p) bytes. Once CloseWrite has been called and the buffer is drained it
// returns io.EOF.
func (buffer *LockingRingBuffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	for buffer.buffer.IsEmpty() {
		if buffer.closed.Load() {
			return 0, ErrClosed
		}
		if buffer.eof.Load() {
			return 0, io.EOF
		}

		buffer.notEmpty.Wait()
	}

	if buffer.closed.Load() {
		return 0, ErrClosed
	}

	n := buffer.buffer.Get(p)
	buffer.notFull.Broadcast()

	return n, nil
}

// WaitForData waits until at least n bytes are stored. It returns false if
// the context ends, the buffer is closed, or the writer side is closed with
// fewer than n bytes left.
func (buffer *LockingRingBuffer) WaitForData(ctx context.Context, n int) bool {
	for {
		if buffer.closed.Load() {
			return false
		}

		if buffer.Size() >= n {
			return true
		}

		if buffer.eof.Load() {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(waitPollInterval):
		}
	}
}

// CloseWrite marks the end of the stream. Stored bytes remain readable.
func (buffer *LockingRingBuffer) CloseWrite() error {
	buffer.eof.Store(true)

	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	buffer.notEmpty.Broadcast()
	buffer.notFull.Broadcast()

	return nil
}

// Close wakes every blocked Write and Read; subsequent stream calls return
// ErrClosed.
func (buffer *LockingRingBuffer) Close() error {
	buffer.closed.Store(true)

	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	buffer.notFull.Broadcast()
	buffer.notEmpty.Broadcast()

	return nil
}
