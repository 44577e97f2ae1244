package circular_buffer_go

import (
	"errors"
	"io"
	"math"
)

// RingBufferInterface is the contract shared by every buffer variant.
//
// All transfer methods report how many bytes were moved. A short or zero
// count is the only failure signal: a full buffer, an empty buffer and a nil
// source or destination all look the same to the caller, who can compare the
// result against Size and Free to tell them apart.
//
// Notes on semantics:
//   - Put with requireAll set either stores all of p or nothing.
//   - Get never fails on insufficient data, it returns what is stored.
//   - Discard saturates at Size; discarding more than is stored flushes.
//   - Flush is O(1) and does not erase storage.
//
// Implementations are not safe for concurrent use. Wrap them with
// NewLockingRingBuffer when a producer and a consumer run in parallel.
type RingBufferInterface interface {
	PutByte(b byte) int
	Put(p []byte, requireAll bool) int
	GetByte(dst *byte) int
	Get(p []byte) int
	PeekByte(dst *byte) int
	Discard(n int) int

	Size() int
	Free() int
	Capacity() int
	IsEmpty() bool
	IsFull() bool
	Flush()
	Limit() int

	Clone() RingBufferInterface
	CopyFrom(src RingBufferInterface) error
}

// Observer receives one event per byte entering or leaving a buffer. Events
// are delivered synchronously from inside the mutating call.
type Observer interface {
	Inserted(b byte)
	Removed(b byte)
}

const (
	// RingBufferLimit is the largest capacity of the capacity-plus-one model.
	// One value of the index domain is spent on the spare slot.
	RingBufferLimit = math.MaxInt - 1

	// FullRingBufferLimit is the largest capacity of the full-utilization
	// model, whose cursors range over twice the capacity.
	FullRingBufferLimit = math.MaxInt / 2

	// DefaultCapacity is the historical default size of a delimited buffer.
	DefaultCapacity = 63

	// DefaultDelimiter is the historical default message delimiter.
	DefaultDelimiter byte = 0
)

var _ RingBufferInterface = &RingBuffer{}
var _ RingBufferInterface = &FullRingBuffer{}
var _ io.ReadWriter = &RingBuffer{}
var _ io.ByteReader = &RingBuffer{}
var _ io.ByteWriter = &FullRingBuffer{}

// ErrFull is returned by the io adapters when not all bytes fit.
var ErrFull = errors.New("ringbuffer: buffer is full")

// ErrClosed is returned by LockingRingBuffer after Close.
var ErrClosed = errors.New("ringbuffer: buffer is closed")

// ErrCapacityMismatch is returned by CopyFrom when source and destination
// capacities differ.
var ErrCapacityMismatch = errors.New("ringbuffer: capacity mismatch")
