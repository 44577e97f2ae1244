package circular_buffer_go_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rb "github.com/sushydev/circular_buffer_go"
)

func delimitedBuffers(capacity int) map[string]*rb.DelimitedBuffer {
	return map[string]*rb.DelimitedBuffer{
		"PlusOne": rb.NewDelimitedBuffer(capacity, '\n'),
		"Full":    rb.NewDelimitedBuffer(capacity, '\n', rb.WithModel(rb.FullUtilization)),
	}
}

func TestDelimitedCountsOnInsertAndRemove(t *testing.T) {
	t.Parallel()

	for name, buf := range delimitedBuffers(16) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, byte('\n'), buf.Delimiter())
			assert.Equal(t, 0, buf.Count())

			require.Equal(t, 1, buf.PutByte('\n'))
			assert.Equal(t, 1, buf.Count())

			require.Equal(t, 6, buf.Put([]byte("ab\ncd\n"), true))
			assert.Equal(t, 3, buf.Count())

			var b byte
			require.Equal(t, 1, buf.GetByte(&b))
			assert.Equal(t, 2, buf.Count())

			out := make([]byte, 3)
			require.Equal(t, 3, buf.Get(out))
			assert.Equal(t, []byte("ab\n"), out)
			assert.Equal(t, 1, buf.Count())

			require.Equal(t, 1, buf.PeekByte(&b))
			assert.Equal(t, 1, buf.Count())
		})
	}
}

func TestDelimitedRejectedBytesAreNotCounted(t *testing.T) {
	t.Parallel()

	for name, buf := range delimitedBuffers(3) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 0, buf.Put([]byte("\n\n\n\n"), true))
			assert.Equal(t, 0, buf.Count())

			assert.Equal(t, 3, buf.Put([]byte("a\n\n\n"), false))
			assert.Equal(t, 2, buf.Count())

			assert.Equal(t, 0, buf.PutByte('\n'))
			assert.Equal(t, 2, buf.Count())
		})
	}
}

func TestDelimitedDiscardAndFlush(t *testing.T) {
	t.Parallel()

	for name, buf := range delimitedBuffers(8) {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, 7, buf.Put([]byte("a\nb\nc\nd"), true))
			assert.Equal(t, 3, buf.Count())

			assert.Equal(t, 3, buf.Discard(3))
			assert.Equal(t, 2, buf.Count())

			assert.Equal(t, 4, buf.Discard(10))
			assert.Equal(t, 0, buf.Count())

			require.Equal(t, 4, buf.Put([]byte("\n\n\n\n"), true))
			buf.Flush()
			assert.Equal(t, 0, buf.Count())
			buf.Flush()
			assert.Equal(t, 0, buf.Count())
		})
	}
}

func TestDelimitedGetMessage(t *testing.T) {
	t.Parallel()

	for name, buf := range delimitedBuffers(8) {
		t.Run(name, func(t *testing.T) {
			out := make([]byte, 8)
			assert.Equal(t, 0, buf.GetMessage(out))

			// Wrap the message across the end of storage.
			require.Equal(t, 6, buf.Put([]byte("xxxxxx"), true))
			require.Equal(t, 6, buf.Discard(6))

			require.Equal(t, 7, buf.Put([]byte("ab\ncde\n"), true))
			assert.Equal(t, 3, buf.MessageLen())

			// Too small: nothing is consumed.
			assert.Equal(t, 0, buf.GetMessage(make([]byte, 2)))
			assert.Equal(t, 7, buf.Size())

			require.Equal(t, 3, buf.GetMessage(out))
			assert.Equal(t, []byte("ab\n"), out[:3])
			assert.Equal(t, 1, buf.Count())

			require.Equal(t, 4, buf.GetMessage(out))
			assert.Equal(t, []byte("cde\n"), out[:4])
			assert.Equal(t, 0, buf.Count())
			assert.Equal(t, 0, buf.MessageLen())

			// A partial message is not returned.
			require.Equal(t, 2, buf.Put([]byte("zz"), true))
			assert.Equal(t, 0, buf.GetMessage(out))
			assert.Equal(t, 2, buf.Size())
		})
	}
}

func TestDelimitedCloneKeepsOwnTally(t *testing.T) {
	t.Parallel()

	buf := rb.NewDelimitedBuffer(8, 0)
	require.Equal(t, 4, buf.Put([]byte{1, 0, 2, 0}, true))

	clone, ok := buf.Clone().(*rb.DelimitedBuffer)
	require.True(t, ok)
	assert.Equal(t, 2, clone.Count())

	out := make([]byte, 2)
	require.Equal(t, 2, clone.GetMessage(out))
	assert.Equal(t, 1, clone.Count())
	assert.Equal(t, 2, buf.Count())
}

func TestDelimitedCopyFromRecounts(t *testing.T) {
	t.Parallel()

	dst := rb.NewDelimitedBuffer(4, ';')
	require.Equal(t, 2, dst.Put([]byte(";;"), true))

	src := rb.NewRingBuffer(4)
	require.Equal(t, 3, src.Put([]byte("a;b"), true))

	require.NoError(t, dst.CopyFrom(src))
	assert.Equal(t, 1, dst.Count())
	assert.Equal(t, 2, dst.MessageLen())

	assert.ErrorIs(t, dst.CopyFrom(rb.NewRingBuffer(5)), rb.ErrCapacityMismatch)
	assert.Equal(t, 1, dst.Count())
}

func TestDelimitedDefaults(t *testing.T) {
	t.Parallel()

	buf := rb.NewDelimitedBuffer(rb.DefaultCapacity, rb.DefaultDelimiter)
	assert.Equal(t, 63, buf.Capacity())
	assert.Equal(t, byte(0), buf.Delimiter())
}

type recordingObserver struct {
	inserted []byte
	removed  []byte
}

func (o *recordingObserver) Inserted(b byte) { o.inserted = append(o.inserted, b) }
func (o *recordingObserver) Removed(b byte)  { o.removed = append(o.removed, b) }

func TestObserverSeesEveryEvent(t *testing.T) {
	t.Parallel()

	for _, model := range []rb.Model{rb.CapacityPlusOne, rb.FullUtilization} {
		obs := &recordingObserver{}
		buf := rb.New(4, rb.WithModel(model), rb.WithObserver(obs))

		require.Equal(t, 1, buf.PutByte('a'))
		require.Equal(t, 3, buf.Put([]byte("bcd"), true))
		assert.Equal(t, 0, buf.Put([]byte("e"), true))

		var b byte
		require.Equal(t, 1, buf.GetByte(&b))
		require.Equal(t, 1, buf.Discard(1))
		require.Equal(t, 2, buf.Put([]byte("ef"), true))
		buf.Flush()

		assert.Equal(t, []byte("abcdef"), obs.inserted, model.String())
		assert.Equal(t, []byte("abcdef"), obs.removed, model.String())
	}
}

func TestDelimitedWithExtraObserver(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	buf := rb.NewDelimitedBuffer(4, '|', rb.WithObserver(obs))

	require.Equal(t, 3, buf.Put([]byte("a|b"), true))
	assert.Equal(t, 1, buf.Count())
	assert.Equal(t, []byte("a|b"), obs.inserted)
}

func TestDelimitedDoesNotWriteIntoCallerOptions(t *testing.T) {
	t.Parallel()

	options := make([]rb.Option, 1, 4)
	options[0] = rb.WithModel(rb.FullUtilization)

	rb.NewDelimitedBuffer(4, '\n', options...)
	assert.Nil(t, options[:2][1])
}
