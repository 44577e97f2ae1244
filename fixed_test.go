package circular_buffer_go_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rb "github.com/sushydev/circular_buffer_go"
)

func TestFixedRingBufferCapacityFromType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 63, rb.NewFixedRingBuffer[rb.Capacity63]().Capacity())
	assert.Equal(t, 255, rb.NewFixedRingBuffer[rb.Capacity255]().Capacity())
	assert.Equal(t, 1023, rb.NewFixedRingBuffer[rb.Capacity1023]().Capacity())
}

func TestFixedRingBufferBehavesLikeRingBuffer(t *testing.T) {
	t.Parallel()
	buf := rb.NewFixedRingBuffer[rb.Capacity63]()

	data := make([]byte, 70)
	for i := range data {
		data[i] = byte(i)
	}

	assert.Equal(t, 0, buf.Put(data, true))
	assert.Equal(t, 63, buf.Put(data, false))
	assert.True(t, buf.IsFull())

	clone, ok := buf.Clone().(*rb.FixedRingBuffer[rb.Capacity63])
	require.True(t, ok)

	out := make([]byte, 63)
	require.Equal(t, 63, buf.Get(out))
	assert.Equal(t, data[:63], out)
	assert.Equal(t, 63, clone.Size())

	other := rb.NewFixedRingBuffer[rb.Capacity63]()
	require.NoError(t, other.CopyFrom(clone))
	assert.Equal(t, 63, other.Size())

	assert.ErrorIs(t, other.CopyFrom(rb.NewFixedRingBuffer[rb.Capacity255]()), rb.ErrCapacityMismatch)
}

type capacityFive struct{}

func (capacityFive) Capacity() int { return 5 }

func TestFixedRingBufferCustomCapacity(t *testing.T) {
	t.Parallel()
	buf := rb.NewFixedRingBuffer[capacityFive]()

	assert.Equal(t, 5, buf.Capacity())
	assert.Equal(t, 5, buf.Put([]byte("abcdefg"), false))
}

func TestIOAdapters(t *testing.T) {
	t.Parallel()

	for _, buf := range []interface {
		io.ReadWriter
		io.ByteReader
		io.ByteWriter
	}{rb.NewRingBuffer(3), rb.NewFullRingBuffer(3)} {
		n, err := buf.Write([]byte("abcd"))
		assert.Equal(t, 3, n)
		assert.ErrorIs(t, err, rb.ErrFull)
		assert.ErrorIs(t, buf.WriteByte('z'), rb.ErrFull)

		c, err := buf.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, byte('a'), c)

		require.NoError(t, buf.WriteByte('d'))

		p := make([]byte, 8)
		n, err = buf.Read(p)
		require.NoError(t, err)
		assert.Equal(t, []byte("bcd"), p[:n])

		_, err = buf.Read(p)
		assert.Equal(t, io.EOF, err)
		_, err = buf.ReadByte()
		assert.Equal(t, io.EOF, err)

		n, err = buf.Read(nil)
		assert.Equal(t, 0, n)
		assert.NoError(t, err)
	}
}

func TestParseModel(t *testing.T) {
	t.Parallel()

	tests := map[string]rb.Model{
		"":                  rb.CapacityPlusOne,
		"capacity-plus-one": rb.CapacityPlusOne,
		"Plus-One":          rb.CapacityPlusOne,
		"full":              rb.FullUtilization,
		" full-utilization": rb.FullUtilization,
	}
	for in, want := range tests {
		got, err := rb.ParseModel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := rb.ParseModel("triple")
	assert.Error(t, err)

	for _, m := range []rb.Model{rb.CapacityPlusOne, rb.FullUtilization} {
		parsed, err := rb.ParseModel(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	assert.Equal(t, "unknown", rb.Model(42).String())
}

func TestNewSelectsModel(t *testing.T) {
	t.Parallel()

	_, ok := rb.New(4).(*rb.RingBuffer)
	assert.True(t, ok)

	_, ok = rb.New(4, rb.WithModel(rb.FullUtilization)).(*rb.FullRingBuffer)
	assert.True(t, ok)

	assert.Equal(t, 4, rb.New(4, nil).Capacity())
}
