package circular_buffer_go

// FixedCapacity is implemented by zero-sized marker types that carry a
// buffer capacity in the type system.
type FixedCapacity interface {
	Capacity() int
}

type (
	Capacity63   struct{}
	Capacity255  struct{}
	Capacity1023 struct{}
)

func (Capacity63) Capacity() int   { return 63 }
func (Capacity255) Capacity() int  { return 255 }
func (Capacity1023) Capacity() int { return 1023 }

// FixedRingBuffer is a RingBuffer whose capacity is chosen by its type
// parameter instead of a constructor argument:
//
//	buf := NewFixedRingBuffer[Capacity63]()
type FixedRingBuffer[S FixedCapacity] struct {
	RingBuffer
}

var _ RingBufferInterface = &FixedRingBuffer[Capacity63]{}

func NewFixedRingBuffer[S FixedCapacity](options ...Option) *FixedRingBuffer[S] {
	var size S

	return &FixedRingBuffer[S]{
		RingBuffer: *NewRingBuffer(size.Capacity(), options...),
	}
}

func (buffer *FixedRingBuffer[S]) Clone() RingBufferInterface {
	clone := buffer.RingBuffer.cloneWith(nil).(*RingBuffer)

	return &FixedRingBuffer[S]{RingBuffer: *clone}
}

func (buffer *FixedRingBuffer[S]) CopyFrom(src RingBufferInterface) error {
	if other, ok := src.(*FixedRingBuffer[S]); ok {
		return buffer.RingBuffer.CopyFrom(&other.RingBuffer)
	}

	return buffer.RingBuffer.CopyFrom(src)
}
